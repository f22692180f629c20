package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"examhub/backend/config"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

// ExportService 预约数据导出（Excel 明细 + iCal 日历订阅）
type ExportService struct {
	repo   *repository.Repository
	cfg    *config.BookingConfig
	loc    *time.Location
	logger *zap.Logger
}

func NewExportService(repo *repository.Repository, cfg *config.BookingConfig, loc *time.Location, logger *zap.Logger) *ExportService {
	return &ExportService{repo: repo, cfg: cfg, loc: loc, logger: logger}
}

var statusLabels = map[model.BookingStatus]string{
	model.StatusHolding:   "占位中",
	model.StatusPending:   "待审核",
	model.StatusApproved:  "已通过",
	model.StatusRejected:  "已驳回",
	model.StatusExpired:   "已过期",
	model.StatusCancelled: "已取消",
}

var voucherLabels = map[model.VoucherStatus]string{
	model.VoucherPending:       "待办理",
	model.VoucherUserCompleted: "待核验",
	model.VoucherVerified:      "已核验",
	model.VoucherCancelled:     "已取消",
}

// ExportBookings 导出日期范围内的预约明细
func (s *ExportService) ExportBookings(ctx context.Context, fromStr, toStr string) (*excelize.File, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	bookings, err := s.repo.Booking.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "预约明细"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"预约编号", "确认码", "部门", "考试日期", "场次", "起始小时", "考生人数", "状态", "凭证状态", "创建时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i := range bookings {
		b := &bookings[i]
		shiftName := ""
		if b.Shift != nil {
			shiftName = b.Shift.Name
		}
		hour := ""
		if b.ExamStartHour != nil {
			hour = fmt.Sprintf("%d:00", *b.ExamStartHour)
		}
		row := []interface{}{
			b.BookingID,
			b.ConfirmationCode,
			b.DepartmentID,
			DateKey(b.ExamDate),
			shiftName,
			hour,
			b.CandidateCount,
			statusLabels[b.Status],
			voucherLabels[b.VoucherStatus],
			b.CreatedAt.In(s.loc).Format("2006-01-02 15:04:05"),
		}
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	s.logger.Info("预约明细已导出",
		zap.String("date_from", fromStr),
		zap.String("date_to", toStr),
		zap.Int("rows", len(bookings)),
	)
	return f, nil
}

// ICalFeed 生成日期范围内已通过预约的 iCal 日历
func (s *ExportService) ICalFeed(ctx context.Context, fromStr, toStr string) (string, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return "", ErrInvalidDate
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return "", ErrInvalidDate
	}
	if to.Before(from) {
		return "", ErrInvalidDateRange
	}

	bookings, err := s.repo.Booking.ListBetween(ctx, from, to)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for i := range bookings {
		b := &bookings[i]
		if b.Status != model.StatusApproved {
			continue
		}

		startHour := 0
		endHour := 0
		shiftName := ""
		if b.Shift != nil {
			startHour = b.Shift.StartHour
			endHour = b.Shift.EndHour
			shiftName = b.Shift.Name
		}
		if b.ExamStartHour != nil {
			startHour = *b.ExamStartHour
			endHour = startHour + 1
		}

		y, m, d := b.ExamDate.Date()
		start := time.Date(y, m, d, startHour, 0, 0, 0, s.loc)
		end := time.Date(y, m, d, endHour, 0, 0, 0, s.loc)

		event := cal.AddEvent(b.BookingID)
		event.SetCreatedTime(b.CreatedAt)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("考试：部门 %s（%d 人）", b.DepartmentID, b.CandidateCount))
		event.SetDescription(fmt.Sprintf("场次 %s，确认码 %s", shiftName, b.ConfirmationCode))
	}

	return cal.Serialize(), nil
}
