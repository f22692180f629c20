package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examhub/backend/config"
	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

// maxSlotOptions 排序后返回给调用方的候选时段上限
const maxSlotOptions = 20

// AlreadyScheduledError 部门已有未完成的预约，搜索被拒绝
// 携带现有预约以便前端直接展示
type AlreadyScheduledError struct {
	Existing *model.Booking
}

func (e *AlreadyScheduledError) Error() string {
	return fmt.Sprintf("该部门已有未完成的预约（%s）", e.Existing.BookingID)
}

// SlotService 可用时段搜索
// 优先级：1=首选场次整场可容纳 2=其他场次整场可容纳 3=需按小时拆分
type SlotService struct {
	repo     *repository.Repository
	cfg      *config.BookingConfig
	loc      *time.Location
	calendar *CalendarService
	capacity *CapacityService
	logger   *zap.Logger
	nowFn    func() time.Time
}

func NewSlotService(repo *repository.Repository, cfg *config.BookingConfig, loc *time.Location,
	calendar *CalendarService, capacity *CapacityService, logger *zap.Logger) *SlotService {
	return &SlotService{
		repo:     repo,
		cfg:      cfg,
		loc:      loc,
		calendar: calendar,
		capacity: capacity,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// Search 在搜索窗口内枚举可容纳指定考生数的时段
func (s *SlotService) Search(ctx context.Context, req *dto.SearchSlotsRequest) (*dto.SearchSlotsResponse, error) {
	existing, err := s.repo.Booking.GetActiveByDepartment(ctx, req.DepartmentID)
	if err == nil {
		return nil, &AlreadyScheduledError{Existing: existing}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	courseEnd, err := time.Parse("2006-01-02", req.CourseEndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	earliest, err := s.calendar.EarliestBookableDate(ctx, courseEnd, s.nowFn().In(s.loc), s.cfg.MinWorkingDays)
	if err != nil {
		return nil, err
	}

	windowEnd := earliest.AddDate(0, s.cfg.SearchWindowMonths, 0)

	closed, err := s.calendar.ClosedSet(ctx, earliest, windowEnd)
	if err != nil {
		return nil, err
	}

	shifts, err := s.repo.Shift.List(ctx, false)
	if err != nil {
		return nil, err
	}

	// 先枚举完整个窗口再排序截断，避免窗口后段的高优先级方案被提前丢弃
	var options []dto.SlotOption
	for d := earliest; !d.After(windowEnd); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) || closed[DateKey(d)] {
			continue
		}
		for i := range shifts {
			opt, err := s.evaluateShift(ctx, d, &shifts[i], req.CandidateCount, req.PreferredShift)
			if err != nil {
				return nil, err
			}
			if opt != nil {
				options = append(options, *opt)
			}
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Priority != options[j].Priority {
			return options[i].Priority < options[j].Priority
		}
		return options[i].Date < options[j].Date
	})
	if len(options) > maxSlotOptions {
		options = options[:maxSlotOptions]
	}

	return &dto.SearchSlotsResponse{
		EarliestDate: DateKey(earliest),
		WindowEnd:    DateKey(windowEnd),
		Options:      options,
	}, nil
}

// evaluateShift 评估单个日期×场次，完全无余量时返回 nil
// 纳入条件：整场余量为正，或场内至少一个小时余量为正；
// 优先级由单小时粒度决定，无单小时能整体容纳时标记拆分
func (s *SlotService) evaluateShift(ctx context.Context, date time.Time, shift *model.Shift, count int, preferred string) (*dto.SlotOption, error) {
	shiftCheck, err := s.capacity.Check(ctx, date, shift, nil, count, "", ledgerStatuses)
	if err != nil {
		return nil, err
	}

	var hours []dto.SlotHour
	sum, best := 0, 0
	for _, h := range shift.Hours() {
		hour := h
		hc, err := s.capacity.Check(ctx, date, shift, &hour, 0, "", ledgerStatuses)
		if err != nil {
			return nil, err
		}
		if hc.Source == CapacitySourceNone || hc.Remaining <= 0 {
			continue
		}
		hours = append(hours, dto.SlotHour{Hour: h, Remaining: hc.Remaining})
		sum += hc.Remaining
		if hc.Remaining > best {
			best = hc.Remaining
		}
	}

	shiftRemaining := 0
	if shiftCheck.Source != CapacitySourceNone {
		shiftRemaining = shiftCheck.Remaining
	}
	if shiftRemaining <= 0 && len(hours) == 0 {
		return nil, nil
	}

	opt := &dto.SlotOption{
		Date:      DateKey(date),
		ShiftID:   shift.ShiftID,
		ShiftName: shift.Name,
		StartHour: shift.StartHour,
		EndHour:   shift.EndHour,
		Hours:     hours,
	}

	if best >= count {
		opt.Priority = 2
		if shift.Name == preferred {
			opt.Priority = 1
		}
		opt.Remaining = shiftRemaining
		if opt.Remaining == 0 {
			opt.Remaining = best
		}
		return opt, nil
	}

	// 无单小时能整体容纳：拆分方案，余量取各小时之和
	opt.Priority = 3
	opt.IsSplit = true
	opt.Remaining = sum
	if len(hours) > 0 {
		opt.StartHour = hours[0].Hour
		opt.EndHour = hours[len(hours)-1].Hour + 1
	} else {
		opt.Remaining = shiftRemaining
	}
	return opt, nil
}
