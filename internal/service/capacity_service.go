package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examhub/backend/config"
	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

// 生效容量的来源层级，按回退顺序排列
const (
	CapacitySourceHourRoster   = "hour_roster"   // 日×小时排班表
	CapacitySourceShiftRoster  = "shift_roster"  // 日×场次排班表
	CapacitySourceShiftDefault = "shift_default" // 场次默认容量
	CapacitySourceNone         = "none"          // 无任何配置
)

var (
	// ErrConfigurationMissing 回退链走完仍无容量配置
	ErrConfigurationMissing = errors.New("该时段缺少容量配置，无法完成操作")
	// ErrInvalidDateRange 日期范围不合法
	ErrInvalidDateRange = errors.New("日期范围不合法")
	// ErrRosterRowOutOfRange 导入行日期落在替换范围之外
	ErrRosterRowOutOfRange = errors.New("排班行日期超出替换范围")
)

// CapacityService 监考员容量核算
// 回退链：日×小时排班 → 日×场次排班 → 场次默认容量 → 缺配置
type CapacityService struct {
	repo   *repository.Repository
	cfg    *config.BookingConfig
	logger *zap.Logger
}

func NewCapacityService(repo *repository.Repository, cfg *config.BookingConfig, logger *zap.Logger) *CapacityService {
	return &CapacityService{repo: repo, cfg: cfg, logger: logger}
}

// ReserveProctors 按比例向上取整计算预留监考员数
func ReserveProctors(total, percent int) int {
	return (total*percent + 99) / 100
}

// fromProctors 由监考员总数推导预留数与生效考生容量
func (s *CapacityService) fromProctors(total int) (reserve, effective int) {
	reserve = ReserveProctors(total, s.cfg.ReservePercent)
	usable := total - reserve
	if usable < 0 {
		usable = 0
	}
	return reserve, usable * s.cfg.CandidatesPerProctor
}

// Resolve 沿回退链解析指定时段的生效容量
// hour 为空时按整场粒度解析；生效容量为零的排班行视同缺失，继续回退
func (s *CapacityService) Resolve(ctx context.Context, date time.Time, shift *model.Shift, hour *int) (source string, total, reserve, effective int, err error) {
	if hour != nil {
		row, err := s.repo.Capacity.GetHour(ctx, date, *hour)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, 0, 0, err
		}
		if err == nil && row.EffectiveCapacity > 0 {
			return CapacitySourceHourRoster, row.TotalProctors, row.ReserveProctors, row.EffectiveCapacity, nil
		}
	}

	row, err := s.repo.Capacity.GetShift(ctx, date, shift.ShiftID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, 0, 0, err
	}
	if err == nil && row.EffectiveCapacity > 0 {
		return CapacitySourceShiftRoster, row.TotalProctors, row.ReserveProctors, row.EffectiveCapacity, nil
	}

	if shift.MaxCandidates > 0 {
		return CapacitySourceShiftDefault, 0, 0, shift.MaxCandidates, nil
	}

	return CapacitySourceNone, 0, 0, 0, nil
}

// 占用统计的状态集
// 读侧（搜索、余量视图）把所有未进入终态的预约都计入占用；
// 审批闸门只统计已通过的预约
var (
	ledgerStatuses   = []model.BookingStatus{model.StatusHolding, model.StatusPending, model.StatusApproved}
	approvalStatuses = []model.BookingStatus{model.StatusApproved}
)

// Check 核算指定时段能否再容纳 requested 名考生
// occupying 指定哪些状态的预约计入占用；
// excludeBookingID 非空时将该预约自身排除在占用统计之外
func (s *CapacityService) Check(ctx context.Context, date time.Time, shift *model.Shift, hour *int,
	requested int, excludeBookingID string, occupying []model.BookingStatus) (*dto.CapacityCheck, error) {
	source, total, reserve, effective, err := s.Resolve(ctx, date, shift, hour)
	if err != nil {
		return nil, err
	}

	occupied := 0
	if source != CapacitySourceNone {
		occupied, err = s.repo.Booking.SumCandidates(ctx, date, shift.ShiftID,
			hour, occupying, excludeBookingID)
		if err != nil {
			return nil, err
		}
	}

	remaining := effective - occupied
	if remaining < 0 {
		remaining = 0
	}
	overage := occupied + requested - effective
	if overage < 0 {
		overage = 0
	}

	check := &dto.CapacityCheck{
		Date:              DateKey(date),
		ShiftID:           shift.ShiftID,
		Hour:              hour,
		Source:            source,
		TotalProctors:     total,
		ReserveProctors:   reserve,
		EffectiveCapacity: effective,
		Occupied:          occupied,
		Requested:         requested,
		Remaining:         remaining,
		Overage:           overage,
	}
	return check, nil
}

// RangeAvailability 按小时粒度汇总日期范围内的剩余容量（管理端视图）
func (s *CapacityService) RangeAvailability(ctx context.Context, from, to time.Time, shiftID string) ([]dto.HourAvailability, error) {
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	shifts, err := s.repo.Shift.List(ctx, false)
	if err != nil {
		return nil, err
	}

	var result []dto.HourAvailability
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for i := range shifts {
			shift := &shifts[i]
			if shiftID != "" && shift.ShiftID != shiftID {
				continue
			}
			for _, h := range shift.Hours() {
				hour := h
				check, err := s.Check(ctx, d, shift, &hour, 0, "", ledgerStatuses)
				if err != nil {
					return nil, err
				}
				if check.Source == CapacitySourceNone {
					continue
				}
				result = append(result, dto.HourAvailability{
					Date:      DateKey(d),
					Hour:      h,
					ShiftID:   shift.ShiftID,
					Source:    check.Source,
					Effective: check.EffectiveCapacity,
					Occupied:  check.Occupied,
					Remaining: check.Remaining,
				})
			}
		}
	}
	return result, nil
}

// ReplaceRoster 按日期范围整批替换排班容量（导入语义）
// 预留数与生效容量在导入时一次性算好落库
func (s *CapacityService) ReplaceRoster(ctx context.Context, req *dto.ReplaceRosterRequest, operatorID string) (int, error) {
	from, err := time.Parse("2006-01-02", req.DateFrom)
	if err != nil {
		return 0, ErrInvalidDateRange
	}
	to, err := time.Parse("2006-01-02", req.DateTo)
	if err != nil {
		return 0, ErrInvalidDateRange
	}
	if to.Before(from) {
		return 0, ErrInvalidDateRange
	}

	shifts, err := s.repo.Shift.List(ctx, true)
	if err != nil {
		return 0, err
	}
	shiftByID := make(map[string]*model.Shift, len(shifts))
	for i := range shifts {
		shiftByID[shifts[i].ShiftID] = &shifts[i]
	}

	operator := &operatorID

	shiftRows := make([]model.ShiftCapacity, 0, len(req.ShiftRows))
	for _, row := range req.ShiftRows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return 0, ErrInvalidDateRange
		}
		if date.Before(from) || date.After(to) {
			return 0, ErrRosterRowOutOfRange
		}
		if _, ok := shiftByID[row.ShiftID]; !ok {
			return 0, ErrShiftNotFound
		}
		reserve, effective := s.fromProctors(row.TotalProctors)
		shiftRows = append(shiftRows, model.ShiftCapacity{
			Date:              date,
			ShiftID:           row.ShiftID,
			TotalProctors:     row.TotalProctors,
			ReserveProctors:   reserve,
			EffectiveCapacity: effective,
			BaseModel:         model.BaseModel{CreatedBy: operator, UpdatedBy: operator},
		})
	}

	hourRows := make([]model.HourCapacity, 0, len(req.HourRows))
	for _, row := range req.HourRows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return 0, ErrInvalidDateRange
		}
		if date.Before(from) || date.After(to) {
			return 0, ErrRosterRowOutOfRange
		}
		shift, ok := shiftByID[row.ShiftID]
		if !ok {
			return 0, ErrShiftNotFound
		}
		if row.Hour < shift.StartHour || row.Hour >= shift.EndHour {
			return 0, ErrRosterRowOutOfRange
		}
		reserve, effective := s.fromProctors(row.TotalProctors)
		hourRows = append(hourRows, model.HourCapacity{
			Date:              date,
			Hour:              row.Hour,
			ShiftID:           row.ShiftID,
			TotalProctors:     row.TotalProctors,
			ReserveProctors:   reserve,
			EffectiveCapacity: effective,
			BaseModel:         model.BaseModel{CreatedBy: operator, UpdatedBy: operator},
		})
	}

	if err := s.repo.Capacity.ReplaceRange(ctx, from, to, shiftRows, hourRows); err != nil {
		return 0, err
	}

	s.logger.Info("排班容量已替换",
		zap.String("date_from", req.DateFrom),
		zap.String("date_to", req.DateTo),
		zap.Int("shift_rows", len(shiftRows)),
		zap.Int("hour_rows", len(hourRows)),
	)
	return len(shiftRows) + len(hourRows), nil
}
