package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"examhub/backend/config"
	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
	pkgerrors "examhub/backend/pkg/errors"
)

var (
	ErrBookingNotFound     = errors.New("预约不存在")
	ErrActiveBookingExists = errors.New("该部门已有未完成的预约")
	ErrHoldExpired         = errors.New("占位已过期，请重新搜索时段")
	ErrIllegalTransition   = errors.New("当前状态不允许该操作")
	ErrNotBookingOwner     = errors.New("无权操作该预约")
	ErrDateUnavailable     = errors.New("所选日期不可安排考试")
	ErrDateTooEarly        = errors.New("考试日期距课程结束的工作日间隔不足")
	ErrHourOutOfShift      = errors.New("起始小时不在所选场次范围内")
	ErrVoucherStateInvalid = errors.New("当前凭证状态不允许该操作")
)

// CapacityExceededError 审批会导致超容，携带核算明细供管理员决定是否强制通过
type CapacityExceededError struct {
	Check *dto.CapacityCheck
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("该时段容量不足：剩余 %d，申请 %d", e.Check.Remaining, e.Check.Requested)
}

// EventBroadcaster 预约事件广播器（Redis Pub/Sub 实现）
// 广播是旁路动作，失败只记日志
type EventBroadcaster interface {
	PublishBookingEvent(ctx context.Context, event string, payload interface{}) error
}

// BookingService 预约生命周期
// 状态字段由本服务独占管理；所有状态转移走条件更新（CAS），
// 并发的提交/取消/过期清理中只有一方能赢得写入
type BookingService struct {
	repo        *repository.Repository
	cfg         *config.BookingConfig
	loc         *time.Location
	calendar    *CalendarService
	capacity    *CapacityService
	notifier    *NotificationService
	broadcaster EventBroadcaster
	logger      *zap.Logger
	nowFn       func() time.Time

	// 审批按 日期×场次×小时 串行化，缩小检查与写入之间的竞争窗口
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBookingService(repo *repository.Repository, cfg *config.BookingConfig, loc *time.Location,
	calendar *CalendarService, capacity *CapacityService, notifier *NotificationService,
	broadcaster EventBroadcaster, logger *zap.Logger) *BookingService {
	return &BookingService{
		repo:        repo,
		cfg:         cfg,
		loc:         loc,
		calendar:    calendar,
		capacity:    capacity,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
		nowFn:       time.Now,
		locks:       make(map[string]*sync.Mutex),
	}
}

// ── 占位与提交 ──

// CreateHold 创建占位预约
// 占位在 HoldDuration 内有效，到期未提交由清理任务置为 expired
func (s *BookingService) CreateHold(ctx context.Context, userID string, req *dto.CreateHoldRequest) (*model.Booking, error) {
	courseEnd, err := time.Parse("2006-01-02", req.CourseEndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	if !shift.IsActive {
		return nil, ErrShiftInactive
	}
	if req.ExamStartHour != nil &&
		(*req.ExamStartHour < shift.StartHour || *req.ExamStartHour >= shift.EndHour) {
		return nil, ErrHourOutOfShift
	}

	now := s.nowFn()
	if !examDate.After(DateOf(now.In(s.loc))) {
		return nil, ErrDateUnavailable
	}
	ok, err := s.calendar.IsWorkingDay(ctx, examDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDateUnavailable
	}
	earliest, err := s.calendar.EarliestBookableDate(ctx, courseEnd, now.In(s.loc), s.cfg.MinWorkingDays)
	if err != nil {
		return nil, err
	}
	if examDate.Before(earliest) {
		return nil, ErrDateTooEarly
	}

	if _, err := s.repo.Booking.GetActiveByDepartment(ctx, req.DepartmentID); err == nil {
		return nil, ErrActiveBookingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	expiresAt := now.Add(s.cfg.HoldDuration)
	booking := &model.Booking{
		DepartmentID:     req.DepartmentID,
		UserID:           userID,
		CandidateCount:   req.CandidateCount,
		CourseEndDate:    courseEnd,
		PreferredShift:   req.PreferredShift,
		ShiftID:          &req.ShiftID,
		ExamStartHour:    req.ExamStartHour,
		ExamDate:         examDate,
		Status:           model.StatusHolding,
		HoldExpiresAt:    &expiresAt,
		ConfirmationCode: confirmationCode(),
		Notes:            req.Notes,
		VoucherStatus:    model.VoucherPending,
		BaseModel:        model.BaseModel{CreatedBy: &userID, UpdatedBy: &userID},
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// 部分唯一索引兜底：并发创建时数据库拦下第二个活跃预约
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrActiveBookingExists
		}
		return nil, err
	}

	s.record(ctx, booking.BookingID, model.HistoryCreated, "创建占位", &userID, map[string]interface{}{
		"exam_date":       req.ExamDate,
		"shift_id":        req.ShiftID,
		"exam_start_hour": req.ExamStartHour,
		"candidate_count": req.CandidateCount,
	})
	s.broadcast(ctx, "booking.hold_created", booking)

	return booking, nil
}

// Submit 提交占位进入待审核
// 占位恰好到期的瞬间视为已过期：先落终态再报错
func (s *BookingService) Submit(ctx context.Context, userID, bookingID string, req *dto.SubmitBookingRequest) (*model.Booking, error) {
	booking, err := s.getOwned(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.StatusHolding {
		return nil, ErrIllegalTransition
	}

	now := s.nowFn()
	if booking.HoldExpiresAt == nil || !now.Before(*booking.HoldExpiresAt) {
		err := s.repo.Booking.UpdateStatus(ctx, bookingID,
			[]model.BookingStatus{model.StatusHolding}, model.StatusExpired,
			map[string]interface{}{"hold_expires_at": nil})
		if err == nil {
			s.record(ctx, bookingID, model.HistoryHoldExpired, "占位到期，提交被拒绝", nil, nil)
			s.broadcast(ctx, "booking.hold_expired", booking)
		} else if !errors.Is(err, pkgerrors.ErrStatusConflict) {
			s.logger.Warn("占位过期落库失败", zap.String("booking_id", bookingID), zap.Error(err))
		}
		return nil, ErrHoldExpired
	}

	updates := map[string]interface{}{
		"hold_expires_at": nil,
		"updated_by":      userID,
	}
	if req != nil && req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if err := s.repo.Booking.UpdateStatus(ctx, bookingID,
		[]model.BookingStatus{model.StatusHolding}, model.StatusPending, updates); err != nil {
		return nil, err
	}

	s.record(ctx, bookingID, model.HistorySubmitted, "提交审核", &userID, nil)
	s.notifier.NotifyAdmins(ctx, model.NotifyBookingSubmitted,
		"新的预约待审核",
		fmt.Sprintf("部门 %s 提交了 %s 的考试预约（%d 人）",
			booking.DepartmentID, DateKey(booking.ExamDate), booking.CandidateCount),
		&bookingID)
	s.broadcast(ctx, "booking.submitted", booking)

	return s.repo.Booking.GetByID(ctx, bookingID)
}

// Cancel 用户取消占位
// 仅 holding 可由用户取消；approved 只能由截止任务自动取消
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) error {
	booking, err := s.getOwned(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if booking.Status != model.StatusHolding {
		return ErrIllegalTransition
	}

	err = s.repo.Booking.UpdateStatus(ctx, bookingID,
		[]model.BookingStatus{model.StatusHolding}, model.StatusCancelled,
		map[string]interface{}{"hold_expires_at": nil, "updated_by": userID})
	if err != nil {
		return err
	}

	s.record(ctx, bookingID, model.HistoryCancelled, "用户取消占位", &userID, nil)
	s.broadcast(ctx, "booking.cancelled", booking)
	return nil
}

// ── 审批 ──

// Approve 审核通过
// 审批前在同一时段的互斥锁内核算容量；超容时除非 force 否则拒绝，
// force 通过会留存核算快照与操作人
func (s *BookingService) Approve(ctx context.Context, adminID, bookingID string, req *dto.ApproveBookingRequest) (*model.Booking, error) {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.StatusPending {
		return nil, ErrIllegalTransition
	}

	shift, err := s.shiftOf(ctx, booking)
	if err != nil {
		return nil, err
	}

	mu := s.slotMutex(slotKey(booking.ExamDate, shift.ShiftID, booking.ExamStartHour))
	mu.Lock()
	defer mu.Unlock()

	check, err := s.capacity.Check(ctx, booking.ExamDate, shift, booking.ExamStartHour,
		booking.CandidateCount, booking.BookingID, approvalStatuses)
	if err != nil {
		return nil, err
	}
	if check.Source == CapacitySourceNone {
		return nil, ErrConfigurationMissing
	}

	now := s.nowFn()
	updates := map[string]interface{}{
		"voucher_status": model.VoucherPending,
		"updated_by":     adminID,
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}

	if check.Overage > 0 {
		if !req.Force {
			return nil, &CapacityExceededError{Check: check}
		}
		snapshot, err := json.Marshal(check)
		if err != nil {
			return nil, err
		}
		updates["override_by"] = adminID
		updates["override_at"] = now
		updates["override_detail"] = string(snapshot)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, bookingID,
		[]model.BookingStatus{model.StatusPending}, model.StatusApproved, updates); err != nil {
		return nil, err
	}

	desc := "审核通过"
	if check.Overage > 0 {
		desc = fmt.Sprintf("强制审核通过（超容 %d 人）", check.Overage)
	}
	s.record(ctx, bookingID, model.HistoryApproved, desc, &adminID, check)
	if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyBookingApproved,
		"预约已通过审核",
		fmt.Sprintf("%s 的考试预约已通过，确认码 %s，请在截止日前完成考场凭证办理",
			DateKey(booking.ExamDate), booking.ConfirmationCode),
		&bookingID); err != nil {
		s.logger.Warn("审批通知投递失败", zap.String("booking_id", bookingID), zap.Error(err))
	}
	s.broadcast(ctx, "booking.approved", booking)

	return s.repo.Booking.GetByID(ctx, bookingID)
}

// Reject 审核驳回（必须说明理由）
func (s *BookingService) Reject(ctx context.Context, adminID, bookingID, reason string) error {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != model.StatusPending {
		return ErrIllegalTransition
	}

	err = s.repo.Booking.UpdateStatus(ctx, bookingID,
		[]model.BookingStatus{model.StatusPending}, model.StatusRejected,
		map[string]interface{}{"admin_notes": reason, "updated_by": adminID})
	if err != nil {
		return err
	}

	s.record(ctx, bookingID, model.HistoryRejected, reason, &adminID, nil)
	if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyBookingRejected,
		"预约被驳回",
		fmt.Sprintf("%s 的考试预约未通过审核：%s", DateKey(booking.ExamDate), reason),
		&bookingID); err != nil {
		s.logger.Warn("驳回通知投递失败", zap.String("booking_id", bookingID), zap.Error(err))
	}
	s.broadcast(ctx, "booking.rejected", booking)
	return nil
}

// ── 凭证办理 ──

// CompleteVoucher 用户标记凭证办理完成，等待管理员核验
func (s *BookingService) CompleteVoucher(ctx context.Context, userID, bookingID string) error {
	booking, err := s.getOwned(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if booking.Status != model.StatusApproved {
		return ErrIllegalTransition
	}
	if booking.VoucherStatus != model.VoucherPending {
		return ErrVoucherStateInvalid
	}

	err = s.repo.Booking.UpdateVoucherStatus(ctx, bookingID,
		[]model.VoucherStatus{model.VoucherPending}, model.VoucherUserCompleted,
		map[string]interface{}{"voucher_updated_at": s.nowFn(), "updated_by": userID})
	if err != nil {
		return err
	}

	s.record(ctx, bookingID, model.HistoryVoucherCompleted, "用户标记凭证已办理", &userID, nil)
	s.notifier.NotifyAdmins(ctx, model.NotifyVoucherCompleted,
		"凭证待核验",
		fmt.Sprintf("部门 %s 已办理 %s 考试的凭证，等待核验",
			booking.DepartmentID, DateKey(booking.ExamDate)),
		&bookingID)
	return nil
}

// VerifyVoucher 管理员核验凭证
// 核验不通过时退回 pending，用户可重新办理
func (s *BookingService) VerifyVoucher(ctx context.Context, adminID, bookingID string, req *dto.VerifyVoucherRequest) error {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != model.StatusApproved {
		return ErrIllegalTransition
	}
	if booking.VoucherStatus != model.VoucherUserCompleted {
		return ErrVoucherStateInvalid
	}

	now := s.nowFn()
	if req.Approve {
		err = s.repo.Booking.UpdateVoucherStatus(ctx, bookingID,
			[]model.VoucherStatus{model.VoucherUserCompleted}, model.VoucherVerified,
			map[string]interface{}{"voucher_updated_at": now, "updated_by": adminID})
		if err != nil {
			return err
		}
		s.record(ctx, bookingID, model.HistoryVoucherVerified, "凭证核验通过", &adminID, nil)
		if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyVoucherVerified,
			"凭证核验通过",
			fmt.Sprintf("%s 考试的凭证已核验通过", DateKey(booking.ExamDate)),
			&bookingID); err != nil {
			s.logger.Warn("核验通知投递失败", zap.String("booking_id", bookingID), zap.Error(err))
		}
		return nil
	}

	note := "凭证核验不通过"
	if req.Note != nil {
		note = *req.Note
	}
	err = s.repo.Booking.UpdateVoucherStatus(ctx, bookingID,
		[]model.VoucherStatus{model.VoucherUserCompleted}, model.VoucherPending,
		map[string]interface{}{"voucher_updated_at": now, "updated_by": adminID})
	if err != nil {
		return err
	}
	s.record(ctx, bookingID, model.HistoryVoucherRejected, note, &adminID, nil)
	if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyVoucherRejected,
		"凭证核验不通过",
		fmt.Sprintf("%s 考试的凭证核验未通过：%s，请重新办理", DateKey(booking.ExamDate), note),
		&bookingID); err != nil {
		s.logger.Warn("核验通知投递失败", zap.String("booking_id", bookingID), zap.Error(err))
	}
	return nil
}

// AdminCompleteVoucher 管理员代办凭证并直接核验通过
// 用于线下已办妥、系统内未走完流程的情况；已核验的凭证不可重复操作
func (s *BookingService) AdminCompleteVoucher(ctx context.Context, adminID, bookingID string, note *string) error {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != model.StatusApproved {
		return ErrIllegalTransition
	}
	if booking.VoucherStatus == model.VoucherVerified {
		return ErrVoucherStateInvalid
	}

	err = s.repo.Booking.UpdateVoucherStatus(ctx, bookingID,
		[]model.VoucherStatus{model.VoucherPending, model.VoucherUserCompleted}, model.VoucherVerified,
		map[string]interface{}{"voucher_updated_at": s.nowFn(), "updated_by": adminID})
	if err != nil {
		return err
	}

	desc := "管理员代办凭证并核验通过"
	if note != nil {
		desc = *note
	}
	s.record(ctx, bookingID, model.HistoryVoucherVerified, desc, &adminID, nil)
	if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyVoucherVerified,
		"凭证已由管理员代办",
		fmt.Sprintf("%s 考试的凭证已由管理员代办并核验通过", DateKey(booking.ExamDate)),
		&bookingID); err != nil {
		s.logger.Warn("核验通知投递失败", zap.String("booking_id", bookingID), zap.Error(err))
	}
	return nil
}

// ── 查询 ──

// GetByID 查询预约详情；非管理员只能查看本人预约
func (s *BookingService) GetByID(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*model.Booking, error) {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != requesterID {
		return nil, ErrNotBookingOwner
	}
	return booking, nil
}

// GetHistory 查询预约审计历史
func (s *BookingService) GetHistory(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]model.BookingHistory, error) {
	if _, err := s.GetByID(ctx, bookingID, requesterID, isAdmin); err != nil {
		return nil, err
	}
	return s.repo.BookingHistory.ListByBooking(ctx, bookingID)
}

// ListByDepartment 查询部门的全部预约记录
func (s *BookingService) ListByDepartment(ctx context.Context, departmentID string) ([]model.Booking, error) {
	return s.repo.Booking.ListByDepartment(ctx, departmentID)
}

// List 管理员分页查询
func (s *BookingService) List(ctx context.Context, q *dto.ListBookingsQuery) ([]model.Booking, int64, error) {
	var status *model.BookingStatus
	if q.Status != "" {
		st := model.BookingStatus(q.Status)
		status = &st
	}
	var from, to *time.Time
	if q.DateFrom != "" {
		d, err := time.Parse("2006-01-02", q.DateFrom)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		from = &d
	}
	if q.DateTo != "" {
		d, err := time.Parse("2006-01-02", q.DateTo)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		to = &d
	}
	offset := (q.Page - 1) * q.PageSize
	return s.repo.Booking.List(ctx, status, from, to, offset, q.PageSize)
}

// ── 后台任务 ──

// ExpireOverdueHolds 将到期未提交的占位置为 expired
// CAS 失败说明该预约刚被提交或取消，跳过即可，任务可安全重入
func (s *BookingService) ExpireOverdueHolds(ctx context.Context) (int, error) {
	overdue, err := s.repo.Booking.ListOverdueHolding(ctx, s.nowFn())
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range overdue {
		booking := &overdue[i]
		err := s.repo.Booking.UpdateStatus(ctx, booking.BookingID,
			[]model.BookingStatus{model.StatusHolding}, model.StatusExpired,
			map[string]interface{}{"hold_expires_at": nil})
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			continue
		}
		if err != nil {
			s.logger.Warn("占位过期落库失败", zap.String("booking_id", booking.BookingID), zap.Error(err))
			continue
		}
		count++
		s.record(ctx, booking.BookingID, model.HistoryHoldExpired, "占位到期自动失效", nil, nil)
		if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyBookingExpired,
			"占位已过期",
			fmt.Sprintf("%s 的考试占位超时未提交，已自动失效", DateKey(booking.ExamDate)),
			&booking.BookingID); err != nil {
			s.logger.Warn("过期通知投递失败", zap.String("booking_id", booking.BookingID), zap.Error(err))
		}
		s.broadcast(ctx, "booking.hold_expired", booking)
	}
	return count, nil
}

// SendVoucherReminders 考前 N 天提醒未核验凭证的预约
// reminder_sent_at 作为数据库侧幂等标记，多实例同日重跑只会发出一次
func (s *BookingService) SendVoucherReminders(ctx context.Context) (int, error) {
	target := DateOf(s.nowFn().In(s.loc)).AddDate(0, 0, s.cfg.ReminderDaysBefore)
	bookings, err := s.repo.Booking.ListApprovedByExamDate(ctx, target)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range bookings {
		booking := &bookings[i]
		if booking.VoucherStatus == model.VoucherVerified || booking.ReminderSentAt != nil {
			continue
		}
		err := s.repo.Booking.MarkReminderSent(ctx, booking.BookingID, s.nowFn())
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			continue // 另一实例已发送
		}
		if err != nil {
			s.logger.Warn("提醒标记写入失败", zap.String("booking_id", booking.BookingID), zap.Error(err))
			continue
		}
		sent++
		if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyVoucherReminder,
			"凭证办理提醒",
			fmt.Sprintf("%s 的考试还有 %d 天，凭证尚未核验完成，请尽快办理",
				DateKey(booking.ExamDate), s.cfg.ReminderDaysBefore),
			&booking.BookingID); err != nil {
			s.logger.Warn("提醒通知投递失败", zap.String("booking_id", booking.BookingID), zap.Error(err))
		}
		s.notifier.NotifyAdmins(ctx, model.NotifyVoucherReminder,
			"凭证核验提醒",
			fmt.Sprintf("部门 %s 的 %s 考试还有 %d 天，凭证尚未核验",
				booking.DepartmentID, DateKey(booking.ExamDate), s.cfg.ReminderDaysBefore),
			&booking.BookingID)
	}
	return sent, nil
}

// EnforceVoucherDeadlines 截止日中午后取消明日考试中凭证未核验的预约
func (s *BookingService) EnforceVoucherDeadlines(ctx context.Context) (int, error) {
	target := DateOf(s.nowFn().In(s.loc)).AddDate(0, 0, 1)
	bookings, err := s.repo.Booking.ListApprovedByExamDate(ctx, target)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range bookings {
		booking := &bookings[i]
		if booking.VoucherStatus == model.VoucherVerified {
			continue
		}
		err := s.repo.Booking.UpdateStatus(ctx, booking.BookingID,
			[]model.BookingStatus{model.StatusApproved}, model.StatusCancelled,
			map[string]interface{}{
				"voucher_status":     model.VoucherCancelled,
				"voucher_updated_at": s.nowFn(),
			})
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			continue
		}
		if err != nil {
			s.logger.Warn("截止取消落库失败", zap.String("booking_id", booking.BookingID), zap.Error(err))
			continue
		}
		count++
		s.record(ctx, booking.BookingID, model.HistoryVoucherAutoCancelled,
			"凭证未在截止前核验，预约自动取消", nil, nil)
		if err := s.notifier.Notify(ctx, booking.UserID, model.NotifyDeadlineCancelled,
			"预约已自动取消",
			fmt.Sprintf("%s 的考试凭证未在截止前完成核验，预约已取消", DateKey(booking.ExamDate)),
			&booking.BookingID); err != nil {
			s.logger.Warn("截止通知投递失败", zap.String("booking_id", booking.BookingID), zap.Error(err))
		}
		s.notifier.NotifyAdmins(ctx, model.NotifyDeadlineCancelled,
			"预约因凭证超期被取消",
			fmt.Sprintf("部门 %s 的 %s 考试预约因凭证未核验被自动取消",
				booking.DepartmentID, DateKey(booking.ExamDate)),
			&booking.BookingID)
		s.broadcast(ctx, "booking.deadline_cancelled", booking)
	}
	return count, nil
}

// ── 内部辅助 ──

func (s *BookingService) get(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) getOwned(ctx context.Context, bookingID, userID string) (*model.Booking, error) {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	return booking, nil
}

func (s *BookingService) shiftOf(ctx context.Context, booking *model.Booking) (*model.Shift, error) {
	if booking.Shift != nil {
		return booking.Shift, nil
	}
	if booking.ShiftID == nil {
		return nil, ErrShiftNotFound
	}
	shift, err := s.repo.Shift.GetByID(ctx, *booking.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return shift, nil
}

// record 写入审计历史；失败只记日志，不影响主流程
func (s *BookingService) record(ctx context.Context, bookingID, eventType, description string, operatorID *string, metadata interface{}) {
	var meta *string
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			str := string(raw)
			meta = &str
		}
	}
	entry := &model.BookingHistory{
		BookingID:   bookingID,
		EventType:   eventType,
		Description: description,
		OperatorID:  operatorID,
		Metadata:    meta,
	}
	if err := s.repo.BookingHistory.Create(ctx, entry); err != nil {
		s.logger.Warn("审计历史写入失败",
			zap.String("booking_id", bookingID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// broadcast 广播预约事件摘要；失败只记日志
func (s *BookingService) broadcast(ctx context.Context, event string, booking *model.Booking) {
	if s.broadcaster == nil {
		return
	}
	payload := map[string]interface{}{
		"booking_id":    booking.BookingID,
		"department_id": booking.DepartmentID,
		"exam_date":     DateKey(booking.ExamDate),
	}
	if err := s.broadcaster.PublishBookingEvent(ctx, event, payload); err != nil {
		s.logger.Warn("事件广播失败", zap.String("event", event), zap.Error(err))
	}
}

func (s *BookingService) slotMutex(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func slotKey(date time.Time, shiftID string, hour *int) string {
	h := "shift"
	if hour != nil {
		h = strconv.Itoa(*hour)
	}
	return DateKey(date) + "|" + shiftID + "|" + h
}

// confirmationCode 生成 8 位确认码
func confirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
}
