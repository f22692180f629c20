package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/model"
	"examhub/backend/internal/repository"
)

type bookingFixture struct {
	svc           *BookingService
	bookings      *mockBookingRepo
	history       *mockHistoryRepo
	notifications *mockNotificationRepo
	shifts        *mockShiftRepo
	capRepo       *mockCapacityRepo
	closed        *mockClosedDateRepo
	broadcaster   *mockBroadcaster
	now           time.Time
}

// 基准时刻：2025-03-10（周一）上午九点
var bookingTestNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setupTestBookingService() *bookingFixture {
	shifts := newMockShiftRepo()
	capRepo := newMockCapacityRepo()
	bookings := newMockBookingRepo()
	history := newMockHistoryRepo()
	notifications := newMockNotificationRepo()
	closed := newMockClosedDateRepo()
	repo := &repository.Repository{
		Shift:          shifts,
		ClosedDate:     closed,
		Capacity:       capRepo,
		Booking:        bookings,
		BookingHistory: history,
		Notification:   notifications,
	}

	cfg := testBookingConfig()
	calendar := NewCalendarService(closed)
	capacity := NewCapacityService(repo, cfg, zap.NewNop())
	notifier := NewNotificationService(repo, cfg, zap.NewNop())
	broadcaster := &mockBroadcaster{}

	f := &bookingFixture{
		bookings:      bookings,
		history:       history,
		notifications: notifications,
		shifts:        shifts,
		capRepo:       capRepo,
		closed:        closed,
		broadcaster:   broadcaster,
		now:           bookingTestNow,
	}
	f.svc = NewBookingService(repo, cfg, time.UTC, calendar, capacity, notifier, broadcaster, zap.NewNop())
	f.svc.nowFn = func() time.Time { return f.now }

	_ = shifts.Create(context.Background(), morningShift())
	return f
}

func validHoldRequest() *dto.CreateHoldRequest {
	return &dto.CreateHoldRequest{
		DepartmentID:   "dept-a",
		CandidateCount: 30,
		CourseEndDate:  "2025-03-10",
		ExamDate:       "2025-03-24", // 课程结束后第 10 个工作日
		ShiftID:        "shift-morning",
		PreferredShift: model.ShiftMorning,
	}
}

// seedRoster 写入指定日期的场次排班：10 名监考员 → 生效容量 240
func (f *bookingFixture) seedRoster(date string) {
	d := testDate(date)
	f.capRepo.shiftRows[shiftCapKey(d, "shift-morning")] = &model.ShiftCapacity{
		Date: d, ShiftID: "shift-morning",
		TotalProctors: 10, ReserveProctors: 2, EffectiveCapacity: 240,
	}
}

// seedBooking 直接注入指定状态的预约
func (f *bookingFixture) seedBooking(id, dept, user string, count int, examDate string,
	status model.BookingStatus, voucher model.VoucherStatus) *model.Booking {
	b := &model.Booking{
		BookingID:        id,
		DepartmentID:     dept,
		UserID:           user,
		CandidateCount:   count,
		CourseEndDate:    testDate("2025-03-10"),
		ExamDate:         testDate(examDate),
		ShiftID:          strPtr("shift-morning"),
		Status:           status,
		ConfirmationCode: "TESTCODE",
		VoucherStatus:    voucher,
	}
	f.bookings.bookings[id] = b
	return b
}

// ── 占位 ──

func TestBookingService_CreateHold_Success(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	booking, err := f.svc.CreateHold(ctx, "user-a", validHoldRequest())
	if err != nil {
		t.Fatalf("CreateHold 应成功: %v", err)
	}
	if booking.Status != model.StatusHolding {
		t.Errorf("新占位状态应为 holding, 实际 %s", booking.Status)
	}
	if booking.HoldExpiresAt == nil || !booking.HoldExpiresAt.Equal(f.now.Add(15*time.Minute)) {
		t.Errorf("占位有效期应为 15 分钟后, 实际 %v", booking.HoldExpiresAt)
	}
	if len(booking.ConfirmationCode) != 8 {
		t.Errorf("确认码应为 8 位, 实际 %q", booking.ConfirmationCode)
	}

	types := f.history.eventTypes(booking.BookingID)
	if len(types) != 1 || types[0] != model.HistoryCreated {
		t.Errorf("应写入 created 审计事件, 实际 %v", types)
	}
	if len(f.broadcaster.events) != 1 || f.broadcaster.events[0] != "booking.hold_created" {
		t.Errorf("应广播 hold_created 事件, 实际 %v", f.broadcaster.events)
	}
}

func TestBookingService_CreateHold_DateValidation(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	// 工作日间隔不足
	req := validHoldRequest()
	req.ExamDate = "2025-03-21" // 仅 9 个工作日
	if _, err := f.svc.CreateHold(ctx, "user-a", req); !errors.Is(err, ErrDateTooEarly) {
		t.Errorf("间隔不足应返回 ErrDateTooEarly, 实际 %v", err)
	}

	// 周末
	req = validHoldRequest()
	req.ExamDate = "2025-03-29" // 周六
	if _, err := f.svc.CreateHold(ctx, "user-a", req); !errors.Is(err, ErrDateUnavailable) {
		t.Errorf("周末应返回 ErrDateUnavailable, 实际 %v", err)
	}

	// 闭馆日
	_ = f.closed.Create(ctx, &model.ClosedDate{Date: testDate("2025-03-26"), Reason: strPtr("校庆")})
	req = validHoldRequest()
	req.ExamDate = "2025-03-26"
	if _, err := f.svc.CreateHold(ctx, "user-a", req); !errors.Is(err, ErrDateUnavailable) {
		t.Errorf("闭馆日应返回 ErrDateUnavailable, 实际 %v", err)
	}

	// 非未来日期
	req = validHoldRequest()
	req.ExamDate = "2025-03-10"
	if _, err := f.svc.CreateHold(ctx, "user-a", req); !errors.Is(err, ErrDateUnavailable) {
		t.Errorf("当天不可预约, 实际 %v", err)
	}

	// 课程早已结束时间隔从今日起算，明天仍不可约
	req = validHoldRequest()
	req.CourseEndDate = "2024-03-11"
	req.ExamDate = "2025-03-11"
	if _, err := f.svc.CreateHold(ctx, "user-a", req); !errors.Is(err, ErrDateTooEarly) {
		t.Errorf("过往课程的间隔应从今日起算, 实际 %v", err)
	}
}

func TestBookingService_CreateHold_HourOutOfShift(t *testing.T) {
	f := setupTestBookingService()

	req := validHoldRequest()
	req.ExamStartHour = intPtr(13) // morning 场次为 8-12
	if _, err := f.svc.CreateHold(context.Background(), "user-a", req); !errors.Is(err, ErrHourOutOfShift) {
		t.Errorf("起始小时越界应返回 ErrHourOutOfShift, 实际 %v", err)
	}
}

func TestBookingService_CreateHold_ActiveBookingExists(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	if _, err := f.svc.CreateHold(ctx, "user-a", validHoldRequest()); err != nil {
		t.Fatalf("首次占位应成功: %v", err)
	}
	if _, err := f.svc.CreateHold(ctx, "user-a", validHoldRequest()); !errors.Is(err, ErrActiveBookingExists) {
		t.Errorf("同部门重复占位应返回 ErrActiveBookingExists, 实际 %v", err)
	}
}

func TestBookingService_CreateHold_InactiveShift(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	shift := afternoonShift()
	shift.IsActive = false
	_ = f.shifts.Create(ctx, shift)

	req := validHoldRequest()
	req.ShiftID = shift.ShiftID
	if _, err := f.svc.CreateHold(ctx, "user-a", req); !errors.Is(err, ErrShiftInactive) {
		t.Errorf("停用场次应返回 ErrShiftInactive, 实际 %v", err)
	}
}

// ── 提交与取消 ──

func TestBookingService_Submit_Success(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	booking, err := f.svc.CreateHold(ctx, "user-a", validHoldRequest())
	if err != nil {
		t.Fatalf("CreateHold 应成功: %v", err)
	}

	f.now = f.now.Add(5 * time.Minute)
	submitted, err := f.svc.Submit(ctx, "user-a", booking.BookingID, &dto.SubmitBookingRequest{})
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if submitted.Status != model.StatusPending {
		t.Errorf("提交后状态应为 pending, 实际 %s", submitted.Status)
	}
	if submitted.HoldExpiresAt != nil {
		t.Errorf("提交后应清空占位有效期")
	}
	if f.notifications.countByType(model.NotifyBookingSubmitted) != 1 {
		t.Errorf("应通知管理员待审核")
	}
}

func TestBookingService_Submit_AtExactExpiryInstant(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	booking, err := f.svc.CreateHold(ctx, "user-a", validHoldRequest())
	if err != nil {
		t.Fatalf("CreateHold 应成功: %v", err)
	}

	// 恰好到期的瞬间视为已过期
	f.now = *booking.HoldExpiresAt
	if _, err := f.svc.Submit(ctx, "user-a", booking.BookingID, nil); !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("到期瞬间提交应返回 ErrHoldExpired, 实际 %v", err)
	}

	// 过期状态先行落库
	stored := f.bookings.bookings[booking.BookingID]
	if stored.Status != model.StatusExpired {
		t.Errorf("过期状态应已落库, 实际 %s", stored.Status)
	}
	if stored.HoldExpiresAt != nil {
		t.Errorf("过期后应清空占位有效期")
	}
}

func TestBookingService_Submit_NotOwner(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	booking, _ := f.svc.CreateHold(ctx, "user-a", validHoldRequest())
	if _, err := f.svc.Submit(ctx, "user-b", booking.BookingID, nil); !errors.Is(err, ErrNotBookingOwner) {
		t.Errorf("他人预约应返回 ErrNotBookingOwner, 实际 %v", err)
	}
}

func TestBookingService_Cancel_ThenRebook(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	booking, _ := f.svc.CreateHold(ctx, "user-a", validHoldRequest())
	if err := f.svc.Cancel(ctx, "user-a", booking.BookingID); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}
	if f.bookings.bookings[booking.BookingID].Status != model.StatusCancelled {
		t.Errorf("取消后状态应为 cancelled")
	}

	// 取消释放部门名额，可重新占位
	if _, err := f.svc.CreateHold(ctx, "user-a", validHoldRequest()); err != nil {
		t.Errorf("取消后重新占位应成功: %v", err)
	}
}

func TestBookingService_Cancel_OnlyHolding(t *testing.T) {
	f := setupTestBookingService()
	f.seedBooking("bk-p", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	if err := f.svc.Cancel(context.Background(), "user-a", "bk-p"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("pending 预约不可由用户取消, 实际 %v", err)
	}
}

// ── 审批 ──

func TestBookingService_Approve_Success(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedRoster("2025-03-24")
	f.seedBooking("bk-p", "dept-a", "user-a", 100, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	approved, err := f.svc.Approve(ctx, "admin-001", "bk-p", &dto.ApproveBookingRequest{})
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("审批后状态应为 approved, 实际 %s", approved.Status)
	}
	if approved.VoucherStatus != model.VoucherPending {
		t.Errorf("审批后凭证子状态应为 pending, 实际 %s", approved.VoucherStatus)
	}
	if approved.OverrideBy != nil {
		t.Errorf("容量内审批不应留存超容记录")
	}
	if f.notifications.countByType(model.NotifyBookingApproved) != 1 {
		t.Errorf("应通知预约人审批通过")
	}
}

func TestBookingService_Approve_CapacityExceeded(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedRoster("2025-03-24")

	// 生效容量 240，已占用 200，再审批 50 将超容 10
	f.seedBooking("bk-a", "dept-b", "user-b", 200, "2025-03-24",
		model.StatusApproved, model.VoucherPending)
	f.seedBooking("bk-p", "dept-a", "user-a", 50, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	_, err := f.svc.Approve(ctx, "admin-001", "bk-p", &dto.ApproveBookingRequest{})
	var exceeded *CapacityExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("超容应返回 CapacityExceededError, 实际 %v", err)
	}
	if exceeded.Check.Overage != 10 {
		t.Errorf("超容人数应为 10, 实际 %d", exceeded.Check.Overage)
	}
	if exceeded.Check.Remaining != 40 {
		t.Errorf("剩余容量应为 40, 实际 %d", exceeded.Check.Remaining)
	}
	if f.bookings.bookings["bk-p"].Status != model.StatusPending {
		t.Errorf("审批被拒后状态应保持 pending")
	}
}

func TestBookingService_Approve_ForceOverride(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedRoster("2025-03-24")
	f.seedBooking("bk-a", "dept-b", "user-b", 200, "2025-03-24",
		model.StatusApproved, model.VoucherPending)
	f.seedBooking("bk-p", "dept-a", "user-a", 50, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	approved, err := f.svc.Approve(ctx, "admin-001", "bk-p",
		&dto.ApproveBookingRequest{Force: true, AdminNotes: strPtr("监考办已协调加派")})
	if err != nil {
		t.Fatalf("强制审批应成功: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("强制审批后状态应为 approved")
	}
	if approved.OverrideBy == nil || *approved.OverrideBy != "admin-001" {
		t.Errorf("应记录超容审批操作人, 实际 %v", approved.OverrideBy)
	}
	if approved.OverrideAt == nil || approved.OverrideDetail == nil {
		t.Errorf("应留存超容核算快照")
	}
	if approved.AdminNotes == nil || *approved.AdminNotes != "监考办已协调加派" {
		t.Errorf("应保存审批备注")
	}
}

func TestBookingService_Approve_ConfigurationMissing(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	// 无排班且场次默认容量为 0
	shift := f.shifts.shifts["shift-morning"]
	shift.MaxCandidates = 0
	f.seedBooking("bk-p", "dept-a", "user-a", 50, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	_, err := f.svc.Approve(ctx, "admin-001", "bk-p", &dto.ApproveBookingRequest{})
	if !errors.Is(err, ErrConfigurationMissing) {
		t.Errorf("缺少容量配置应返回 ErrConfigurationMissing, 实际 %v", err)
	}
}

func TestBookingService_Approve_OnlyPending(t *testing.T) {
	f := setupTestBookingService()
	f.seedRoster("2025-03-24")
	f.seedBooking("bk-h", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusHolding, model.VoucherPending)

	_, err := f.svc.Approve(context.Background(), "admin-001", "bk-h", &dto.ApproveBookingRequest{})
	if !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("非 pending 预约审批应返回 ErrIllegalTransition, 实际 %v", err)
	}
}

func TestBookingService_Reject(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedBooking("bk-p", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	if err := f.svc.Reject(ctx, "admin-001", "bk-p", "材料不全"); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}
	stored := f.bookings.bookings["bk-p"]
	if stored.Status != model.StatusRejected {
		t.Errorf("驳回后状态应为 rejected, 实际 %s", stored.Status)
	}
	if stored.AdminNotes == nil || *stored.AdminNotes != "材料不全" {
		t.Errorf("驳回理由应落库")
	}
	if f.notifications.countByType(model.NotifyBookingRejected) != 1 {
		t.Errorf("应通知预约人驳回")
	}
}

// ── 凭证办理 ──

func TestBookingService_VoucherFlow(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedBooking("bk-a", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusApproved, model.VoucherPending)

	// 用户办理完成
	if err := f.svc.CompleteVoucher(ctx, "user-a", "bk-a"); err != nil {
		t.Fatalf("CompleteVoucher 应成功: %v", err)
	}
	if f.bookings.bookings["bk-a"].VoucherStatus != model.VoucherUserCompleted {
		t.Errorf("办理后凭证状态应为 user_completed")
	}

	// 重复办理被拒
	if err := f.svc.CompleteVoucher(ctx, "user-a", "bk-a"); !errors.Is(err, ErrVoucherStateInvalid) {
		t.Errorf("重复办理应返回 ErrVoucherStateInvalid, 实际 %v", err)
	}

	// 核验不通过退回 pending
	err := f.svc.VerifyVoucher(ctx, "admin-001", "bk-a",
		&dto.VerifyVoucherRequest{Approve: false, Note: strPtr("照片不清晰")})
	if err != nil {
		t.Fatalf("VerifyVoucher 应成功: %v", err)
	}
	if f.bookings.bookings["bk-a"].VoucherStatus != model.VoucherPending {
		t.Errorf("核验不通过应退回 pending")
	}

	// 重新办理并核验通过
	if err := f.svc.CompleteVoucher(ctx, "user-a", "bk-a"); err != nil {
		t.Fatalf("重新办理应成功: %v", err)
	}
	err = f.svc.VerifyVoucher(ctx, "admin-001", "bk-a", &dto.VerifyVoucherRequest{Approve: true})
	if err != nil {
		t.Fatalf("核验通过应成功: %v", err)
	}
	if f.bookings.bookings["bk-a"].VoucherStatus != model.VoucherVerified {
		t.Errorf("核验通过后凭证状态应为 verified")
	}
}

func TestBookingService_AdminCompleteVoucher(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedBooking("bk-a", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusApproved, model.VoucherPending)

	// 管理员代办：跳过用户办理直接核验通过
	if err := f.svc.AdminCompleteVoucher(ctx, "admin-001", "bk-a", strPtr("部门线下已办妥")); err != nil {
		t.Fatalf("AdminCompleteVoucher 应成功: %v", err)
	}
	if f.bookings.bookings["bk-a"].VoucherStatus != model.VoucherVerified {
		t.Errorf("代办后凭证状态应为 verified")
	}

	// 已核验的凭证不可重复代办
	if err := f.svc.AdminCompleteVoucher(ctx, "admin-001", "bk-a", nil); !errors.Is(err, ErrVoucherStateInvalid) {
		t.Errorf("重复代办应返回 ErrVoucherStateInvalid, 实际 %v", err)
	}
}

func TestBookingService_CompleteVoucher_RequiresApproved(t *testing.T) {
	f := setupTestBookingService()
	f.seedBooking("bk-p", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	err := f.svc.CompleteVoucher(context.Background(), "user-a", "bk-p")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("非 approved 预约办理凭证应返回 ErrIllegalTransition, 实际 %v", err)
	}
}

// ── 查询权限 ──

func TestBookingService_GetByID_Permission(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()
	f.seedBooking("bk-a", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusPending, model.VoucherPending)

	if _, err := f.svc.GetByID(ctx, "bk-a", "user-a", false); err != nil {
		t.Errorf("本人查询应成功: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, "bk-a", "user-b", false); !errors.Is(err, ErrNotBookingOwner) {
		t.Errorf("他人查询应返回 ErrNotBookingOwner, 实际 %v", err)
	}
	if _, err := f.svc.GetByID(ctx, "bk-a", "user-b", true); err != nil {
		t.Errorf("管理员查询应成功: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, "bk-missing", "user-a", false); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("不存在的预约应返回 ErrBookingNotFound, 实际 %v", err)
	}
}

// ── 后台任务 ──

func TestBookingService_ExpireOverdueHolds(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	overdue := f.seedBooking("bk-1", "dept-a", "user-a", 30, "2025-03-24",
		model.StatusHolding, model.VoucherPending)
	expired := f.now.Add(-time.Minute)
	overdue.HoldExpiresAt = &expired

	fresh := f.seedBooking("bk-2", "dept-b", "user-b", 30, "2025-03-24",
		model.StatusHolding, model.VoucherPending)
	future := f.now.Add(10 * time.Minute)
	fresh.HoldExpiresAt = &future

	count, err := f.svc.ExpireOverdueHolds(ctx)
	if err != nil {
		t.Fatalf("ExpireOverdueHolds 应成功: %v", err)
	}
	if count != 1 {
		t.Errorf("应清理 1 条过期占位, 实际 %d", count)
	}
	if f.bookings.bookings["bk-1"].Status != model.StatusExpired {
		t.Errorf("过期占位状态应为 expired")
	}
	if f.bookings.bookings["bk-2"].Status != model.StatusHolding {
		t.Errorf("未到期占位不应被清理")
	}
	if f.notifications.countByType(model.NotifyBookingExpired) != 1 {
		t.Errorf("应通知预约人占位过期")
	}

	// 重入安全：再跑一次不再清理
	count, err = f.svc.ExpireOverdueHolds(ctx)
	if err != nil || count != 0 {
		t.Errorf("重复执行应无新清理, 实际 count=%d err=%v", count, err)
	}
}

func TestBookingService_SendVoucherReminders(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	// 今天 + 4 天 = 2025-03-14
	f.seedBooking("bk-due", "dept-a", "user-a", 30, "2025-03-14",
		model.StatusApproved, model.VoucherPending)
	f.seedBooking("bk-done", "dept-b", "user-b", 30, "2025-03-14",
		model.StatusApproved, model.VoucherVerified)
	f.seedBooking("bk-far", "dept-c", "user-c", 30, "2025-03-21",
		model.StatusApproved, model.VoucherPending)

	sent, err := f.svc.SendVoucherReminders(ctx)
	if err != nil {
		t.Fatalf("SendVoucherReminders 应成功: %v", err)
	}
	if sent != 1 {
		t.Errorf("应只提醒 1 条未核验的目标日预约, 实际 %d", sent)
	}
	if f.bookings.bookings["bk-due"].ReminderSentAt == nil {
		t.Errorf("提醒幂等标记应落库")
	}
	// 用户与管理员各收一条（配置中只有一名管理员）
	if f.notifications.countByType(model.NotifyVoucherReminder) != 2 {
		t.Errorf("提醒应同时通知用户与管理员, 实际 %d 条",
			f.notifications.countByType(model.NotifyVoucherReminder))
	}

	// 幂等：同日重跑不再发送
	sent, err = f.svc.SendVoucherReminders(ctx)
	if err != nil || sent != 0 {
		t.Errorf("重复执行不应再发送, 实际 sent=%d err=%v", sent, err)
	}
}

func TestBookingService_EnforceVoucherDeadlines(t *testing.T) {
	f := setupTestBookingService()
	ctx := context.Background()

	// 明日 2025-03-11 考试
	f.seedBooking("bk-late", "dept-a", "user-a", 30, "2025-03-11",
		model.StatusApproved, model.VoucherPending)
	f.seedBooking("bk-ok", "dept-b", "user-b", 30, "2025-03-11",
		model.StatusApproved, model.VoucherVerified)
	f.seedBooking("bk-far", "dept-c", "user-c", 30, "2025-03-14",
		model.StatusApproved, model.VoucherPending)

	count, err := f.svc.EnforceVoucherDeadlines(ctx)
	if err != nil {
		t.Fatalf("EnforceVoucherDeadlines 应成功: %v", err)
	}
	if count != 1 {
		t.Errorf("应只取消 1 条未核验的明日预约, 实际 %d", count)
	}

	late := f.bookings.bookings["bk-late"]
	if late.Status != model.StatusCancelled || late.VoucherStatus != model.VoucherCancelled {
		t.Errorf("超期预约应为 cancelled/cancelled, 实际 %s/%s", late.Status, late.VoucherStatus)
	}
	if f.bookings.bookings["bk-ok"].Status != model.StatusApproved {
		t.Errorf("已核验预约不应被取消")
	}
	if f.bookings.bookings["bk-far"].Status != model.StatusApproved {
		t.Errorf("非明日预约不应被取消")
	}
	// 用户与管理员各收到一条
	if f.notifications.countByType(model.NotifyDeadlineCancelled) != 2 {
		t.Errorf("应通知用户与管理员, 实际 %d 条", f.notifications.countByType(model.NotifyDeadlineCancelled))
	}
}
