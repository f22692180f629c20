package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"examhub/backend/config"
	"examhub/backend/internal/model"
	pkgerrors "examhub/backend/pkg/errors"
)

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = "shift-" + shift.Name
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetByName(_ context.Context, name string) (*model.Shift, error) {
	for _, s := range m.shifts {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, includeInactive bool) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if !includeInactive && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	// 按开始时间排序，与真实仓储保持一致
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartHour < result[i].StartHour {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	s, ok := m.shifts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["start_hour"]; ok {
		s.StartHour = v.(int)
	}
	if v, ok := updates["end_hour"]; ok {
		s.EndHour = v.(int)
	}
	if v, ok := updates["max_candidates"]; ok {
		s.MaxCandidates = v.(int)
	}
	if v, ok := updates["is_active"]; ok {
		s.IsActive = v.(bool)
	}
	return nil
}

// ── Mock ClosedDateRepository ──

type mockClosedDateRepo struct {
	dates map[string]*model.ClosedDate // DateKey → 记录
}

func newMockClosedDateRepo() *mockClosedDateRepo {
	return &mockClosedDateRepo{dates: make(map[string]*model.ClosedDate)}
}

func (m *mockClosedDateRepo) Create(_ context.Context, cd *model.ClosedDate) error {
	if cd.ClosedDateID == "" {
		cd.ClosedDateID = "cd-" + DateKey(cd.Date)
	}
	m.dates[DateKey(cd.Date)] = cd
	return nil
}

func (m *mockClosedDateRepo) GetByDate(_ context.Context, date time.Time) (*model.ClosedDate, error) {
	if cd, ok := m.dates[DateKey(date)]; ok {
		return cd, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClosedDateRepo) ListRange(_ context.Context, from, to time.Time) ([]model.ClosedDate, error) {
	var result []model.ClosedDate
	for _, cd := range m.dates {
		if !cd.Date.Before(from) && !cd.Date.After(to) {
			result = append(result, *cd)
		}
	}
	return result, nil
}

func (m *mockClosedDateRepo) Delete(_ context.Context, id string) error {
	for k, cd := range m.dates {
		if cd.ClosedDateID == id {
			delete(m.dates, k)
			return nil
		}
	}
	return nil
}

// ── Mock CapacityRepository ──

type mockCapacityRepo struct {
	shiftRows map[string]*model.ShiftCapacity // DateKey|shiftID
	hourRows  map[string]*model.HourCapacity  // DateKey|hour
}

func newMockCapacityRepo() *mockCapacityRepo {
	return &mockCapacityRepo{
		shiftRows: make(map[string]*model.ShiftCapacity),
		hourRows:  make(map[string]*model.HourCapacity),
	}
}

func shiftCapKey(date time.Time, shiftID string) string {
	return DateKey(date) + "|" + shiftID
}

func hourCapKey(date time.Time, hour int) string {
	return fmt.Sprintf("%s|%d", DateKey(date), hour)
}

func (m *mockCapacityRepo) GetShift(_ context.Context, date time.Time, shiftID string) (*model.ShiftCapacity, error) {
	if row, ok := m.shiftRows[shiftCapKey(date, shiftID)]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCapacityRepo) GetHour(_ context.Context, date time.Time, hour int) (*model.HourCapacity, error) {
	if row, ok := m.hourRows[hourCapKey(date, hour)]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCapacityRepo) ListShiftRange(_ context.Context, from, to time.Time) ([]model.ShiftCapacity, error) {
	var result []model.ShiftCapacity
	for _, row := range m.shiftRows {
		if !row.Date.Before(from) && !row.Date.After(to) {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (m *mockCapacityRepo) ListHourRange(_ context.Context, from, to time.Time) ([]model.HourCapacity, error) {
	var result []model.HourCapacity
	for _, row := range m.hourRows {
		if !row.Date.Before(from) && !row.Date.After(to) {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (m *mockCapacityRepo) ReplaceRange(_ context.Context, from, to time.Time, shiftRows []model.ShiftCapacity, hourRows []model.HourCapacity) error {
	for k, row := range m.shiftRows {
		if !row.Date.Before(from) && !row.Date.After(to) {
			delete(m.shiftRows, k)
		}
	}
	for k, row := range m.hourRows {
		if !row.Date.Before(from) && !row.Date.After(to) {
			delete(m.hourRows, k)
		}
	}
	for i := range shiftRows {
		row := shiftRows[i]
		m.shiftRows[shiftCapKey(row.Date, row.ShiftID)] = &row
	}
	for i := range hourRows {
		row := hourRows[i]
		m.hourRows[hourCapKey(row.Date, row.Hour)] = &row
	}
	return nil
}

// ── Mock BookingRepository ──

type mockBookingRepo struct {
	bookings map[string]*model.Booking
	seq      int
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	for _, b := range m.bookings {
		if b.DepartmentID == booking.DepartmentID && !b.Status.IsTerminal() {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if booking.BookingID == "" {
		booking.BookingID = fmt.Sprintf("bk-%03d", m.seq)
	}
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) GetActiveByDepartment(_ context.Context, departmentID string) (*model.Booking, error) {
	for _, b := range m.bookings {
		if b.DepartmentID == departmentID && !b.Status.IsTerminal() {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id string, from []model.BookingStatus, to model.BookingStatus, updates map[string]interface{}) error {
	b, ok := m.bookings[id]
	if !ok {
		return pkgerrors.ErrStatusConflict
	}
	matched := false
	for _, f := range from {
		if b.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return pkgerrors.ErrStatusConflict
	}
	b.Status = to
	applyBookingUpdates(b, updates)
	return nil
}

func (m *mockBookingRepo) UpdateVoucherStatus(_ context.Context, id string, from []model.VoucherStatus, to model.VoucherStatus, updates map[string]interface{}) error {
	b, ok := m.bookings[id]
	if !ok {
		return pkgerrors.ErrStatusConflict
	}
	matched := false
	for _, f := range from {
		if b.VoucherStatus == f {
			matched = true
			break
		}
	}
	if !matched {
		return pkgerrors.ErrStatusConflict
	}
	b.VoucherStatus = to
	applyBookingUpdates(b, updates)
	return nil
}

func (m *mockBookingRepo) MarkReminderSent(_ context.Context, id string, sentAt time.Time) error {
	b, ok := m.bookings[id]
	if !ok || b.ReminderSentAt != nil {
		return pkgerrors.ErrStatusConflict
	}
	b.ReminderSentAt = &sentAt
	return nil
}

func (m *mockBookingRepo) ListByDepartment(_ context.Context, departmentID string) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.DepartmentID == departmentID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingRepo) List(_ context.Context, status *model.BookingStatus, from, to *time.Time, offset, limit int) ([]model.Booking, int64, error) {
	var all []model.Booking
	for _, b := range m.bookings {
		if status != nil && b.Status != *status {
			continue
		}
		if from != nil && b.ExamDate.Before(*from) {
			continue
		}
		if to != nil && b.ExamDate.After(*to) {
			continue
		}
		all = append(all, *b)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockBookingRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if !b.ExamDate.Before(from) && !b.ExamDate.After(to) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingRepo) ListOverdueHolding(_ context.Context, now time.Time) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.Status == model.StatusHolding && b.HoldExpiresAt != nil && !b.HoldExpiresAt.After(now) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingRepo) ListApprovedByExamDate(_ context.Context, date time.Time) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.Status == model.StatusApproved && DateKey(b.ExamDate) == DateKey(date) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingRepo) SumCandidates(_ context.Context, date time.Time, shiftID string, hour *int, statuses []model.BookingStatus, excludeID string) (int, error) {
	sum := 0
	for _, b := range m.bookings {
		if DateKey(b.ExamDate) != DateKey(date) {
			continue
		}
		if b.ShiftID == nil || *b.ShiftID != shiftID {
			continue
		}
		if hour != nil && b.ExamStartHour != nil && *b.ExamStartHour != *hour {
			continue
		}
		if excludeID != "" && b.BookingID == excludeID {
			continue
		}
		matched := false
		for _, st := range statuses {
			if b.Status == st {
				matched = true
				break
			}
		}
		if matched {
			sum += b.CandidateCount
		}
	}
	return sum, nil
}

// applyBookingUpdates 模拟条件更新附带的字段写入
func applyBookingUpdates(b *model.Booking, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "hold_expires_at":
			if v == nil {
				b.HoldExpiresAt = nil
			} else if t, ok := v.(time.Time); ok {
				b.HoldExpiresAt = &t
			}
		case "notes":
			s := v.(string)
			b.Notes = &s
		case "admin_notes":
			s := v.(string)
			b.AdminNotes = &s
		case "voucher_status":
			b.VoucherStatus = v.(model.VoucherStatus)
		case "voucher_updated_at":
			t := v.(time.Time)
			b.VoucherUpdatedAt = &t
		case "override_by":
			s := v.(string)
			b.OverrideBy = &s
		case "override_at":
			t := v.(time.Time)
			b.OverrideAt = &t
		case "override_detail":
			s := v.(string)
			b.OverrideDetail = &s
		case "updated_by":
			s := v.(string)
			b.UpdatedBy = &s
		}
	}
}

// ── Mock BookingHistoryRepository ──

type mockHistoryRepo struct {
	entries []model.BookingHistory
	seq     int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Create(_ context.Context, entry *model.BookingHistory) error {
	m.seq++
	if entry.HistoryID == "" {
		entry.HistoryID = fmt.Sprintf("hist-%03d", m.seq)
	}
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockHistoryRepo) ListByBooking(_ context.Context, bookingID string) ([]model.BookingHistory, error) {
	var result []model.BookingHistory
	for _, e := range m.entries {
		if e.BookingID == bookingID {
			result = append(result, e)
		}
	}
	return result, nil
}

// eventTypes 指定预约的事件类型序列（按写入顺序）
func (m *mockHistoryRepo) eventTypes(bookingID string) []string {
	var types []string
	for _, e := range m.entries {
		if e.BookingID == bookingID {
			types = append(types, e.EventType)
		}
	}
	return types
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.seq++
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("ntf-%03d", m.seq)
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

// countByType 指定类型的通知条数
func (m *mockNotificationRepo) countByType(typ string) int {
	count := 0
	for _, n := range m.notifications {
		if n.Type == typ {
			count++
		}
	}
	return count
}

// ── 测试共用工具 ──

// testBookingConfig 测试用预约配置（与默认配置保持同量级）
func testBookingConfig() *config.BookingConfig {
	return &config.BookingConfig{
		HoldDuration:         15 * time.Minute,
		MinWorkingDays:       10,
		SearchWindowMonths:   2,
		ReservePercent:       20,
		CandidatesPerProctor: 30,
		ReaperInterval:       time.Minute,
		ReminderDaysBefore:   4,
		ReminderTime:         "08:00",
		DeadlineTime:         "12:00",
		Timezone:             "UTC",
		AdminIDs:             []string{"admin-001"},
	}
}

// testDate 解析 YYYY-MM-DD，测试内日期一律 UTC 零点
func testDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

// ── Mock EventBroadcaster ──

type mockBroadcaster struct {
	events []string
}

func (m *mockBroadcaster) PublishBookingEvent(_ context.Context, event string, _ interface{}) error {
	m.events = append(m.events, event)
	return nil
}
