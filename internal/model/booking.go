package model

import "time"

// BookingStatus 预约状态（封闭枚举）
type BookingStatus string

const (
	StatusHolding   BookingStatus = "holding"   // 占位中，等待提交
	StatusPending   BookingStatus = "pending"   // 已提交，等待审核
	StatusApproved  BookingStatus = "approved"  // 审核通过
	StatusRejected  BookingStatus = "rejected"  // 审核驳回（终态）
	StatusExpired   BookingStatus = "expired"   // 占位超时（终态）
	StatusCancelled BookingStatus = "cancelled" // 已取消（终态）
)

// TerminalStatuses 终态集合：处于这些状态的预约不再占用部门名额
var TerminalStatuses = []BookingStatus{StatusRejected, StatusExpired, StatusCancelled}

// IsTerminal 是否为终态
func (s BookingStatus) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// legalTransitions 状态转移表
var legalTransitions = map[BookingStatus][]BookingStatus{
	StatusHolding:  {StatusPending, StatusExpired, StatusCancelled},
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCancelled}, // 仅截止任务可自动取消
}

// CanTransition 判断状态转移是否合法
func CanTransition(from, to BookingStatus) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// VoucherStatus 凭证（考场安排等外部事项）子状态
// 仅对 approved 预约有意义；verified 为子状态终态
type VoucherStatus string

const (
	VoucherPending       VoucherStatus = "pending"        // 等待用户办理
	VoucherUserCompleted VoucherStatus = "user_completed" // 用户已办理，等待核验
	VoucherVerified      VoucherStatus = "verified"       // 管理员已核验
	VoucherCancelled     VoucherStatus = "cancelled"      // 截止前未核验，预约被取消
)

// Booking 考试预约表 — 对应 bookings
// 状态由预约生命周期独占管理，其余模块只读
type Booking struct {
	BookingID        string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	DepartmentID     string        `gorm:"type:uuid;not null;index"                       json:"department_id"`
	UserID           string        `gorm:"type:uuid;not null"                             json:"user_id"`
	CandidateCount   int           `gorm:"not null"                                       json:"candidate_count"`
	CourseEndDate    time.Time     `gorm:"type:date;not null"                             json:"course_end_date"`
	PreferredShift   string        `gorm:"type:varchar(20);not null;default:''"           json:"preferred_shift"`
	ShiftID          *string       `gorm:"type:uuid"                                      json:"shift_id,omitempty"`
	ExamStartHour    *int          `gorm:"type:smallint"                                  json:"exam_start_hour,omitempty"`
	ExamDate         time.Time     `gorm:"type:date;not null;index"                       json:"exam_date"`
	Status           BookingStatus `gorm:"type:varchar(20);not null;default:'holding'"    json:"status"`
	HoldExpiresAt    *time.Time    `json:"hold_expires_at,omitempty"` // 仅 holding 状态下非空
	ConfirmationCode string        `gorm:"type:varchar(20);not null"                      json:"confirmation_code"`
	Notes            *string       `gorm:"type:text"                                      json:"notes,omitempty"`
	AdminNotes       *string       `gorm:"type:text"                                      json:"admin_notes,omitempty"`
	VoucherStatus    VoucherStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"voucher_status"`
	VoucherUpdatedAt *time.Time    `json:"voucher_updated_at,omitempty"`
	ReminderSentAt   *time.Time    `json:"reminder_sent_at,omitempty"` // 考前提醒幂等标记
	OverrideBy       *string       `gorm:"type:uuid" json:"override_by,omitempty"`
	OverrideAt       *time.Time    `json:"override_at,omitempty"`
	OverrideDetail   *string       `gorm:"type:jsonb" json:"override_detail,omitempty"` // 超容审批时的容量核算快照
	BaseModel

	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
}

func (Booking) TableName() string { return "bookings" }
