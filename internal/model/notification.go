package model

// 通知类型
const (
	NotifyBookingSubmitted  = "booking_submitted"
	NotifyBookingApproved   = "booking_approved"
	NotifyBookingRejected   = "booking_rejected"
	NotifyBookingExpired    = "booking_expired"
	NotifyBookingCancelled  = "booking_cancelled"
	NotifyVoucherCompleted  = "voucher_completed"
	NotifyVoucherVerified   = "voucher_verified"
	NotifyVoucherRejected   = "voucher_rejected"
	NotifyVoucherReminder   = "voucher_reminder"
	NotifyDeadlineCancelled = "voucher_deadline_cancelled"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	BookingID      *string `gorm:"type:uuid"                                      json:"booking_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
