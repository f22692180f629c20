package model

import "time"

// 预约历史事件类型
const (
	HistoryCreated              = "created"
	HistorySubmitted            = "submitted"
	HistoryApproved             = "approved"
	HistoryRejected             = "rejected"
	HistoryCancelled            = "cancelled"
	HistoryHoldExpired          = "hold_expired"
	HistoryVoucherCompleted     = "voucher_completed"
	HistoryVoucherVerified      = "voucher_verified"
	HistoryVoucherRejected      = "voucher_rejected"
	HistoryVoucherAutoCancelled = "voucher_auto_cancelled"
	HistoryStatusChanged        = "status_changed"
	HistoryAdminNoteAdded       = "admin_note_added"
)

// BookingHistory 预约审计日志表 — 对应 booking_histories（只追加，不修改不删除）
type BookingHistory struct {
	HistoryID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	BookingID   string    `gorm:"type:uuid;not null;index"                       json:"booking_id"`
	EventType   string    `gorm:"type:varchar(30);not null"                      json:"event_type"`
	Description string    `gorm:"type:varchar(500);not null"                     json:"description"`
	OperatorID  *string   `gorm:"type:uuid"                                      json:"operator_id,omitempty"` // 系统触发时为空
	Metadata    *string   `gorm:"type:jsonb"                                     json:"metadata,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (BookingHistory) TableName() string { return "booking_histories" }
