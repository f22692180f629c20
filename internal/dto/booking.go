package dto

import "time"

// CreateHoldRequest 创建占位请求
type CreateHoldRequest struct {
	DepartmentID   string  `json:"department_id" binding:"required,uuid"`
	CandidateCount int     `json:"candidate_count" binding:"required,min=1"`
	CourseEndDate  string  `json:"course_end_date" binding:"required"` // YYYY-MM-DD
	ExamDate       string  `json:"exam_date" binding:"required"`       // YYYY-MM-DD
	ShiftID        string  `json:"shift_id" binding:"required,uuid"`
	ExamStartHour  *int    `json:"exam_start_hour" binding:"omitempty,min=0,max=23"` // 空表示整场预约
	PreferredShift string  `json:"preferred_shift" binding:"omitempty,oneof=morning afternoon evening"`
	Notes          *string `json:"notes" binding:"omitempty,max=500"`
}

// SubmitBookingRequest 提交审核请求
type SubmitBookingRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

// ApproveBookingRequest 审核通过请求
// Force=true 时跳过容量校验并记录超容快照
type ApproveBookingRequest struct {
	Force      bool    `json:"force"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=500"`
}

// RejectBookingRequest 审核驳回请求（必须说明理由）
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// VerifyVoucherRequest 管理员核验凭证请求
type VerifyVoucherRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note" binding:"omitempty,max=500"`
}

// AdminCompleteVoucherRequest 管理员代办凭证请求
type AdminCompleteVoucherRequest struct {
	Note *string `json:"note" binding:"omitempty,max=500"`
}

// ListBookingsQuery 管理员预约列表查询参数
type ListBookingsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=holding pending approved rejected expired cancelled"`
	DateFrom string `form:"date_from" binding:"omitempty"`
	DateTo   string `form:"date_to" binding:"omitempty"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// BookingResponse 预约详情响应
type BookingResponse struct {
	BookingID        string     `json:"booking_id"`
	DepartmentID     string     `json:"department_id"`
	UserID           string     `json:"user_id"`
	CandidateCount   int        `json:"candidate_count"`
	CourseEndDate    string     `json:"course_end_date"`
	ExamDate         string     `json:"exam_date"`
	ShiftID          *string    `json:"shift_id,omitempty"`
	ShiftName        string     `json:"shift_name,omitempty"`
	ExamStartHour    *int       `json:"exam_start_hour,omitempty"`
	Status           string     `json:"status"`
	HoldExpiresAt    *time.Time `json:"hold_expires_at,omitempty"`
	ConfirmationCode string     `json:"confirmation_code"`
	Notes            *string    `json:"notes,omitempty"`
	AdminNotes       *string    `json:"admin_notes,omitempty"`
	VoucherStatus    string     `json:"voucher_status"`
	OverrideBy       *string    `json:"override_by,omitempty"`
	OverrideAt       *time.Time `json:"override_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BookingHistoryItem 预约历史条目响应
type BookingHistoryItem struct {
	HistoryID   string    `json:"history_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OperatorID  *string   `json:"operator_id,omitempty"`
	Metadata    *string   `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
