package dto

// CreateClosedDateRequest 新增闭馆日期请求
type CreateClosedDateRequest struct {
	Date   string  `json:"date" binding:"required"` // YYYY-MM-DD
	Reason *string `json:"reason" binding:"omitempty,max=200"`
}
