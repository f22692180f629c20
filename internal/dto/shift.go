package dto

// CreateShiftRequest 创建场次请求
type CreateShiftRequest struct {
	Name          string `json:"name" binding:"required,oneof=morning afternoon evening"`
	StartHour     int    `json:"start_hour" binding:"min=0,max=23"`
	EndHour       int    `json:"end_hour" binding:"required,min=1,max=24"`
	MaxCandidates int    `json:"max_candidates" binding:"min=0"`
}

// UpdateShiftRequest 更新场次请求（零值字段不更新）
type UpdateShiftRequest struct {
	StartHour     *int  `json:"start_hour" binding:"omitempty,min=0,max=23"`
	EndHour       *int  `json:"end_hour" binding:"omitempty,min=1,max=24"`
	MaxCandidates *int  `json:"max_candidates" binding:"omitempty,min=0"`
	IsActive      *bool `json:"is_active"`
}
