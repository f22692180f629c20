package dto

// ListNotificationsQuery 通知列表查询参数
type ListNotificationsQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}
