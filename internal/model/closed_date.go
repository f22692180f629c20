package model

import "time"

// ClosedDate 闭馆日期表 — 对应 closed_dates
// 日历排除标记：创建后不可修改，删除即重新开放该日期
type ClosedDate struct {
	ClosedDateID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"closed_date_id"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex"                 json:"date"`
	Reason       *string   `gorm:"type:varchar(200)"                              json:"reason,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy    *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
}

func (ClosedDate) TableName() string { return "closed_dates" }
