package model

import "time"

// ShiftCapacity 按日×场次的监考员容量表 — 对应 shift_capacities
// 由外部导入器按日期范围整批替换，不做局部修改
type ShiftCapacity struct {
	CapacityID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"capacity_id"`
	Date              time.Time `gorm:"type:date;not null;index:idx_shift_cap,unique"  json:"date"`
	ShiftID           string    `gorm:"type:uuid;not null;index:idx_shift_cap,unique"  json:"shift_id"`
	TotalProctors     int       `gorm:"not null"                                       json:"total_proctors"`
	ReserveProctors   int       `gorm:"not null"                                       json:"reserve_proctors"`
	EffectiveCapacity int       `gorm:"not null"                                       json:"effective_capacity"`
	BaseModel

	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
}

func (ShiftCapacity) TableName() string { return "shift_capacities" }

// HourCapacity 按日×小时的监考员容量表 — 对应 hour_capacities
type HourCapacity struct {
	CapacityID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"capacity_id"`
	Date              time.Time `gorm:"type:date;not null;index:idx_hour_cap,unique"   json:"date"`
	Hour              int       `gorm:"type:smallint;not null;index:idx_hour_cap,unique" json:"hour"`
	ShiftID           string    `gorm:"type:uuid;not null"                             json:"shift_id"`
	TotalProctors     int       `gorm:"not null"                                       json:"total_proctors"`
	ReserveProctors   int       `gorm:"not null"                                       json:"reserve_proctors"`
	EffectiveCapacity int       `gorm:"not null"                                       json:"effective_capacity"`
	BaseModel
}

func (HourCapacity) TableName() string { return "hour_capacities" }
