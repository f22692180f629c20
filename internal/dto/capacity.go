package dto

// RosterShiftRow 导入的日×场次容量行
type RosterShiftRow struct {
	Date          string `json:"date" binding:"required"` // YYYY-MM-DD
	ShiftID       string `json:"shift_id" binding:"required,uuid"`
	TotalProctors int    `json:"total_proctors" binding:"min=0"`
}

// RosterHourRow 导入的日×小时容量行
type RosterHourRow struct {
	Date          string `json:"date" binding:"required"` // YYYY-MM-DD
	Hour          int    `json:"hour" binding:"min=0,max=23"`
	ShiftID       string `json:"shift_id" binding:"required,uuid"`
	TotalProctors int    `json:"total_proctors" binding:"min=0"`
}

// ReplaceRosterRequest 按日期范围整批替换排班容量
// 范围内未出现的行会被删除（导入语义）
type ReplaceRosterRequest struct {
	DateFrom  string           `json:"date_from" binding:"required"`
	DateTo    string           `json:"date_to" binding:"required"`
	ShiftRows []RosterShiftRow `json:"shift_rows" binding:"dive"`
	HourRows  []RosterHourRow  `json:"hour_rows" binding:"dive"`
}

// AvailabilityQuery 容量可用性查询参数
type AvailabilityQuery struct {
	DateFrom string `form:"date_from" binding:"required"`
	DateTo   string `form:"date_to" binding:"required"`
	ShiftID  string `form:"shift_id" binding:"omitempty,uuid"`
}

// CapacityCheck 单个时段的容量核算结果
// Source 标明生效容量的来源层级
type CapacityCheck struct {
	Date              string `json:"date"`
	ShiftID           string `json:"shift_id"`
	Hour              *int   `json:"hour,omitempty"`
	Source            string `json:"source"` // hour_roster | shift_roster | shift_default | none
	TotalProctors     int    `json:"total_proctors"`
	ReserveProctors   int    `json:"reserve_proctors"`
	EffectiveCapacity int    `json:"effective_capacity"`
	Occupied          int    `json:"occupied"` // 按调用方给定的状态集统计的已占用人数
	Requested         int    `json:"requested"`
	Remaining         int    `json:"remaining"`
	Overage           int    `json:"overage"` // 本次请求超出的人数，未超出为 0
}

// HourAvailability 单小时可用性
type HourAvailability struct {
	Date      string `json:"date"`
	Hour      int    `json:"hour"`
	ShiftID   string `json:"shift_id"`
	Source    string `json:"source"`
	Effective int    `json:"effective"`
	Occupied  int    `json:"occupied"`
	Remaining int    `json:"remaining"`
}
