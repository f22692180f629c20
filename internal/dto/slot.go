package dto

// SearchSlotsRequest 可用时段搜索请求
type SearchSlotsRequest struct {
	DepartmentID   string `form:"department_id" binding:"omitempty,uuid"` // 部门用户忽略此参数，取自身部门
	CandidateCount int    `form:"candidate_count" binding:"required,min=1"`
	CourseEndDate  string `form:"course_end_date" binding:"required"` // YYYY-MM-DD
	PreferredShift string `form:"preferred_shift" binding:"omitempty,oneof=morning afternoon evening"`
}

// SlotHour 候选时段内单个小时的剩余容量
type SlotHour struct {
	Hour      int `json:"hour"`
	Remaining int `json:"remaining"`
}

// SlotOption 单个候选时段
// Priority: 1=首选场次有单小时可整体容纳 2=其他场次有单小时可整体容纳 3=无单小时可容纳（需拆分）
type SlotOption struct {
	Date      string     `json:"date"`
	ShiftID   string     `json:"shift_id"`
	ShiftName string     `json:"shift_name"`
	StartHour int        `json:"start_hour"`
	EndHour   int        `json:"end_hour"`
	Hours     []SlotHour `json:"hours"` // 逐小时剩余容量，供调用方挑选具体起始小时
	Remaining int        `json:"remaining"`
	Priority  int        `json:"priority"`
	IsSplit   bool       `json:"is_split"`
}

// SearchSlotsResponse 搜索结果
type SearchSlotsResponse struct {
	EarliestDate string       `json:"earliest_date"`
	WindowEnd    string       `json:"window_end"`
	Options      []SlotOption `json:"options"`
}
