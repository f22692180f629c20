package model

// 固定的场次标识集合
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftEvening   = "evening"
)

// Shift 考试场次表 — 对应 shifts
// 场次只会被停用（is_active=false），不会被删除
type Shift struct {
	ShiftID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Name          string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"name"`
	StartHour     int    `gorm:"type:smallint;not null"                         json:"start_hour"`
	EndHour       int    `gorm:"type:smallint;not null"                         json:"end_hour"` // 开区间上界
	MaxCandidates int    `gorm:"not null;default:0"                             json:"max_candidates"`
	IsActive      bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (Shift) TableName() string { return "shifts" }

// Hours 场次覆盖的起始小时序列
func (s *Shift) Hours() []int {
	if s.EndHour <= s.StartHour {
		return nil
	}
	hours := make([]int, 0, s.EndHour-s.StartHour)
	for h := s.StartHour; h < s.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
