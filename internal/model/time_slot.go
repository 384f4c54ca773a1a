package model

import "fmt"

// TimeSlot 时间段参照表 — 对应 time_slots
// 不可变参照数据：排课条目仅引用，不修改
type TimeSlot struct {
	TimeSlotID      string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_slot_id"`
	StartTime       string   `gorm:"type:time;not null"                             json:"start_time"` // "HH:MM"
	EndTime         string   `gorm:"type:time;not null"                             json:"end_time"`
	DurationMinutes int      `gorm:"type:smallint;not null"                         json:"duration_minutes"`
	DayGroup        DayGroup `gorm:"type:varchar(10);not null"                      json:"day_group"`
	DisplayPriority int      `gorm:"type:smallint;not null;default:0"               json:"display_priority"`
	BaseModel
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }

// MinutesOfDay 将 "HH:MM"（或 "HH:MM:SS"）解析为当日分钟数
func MinutesOfDay(s string) (int, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("无效的时间格式 %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("时间 %q 超出范围", s)
	}
	return h*60 + m, nil
}

// FormatMinutes 将当日分钟数格式化为 "HH:MM"
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
