package model

import "time"

// ── 课表状态 ──

const (
	ScheduleStatusDraft     = "draft"
	ScheduleStatusPublished = "published"
	ScheduleStatusLocked    = "locked"
	ScheduleStatusArchived  = "archived"
)

// Schedule 课表表 — 对应 schedules
// 一个学期一代课表；条目由排课生成流程写入，之后仅经调课审批流程变更
type Schedule struct {
	ScheduleID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	AcademicTerm string     `gorm:"type:varchar(50);not null"                      json:"academic_term"`
	Status       string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	VersionedModel

	// 关联
	Entries []ScheduleEntry `gorm:"foreignKey:ScheduleID" json:"entries,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// AcceptsEdits 发布闸门：课表是否仍接受调课
func (s *Schedule) AcceptsEdits() bool {
	return s.Status == ScheduleStatusDraft || s.Status == ScheduleStatusPublished
}
