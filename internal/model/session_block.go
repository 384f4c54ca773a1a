package model

// SessionBlock 教学单元表 — 对应 session_blocks
// (学科, 年级, 课程组合, 班号) 四元组唯一；course_combination 为规范化排序后
// 的课程代码组合，含多个课程代码时为合班（fused block）
type SessionBlock struct {
	SessionBlockID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"session_block_id"`
	SubjectID         string `gorm:"type:uuid;not null;uniqueIndex:uq_session_blocks_identity" json:"subject_id"`
	YearLevel         int    `gorm:"type:smallint;not null;uniqueIndex:uq_session_blocks_identity" json:"year_level"`
	CourseCombination string `gorm:"type:varchar(100);not null;uniqueIndex:uq_session_blocks_identity" json:"course_combination"`
	BlockNumber       int    `gorm:"type:smallint;not null;uniqueIndex:uq_session_blocks_identity" json:"block_number"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (SessionBlock) TableName() string { return "session_blocks" }

// Fused 是否为合班教学单元（服务多个课程计划）
func (b *SessionBlock) Fused() bool {
	for _, c := range b.CourseCombination {
		if c == '+' {
			return true
		}
	}
	return false
}
