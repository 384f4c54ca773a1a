package model

// ── 目录参照模型 ──
//
// 院系、学科、课程与教室的增删改查由外部目录系统负责，
// 本服务仅按外键只读引用。

// Department 院系表 — 对应 departments
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// Subject 学科表 — 对应 subjects
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code      string `gorm:"type:varchar(20);not null"                      json:"code"`
	Name      string `gorm:"type:varchar(150);not null"                     json:"name"`
	Units     int    `gorm:"type:smallint;not null;default:3"               json:"units"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// Course 课程计划表 — 对应 courses
type Course struct {
	CourseID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code     string `gorm:"type:varchar(20);not null"                      json:"code"`
	Name     string `gorm:"type:varchar(150);not null"                     json:"name"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Room 教室表 — 对应 rooms
type Room struct {
	RoomID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name     string `gorm:"type:varchar(50);not null"                      json:"name"`
	Building string `gorm:"type:varchar(100)"                              json:"building,omitempty"`
	Capacity int    `gorm:"type:smallint;not null;default:0"               json:"capacity"`
	IsLab    bool   `gorm:"not null;default:false"                         json:"is_lab"`
	BaseModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }
