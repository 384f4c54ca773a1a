package dto

// ── 课表模块 DTO ──

// ScheduleResponse 课表响应
type ScheduleResponse struct {
	ID           string                  `json:"id"`
	AcademicTerm string                  `json:"academic_term"`
	Status       string                  `json:"status"`
	PublishedAt  *string                 `json:"published_at,omitempty"`
	Entries      []ScheduleEntryResponse `json:"entries,omitempty"`
	CreatedAt    string                  `json:"created_at"`
	UpdatedAt    string                  `json:"updated_at"`
}

// ScheduleBrief 课表简要信息
type ScheduleBrief struct {
	ID           string `json:"id"`
	AcademicTerm string `json:"academic_term"`
	Status       string `json:"status"`
}

// ScheduleEntryResponse 排课条目响应
type ScheduleEntryResponse struct {
	ID             string             `json:"id"`
	ScheduleID     string             `json:"schedule_id"`
	SessionBlock   *SessionBlockBrief `json:"session_block,omitempty"`
	Room           *RoomBrief         `json:"room,omitempty"`
	TimeSlot       *TimeSlotBrief     `json:"time_slot,omitempty"`
	Faculty        *FacultyBrief      `json:"faculty,omitempty"`
	Day            int                `json:"day"`
	DayName        string             `json:"day_name"`
	IsLab          bool               `json:"is_lab"`
	StartTime      string             `json:"start_time"` // 生效区间（含自定义覆盖与跨段延伸）
	EndTime        string             `json:"end_time"`
	SessionGroupID string             `json:"session_group_id,omitempty"`
	SlotsSpan      int                `json:"slots_span"`
}

// SessionBlockBrief 教学单元简要信息
type SessionBlockBrief struct {
	ID                string `json:"id"`
	SubjectCode       string `json:"subject_code"`
	SubjectName       string `json:"subject_name"`
	YearLevel         int    `json:"year_level"`
	CourseCombination string `json:"course_combination"`
	BlockNumber       int    `json:"block_number"`
}

// RoomBrief 教室简要信息
type RoomBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building,omitempty"`
	IsLab    bool   `json:"is_lab"`
}

// TimeSlotBrief 时间段简要信息
type TimeSlotBrief struct {
	ID              string `json:"id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	DayGroup        string `json:"day_group"`
}

// FacultyBrief 教师简要信息
type FacultyBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── 冲突检测 ──

// ConflictCheckRequest 预检请求（advisory，只读）
type ConflictCheckRequest struct {
	Day        int    `form:"day"          binding:"required,min=1,max=7"`
	TimeSlotID string `form:"time_slot_id" binding:"required,uuid"`
	RoomID     string `form:"room_id"      binding:"required,uuid"`
}

// 冲突类别
const (
	ConflictClassRoom    = "room"
	ConflictClassFaculty = "faculty"
)

// ConflictDetail 单条冲突明细
// 携带足够的结构化信息供前端渲染可操作的提示
type ConflictDetail struct {
	Class       string `json:"class"` // room | faculty
	EntryID     string `json:"entry_id"`
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name,omitempty"`
	Day         int    `json:"day"`
	DayName     string `json:"day_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SubjectCode string `json:"subject_code,omitempty"`
	FacultyID   string `json:"faculty_id,omitempty"`
	FacultyName string `json:"faculty_name,omitempty"`
}

// ConflictCheckResponse 冲突检测结果
type ConflictCheckResponse struct {
	HasConflict bool             `json:"has_conflict"`
	Conflicts   []ConflictDetail `json:"conflicts,omitempty"`
	// TransformedDuration 跨家族搬迁后的新时长（分钟），冲突检测按此区间进行
	TransformedDuration int  `json:"transformed_duration"`
	PairedDay           *int `json:"paired_day,omitempty"`
}

// ── 负荷报表 ──

// FacultyLoadResponse 单个教师的周负荷
// 以 session group 为单位统计：双周课次的两条条目只计一次
type FacultyLoadResponse struct {
	FacultyID     string  `json:"faculty_id"`
	FacultyName   string  `json:"faculty_name"`
	SessionCount  int     `json:"session_count"`
	WeeklyMinutes int     `json:"weekly_minutes"`
	Units         float64 `json:"units"`
}

// LoadReportResponse 课表负荷报表
type LoadReportResponse struct {
	ScheduleID string                `json:"schedule_id"`
	Faculty    []FacultyLoadResponse `json:"faculty"`
}
