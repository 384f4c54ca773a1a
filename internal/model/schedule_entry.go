package model

// ScheduleEntry 排课条目表 — 对应 schedule_entries
// 一条记录是教学单元在 教室×星期×时间段 网格上的一次具体放置。
// 双周课次的两条条目共享 session_group_id；slots_span 表示占用的连续
// 时间段数量；custom_start/custom_end 同时存在时覆盖时间段的名义区间。
type ScheduleEntry struct {
	EntryID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	ScheduleID     string  `gorm:"type:uuid;not null"                             json:"schedule_id"`
	SessionBlockID string  `gorm:"type:uuid;not null"                             json:"session_block_id"`
	RoomID         string  `gorm:"type:uuid;not null"                             json:"room_id"`
	TimeSlotID     string  `gorm:"type:uuid;not null"                             json:"time_slot_id"`
	FacultyID      *string `gorm:"type:uuid"                                      json:"faculty_id,omitempty"`
	Day            Weekday `gorm:"type:smallint;not null"                         json:"day"`
	IsLab          bool    `gorm:"not null;default:false"                         json:"is_lab"`
	CustomStart    *string `gorm:"type:time"                                      json:"custom_start,omitempty"`
	CustomEnd      *string `gorm:"type:time"                                      json:"custom_end,omitempty"`
	SessionGroupID *string `gorm:"type:uuid"                                      json:"session_group_id,omitempty"`
	SlotsSpan      int     `gorm:"type:smallint;not null;default:1"               json:"slots_span"`
	VersionedModel

	// 关联
	SessionBlock *SessionBlock `gorm:"foreignKey:SessionBlockID;references:SessionBlockID" json:"session_block,omitempty"`
	Room         *Room         `gorm:"foreignKey:RoomID;references:RoomID"                 json:"room,omitempty"`
	TimeSlot     *TimeSlot     `gorm:"foreignKey:TimeSlotID;references:TimeSlotID"         json:"time_slot,omitempty"`
	Faculty      *User         `gorm:"foreignKey:FacultyID;references:UserID"              json:"faculty,omitempty"`
}

// TableName 指定表名
func (ScheduleEntry) TableName() string { return "schedule_entries" }

// HasCustomTime 是否带自定义起止时间覆盖
func (e *ScheduleEntry) HasCustomTime() bool {
	return e.CustomStart != nil && e.CustomEnd != nil
}

// DurationMinutes 条目实际占用的分钟数
// 自定义时间优先；否则为时间段时长 × 占用段数
func (e *ScheduleEntry) DurationMinutes(slot *TimeSlot) (int, error) {
	if e.HasCustomTime() {
		start, err := MinutesOfDay(*e.CustomStart)
		if err != nil {
			return 0, err
		}
		end, err := MinutesOfDay(*e.CustomEnd)
		if err != nil {
			return 0, err
		}
		return end - start, nil
	}
	return slot.DurationMinutes * e.SlotsSpan, nil
}
