package model

import "time"

// ── 调课申请状态 ──
// pending 为唯一初始态；approved / rejected / cancelled 均为终态，不可重开

const (
	ChangeRequestPending   = "pending"
	ChangeRequestApproved  = "approved"
	ChangeRequestRejected  = "rejected"
	ChangeRequestCancelled = "cancelled"
)

// ChangeRequest 调课申请表 — 对应 change_requests
// 针对单条排课条目的搬迁提案；部分唯一索引保证同一条目最多一条 pending
type ChangeRequest struct {
	ChangeRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_request_id"`
	EntryID         string     `gorm:"type:uuid;not null"                             json:"entry_id"`
	RequesterID     string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	TargetDay       Weekday    `gorm:"type:smallint;not null"                         json:"target_day"`
	TargetSlotID    string     `gorm:"type:uuid;not null"                             json:"target_slot_id"`
	TargetRoomID    string     `gorm:"type:uuid;not null"                             json:"target_room_id"`
	Reason          string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ReviewNotes     string     `gorm:"type:varchar(500)"                              json:"review_notes,omitempty"`
	ReviewerID      *string    `gorm:"type:uuid"                                      json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	VersionedModel

	// 关联
	Entry      *ScheduleEntry `gorm:"foreignKey:EntryID;references:EntryID"           json:"entry,omitempty"`
	Requester  *User          `gorm:"foreignKey:RequesterID;references:UserID"        json:"requester,omitempty"`
	TargetSlot *TimeSlot      `gorm:"foreignKey:TargetSlotID;references:TimeSlotID"   json:"target_slot,omitempty"`
	TargetRoom *Room          `gorm:"foreignKey:TargetRoomID;references:RoomID"       json:"target_room,omitempty"`
	Reviewer   *User          `gorm:"foreignKey:ReviewerID;references:UserID"         json:"reviewer,omitempty"`
}

// TableName 指定表名
func (ChangeRequest) TableName() string { return "change_requests" }

// Terminal 是否处于终态
func (r *ChangeRequest) Terminal() bool {
	return r.Status != ChangeRequestPending
}
