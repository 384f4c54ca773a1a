package dto

// ── 调课申请模块 DTO ──

// SubmitChangeRequestRequest 提交调课申请
type SubmitChangeRequestRequest struct {
	EntryID      string `json:"entry_id"       binding:"required,uuid"`
	TargetDay    int    `json:"target_day"     binding:"required,min=1,max=7"`
	TargetSlotID string `json:"target_slot_id" binding:"required,uuid"`
	TargetRoomID string `json:"target_room_id" binding:"required,uuid"`
	Reason       string `json:"reason"         binding:"required,min=2,max=500"`
}

// ReviewChangeRequestRequest 审批调课申请
type ReviewChangeRequestRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Notes    string `json:"notes"    binding:"omitempty,max=500"`
}

// ChangeRequestListRequest 申请列表查询参数
type ChangeRequestListRequest struct {
	ScheduleID string `form:"schedule_id" binding:"omitempty,uuid"`
	Status     string `form:"status"      binding:"omitempty,oneof=pending approved rejected cancelled"`
	PaginationRequest
}

// ChangeRequestResponse 调课申请响应
type ChangeRequestResponse struct {
	ID            string                 `json:"id"`
	Entry         *ScheduleEntryResponse `json:"entry,omitempty"`
	Requester     *FacultyBrief          `json:"requester,omitempty"`
	TargetDay     int                    `json:"target_day"`
	TargetDayName string                 `json:"target_day_name"`
	TargetSlot    *TimeSlotBrief         `json:"target_slot,omitempty"`
	TargetRoom    *RoomBrief             `json:"target_room,omitempty"`
	Reason        string                 `json:"reason"`
	Status        string                 `json:"status"`
	ReviewNotes   string                 `json:"review_notes,omitempty"`
	Reviewer      *FacultyBrief          `json:"reviewer,omitempty"`
	ReviewedAt    *string                `json:"reviewed_at,omitempty"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}
