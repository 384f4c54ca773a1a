package service

import (
	"time"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/model"
)

// ── model → DTO 转换 ──

const timeLayout = "2006-01-02T15:04:05Z"

func userToBrief(u *model.User) *dto.FacultyBrief {
	if u == nil {
		return nil
	}
	return &dto.FacultyBrief{ID: u.UserID, Name: u.Name}
}

func roomToBrief(r *model.Room) *dto.RoomBrief {
	if r == nil {
		return nil
	}
	return &dto.RoomBrief{
		ID:       r.RoomID,
		Name:     r.Name,
		Building: r.Building,
		IsLab:    r.IsLab,
	}
}

func timeSlotToBrief(t *model.TimeSlot) *dto.TimeSlotBrief {
	if t == nil {
		return nil
	}
	return &dto.TimeSlotBrief{
		ID:              t.TimeSlotID,
		StartTime:       t.StartTime,
		EndTime:         t.EndTime,
		DurationMinutes: t.DurationMinutes,
		DayGroup:        string(t.DayGroup),
	}
}

func sessionBlockToBrief(b *model.SessionBlock) *dto.SessionBlockBrief {
	if b == nil {
		return nil
	}
	brief := &dto.SessionBlockBrief{
		ID:                b.SessionBlockID,
		YearLevel:         b.YearLevel,
		CourseCombination: b.CourseCombination,
		BlockNumber:       b.BlockNumber,
	}
	if b.Subject != nil {
		brief.SubjectCode = b.Subject.Code
		brief.SubjectName = b.Subject.Name
	}
	return brief
}

// entryToResponse 组装条目响应；start/end 为生效区间，
// 需要 TimeSlot 关联已加载（或条目带自定义时间）才能求得
func entryToResponse(e *model.ScheduleEntry) dto.ScheduleEntryResponse {
	resp := dto.ScheduleEntryResponse{
		ID:           e.EntryID,
		ScheduleID:   e.ScheduleID,
		SessionBlock: sessionBlockToBrief(e.SessionBlock),
		Room:         roomToBrief(e.Room),
		TimeSlot:     timeSlotToBrief(e.TimeSlot),
		Faculty:      userToBrief(e.Faculty),
		Day:          int(e.Day),
		DayName:      e.Day.String(),
		IsLab:        e.IsLab,
		SlotsSpan:    e.SlotsSpan,
	}
	if e.SessionGroupID != nil {
		resp.SessionGroupID = *e.SessionGroupID
	}
	if e.TimeSlot != nil || e.HasCustomTime() {
		if start, end, err := EffectiveInterval(e, e.TimeSlot); err == nil {
			resp.StartTime = model.FormatMinutes(start)
			resp.EndTime = model.FormatMinutes(end)
		}
	}
	return resp
}

func scheduleToResponse(s *model.Schedule, entries []model.ScheduleEntry) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:           s.ScheduleID,
		AcademicTerm: s.AcademicTerm,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt.Format(timeLayout),
		UpdatedAt:    s.UpdatedAt.Format(timeLayout),
	}
	if s.PublishedAt != nil {
		published := s.PublishedAt.Format(timeLayout)
		resp.PublishedAt = &published
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, entryToResponse(&entries[i]))
	}
	return resp
}

func changeRequestToResponse(r *model.ChangeRequest) *dto.ChangeRequestResponse {
	resp := &dto.ChangeRequestResponse{
		ID:            r.ChangeRequestID,
		Requester:     userToBrief(r.Requester),
		TargetDay:     int(r.TargetDay),
		TargetDayName: r.TargetDay.String(),
		TargetSlot:    timeSlotToBrief(r.TargetSlot),
		TargetRoom:    roomToBrief(r.TargetRoom),
		Reason:        r.Reason,
		Status:        r.Status,
		ReviewNotes:   r.ReviewNotes,
		Reviewer:      userToBrief(r.Reviewer),
		CreatedAt:     r.CreatedAt.Format(timeLayout),
		UpdatedAt:     r.UpdatedAt.Format(timeLayout),
	}
	if r.Entry != nil {
		entry := entryToResponse(r.Entry)
		resp.Entry = &entry
	}
	if r.ReviewedAt != nil {
		reviewed := r.ReviewedAt.Format(timeLayout)
		resp.ReviewedAt = &reviewed
	}
	return resp
}

func nowUTC() time.Time { return time.Now().UTC() }
