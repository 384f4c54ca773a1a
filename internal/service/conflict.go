package service

import (
	"fmt"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/model"
)

// ── 冲突检测 ──
//
// 纯函数实现：不触达数据层，可重复调用。
// 既用于提交前的预检（advisory），也用于审批提交前一刻的权威复检；
// 权威复检时调用方需先锁定相关条目行。

// PlacementProposal 一次拟定放置
type PlacementProposal struct {
	Day          model.Weekday
	RoomID       string
	FacultyID    *string
	StartMinutes int
	EndMinutes   int
	// ExcludeEntryIDs 被搬迁条目自身及其配对条目，不参与冲突判定
	ExcludeEntryIDs map[string]struct{}
}

// EffectiveInterval 计算条目的生效区间（当日分钟数）
// 自定义起止时间优先；否则为时间段名义区间按 (slots_span-1) 个段长延伸
func EffectiveInterval(e *model.ScheduleEntry, slot *model.TimeSlot) (start, end int, err error) {
	if e.HasCustomTime() {
		start, err = model.MinutesOfDay(*e.CustomStart)
		if err != nil {
			return 0, 0, err
		}
		end, err = model.MinutesOfDay(*e.CustomEnd)
		if err != nil {
			return 0, 0, err
		}
		return start, end, nil
	}

	start, err = model.MinutesOfDay(slot.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err = model.MinutesOfDay(slot.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if e.SlotsSpan > 1 {
		end += (e.SlotsSpan - 1) * slot.DurationMinutes
	}
	return start, end, nil
}

// DetectConflicts 检测拟定放置与既有条目的碰撞
//
// 扫描同课表内与提案同日的条目，报告两类相互独立的冲突：
//   - 教室冲突：同教室且生效区间重叠
//   - 教师冲突：同教师且生效区间重叠
//
// 严重性策略留给调用方；本函数只负责如实报告。
// entries 应为提案所在课表、所在日的条目集合；slots 为时间段索引。
func DetectConflicts(entries []model.ScheduleEntry, slots map[string]*model.TimeSlot, p PlacementProposal) ([]dto.ConflictDetail, error) {
	var conflicts []dto.ConflictDetail

	for i := range entries {
		e := &entries[i]
		if e.Day != p.Day {
			continue
		}
		if _, excluded := p.ExcludeEntryIDs[e.EntryID]; excluded {
			continue
		}

		slot := e.TimeSlot
		if slot == nil {
			slot = slots[e.TimeSlotID]
		}
		if slot == nil {
			return nil, fmt.Errorf("条目 %s 引用了未知时间段 %s", e.EntryID, e.TimeSlotID)
		}

		start, end, err := EffectiveInterval(e, slot)
		if err != nil {
			return nil, fmt.Errorf("条目 %s 区间无效: %w", e.EntryID, err)
		}
		if p.StartMinutes >= end || start >= p.EndMinutes {
			continue // 区间不重叠
		}

		if e.RoomID == p.RoomID {
			conflicts = append(conflicts, conflictDetail(dto.ConflictClassRoom, e, start, end))
		}
		if p.FacultyID != nil && e.FacultyID != nil && *e.FacultyID == *p.FacultyID {
			conflicts = append(conflicts, conflictDetail(dto.ConflictClassFaculty, e, start, end))
		}
	}

	return conflicts, nil
}

func conflictDetail(class string, e *model.ScheduleEntry, start, end int) dto.ConflictDetail {
	d := dto.ConflictDetail{
		Class:     class,
		EntryID:   e.EntryID,
		RoomID:    e.RoomID,
		Day:       int(e.Day),
		DayName:   e.Day.String(),
		StartTime: model.FormatMinutes(start),
		EndTime:   model.FormatMinutes(end),
	}
	if e.Room != nil {
		d.RoomName = e.Room.Name
	}
	if e.SessionBlock != nil && e.SessionBlock.Subject != nil {
		d.SubjectCode = e.SessionBlock.Subject.Code
	}
	if e.FacultyID != nil {
		d.FacultyID = *e.FacultyID
		if e.Faculty != nil {
			d.FacultyName = e.Faculty.Name
		}
	}
	return d
}
