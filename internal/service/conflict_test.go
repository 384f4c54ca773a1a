package service

import (
	"testing"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/model"
)

func strPtr(s string) *string { return &s }

func testSlot(id, start, end string, minutes int, group model.DayGroup) *model.TimeSlot {
	return &model.TimeSlot{
		TimeSlotID:      id,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: minutes,
		DayGroup:        group,
	}
}

func testEntry(id, roomID, slotID string, day model.Weekday, facultyID *string) model.ScheduleEntry {
	return model.ScheduleEntry{
		EntryID:    id,
		ScheduleID: "sched-1",
		RoomID:     roomID,
		TimeSlotID: slotID,
		FacultyID:  facultyID,
		Day:        day,
		SlotsSpan:  1,
	}
}

func TestDetectConflictsRoomOverlap(t *testing.T) {
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupTwiceA),
	}
	entries := []model.ScheduleEntry{
		testEntry("e1", "room-1", "slot-1", model.Monday, nil),
	}

	conflicts, err := DetectConflicts(entries, slots, PlacementProposal{
		Day:             model.Monday,
		RoomID:          "room-1",
		StartMinutes:    9 * 60,
		EndMinutes:      10 * 60,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("应报告 1 条教室冲突, got %d", len(conflicts))
	}
	if conflicts[0].Class != dto.ConflictClassRoom {
		t.Errorf("冲突类别应为 room, got %s", conflicts[0].Class)
	}
	if conflicts[0].EntryID != "e1" {
		t.Errorf("冲突条目应为 e1, got %s", conflicts[0].EntryID)
	}
}

func TestDetectConflictsFacultyOverlapDifferentRoom(t *testing.T) {
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupTwiceA),
	}
	entries := []model.ScheduleEntry{
		testEntry("e1", "room-1", "slot-1", model.Monday, strPtr("fac-1")),
	}

	conflicts, err := DetectConflicts(entries, slots, PlacementProposal{
		Day:             model.Monday,
		RoomID:          "room-2",
		FacultyID:       strPtr("fac-1"),
		StartMinutes:    9*60 + 30,
		EndMinutes:      10*60 + 30,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Class != dto.ConflictClassFaculty {
		t.Fatalf("应报告 1 条教师冲突, got %+v", conflicts)
	}
}

func TestDetectConflictsBothClasses(t *testing.T) {
	// 同教室 + 同教师：两类冲突各报一条
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupTwiceA),
	}
	entries := []model.ScheduleEntry{
		testEntry("e1", "room-1", "slot-1", model.Monday, strPtr("fac-1")),
	}

	conflicts, err := DetectConflicts(entries, slots, PlacementProposal{
		Day:             model.Monday,
		RoomID:          "room-1",
		FacultyID:       strPtr("fac-1"),
		StartMinutes:    9 * 60,
		EndMinutes:      10 * 60,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 2 {
		t.Fatalf("应报告教室 + 教师共 2 条冲突, got %d", len(conflicts))
	}
}

func TestDetectConflictsAdjacentIntervalsNoOverlap(t *testing.T) {
	// 区间首尾相接不算重叠
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupTwiceA),
	}
	entries := []model.ScheduleEntry{
		testEntry("e1", "room-1", "slot-1", model.Monday, nil),
	}

	conflicts, err := DetectConflicts(entries, slots, PlacementProposal{
		Day:             model.Monday,
		RoomID:          "room-1",
		StartMinutes:    10 * 60,
		EndMinutes:      11 * 60,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("首尾相接不应报冲突, got %+v", conflicts)
	}
}

func TestDetectConflictsExcludesSelfAndPair(t *testing.T) {
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupTwiceA),
	}
	entries := []model.ScheduleEntry{
		testEntry("e1", "room-1", "slot-1", model.Monday, nil),
		testEntry("e2", "room-1", "slot-1", model.Monday, nil),
	}

	conflicts, err := DetectConflicts(entries, slots, PlacementProposal{
		Day:          model.Monday,
		RoomID:       "room-1",
		StartMinutes: 9 * 60,
		EndMinutes:   10 * 60,
		ExcludeEntryIDs: map[string]struct{}{
			"e1": {},
			"e2": {},
		},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("被搬迁条目及其配对不应参与判定, got %+v", conflicts)
	}
}

func TestDetectConflictsCustomTimeOverride(t *testing.T) {
	// 自定义起止时间覆盖时间段名义区间
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupOnceC),
	}
	e := testEntry("e1", "room-1", "slot-1", model.Friday, nil)
	e.CustomStart = strPtr("09:00")
	e.CustomEnd = strPtr("11:00")

	conflicts, err := DetectConflicts([]model.ScheduleEntry{e}, slots, PlacementProposal{
		Day:             model.Friday,
		RoomID:          "room-1",
		StartMinutes:    10*60 + 30,
		EndMinutes:      11*60 + 30,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("自定义区间 09:00-11:00 与 10:30 开课应冲突, got %d", len(conflicts))
	}
	if conflicts[0].EndTime != "11:00" {
		t.Errorf("冲突明细应报自定义结束时间 11:00, got %s", conflicts[0].EndTime)
	}
}

func TestDetectConflictsSlotsSpanExtension(t *testing.T) {
	// slots_span=2 的条目名义区间向后延伸一个段长
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupOnceC),
	}
	e := testEntry("e1", "room-1", "slot-1", model.Friday, nil)
	e.SlotsSpan = 2 // 生效区间 09:00-11:00

	conflicts, err := DetectConflicts([]model.ScheduleEntry{e}, slots, PlacementProposal{
		Day:             model.Friday,
		RoomID:          "room-1",
		StartMinutes:    10 * 60,
		EndMinutes:      11 * 60,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 1 {
		t.Errorf("跨段条目延伸区间应参与判定, got %d", len(conflicts))
	}
}

func TestDetectConflictsDifferentDayIgnored(t *testing.T) {
	slots := map[string]*model.TimeSlot{
		"slot-1": testSlot("slot-1", "09:00", "10:00", 60, model.DayGroupTwiceA),
	}
	entries := []model.ScheduleEntry{
		testEntry("e1", "room-1", "slot-1", model.Wednesday, nil),
	}

	conflicts, err := DetectConflicts(entries, slots, PlacementProposal{
		Day:             model.Monday,
		RoomID:          "room-1",
		StartMinutes:    9 * 60,
		EndMinutes:      10 * 60,
		ExcludeEntryIDs: map[string]struct{}{},
	})
	if err != nil {
		t.Fatalf("检测不应失败: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("不同星期的条目不应参与判定, got %+v", conflicts)
	}
}
