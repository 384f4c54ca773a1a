package service

import (
	"errors"
	"testing"

	"class-schedule/backend/internal/model"
)

func TestTransformDurationSameFamily(t *testing.T) {
	tr, err := TransformDuration(model.DayGroupTwiceA, model.DayGroupTwiceA, model.Wednesday, 60)
	if err != nil {
		t.Fatalf("同家族换日不应失败: %v", err)
	}
	if tr.NewDurationMinutes != 60 {
		t.Errorf("同家族时长应不变, got %d", tr.NewDurationMinutes)
	}
	if tr.PairedDay != nil || tr.DropPaired || tr.RepointPaired {
		t.Error("同家族换日不应产生配对动作")
	}
}

func TestTransformDurationTwiceToOnce(t *testing.T) {
	// 双周 60 分钟 → 单周应为 120 分钟，且合并删除配对条目
	tr, err := TransformDuration(model.DayGroupTwiceA, model.DayGroupOnceC, model.Friday, 60)
	if err != nil {
		t.Fatalf("双周转单周不应失败: %v", err)
	}
	if tr.NewDurationMinutes != 120 {
		t.Errorf("时长应翻倍为 120, got %d", tr.NewDurationMinutes)
	}
	if !tr.DropPaired {
		t.Error("双周转单周应标记删除配对条目")
	}
	if tr.PairedDay != nil {
		t.Error("单周目标不应派生搭档日")
	}
}

func TestTransformDurationOnceToTwice(t *testing.T) {
	// 单周 120 分钟 → 双周应为 60 分钟，周二的搭档日是周四
	tr, err := TransformDuration(model.DayGroupOnceC, model.DayGroupTwiceB, model.Tuesday, 120)
	if err != nil {
		t.Fatalf("单周转双周不应失败: %v", err)
	}
	if tr.NewDurationMinutes != 60 {
		t.Errorf("时长应减半为 60, got %d", tr.NewDurationMinutes)
	}
	if tr.PairedDay == nil || *tr.PairedDay != model.Thursday {
		t.Errorf("搭档日应为周四, got %v", tr.PairedDay)
	}
	if tr.RepointPaired {
		t.Error("单周转双周应新建配对而非改指")
	}
}

func TestTransformDurationOnceToTwiceOddMinutes(t *testing.T) {
	_, err := TransformDuration(model.DayGroupOnceC, model.DayGroupTwiceA, model.Monday, 135)
	if !errors.Is(err, ErrOddDuration) {
		t.Errorf("奇数分钟应拒绝, got %v", err)
	}
}

func TestTransformDurationTwiceToTwice(t *testing.T) {
	// twice_a 周一 → twice_b 周二：时长不变，配对条目改指周四
	tr, err := TransformDuration(model.DayGroupTwiceA, model.DayGroupTwiceB, model.Tuesday, 90)
	if err != nil {
		t.Fatalf("双周转双周不应失败: %v", err)
	}
	if tr.NewDurationMinutes != 90 {
		t.Errorf("时长应不变, got %d", tr.NewDurationMinutes)
	}
	if !tr.RepointPaired {
		t.Error("双周转双周应标记改指配对条目")
	}
	if tr.PairedDay == nil || *tr.PairedDay != model.Thursday {
		t.Errorf("搭档日应为周四, got %v", tr.PairedDay)
	}
}

func TestTransformDurationDayNotInGroup(t *testing.T) {
	// once_c 只绑定周五
	_, err := TransformDuration(model.DayGroupTwiceA, model.DayGroupOnceC, model.Saturday, 60)
	if !errors.Is(err, ErrDayNotInGroup) {
		t.Errorf("目标日不属于家族应拒绝, got %v", err)
	}
}

func TestTransformDurationUnknownGroup(t *testing.T) {
	_, err := TransformDuration(model.DayGroup("weird"), model.DayGroupOnceC, model.Friday, 60)
	if !errors.Is(err, ErrUnknownDayGroup) {
		t.Errorf("未知家族标签应拒绝, got %v", err)
	}
}

// 往返换算守恒：双周 → 单周 → 双周应回到原时长
func TestTransformDurationRoundTrip(t *testing.T) {
	for _, minutes := range []int{30, 60, 90, 120} {
		toOnce, err := TransformDuration(model.DayGroupTwiceA, model.DayGroupOnceC, model.Friday, minutes)
		if err != nil {
			t.Fatalf("minutes=%d 转单周失败: %v", minutes, err)
		}
		back, err := TransformDuration(model.DayGroupOnceC, model.DayGroupTwiceA, model.Monday, toOnce.NewDurationMinutes)
		if err != nil {
			t.Fatalf("minutes=%d 转回双周失败: %v", minutes, err)
		}
		if back.NewDurationMinutes != minutes {
			t.Errorf("minutes=%d 往返后为 %d, 周接触分钟数未守恒", minutes, back.NewDurationMinutes)
		}
	}
}

func TestPlacementForDurationDivisible(t *testing.T) {
	slot := &model.TimeSlot{StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60}
	span, start, end, err := placementForDuration(slot, 120)
	if err != nil {
		t.Fatalf("整除时长不应失败: %v", err)
	}
	if span != 2 {
		t.Errorf("120 分钟落入 60 分钟段应占 2 段, got %d", span)
	}
	if start != nil || end != nil {
		t.Error("整除时长不应回退自定义时间")
	}
}

func TestPlacementForDurationCustomFallback(t *testing.T) {
	slot := &model.TimeSlot{StartTime: "09:00", EndTime: "10:30", DurationMinutes: 90}
	span, start, end, err := placementForDuration(slot, 120)
	if err != nil {
		t.Fatalf("非整除时长不应失败: %v", err)
	}
	if span != 1 {
		t.Errorf("自定义时间回退应占 1 段, got %d", span)
	}
	if start == nil || end == nil {
		t.Fatal("非整除时长应回退自定义时间")
	}
	if *start != "09:00" || *end != "11:00" {
		t.Errorf("自定义区间应为 09:00-11:00, got %s-%s", *start, *end)
	}
	s, _ := model.MinutesOfDay(*start)
	e, _ := model.MinutesOfDay(*end)
	if e-s != 120 {
		t.Errorf("自定义区间分钟数未守恒: %d", e-s)
	}
}
