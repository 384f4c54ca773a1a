package service

import (
	"errors"

	"class-schedule/backend/internal/model"
)

// ── 时长换算错误 ──

var (
	ErrUnknownDayGroup = errors.New("未知的周频家族标签")
	ErrOddDuration     = errors.New("时长为奇数分钟，无法平分为双周课次")
	ErrDayNotInGroup   = errors.New("目标星期不属于目标时间段的周频家族")
)

// DurationTransform 跨家族搬迁的时长换算结果
type DurationTransform struct {
	// NewDurationMinutes 搬迁后的单次时长（周接触分钟数守恒）
	NewDurationMinutes int
	// PairedDay 目标为双周家族时，搭档日（由家族固定配对表导出）
	PairedDay *model.Weekday
	// DropPaired 双周 → 单周：原配对条目应被合并删除
	DropPaired bool
	// RepointPaired 双周 → 另一双周家族：原配对条目改指向新家族的搭档日
	RepointPaired bool
}

// TransformDuration 计算排课条目跨周频家族搬迁后的时长与配对含义
//
// 规则（每周接触分钟数守恒）：
//   - 同家族换日：时长不变
//   - 双周 → 单周：时长 ×2，配对条目合并删除
//   - 单周 → 双周：时长 ÷2（奇数分钟拒绝），派生搭档日
//   - 双周A ↔ 双周B：时长不变，两条配对条目共同改指新家族的两天
//
// 必须先于冲突检测调用，使冲突检查基于搬迁后的区间进行。
func TransformDuration(source, target model.DayGroup, targetDay model.Weekday, sourceMinutes int) (*DurationTransform, error) {
	if !source.Valid() || !target.Valid() {
		return nil, ErrUnknownDayGroup
	}
	if !target.Contains(targetDay) {
		return nil, ErrDayNotInGroup
	}

	switch {
	case source == target:
		// 同家族换日（或单周家族原地调整时段/教室）
		return &DurationTransform{NewDurationMinutes: sourceMinutes}, nil

	case source.TwiceWeekly() && !target.TwiceWeekly():
		// 双周 → 单周：两次课合并为一次
		return &DurationTransform{
			NewDurationMinutes: sourceMinutes * 2,
			DropPaired:         true,
		}, nil

	case !source.TwiceWeekly() && target.TwiceWeekly():
		// 单周 → 双周：一次课拆分为两次
		if sourceMinutes%2 != 0 {
			return nil, ErrOddDuration
		}
		partner, ok := target.PartnerDay(targetDay)
		if !ok {
			return nil, ErrDayNotInGroup
		}
		return &DurationTransform{
			NewDurationMinutes: sourceMinutes / 2,
			PairedDay:          &partner,
		}, nil

	case source.TwiceWeekly() && target.TwiceWeekly():
		// 双周A ↔ 双周B：时长不变，配对条目随迁至新家族搭档日
		partner, ok := target.PartnerDay(targetDay)
		if !ok {
			return nil, ErrDayNotInGroup
		}
		return &DurationTransform{
			NewDurationMinutes: sourceMinutes,
			PairedDay:          &partner,
			RepointPaired:      true,
		}, nil

	default:
		// 单周 → 另一单周家族：仅换日，时长不变
		return &DurationTransform{NewDurationMinutes: sourceMinutes}, nil
	}
}

// placementForDuration 将目标时长落位到时间段网格
// 时长恰为段长整数倍时以 slots_span 表达；否则回退为自定义起止时间，
// 保证分钟数严格守恒
func placementForDuration(slot *model.TimeSlot, minutes int) (span int, customStart, customEnd *string, err error) {
	if slot.DurationMinutes > 0 && minutes%slot.DurationMinutes == 0 {
		return minutes / slot.DurationMinutes, nil, nil, nil
	}
	start, err := model.MinutesOfDay(slot.StartTime)
	if err != nil {
		return 0, nil, nil, err
	}
	s := model.FormatMinutes(start)
	e := model.FormatMinutes(start + minutes)
	return 1, &s, &e, nil
}
