package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"class-schedule/backend/internal/model"
	"class-schedule/backend/internal/repository"
)

// ErrPairingAmbiguous 配对条目查找返回多个候选
// 属内部不变量被破坏：必须上抛，绝不静默择一
var ErrPairingAmbiguous = errors.New("配对条目定位失败：存在多个候选")

// findPairedEntry 定位双周课次的配对条目
//
// 优先按 session_group_id 精确匹配；存量数据缺失分组标识时，在
// legacyInference 开启的前提下按共享属性推断：同课表、同教学单元、
// 同实验标记、同时间段，且星期恰为所在双周家族的搭档日。
// 推断结果必须唯一，多于一个候选视为不变量违例。
// 未找到配对条目返回 (nil, nil)。
//
// 这是配对推断唯一的入口；新写入的条目一律携带 session_group_id，
// 推断分支仅服务于历史数据读取。
func findPairedEntry(ctx context.Context, repo *repository.Repository, entry *model.ScheduleEntry, slot *model.TimeSlot, legacyInference bool) (*model.ScheduleEntry, error) {
	// 1. 显式分组标识
	if entry.SessionGroupID != nil && *entry.SessionGroupID != "" {
		peers, err := repo.Entry.ListBySessionGroup(ctx, *entry.SessionGroupID, entry.EntryID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		switch len(peers) {
		case 0:
			return nil, nil
		case 1:
			return &peers[0], nil
		default:
			return nil, ErrPairingAmbiguous
		}
	}

	// 2. 存量数据回退推断
	if !legacyInference {
		return nil, nil
	}
	if !slot.DayGroup.TwiceWeekly() {
		return nil, nil
	}
	partner, ok := slot.DayGroup.PartnerDay(entry.Day)
	if !ok {
		return nil, nil
	}

	candidates, err := repo.Entry.ListPairCandidates(ctx,
		entry.ScheduleID, entry.SessionBlockID, entry.TimeSlotID, entry.IsLab,
		[]model.Weekday{partner}, entry.EntryID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return &candidates[0], nil
	default:
		return nil, ErrPairingAmbiguous
	}
}
