package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"class-schedule/backend/internal/model"
	pkgerrors "class-schedule/backend/pkg/errors"
)

// ScheduleRepository 课表数据访问接口
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	// GetByIDForUpdate 行级锁读取（审批临界区内使用，必须在事务中调用）
	GetByIDForUpdate(ctx context.Context, id string) (*model.Schedule, error)
	List(ctx context.Context) ([]model.Schedule, error)
}

// ScheduleEntryRepository 排课条目数据访问接口
type ScheduleEntryRepository interface {
	GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error)
	// GetByIDForUpdate 行级锁读取（审批临界区内使用，必须在事务中调用）
	GetByIDForUpdate(ctx context.Context, id string) (*model.ScheduleEntry, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.ScheduleEntry, error)
	ListByScheduleAndDay(ctx context.Context, scheduleID string, day model.Weekday) ([]model.ScheduleEntry, error)
	// ListByScheduleAndDayForUpdate 锁定某日全部条目行（审批权威复检）
	ListByScheduleAndDayForUpdate(ctx context.Context, scheduleID string, day model.Weekday) ([]model.ScheduleEntry, error)
	ListByFaculty(ctx context.Context, scheduleID, facultyID string) ([]model.ScheduleEntry, error)
	// ListBySessionGroup 按 session_group_id 查询配对条目（排除自身）
	ListBySessionGroup(ctx context.Context, groupID, excludeEntryID string) ([]model.ScheduleEntry, error)
	// ListPairCandidates 存量数据配对推断：同课表 + 同教学单元 + 同实验标记 +
	// 同时间段，且星期落在给定搭档日集合内
	ListPairCandidates(ctx context.Context, scheduleID, sessionBlockID, timeSlotID string, isLab bool, days []model.Weekday, excludeEntryID string) ([]model.ScheduleEntry, error)
	Create(ctx context.Context, entry *model.ScheduleEntry) error
	Update(ctx context.Context, entry *model.ScheduleEntry) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// ── Schedule Repository 实现 ──

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&schedules).Error
	return schedules, err
}

// ── ScheduleEntry Repository 实现 ──

type scheduleEntryRepo struct {
	db *gorm.DB
}

// NewScheduleEntryRepo 创建 ScheduleEntryRepository 实例
func NewScheduleEntryRepo(db *gorm.DB) ScheduleEntryRepository {
	return &scheduleEntryRepo{db: db}
}

// entryPreloads 条目查询的常用关联
func (r *scheduleEntryRepo) entryPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SessionBlock").Preload("SessionBlock.Subject").
		Preload("Room").
		Preload("TimeSlot").
		Preload("Faculty")
}

func (r *scheduleEntryRepo) GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.entryPreloads(r.db.WithContext(ctx)).
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleEntryRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	// FOR UPDATE 不能与 Preload 的关联查询合用，先锁行再补关联
	var entry model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleEntryRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.entryPreloads(r.db.WithContext(ctx)).
		Where("schedule_id = ?", scheduleID).
		Order("day ASC, time_slot_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) ListByScheduleAndDay(ctx context.Context, scheduleID string, day model.Weekday) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.entryPreloads(r.db.WithContext(ctx)).
		Where("schedule_id = ? AND day = ?", scheduleID, day).
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) ListByScheduleAndDayForUpdate(ctx context.Context, scheduleID string, day model.Weekday) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("schedule_id = ? AND day = ?", scheduleID, day).
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) ListByFaculty(ctx context.Context, scheduleID, facultyID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.entryPreloads(r.db.WithContext(ctx)).
		Where("schedule_id = ? AND faculty_id = ?", scheduleID, facultyID).
		Order("day ASC, time_slot_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) ListBySessionGroup(ctx context.Context, groupID, excludeEntryID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("session_group_id = ? AND entry_id != ?", groupID, excludeEntryID).
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) ListPairCandidates(ctx context.Context, scheduleID, sessionBlockID, timeSlotID string, isLab bool, days []model.Weekday, excludeEntryID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND session_block_id = ? AND time_slot_id = ? AND is_lab = ?",
			scheduleID, sessionBlockID, timeSlotID, isLab).
		Where("day IN ?", days).
		Where("entry_id != ?", excludeEntryID).
		Order("entry_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *scheduleEntryRepo) Update(ctx context.Context, entry *model.ScheduleEntry) error {
	oldVersion := entry.Version
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("entry_id = ? AND version = ?", entry.EntryID, oldVersion).
		Updates(map[string]interface{}{
			"room_id":          entry.RoomID,
			"time_slot_id":     entry.TimeSlotID,
			"faculty_id":       entry.FacultyID,
			"day":              entry.Day,
			"custom_start":     entry.CustomStart,
			"custom_end":       entry.CustomEnd,
			"session_group_id": entry.SessionGroupID,
			"slots_span":       entry.SlotsSpan,
			"updated_by":       entry.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	return nil
}

func (r *scheduleEntryRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduleEntry{}).
		Where("entry_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
		}).Error
}
