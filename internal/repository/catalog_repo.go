package repository

import (
	"context"

	"gorm.io/gorm"

	"class-schedule/backend/internal/model"
)

// ── 目录参照数据访问接口（外部目录系统维护，本服务只读） ──

// RoomRepository 教室数据访问接口
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
}

// TimeSlotRepository 时间段数据访问接口
type TimeSlotRepository interface {
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	List(ctx context.Context) ([]model.TimeSlot, error)
}

// SessionBlockRepository 教学单元数据访问接口
type SessionBlockRepository interface {
	GetByID(ctx context.Context, id string) (*model.SessionBlock, error)
}

// ── Room Repository 实现 ──

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) List(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Order("building ASC, name ASC").
		Find(&rooms).Error
	return rooms, err
}

// ── TimeSlot Repository 实现 ──

type timeSlotRepo struct {
	db *gorm.DB
}

// NewTimeSlotRepo 创建 TimeSlotRepository 实例
func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := r.db.WithContext(ctx).
		Where("time_slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepo) List(ctx context.Context) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	err := r.db.WithContext(ctx).
		Order("display_priority ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

// ── SessionBlock Repository 实现 ──

type sessionBlockRepo struct {
	db *gorm.DB
}

// NewSessionBlockRepo 创建 SessionBlockRepository 实例
func NewSessionBlockRepo(db *gorm.DB) SessionBlockRepository {
	return &sessionBlockRepo{db: db}
}

func (r *sessionBlockRepo) GetByID(ctx context.Context, id string) (*model.SessionBlock, error) {
	var block model.SessionBlock
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("session_block_id = ?", id).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}
