package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User          UserRepository
	Room          RoomRepository
	TimeSlot      TimeSlotRepository
	SessionBlock  SessionBlockRepository
	Schedule      ScheduleRepository
	Entry         ScheduleEntryRepository
	ChangeRequest ChangeRequestRepository
	Tx            TxManager
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		Room:          NewRoomRepo(db),
		TimeSlot:      NewTimeSlotRepo(db),
		SessionBlock:  NewSessionBlockRepo(db),
		Schedule:      NewScheduleRepo(db),
		Entry:         NewScheduleEntryRepo(db),
		ChangeRequest: NewChangeRequestRepo(db),
		Tx:            &gormTxManager{db: db},
	}
}

// TxManager 事务执行器
// fn 收到的 Repository 其全部数据访问均落在同一事务内；
// fn 返回错误时整个事务回滚，否则提交
type TxManager interface {
	Transaction(ctx context.Context, fn func(txRepo *Repository) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
