package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"class-schedule/backend/internal/model"
	pkgerrors "class-schedule/backend/pkg/errors"
)

// ChangeRequestFilter 申请列表过滤条件
type ChangeRequestFilter struct {
	ScheduleID  string
	Status      string
	RequesterID string
	Offset      int
	Limit       int
}

// ChangeRequestRepository 调课申请数据访问接口
type ChangeRequestRepository interface {
	// Create 依赖部分唯一索引拦截并发重复提交；
	// 唯一约束冲突以 gorm.ErrDuplicatedKey 返回
	Create(ctx context.Context, req *model.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*model.ChangeRequest, error)
	// GetByIDForUpdate 行级锁读取（状态迁移临界区内使用，必须在事务中调用）
	GetByIDForUpdate(ctx context.Context, id string) (*model.ChangeRequest, error)
	GetPendingByEntry(ctx context.Context, entryID string) (*model.ChangeRequest, error)
	List(ctx context.Context, filter ChangeRequestFilter) ([]model.ChangeRequest, int64, error)
	Update(ctx context.Context, req *model.ChangeRequest) error
}

type changeRequestRepo struct {
	db *gorm.DB
}

// NewChangeRequestRepo 创建 ChangeRequestRepository 实例
func NewChangeRequestRepo(db *gorm.DB) ChangeRequestRepository {
	return &changeRequestRepo{db: db}
}

func (r *changeRequestRepo) requestPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Entry").
		Preload("Entry.SessionBlock").Preload("Entry.SessionBlock.Subject").
		Preload("Entry.Room").
		Preload("Entry.TimeSlot").
		Preload("Entry.Faculty").
		Preload("Requester").
		Preload("TargetSlot").
		Preload("TargetRoom").
		Preload("Reviewer")
}

func (r *changeRequestRepo) Create(ctx context.Context, req *model.ChangeRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *changeRequestRepo) GetByID(ctx context.Context, id string) (*model.ChangeRequest, error) {
	var req model.ChangeRequest
	err := r.requestPreloads(r.db.WithContext(ctx)).
		Where("change_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *changeRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.ChangeRequest, error) {
	// FOR UPDATE 不能与 Preload 的关联查询合用，只锁申请行本身
	var req model.ChangeRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("change_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *changeRequestRepo) GetPendingByEntry(ctx context.Context, entryID string) (*model.ChangeRequest, error) {
	var req model.ChangeRequest
	err := r.db.WithContext(ctx).
		Where("entry_id = ? AND status = ?", entryID, model.ChangeRequestPending).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *changeRequestRepo) List(ctx context.Context, filter ChangeRequestFilter) ([]model.ChangeRequest, int64, error) {
	var requests []model.ChangeRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ChangeRequest{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != "" {
		db = db.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.ScheduleID != "" {
		db = db.Where("entry_id IN (?)",
			r.db.Model(&model.ScheduleEntry{}).
				Select("entry_id").
				Where("schedule_id = ?", filter.ScheduleID))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.requestPreloads(db).
		Offset(filter.Offset).Limit(filter.Limit).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, total, err
}

func (r *changeRequestRepo) Update(ctx context.Context, req *model.ChangeRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(req).
		Where("change_request_id = ? AND version = ?", req.ChangeRequestID, oldVersion).
		Updates(map[string]interface{}{
			"status":       req.Status,
			"review_notes": req.ReviewNotes,
			"reviewer_id":  req.ReviewerID,
			"reviewed_at":  req.ReviewedAt,
			"updated_by":   req.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}
