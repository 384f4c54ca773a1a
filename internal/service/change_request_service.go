package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/model"
	"class-schedule/backend/internal/repository"
)

// ── 调课模块业务错误 ──

var (
	ErrRequestNotFound   = errors.New("调课申请不存在")
	ErrEntryNotFound     = errors.New("排课条目不存在")
	ErrDuplicateRequest  = errors.New("该条目已存在待审批的调课申请")
	ErrRequestNotPending = errors.New("调课申请已进入终态，不可执行此操作")
	ErrNotRequester      = errors.New("只有申请人本人可以撤销申请")
	ErrScheduleLocked    = errors.New("课表已锁定或归档，不再接受调课")
	ErrInvalidTarget     = errors.New("调课目标无效")
)

// ConflictError 审批被时间冲突拒绝
// 携带权威复检得到的全部冲突明细，供调用方原样返回给前端
type ConflictError struct {
	Conflicts []dto.ConflictDetail
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("检测到 %d 处时间冲突", len(e.Conflicts))
}

// ChangeRequestService 调课申请业务接口
//
// 状态机：pending 为唯一初始态；approved / rejected / cancelled 均为
// 终态。approved 是唯一会修改课表的迁移，且与课表变更在同一事务内。
// 操作者身份一律经显式参数传入，不从 context 读取。
type ChangeRequestService interface {
	// 提交调课申请（同一条目最多一条 pending）
	Submit(ctx context.Context, req *dto.SubmitChangeRequestRequest, requesterID string) (*dto.ChangeRequestResponse, error)
	// 撤销申请（仅申请人本人、仅 pending 态）
	Cancel(ctx context.Context, requestID, callerID string) (*dto.ChangeRequestResponse, error)
	// 审批申请（approve / reject；approve 内含权威冲突复检与课表变更）
	Review(ctx context.Context, requestID string, req *dto.ReviewChangeRequestRequest, reviewerID string) (*dto.ChangeRequestResponse, error)
	// 查询单条申请
	GetByID(ctx context.Context, requestID string) (*dto.ChangeRequestResponse, error)
	// 申请列表（管理视角，支持按课表/状态过滤）
	List(ctx context.Context, req *dto.ChangeRequestListRequest) ([]dto.ChangeRequestResponse, int64, error)
	// 我的申请列表
	ListMine(ctx context.Context, requesterID string, req *dto.ChangeRequestListRequest) ([]dto.ChangeRequestResponse, int64, error)
}

type changeRequestService struct {
	repo          *repository.Repository
	logger        *zap.Logger
	locks         *scheduleLocks
	legacyPairing bool
}

// NewChangeRequestService 创建 ChangeRequestService 实例
func NewChangeRequestService(repo *repository.Repository, logger *zap.Logger, legacyPairing bool) ChangeRequestService {
	return &changeRequestService{
		repo:          repo,
		logger:        logger,
		locks:         newScheduleLocks(),
		legacyPairing: legacyPairing,
	}
}

// ════════════════════════════════════════════════════════════
// Submit — 提交申请
// ════════════════════════════════════════════════════════════

func (s *changeRequestService) Submit(ctx context.Context, req *dto.SubmitChangeRequestRequest, requesterID string) (*dto.ChangeRequestResponse, error) {
	entry, err := s.repo.Entry.GetByID(ctx, req.EntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("查询排课条目失败", zap.Error(err))
		return nil, err
	}

	schedule, err := s.repo.Schedule.GetByID(ctx, entry.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	if !schedule.AcceptsEdits() {
		return nil, ErrScheduleLocked
	}

	targetSlot, targetDay, err := s.validateTarget(ctx, s.repo, req.TargetSlotID, req.TargetRoomID, req.TargetDay)
	if err != nil {
		return nil, err
	}

	// 提交时即校验换算可行性，让奇数分钟一类的硬伤尽早失败
	if entry.TimeSlot == nil {
		return nil, fmt.Errorf("条目 %s 未加载时间段关联", entry.EntryID)
	}
	sourceMinutes, err := entry.DurationMinutes(entry.TimeSlot)
	if err != nil {
		return nil, err
	}
	if _, err := TransformDuration(entry.TimeSlot.DayGroup, targetSlot.DayGroup, targetDay, sourceMinutes); err != nil {
		return nil, err
	}

	// 预检重复提交；并发窗口由部分唯一索引兜底
	if _, err := s.repo.ChangeRequest.GetPendingByEntry(ctx, req.EntryID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询待审批申请失败", zap.Error(err))
		return nil, err
	}

	request := &model.ChangeRequest{
		EntryID:      req.EntryID,
		RequesterID:  requesterID,
		TargetDay:    targetDay,
		TargetSlotID: req.TargetSlotID,
		TargetRoomID: req.TargetRoomID,
		Reason:       req.Reason,
		Status:       model.ChangeRequestPending,
	}
	request.CreatedBy = &requesterID
	request.UpdatedBy = &requesterID

	if err := s.repo.ChangeRequest.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRequest
		}
		s.logger.Error("创建调课申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("调课申请已提交",
		zap.String("change_request_id", request.ChangeRequestID),
		zap.String("entry_id", req.EntryID),
		zap.String("requester_id", requesterID))

	return s.reload(ctx, request.ChangeRequestID)
}

// validateTarget 校验目标时间段/教室/星期三元组
func (s *changeRequestService) validateTarget(ctx context.Context, repo *repository.Repository, slotID, roomID string, day int) (*model.TimeSlot, model.Weekday, error) {
	targetSlot, err := repo.TimeSlot.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrInvalidTarget
		}
		return nil, 0, err
	}
	if _, err := repo.Room.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrInvalidTarget
		}
		return nil, 0, err
	}
	targetDay := model.Weekday(day)
	if !targetDay.Valid() || !targetSlot.DayGroup.Contains(targetDay) {
		return nil, 0, ErrInvalidTarget
	}
	return targetSlot, targetDay, nil
}

// ════════════════════════════════════════════════════════════
// Cancel — 申请人撤销
// ════════════════════════════════════════════════════════════

func (s *changeRequestService) Cancel(ctx context.Context, requestID, callerID string) (*dto.ChangeRequestResponse, error) {
	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		request, err := txRepo.ChangeRequest.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Terminal() {
			return ErrRequestNotPending
		}
		if request.RequesterID != callerID {
			return ErrNotRequester
		}

		request.Status = model.ChangeRequestCancelled
		request.UpdatedBy = &callerID
		return txRepo.ChangeRequest.Update(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("调课申请已撤销",
		zap.String("change_request_id", requestID),
		zap.String("caller_id", callerID))

	return s.reload(ctx, requestID)
}

// ════════════════════════════════════════════════════════════
// Review — 审批
// ════════════════════════════════════════════════════════════

func (s *changeRequestService) Review(ctx context.Context, requestID string, req *dto.ReviewChangeRequestRequest, reviewerID string) (*dto.ChangeRequestResponse, error) {
	switch req.Decision {
	case "reject":
		if err := s.reject(ctx, requestID, req.Notes, reviewerID); err != nil {
			return nil, err
		}
	case "approve":
		if err := s.approve(ctx, requestID, req.Notes, reviewerID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("未知的审批决定 %q", req.Decision)
	}
	return s.reload(ctx, requestID)
}

// reject 驳回：仅状态迁移，不触碰课表
func (s *changeRequestService) reject(ctx context.Context, requestID, notes, reviewerID string) error {
	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		request, err := txRepo.ChangeRequest.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Terminal() {
			return ErrRequestNotPending
		}
		return s.stampReview(ctx, txRepo, request, model.ChangeRequestRejected, notes, reviewerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("调课申请已驳回",
		zap.String("change_request_id", requestID),
		zap.String("reviewer_id", reviewerID))
	return nil
}

// approve 批准：权威冲突复检 + 课表变更 + 状态迁移，单事务完成
//
// 临界区两道闸：先取课表级进程内互斥锁，再在事务内对申请行、条目行、
// 课表行及目标日（含搭档日）全部条目行加 FOR UPDATE。复检通过后才写入；
// 任一步失败整个事务回滚，申请保持 pending。
func (s *changeRequestService) approve(ctx context.Context, requestID, notes, reviewerID string) error {
	// 互斥锁按课表分键，先行读出课表 ID（此读不在临界区内，仅用于选锁）
	request, err := s.repo.ChangeRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if request.Entry == nil {
		return ErrEntryNotFound
	}
	unlock := s.locks.Acquire(request.Entry.ScheduleID)
	defer unlock()

	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		return s.approveLocked(ctx, txRepo, requestID, notes, reviewerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("调课申请已批准",
		zap.String("change_request_id", requestID),
		zap.String("reviewer_id", reviewerID))
	return nil
}

func (s *changeRequestService) approveLocked(ctx context.Context, txRepo *repository.Repository, requestID, notes, reviewerID string) error {
	// 1. 锁申请行，复检状态
	request, err := txRepo.ChangeRequest.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if request.Terminal() {
		return ErrRequestNotPending
	}

	// 2. 锁条目行与课表行，复检发布闸门
	entry, err := txRepo.Entry.GetByIDForUpdate(ctx, request.EntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	schedule, err := txRepo.Schedule.GetByIDForUpdate(ctx, entry.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	if !schedule.AcceptsEdits() {
		return ErrScheduleLocked
	}

	// 3. 校验目标并换算时长
	targetSlot, targetDay, err := s.validateTarget(ctx, txRepo,
		request.TargetSlotID, request.TargetRoomID, int(request.TargetDay))
	if err != nil {
		return err
	}
	sourceSlot, err := txRepo.TimeSlot.GetByID(ctx, entry.TimeSlotID)
	if err != nil {
		return err
	}
	sourceMinutes, err := entry.DurationMinutes(sourceSlot)
	if err != nil {
		return err
	}
	transform, err := TransformDuration(sourceSlot.DayGroup, targetSlot.DayGroup, targetDay, sourceMinutes)
	if err != nil {
		return err
	}

	// 4. 定位配对条目，构造排除集
	paired, err := findPairedEntry(ctx, txRepo, entry, sourceSlot, s.legacyPairing)
	if err != nil {
		return err
	}
	exclude := map[string]struct{}{entry.EntryID: {}}
	// 仅当本次迁移会删除或改写配对条目时才将其排除；
	// 同家族换日配对条目原位不动，仍是在册占用，须参与冲突检测
	if paired != nil && (transform.DropPaired || transform.RepointPaired) {
		exclude[paired.EntryID] = struct{}{}
	}

	// 5. 权威冲突复检：目标日，双周目标再加搭档日
	slots, err := s.slotIndex(ctx, txRepo)
	if err != nil {
		return err
	}
	startMinutes, err := model.MinutesOfDay(targetSlot.StartTime)
	if err != nil {
		return err
	}
	proposal := PlacementProposal{
		Day:             targetDay,
		RoomID:          request.TargetRoomID,
		FacultyID:       entry.FacultyID,
		StartMinutes:    startMinutes,
		EndMinutes:      startMinutes + transform.NewDurationMinutes,
		ExcludeEntryIDs: exclude,
	}

	checkDays := []model.Weekday{targetDay}
	if transform.PairedDay != nil {
		checkDays = append(checkDays, *transform.PairedDay)
	}
	var conflicts []dto.ConflictDetail
	for _, day := range checkDays {
		dayEntries, err := txRepo.Entry.ListByScheduleAndDayForUpdate(ctx, entry.ScheduleID, day)
		if err != nil {
			return err
		}
		dayProposal := proposal
		dayProposal.Day = day
		found, err := DetectConflicts(dayEntries, slots, dayProposal)
		if err != nil {
			return err
		}
		conflicts = append(conflicts, found...)
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	// 6. 落位并写入
	span, customStart, customEnd, err := placementForDuration(targetSlot, transform.NewDurationMinutes)
	if err != nil {
		return err
	}

	entry.RoomID = request.TargetRoomID
	entry.TimeSlotID = request.TargetSlotID
	entry.Day = targetDay
	entry.SlotsSpan = span
	entry.CustomStart = customStart
	entry.CustomEnd = customEnd
	entry.UpdatedBy = &reviewerID

	switch {
	case transform.DropPaired:
		// 双周 → 单周：配对条目并入本条目后删除
		if paired != nil {
			if err := txRepo.Entry.Delete(ctx, paired.EntryID, reviewerID); err != nil {
				return err
			}
		}
		entry.SessionGroupID = nil

	case transform.RepointPaired:
		// 双周 ↔ 双周：配对条目随迁至新家族的搭档日
		if paired != nil {
			if entry.SessionGroupID == nil {
				// 推断得到的历史配对，顺手补写分组标识
				groupID := uuid.New().String()
				entry.SessionGroupID = &groupID
			}
			paired.SessionGroupID = entry.SessionGroupID
			paired.RoomID = request.TargetRoomID
			paired.TimeSlotID = request.TargetSlotID
			paired.Day = *transform.PairedDay
			paired.SlotsSpan = span
			paired.CustomStart = customStart
			paired.CustomEnd = customEnd
			paired.UpdatedBy = &reviewerID
			if err := txRepo.Entry.Update(ctx, paired); err != nil {
				return err
			}
		}

	case transform.PairedDay != nil:
		// 单周 → 双周：在搭档日新建配对条目，两条共享新分组标识
		groupID := uuid.New().String()
		entry.SessionGroupID = &groupID
		partner := &model.ScheduleEntry{
			ScheduleID:     entry.ScheduleID,
			SessionBlockID: entry.SessionBlockID,
			RoomID:         request.TargetRoomID,
			TimeSlotID:     request.TargetSlotID,
			FacultyID:      entry.FacultyID,
			Day:            *transform.PairedDay,
			IsLab:          entry.IsLab,
			CustomStart:    customStart,
			CustomEnd:      customEnd,
			SessionGroupID: &groupID,
			SlotsSpan:      span,
		}
		partner.CreatedBy = &reviewerID
		partner.UpdatedBy = &reviewerID
		if err := txRepo.Entry.Create(ctx, partner); err != nil {
			return err
		}
	}

	if err := txRepo.Entry.Update(ctx, entry); err != nil {
		return err
	}

	// 7. 申请进入终态
	return s.stampReview(ctx, txRepo, request, model.ChangeRequestApproved, notes, reviewerID)
}

// stampReview 写入审批结论
func (s *changeRequestService) stampReview(ctx context.Context, txRepo *repository.Repository, request *model.ChangeRequest, status, notes, reviewerID string) error {
	now := nowUTC()
	request.Status = status
	request.ReviewNotes = notes
	request.ReviewerID = &reviewerID
	request.ReviewedAt = &now
	request.UpdatedBy = &reviewerID
	return txRepo.ChangeRequest.Update(ctx, request)
}

// slotIndex 加载全量时间段索引（参照数据，量小）
func (s *changeRequestService) slotIndex(ctx context.Context, repo *repository.Repository) (map[string]*model.TimeSlot, error) {
	slots, err := repo.TimeSlot.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*model.TimeSlot, len(slots))
	for i := range slots {
		index[slots[i].TimeSlotID] = &slots[i]
	}
	return index, nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *changeRequestService) GetByID(ctx context.Context, requestID string) (*dto.ChangeRequestResponse, error) {
	return s.reload(ctx, requestID)
}

func (s *changeRequestService) List(ctx context.Context, req *dto.ChangeRequestListRequest) ([]dto.ChangeRequestResponse, int64, error) {
	return s.list(ctx, repository.ChangeRequestFilter{
		ScheduleID: req.ScheduleID,
		Status:     req.Status,
		Offset:     req.GetOffset(),
		Limit:      req.GetPageSize(),
	})
}

func (s *changeRequestService) ListMine(ctx context.Context, requesterID string, req *dto.ChangeRequestListRequest) ([]dto.ChangeRequestResponse, int64, error) {
	return s.list(ctx, repository.ChangeRequestFilter{
		ScheduleID:  req.ScheduleID,
		Status:      req.Status,
		RequesterID: requesterID,
		Offset:      req.GetOffset(),
		Limit:       req.GetPageSize(),
	})
}

func (s *changeRequestService) list(ctx context.Context, filter repository.ChangeRequestFilter) ([]dto.ChangeRequestResponse, int64, error) {
	requests, total, err := s.repo.ChangeRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询调课申请列表失败", zap.Error(err))
		return nil, 0, err
	}
	items := make([]dto.ChangeRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *changeRequestToResponse(&requests[i]))
	}
	return items, total, nil
}

// reload 以完整关联重新加载申请并转 DTO
func (s *changeRequestService) reload(ctx context.Context, requestID string) (*dto.ChangeRequestResponse, error) {
	request, err := s.repo.ChangeRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return changeRequestToResponse(request), nil
}
