package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/model"
	"class-schedule/backend/internal/repository"
)

// ── 课表模块业务错误 ──

var ErrScheduleNotFound = errors.New("课表不存在")

// ScheduleService 课表查询与预检业务接口
type ScheduleService interface {
	// 课表详情（含全部条目）
	GetSchedule(ctx context.Context, scheduleID string) (*dto.ScheduleResponse, error)
	// 课表列表
	ListSchedules(ctx context.Context) ([]dto.ScheduleBrief, error)
	// 我的课表条目
	GetMyEntries(ctx context.Context, scheduleID, facultyID string) ([]dto.ScheduleEntryResponse, error)
	// 调课预检（advisory）：只读模拟，不加锁不落库；
	// 审批时仍会以行锁复检，预检通过不构成承诺
	CheckConflict(ctx context.Context, entryID string, req *dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
	// 教师周负荷报表
	LoadReport(ctx context.Context, scheduleID string) (*dto.LoadReportResponse, error)
}

type scheduleService struct {
	repo          *repository.Repository
	logger        *zap.Logger
	legacyPairing bool
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger, legacyPairing bool) ScheduleService {
	return &scheduleService{repo: repo, logger: logger, legacyPairing: legacyPairing}
}

func (s *scheduleService) GetSchedule(ctx context.Context, scheduleID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	entries, err := s.repo.Entry.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询课表条目失败", zap.Error(err))
		return nil, err
	}
	return scheduleToResponse(schedule, entries), nil
}

func (s *scheduleService) ListSchedules(ctx context.Context) ([]dto.ScheduleBrief, error) {
	schedules, err := s.repo.Schedule.List(ctx)
	if err != nil {
		s.logger.Error("查询课表列表失败", zap.Error(err))
		return nil, err
	}
	briefs := make([]dto.ScheduleBrief, 0, len(schedules))
	for i := range schedules {
		briefs = append(briefs, dto.ScheduleBrief{
			ID:           schedules[i].ScheduleID,
			AcademicTerm: schedules[i].AcademicTerm,
			Status:       schedules[i].Status,
		})
	}
	return briefs, nil
}

func (s *scheduleService) GetMyEntries(ctx context.Context, scheduleID, facultyID string) ([]dto.ScheduleEntryResponse, error) {
	if _, err := s.repo.Schedule.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	entries, err := s.repo.Entry.ListByFaculty(ctx, scheduleID, facultyID)
	if err != nil {
		s.logger.Error("查询教师课表失败", zap.Error(err))
		return nil, err
	}
	items := make([]dto.ScheduleEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, entryToResponse(&entries[i]))
	}
	return items, nil
}

// CheckConflict 预检拟定搬迁
//
// 与审批复检共用同一套换算与检测逻辑，保证两边口径一致；
// 差别仅在于预检不取锁，结果可能被并发审批立即作废。
func (s *scheduleService) CheckConflict(ctx context.Context, entryID string, req *dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	entry, err := s.repo.Entry.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("查询排课条目失败", zap.Error(err))
		return nil, err
	}
	if entry.TimeSlot == nil {
		return nil, ErrInvalidTarget
	}

	targetSlot, err := s.repo.TimeSlot.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTarget
		}
		return nil, err
	}
	if _, err := s.repo.Room.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTarget
		}
		return nil, err
	}
	targetDay := model.Weekday(req.Day)
	if !targetDay.Valid() || !targetSlot.DayGroup.Contains(targetDay) {
		return nil, ErrInvalidTarget
	}

	sourceMinutes, err := entry.DurationMinutes(entry.TimeSlot)
	if err != nil {
		return nil, err
	}
	transform, err := TransformDuration(entry.TimeSlot.DayGroup, targetSlot.DayGroup, targetDay, sourceMinutes)
	if err != nil {
		return nil, err
	}

	paired, err := findPairedEntry(ctx, s.repo, entry, entry.TimeSlot, s.legacyPairing)
	if err != nil {
		return nil, err
	}
	exclude := map[string]struct{}{entry.EntryID: {}}
	// 同家族换日配对条目原位不动，仍是在册占用，须参与冲突检测
	if paired != nil && (transform.DropPaired || transform.RepointPaired) {
		exclude[paired.EntryID] = struct{}{}
	}

	startMinutes, err := model.MinutesOfDay(targetSlot.StartTime)
	if err != nil {
		return nil, err
	}
	proposal := PlacementProposal{
		Day:             targetDay,
		RoomID:          req.RoomID,
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
		dayEntries, err := s.repo.Entry.ListByScheduleAndDay(ctx, entry.ScheduleID, day)
		if err != nil {
			return nil, err
		}
		dayProposal := proposal
		dayProposal.Day = day
		found, err := DetectConflicts(dayEntries, nil, dayProposal)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, found...)
	}

	resp := &dto.ConflictCheckResponse{
		HasConflict:         len(conflicts) > 0,
		Conflicts:           conflicts,
		TransformedDuration: transform.NewDurationMinutes,
	}
	if transform.PairedDay != nil {
		day := int(*transform.PairedDay)
		resp.PairedDay = &day
	}
	return resp, nil
}

// LoadReport 教师周负荷报表
//
// 以 session group 为统计单位：双周课次的两条条目算同一门课，
// 课次数与学分只计一次；周接触分钟数按两条条目实际时长累加。
// 历史上按「双周时长 ÷2」折算的口径会把自定义时长的课算错，弃用。
func (s *scheduleService) LoadReport(ctx context.Context, scheduleID string) (*dto.LoadReportResponse, error) {
	if _, err := s.repo.Schedule.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	entries, err := s.repo.Entry.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询课表条目失败", zap.Error(err))
		return nil, err
	}

	type facultyLoad struct {
		name       string
		minutes    int
		groupsSeen map[string]struct{}
		unitsSeen  map[string]int
	}
	loads := make(map[string]*facultyLoad)

	for i := range entries {
		e := &entries[i]
		if e.FacultyID == nil {
			continue
		}
		load, ok := loads[*e.FacultyID]
		if !ok {
			load = &facultyLoad{
				groupsSeen: make(map[string]struct{}),
				unitsSeen:  make(map[string]int),
			}
			if e.Faculty != nil {
				load.name = e.Faculty.Name
			}
			loads[*e.FacultyID] = load
		}

		minutes, err := e.DurationMinutes(e.TimeSlot)
		if err != nil {
			return nil, err
		}
		load.minutes += minutes

		// 配对条目共享分组标识，只计一个课次；无标识的条目自成一组
		groupKey := e.EntryID
		if e.SessionGroupID != nil && *e.SessionGroupID != "" {
			groupKey = *e.SessionGroupID
		}
		load.groupsSeen[groupKey] = struct{}{}

		if e.SessionBlock != nil && e.SessionBlock.Subject != nil {
			load.unitsSeen[e.SessionBlockID] = e.SessionBlock.Subject.Units
		}
	}

	report := &dto.LoadReportResponse{ScheduleID: scheduleID}
	for facultyID, load := range loads {
		units := 0
		for _, u := range load.unitsSeen {
			units += u
		}
		report.Faculty = append(report.Faculty, dto.FacultyLoadResponse{
			FacultyID:     facultyID,
			FacultyName:   load.name,
			SessionCount:  len(load.groupsSeen),
			WeeklyMinutes: load.minutes,
			Units:         float64(units),
		})
	}
	sort.Slice(report.Faculty, func(i, j int) bool {
		return report.Faculty[i].FacultyName < report.Faculty[j].FacultyName
	})
	return report, nil
}
