package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"class-schedule/backend/internal/model"
	"class-schedule/backend/internal/repository"
	pkgerrors "class-schedule/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots map[string]*model.TimeSlot
}

func newMockTimeSlotRepo() *mockTimeSlotRepo {
	return &mockTimeSlotRepo{slots: make(map[string]*model.TimeSlot)}
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, s := range m.slots {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock SessionBlockRepository ──

type mockSessionBlockRepo struct {
	blocks map[string]*model.SessionBlock
}

func newMockSessionBlockRepo() *mockSessionBlockRepo {
	return &mockSessionBlockRepo{blocks: make(map[string]*model.SessionBlock)}
}

func (m *mockSessionBlockRepo) GetByID(_ context.Context, id string) (*model.SessionBlock, error) {
	if b, ok := m.blocks[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ScheduleRepository ──
//
// 课表、课次、申请三张表会被并发用例读写，与真实仓储一样须并发安全：
// 共享 testRepos 的互斥锁。参照表（用户、教室、时间段、教学单元）
// 在种子数据写入后只读，无须加锁。

type mockScheduleRepo struct {
	mu        *sync.Mutex
	schedules map[string]*model.Schedule
}

func newMockScheduleRepo(mu *sync.Mutex) *mockScheduleRepo {
	return &mockScheduleRepo{mu: mu, schedules: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.schedules[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Schedule, error) {
	return m.GetByID(ctx, id)
}

func (m *mockScheduleRepo) List(_ context.Context) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Schedule
	for _, s := range m.schedules {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock ScheduleEntryRepository ──

type mockEntryRepo struct {
	mu      *sync.Mutex
	entries map[string]*model.ScheduleEntry
	seq     int

	slots  *mockTimeSlotRepo
	rooms  *mockRoomRepo
	users  *mockUserRepo
	blocks *mockSessionBlockRepo
}

func newMockEntryRepo(mu *sync.Mutex, slots *mockTimeSlotRepo, rooms *mockRoomRepo, users *mockUserRepo, blocks *mockSessionBlockRepo) *mockEntryRepo {
	return &mockEntryRepo{
		mu:      mu,
		entries: make(map[string]*model.ScheduleEntry),
		slots:   slots,
		rooms:   rooms,
		users:   users,
		blocks:  blocks,
	}
}

// attach 模拟 Preload：从参照 mock 补全关联。调用方须已持锁
func (m *mockEntryRepo) attach(e *model.ScheduleEntry) *model.ScheduleEntry {
	c := *e
	c.TimeSlot = m.slots.slots[c.TimeSlotID]
	c.Room = m.rooms.rooms[c.RoomID]
	if c.FacultyID != nil {
		c.Faculty = m.users.users[*c.FacultyID]
	}
	c.SessionBlock = m.blocks.blocks[c.SessionBlockID]
	return &c
}

func (m *mockEntryRepo) GetByID(_ context.Context, id string) (*model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return m.attach(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) GetByIDForUpdate(_ context.Context, id string) (*model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.ScheduleID == scheduleID {
			result = append(result, *m.attach(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func (m *mockEntryRepo) ListByScheduleAndDay(_ context.Context, scheduleID string, day model.Weekday) ([]model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.ScheduleID == scheduleID && e.Day == day {
			result = append(result, *m.attach(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func (m *mockEntryRepo) ListByScheduleAndDayForUpdate(ctx context.Context, scheduleID string, day model.Weekday) ([]model.ScheduleEntry, error) {
	return m.ListByScheduleAndDay(ctx, scheduleID, day)
}

func (m *mockEntryRepo) ListByFaculty(_ context.Context, scheduleID, facultyID string) ([]model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.ScheduleID == scheduleID && e.FacultyID != nil && *e.FacultyID == facultyID {
			result = append(result, *m.attach(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func (m *mockEntryRepo) ListBySessionGroup(_ context.Context, groupID, excludeEntryID string) ([]model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.EntryID == excludeEntryID {
			continue
		}
		if e.SessionGroupID != nil && *e.SessionGroupID == groupID {
			result = append(result, *m.attach(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func (m *mockEntryRepo) ListPairCandidates(_ context.Context, scheduleID, sessionBlockID, timeSlotID string, isLab bool, days []model.Weekday, excludeEntryID string) ([]model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	daySet := make(map[model.Weekday]bool, len(days))
	for _, d := range days {
		daySet[d] = true
	}
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.EntryID == excludeEntryID {
			continue
		}
		if e.ScheduleID == scheduleID && e.SessionBlockID == sessionBlockID &&
			e.TimeSlotID == timeSlotID && e.IsLab == isLab && daySet[e.Day] {
			result = append(result, *m.attach(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func (m *mockEntryRepo) Create(_ context.Context, entry *model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.EntryID == "" {
		m.seq++
		entry.EntryID = fmt.Sprintf("entry-new-%d", m.seq)
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	c := *entry
	m.entries[entry.EntryID] = &c
	return nil
}

func (m *mockEntryRepo) Update(_ context.Context, entry *model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[entry.EntryID]
	if !ok || stored.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	c := *entry
	c.TimeSlot, c.Room, c.Faculty, c.SessionBlock = nil, nil, nil, nil
	m.entries[entry.EntryID] = &c
	return nil
}

func (m *mockEntryRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// ── Mock ChangeRequestRepository ──

type mockChangeRequestRepo struct {
	mu       *sync.Mutex
	requests map[string]*model.ChangeRequest
	seq      int

	entry *mockEntryRepo
	users *mockUserRepo
	slots *mockTimeSlotRepo
	rooms *mockRoomRepo
}

func newMockChangeRequestRepo(mu *sync.Mutex, entry *mockEntryRepo, users *mockUserRepo, slots *mockTimeSlotRepo, rooms *mockRoomRepo) *mockChangeRequestRepo {
	return &mockChangeRequestRepo{
		mu:       mu,
		requests: make(map[string]*model.ChangeRequest),
		entry:    entry,
		users:    users,
		slots:    slots,
		rooms:    rooms,
	}
}

// attach 调用方须已持锁
func (m *mockChangeRequestRepo) attach(r *model.ChangeRequest) *model.ChangeRequest {
	c := *r
	if e, ok := m.entry.entries[c.EntryID]; ok {
		c.Entry = m.entry.attach(e)
	}
	c.Requester = m.users.users[c.RequesterID]
	c.TargetSlot = m.slots.slots[c.TargetSlotID]
	c.TargetRoom = m.rooms.rooms[c.TargetRoomID]
	if c.ReviewerID != nil {
		c.Reviewer = m.users.users[*c.ReviewerID]
	}
	return &c
}

func (m *mockChangeRequestRepo) Create(_ context.Context, req *model.ChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 模拟部分唯一索引：同一条目最多一条 pending
	for _, existing := range m.requests {
		if existing.EntryID == req.EntryID && existing.Status == model.ChangeRequestPending {
			return gorm.ErrDuplicatedKey
		}
	}
	if req.ChangeRequestID == "" {
		m.seq++
		req.ChangeRequestID = fmt.Sprintf("cr-%d", m.seq)
	}
	if req.Version == 0 {
		req.Version = 1
	}
	c := *req
	m.requests[req.ChangeRequestID] = &c
	return nil
}

func (m *mockChangeRequestRepo) GetByID(_ context.Context, id string) (*model.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		return m.attach(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChangeRequestRepo) GetByIDForUpdate(_ context.Context, id string) (*model.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChangeRequestRepo) GetPendingByEntry(_ context.Context, entryID string) (*model.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.EntryID == entryID && r.Status == model.ChangeRequestPending {
			return m.attach(r), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChangeRequestRepo) List(_ context.Context, filter repository.ChangeRequestFilter) ([]model.ChangeRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ChangeRequest
	for _, r := range m.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.ScheduleID != "" {
			e, ok := m.entry.entries[r.EntryID]
			if !ok || e.ScheduleID != filter.ScheduleID {
				continue
			}
		}
		result = append(result, *m.attach(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.Compare(result[i].ChangeRequestID, result[j].ChangeRequestID) < 0
	})
	total := int64(len(result))
	if filter.Offset >= len(result) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(result) {
		end = len(result)
	}
	return result[filter.Offset:end], total, nil
}

func (m *mockChangeRequestRepo) Update(_ context.Context, req *model.ChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ChangeRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version++
	c := *req
	c.Entry, c.Requester, c.TargetSlot, c.TargetRoom, c.Reviewer = nil, nil, nil, nil, nil
	m.requests[req.ChangeRequestID] = &c
	return nil
}

// ── Mock TxManager ──
//
// 事务以「快照 + 失败回滚」模拟：fn 返回错误时恢复条目、申请、课表
// 三张表的快照，从而可以真实验证审批的原子性。快照与恢复持锁进行；
// fn 本身不持锁，其中的每次仓储调用各自加锁。

type mockTxManager struct {
	mu    *sync.Mutex
	repos *testRepos
}

func (m *mockTxManager) Transaction(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	m.mu.Lock()
	entrySnap := snapshotMap(m.repos.entry.entries)
	requestSnap := snapshotMap(m.repos.request.requests)
	scheduleSnap := snapshotMap(m.repos.schedule.schedules)
	m.mu.Unlock()

	if err := fn(m.repos.toRepository()); err != nil {
		m.mu.Lock()
		m.repos.entry.entries = entrySnap
		m.repos.request.requests = requestSnap
		m.repos.schedule.schedules = scheduleSnap
		m.mu.Unlock()
		return err
	}
	return nil
}

func snapshotMap[T any](src map[string]*T) map[string]*T {
	snap := make(map[string]*T, len(src))
	for k, v := range src {
		c := *v
		snap[k] = &c
	}
	return snap
}

// ── 测试用聚合 ──

type testRepos struct {
	mu       sync.Mutex
	user     *mockUserRepo
	room     *mockRoomRepo
	slot     *mockTimeSlotRepo
	block    *mockSessionBlockRepo
	schedule *mockScheduleRepo
	entry    *mockEntryRepo
	request  *mockChangeRequestRepo
}

func newTestRepos() *testRepos {
	r := &testRepos{}
	r.user = newMockUserRepo()
	r.room = newMockRoomRepo()
	r.slot = newMockTimeSlotRepo()
	r.block = newMockSessionBlockRepo()
	r.schedule = newMockScheduleRepo(&r.mu)
	r.entry = newMockEntryRepo(&r.mu, r.slot, r.room, r.user, r.block)
	r.request = newMockChangeRequestRepo(&r.mu, r.entry, r.user, r.slot, r.room)
	return r
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:          r.user,
		Room:          r.room,
		TimeSlot:      r.slot,
		SessionBlock:  r.block,
		Schedule:      r.schedule,
		Entry:         r.entry,
		ChangeRequest: r.request,
		Tx:            &mockTxManager{mu: &r.mu, repos: r},
	}
}
