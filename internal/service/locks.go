package service

import "sync"

// scheduleLocks 按课表 ID 的进程内互斥锁
//
// 审批临界区的第一道闸：同一课表的审批串行执行，避免两个并发事务
// 各自通过冲突复检后同时提交。数据库行锁（FOR UPDATE）是第二道闸，
// 同时覆盖多实例部署的场景。
type scheduleLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScheduleLocks() *scheduleLocks {
	return &scheduleLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire 获取指定课表的互斥锁并加锁，返回解锁函数
func (l *scheduleLocks) Acquire(scheduleID string) func() {
	l.mu.Lock()
	m, ok := l.locks[scheduleID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[scheduleID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
