package selection

import (
	"sync"
	"time"
)

// SessionContext 是显式传给选择会话的操作员上下文
// 核心代码永远不会隐式地去读取当前登录用户
type SessionContext struct {
	OperatorID int64
	Username   string
}

// Manager 按操作员管理选择会话，并清理空闲过期的会话
type Manager struct {
	mu         sync.Mutex
	expiration time.Duration
	sessions   map[int64]*Store
}

func NewManager(expiration time.Duration) *Manager {
	return &Manager{
		expiration: expiration,
		sessions:   make(map[int64]*Store),
	}
}

// Session 获取操作员的选择会话，不存在时创建一个新会话
// activeMonth 只在创建新会话时生效
func (m *Manager) Session(ctx SessionContext, activeMonth string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired()

	store, exists := m.sessions[ctx.OperatorID]
	if !exists {
		store = NewStore(ctx, activeMonth)
		m.sessions[ctx.OperatorID] = store
	}

	return store
}

// Drop 丢弃操作员的选择会话，登出时调用
func (m *Manager) Drop(operatorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, operatorID)
}

func (m *Manager) evictExpired() {
	if m.expiration <= 0 {
		return
	}

	deadline := time.Now().Add(-m.expiration)
	for operatorID, store := range m.sessions {
		if store.idleSince().Before(deadline) {
			delete(m.sessions, operatorID)
		}
	}
}
