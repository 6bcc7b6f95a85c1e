package realtime

import "sync"

// Session 在线会话的最小抽象。
// Registry 只依赖这个接口，方便在测试中用假会话替代真实连接。
type Session interface {
	// ID 会话唯一标识（对外即 socketId）
	ID() string
	// UserUUID 会话绑定的用户身份
	UserUUID() string
	// Enqueue 将下行帧投递到会话写队列，失败表示会话不可写
	Enqueue(msg []byte) bool
	// Close 幂等关闭会话
	Close()
}

// Registry 在线会话注册表：user_uuid -> 当前活跃会话。
// 每个用户最多一个活跃会话，新会话注册时替换旧会话
// （断线重连先于旧连接超时到达时，以新连接为准）。
type Registry struct {
	mu       sync.RWMutex
	byUser   map[string]Session
	shutdown bool
}

// NewRegistry 创建注册表实例
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Session),
	}
}

// AddUser 注册用户会话。
// 返回值 replaced 为被新会话替换掉的旧会话（如果存在），
// 调用方应主动关闭 replaced。注册表已关闭时返回 ok=false。
func (r *Registry) AddUser(s Session) (replaced Session, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		return nil, false
	}

	if old, exists := r.byUser[s.UserUUID()]; exists && old != s {
		replaced = old
	}
	r.byUser[s.UserUUID()] = s
	return replaced, true
}

// RemoveBySession 按会话注销。
// 只有当前注册的会话与入参完全一致时才删除，防止
// 旧连接延迟断开时误删重连后的新会话。返回是否真正删除。
func (r *Registry) RemoveBySession(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byUser[s.UserUUID()]
	if !exists || current != s {
		return false
	}
	delete(r.byUser, s.UserUUID())
	return true
}

// Get 查询用户当前活跃会话
func (r *Registry) Get(userUUID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byUser[userUUID]
	return s, ok
}

// Roster 返回在线名单快照
func (r *Registry) Roster() []RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]RosterEntry, 0, len(r.byUser))
	for userUUID, s := range r.byUser {
		entries = append(entries, RosterEntry{
			UserId:   userUUID,
			SocketId: s.ID(),
		})
	}
	return entries
}

// Broadcast 向所有在线会话投递帧，返回成功入队的会话数
func (r *Registry) Broadcast(msg []byte) int {
	r.mu.RLock()
	sessions := make([]Session, 0, len(r.byUser))
	for _, s := range r.byUser {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	sent := 0
	for _, s := range sessions {
		if s.Enqueue(msg) {
			sent++
		}
	}
	return sent
}

// Count 返回当前在线用户数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Shutdown 关闭全部会话并阻止后续注册。
// 用于进程优雅退出阶段。
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return
	}
	r.shutdown = true

	sessions := make([]Session, 0, len(r.byUser))
	for _, s := range r.byUser {
		sessions = append(sessions, s)
	}
	r.byUser = make(map[string]Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
