package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession 测试用会话，记录收到的帧与关闭状态
type fakeSession struct {
	id       string
	userUUID string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func newFakeSession(id, userUUID string) *fakeSession {
	return &fakeSession{id: id, userUUID: userUUID}
}

func (s *fakeSession) ID() string       { return s.id }
func (s *fakeSession) UserUUID() string { return s.userUUID }

func (s *fakeSession) Enqueue(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.frames = append(s.frames, msg)
	return true
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSession) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSession("sock-1", "user-a")

	replaced, ok := r.AddUser(s1)
	require.True(t, ok)
	assert.Nil(t, replaced)

	got, exists := r.Get("user-a")
	require.True(t, exists)
	assert.Same(t, s1, got.(*fakeSession))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_ReplaceOnReconnect(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSession("sock-1", "user-a")
	s2 := newFakeSession("sock-2", "user-a")

	_, ok := r.AddUser(s1)
	require.True(t, ok)

	// 重连先于旧连接断开到达：新会话替换旧会话
	replaced, ok := r.AddUser(s2)
	require.True(t, ok)
	assert.Same(t, s1, replaced.(*fakeSession))

	got, exists := r.Get("user-a")
	require.True(t, exists)
	assert.Same(t, s2, got.(*fakeSession))
	assert.Equal(t, 1, r.Count())

	// 旧连接延迟断开，不能误删新会话
	assert.False(t, r.RemoveBySession(s1))
	_, exists = r.Get("user-a")
	assert.True(t, exists)

	assert.True(t, r.RemoveBySession(s2))
	_, exists = r.Get("user-a")
	assert.False(t, exists)
}

func TestRegistry_RemoveBySession_ExactMatch(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSession("sock-1", "user-a")

	_, ok := r.AddUser(s1)
	require.True(t, ok)

	assert.True(t, r.RemoveBySession(s1))
	assert.Equal(t, 0, r.Count())

	// 重复注销是 no-op
	assert.False(t, r.RemoveBySession(s1))
}

func TestRegistry_Roster(t *testing.T) {
	r := NewRegistry()
	_, _ = r.AddUser(newFakeSession("sock-1", "user-a"))
	_, _ = r.AddUser(newFakeSession("sock-2", "user-b"))

	roster := r.Roster()
	require.Len(t, roster, 2)

	byUser := make(map[string]string, len(roster))
	for _, entry := range roster {
		byUser[entry.UserId] = entry.SocketId
	}
	assert.Equal(t, "sock-1", byUser["user-a"])
	assert.Equal(t, "sock-2", byUser["user-b"])
}

func TestRegistry_Broadcast(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSession("sock-1", "user-a")
	s2 := newFakeSession("sock-2", "user-b")
	_, _ = r.AddUser(s1)
	_, _ = r.AddUser(s2)

	sent := r.Broadcast([]byte(`{"type":"getUsers"}`))
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, s1.frameCount())
	assert.Equal(t, 1, s2.frameCount())

	// 不可写会话不计入成功数
	s2.Close()
	sent = r.Broadcast([]byte(`{"type":"getUsers"}`))
	assert.Equal(t, 1, sent)
}

func TestRegistry_Shutdown(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSession("sock-1", "user-a")
	_, _ = r.AddUser(s1)

	r.Shutdown()
	assert.True(t, s1.isClosed())
	assert.Equal(t, 0, r.Count())

	// 关闭后拒绝新注册
	_, ok := r.AddUser(newFakeSession("sock-2", "user-b"))
	assert.False(t, ok)
}
