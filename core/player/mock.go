package player

import (
	"context"
	"sync"

	"musichub/model"
)

// MockDevice is a test double for Device. It records control calls and
// lets tests fire the device notifications an engine would normally
// receive from real media playback.
type MockDevice struct {
	loadCalls  []string
	playCalls  int
	pauseCalls int
	seekCalls  []float64
	playErr    error
}

// NewMockDevice creates a mock device.
func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

func (m *MockDevice) Load(url string) {
	m.loadCalls = append(m.loadCalls, url)
}

func (m *MockDevice) Play() error {
	m.playCalls++
	return m.playErr
}

func (m *MockDevice) Pause() {
	m.pauseCalls++
}

func (m *MockDevice) Seek(seconds float64) {
	m.seekCalls = append(m.seekCalls, seconds)
}

// Test helpers

func (m *MockDevice) SetPlayError(err error) { m.playErr = err }

func (m *MockDevice) LoadCalls() []string { return m.loadCalls }

func (m *MockDevice) PlayCalls() int { return m.playCalls }

func (m *MockDevice) PauseCalls() int { return m.pauseCalls }

func (m *MockDevice) SeekCalls() []float64 { return m.seekCalls }

// LastLoaded returns the most recently loaded URL, or "".
func (m *MockDevice) LastLoaded() string {
	if len(m.loadCalls) == 0 {
		return ""
	}
	return m.loadCalls[len(m.loadCalls)-1]
}

// MemorySnapshotStore is an in-memory SnapshotStore for tests.
type MemorySnapshotStore struct {
	mu        sync.Mutex
	snapshots map[int64]*model.PlayerSnapshot
	saveErr   error
}

// NewMemorySnapshotStore creates an empty in-memory store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: make(map[int64]*model.PlayerSnapshot)}
}

func (s *MemorySnapshotStore) Save(_ context.Context, userID int64, snapshot *model.PlayerSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	copied := *snapshot
	s.snapshots[userID] = &copied
	return nil
}

func (s *MemorySnapshotStore) Load(_ context.Context, userID int64) (*model.PlayerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[userID]
	if !ok {
		return nil, nil
	}
	copied := *snap
	return &copied, nil
}

func (s *MemorySnapshotStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	return nil
}

// SetSaveError makes subsequent saves fail, for fire-and-forget tests.
func (s *MemorySnapshotStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}
