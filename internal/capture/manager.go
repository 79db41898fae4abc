package capture

import (
	"context"
	"sync"

	"github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

// Manager enforces the single-session policy: the camera is exclusively
// owned by one capture session at a time.
type Manager struct {
	camera   Camera
	gateway  Gateway
	archiver Archiver
	quality  int

	mu     sync.Mutex
	active *Session
}

func NewManager(camera Camera, gateway Gateway, archiver Archiver, quality int) *Manager {
	return &Manager{
		camera:   camera,
		gateway:  gateway,
		archiver: archiver,
		quality:  quality,
	}
}

// Open starts a session for the lesson and acquires the camera. A second
// concurrent session is refused.
func (m *Manager) Open(ctx context.Context, lessonID string) (*Session, error) {
	m.mu.Lock()
	if m.active != nil {
		m.mu.Unlock()
		return nil, errors.ErrSessionBusy
	}
	s := newSession(m.camera, m.gateway, m.archiver, m.quality, lessonID)
	s.onClose = func() { m.release(s) }
	m.active = s
	m.mu.Unlock()

	if err := s.start(ctx); err != nil {
		m.release(s)
		return nil, err
	}
	return s, nil
}

// Active returns the session currently holding the camera, nil when idle.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	if m.active == s {
		m.active = nil
	}
	m.mu.Unlock()
}
