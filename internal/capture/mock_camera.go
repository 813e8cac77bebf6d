package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera is a test implementation of the Camera interface that
// synthesizes blank frames.
type MockCamera struct {
	mu      sync.Mutex
	open    bool
	fps     int
	readErr error
}

// NewMockCamera creates a new MockCamera instance.
func NewMockCamera() *MockCamera {
	return &MockCamera{fps: DefaultFPS}
}

// SetReadError makes subsequent ReadFrame calls fail with err.
func (m *MockCamera) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Open marks the camera as open.
func (m *MockCamera) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	return nil
}

// Close marks the camera as closed.
func (m *MockCamera) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// ReadFrame returns a synthetic blank frame.
func (m *MockCamera) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil, ErrCameraNotOpen
	}
	if m.readErr != nil {
		return nil, m.readErr
	}

	mat := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	return &mat, nil
}

// SetFPS records the requested frame rate.
func (m *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fps = fps
}

// FPS returns the current frame rate setting.
func (m *MockCamera) FPS() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

// IsOpen reports whether Open has been called.
func (m *MockCamera) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
