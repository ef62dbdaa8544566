package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// ManagerConfig holds stream acquisition defaults
type ManagerConfig struct {
	IdealWidth  int
	IdealHeight int
	FrameRate   int
}

// Manager owns the single active camera stream. Open tears down any
// previous stream before acquiring, so two streams are never live at
// once, and Close releases the hardware on teardown.
type Manager struct {
	provider Provider
	cfg      ManagerConfig
	logger   *zap.Logger

	mu           sync.Mutex
	active       Stream
	activeDevice string
}

// NewManager creates a device manager over the given camera host
func NewManager(provider Provider, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdealWidth == 0 {
		cfg.IdealWidth = 3840
	}
	if cfg.IdealHeight == 0 {
		cfg.IdealHeight = 2160
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = 30
	}
	return &Manager{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// ListDevices enumerates the host's cameras partitioned into
// rear-facing and others
func (m *Manager) ListDevices(ctx context.Context) (DeviceList, error) {
	devices, err := m.provider.EnumerateDevices(ctx)
	if err != nil {
		return DeviceList{}, fmt.Errorf("%w: %s", shared.ErrDeviceError, err)
	}
	if len(devices) == 0 {
		return DeviceList{}, shared.ErrNoDevices
	}
	return Partition(devices), nil
}

// Open acquires a stream. When no device ID is given the rear camera
// is preferred via the facing-mode constraint. Any previously open
// stream is stopped first; switching devices mid-session goes through
// the same path.
func (m *Manager) Open(ctx context.Context, deviceID string) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()

	constraints := Constraints{
		DeviceID:  deviceID,
		Width:     m.cfg.IdealWidth,
		Height:    m.cfg.IdealHeight,
		FrameRate: m.cfg.FrameRate,
	}
	if deviceID == "" {
		constraints.FacingMode = FacingModeEnvironment
	}

	stream, err := m.provider.OpenStream(ctx, constraints)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrDeviceError, err)
	}

	m.negotiate(stream, constraints)

	m.active = stream
	m.activeDevice = deviceID
	m.logger.Info("Camera stream acquired",
		zap.String("device_id", deviceID),
		zap.Int("frame_rate", constraints.FrameRate))
	return stream, nil
}

// Close stops the active stream and releases the camera. Safe to call
// when nothing is open.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// ActiveDevice returns the device ID of the open stream, or empty
func (m *Manager) ActiveDevice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeDevice
}

// IsOpen reports whether a stream is currently held
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

// negotiate maximizes resolution after acquisition when the stream
// exposes larger capabilities than requested. A failed renegotiation
// is logged and the stream keeps its acquired parameters.
func (m *Manager) negotiate(stream Stream, requested Constraints) {
	caps := stream.Capabilities()
	if caps.MaxWidth <= requested.Width && caps.MaxHeight <= requested.Height {
		return
	}

	upgraded := requested
	if caps.MaxWidth > upgraded.Width {
		upgraded.Width = caps.MaxWidth
	}
	if caps.MaxHeight > upgraded.Height {
		upgraded.Height = caps.MaxHeight
	}
	if err := stream.ApplyConstraints(upgraded); err != nil {
		m.logger.Debug("Resolution renegotiation failed, keeping acquired parameters",
			zap.Error(err))
		return
	}
	m.logger.Debug("Stream resolution upgraded",
		zap.Int("width", upgraded.Width),
		zap.Int("height", upgraded.Height))
}

// closeLocked stops the active stream. Caller holds the mutex.
func (m *Manager) closeLocked() {
	if m.active == nil {
		return
	}
	m.active.Stop()
	m.logger.Info("Camera stream released", zap.String("device_id", m.activeDevice))
	m.active = nil
	m.activeDevice = ""
}
