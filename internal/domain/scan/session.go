package scan

import (
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionState represents the lifecycle state of a scanner session
type SessionState string

const (
	SessionStateClosed       SessionState = "closed"
	SessionStateInitializing SessionState = "initializing"
	SessionStateDeviceListed SessionState = "device_listed"
	SessionStateStreaming    SessionState = "streaming"
	SessionStateDecoding     SessionState = "decoding"
	SessionStateScanAccepted SessionState = "scan_accepted"
	SessionStateRetrying     SessionState = "retrying"
	SessionStateFailed       SessionState = "failed"
)

// DefaultMaxRetries bounds consecutive transient decode errors before
// the loop is abandoned
const DefaultMaxRetries = 3

// Session tracks one open/close cycle of the scanner. Exactly one
// session is active at a time; the owning manager tears down the
// previous stream before opening the next. The decode loop mutates
// the session from its own goroutine while status queries read it, so
// all state is guarded internally.
type Session struct {
	ID       uuid.UUID
	OpenedAt time.Time

	mu         sync.Mutex
	state      SessionState
	deviceID   string
	accepted   *ScannedBarcode
	maxRetries int
	retryCount int
}

// NewSession creates a session in the Initializing state. A
// maxRetries of zero or below falls back to DefaultMaxRetries.
func NewSession(maxRetries int) *Session {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Session{
		ID:         uuid.New(),
		OpenedAt:   time.Now(),
		state:      SessionStateInitializing,
		maxRetries: maxRetries,
	}
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DeviceID returns the device the stream was opened on, or empty
func (s *Session) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID
}

// Accepted returns the accepted barcode, or nil before acceptance
func (s *Session) Accepted() *ScannedBarcode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// DevicesListed records that camera enumeration completed
func (s *Session) DevicesListed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateInitializing {
		return shared.ErrInvalidState
	}
	s.state = SessionStateDeviceListed
	return nil
}

// StreamStarted records the acquired stream and the selected device
func (s *Session) StreamStarted(deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateInitializing && s.state != SessionStateDeviceListed {
		return shared.ErrInvalidState
	}
	s.deviceID = deviceID
	s.state = SessionStateStreaming
	return nil
}

// DecodingStarted marks the decode loop as running
func (s *Session) DecodingStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateStreaming && s.state != SessionStateRetrying {
		return shared.ErrInvalidState
	}
	s.state = SessionStateDecoding
	return nil
}

// AcceptScan records a validated decode and resets the retry counter.
// A session accepts at most one scan per open/close cycle.
func (s *Session) AcceptScan(code ScannedBarcode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateDecoding {
		return shared.ErrInvalidState
	}
	if !code.Valid() {
		return shared.ErrInvalidInput
	}
	s.accepted = &code
	s.retryCount = 0
	s.state = SessionStateScanAccepted
	return nil
}

// RecordTransientError increments the retry counter and reports
// whether the retry bound has been reached. At the bound the counter
// resets to zero and the session moves to Failed; otherwise it moves
// to Retrying.
func (s *Session) RecordTransientError() (exhausted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionStateDecoding {
		return false, shared.ErrInvalidState
	}
	s.retryCount++
	if s.retryCount >= s.maxRetries {
		s.retryCount = 0
		s.state = SessionStateFailed
		return true, nil
	}
	s.state = SessionStateRetrying
	return false, nil
}

// Close tears the session down from any state. Closing an already
// closed session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionStateClosed
	s.retryCount = 0
}

// IsClosed reports whether the session has been torn down
func (s *Session) IsClosed() bool {
	return s.State() == SessionStateClosed
}

// RetryCount returns the current consecutive transient error count
func (s *Session) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryCount
}
