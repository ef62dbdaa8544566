// Package orderentry composes scanned products into the current order.
package orderentry

import (
	"context"
	"errors"
	"sync"
	"time"

	appscan "github.com/erp/pos/internal/application/scan"
	"github.com/erp/pos/internal/domain/cart"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/scan"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/media"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// resolveTimeout bounds the catalog lookup that follows an accepted
// scan. The lookup runs detached from the session context so closing
// the scanner does not abort a resolution already in flight.
const resolveTimeout = 10 * time.Second

// Config holds order entry tunables.
type Config struct {
	MaxRetries int
}

// Status is a snapshot of the scanner session for the status endpoint.
type Status struct {
	State      scan.SessionState `json:"state"`
	SessionID  string            `json:"session_id,omitempty"`
	DeviceID   string            `json:"device_id,omitempty"`
	RetryCount int               `json:"retry_count"`
	LastError  string            `json:"last_error,omitempty"`
}

// Service orchestrates the scan-to-cart flow: it opens scanner
// sessions, runs the decode loop, resolves accepted barcodes against
// the catalog and inserts the products into the cart. One session is
// active at a time; opening a new one tears the previous one down.
type Service struct {
	cart       *cart.Store
	resolver   catalog.Resolver
	devices    *media.Manager
	controller *appscan.Controller
	cfg        Config
	logger     *zap.Logger

	mu       sync.Mutex
	session  *scan.Session
	cancel   context.CancelFunc
	done     chan struct{}
	lastErr  error
	shutdown bool
}

// NewService creates the order entry orchestrator
func NewService(
	cartStore *cart.Store,
	resolver catalog.Resolver,
	devices *media.Manager,
	controller *appscan.Controller,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cart:       cartStore,
		resolver:   resolver,
		devices:    devices,
		controller: controller,
		cfg:        cfg,
		logger:     logger,
	}
}

// Devices enumerates the available cameras
func (s *Service) Devices(ctx context.Context) (media.DeviceList, error) {
	return s.devices.ListDevices(ctx)
}

// OpenScanner starts a scanner session on the given device, tearing
// down any previous session first. An empty device ID selects the
// rear camera. Device failures are returned to the caller; nothing
// retries them.
func (s *Service) OpenScanner(ctx context.Context, deviceID string) (uuid.UUID, error) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return uuid.Nil, shared.ErrUnavailable
	}
	prevCancel, prevDone := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	s.stopLoop(prevCancel, prevDone)

	session := scan.NewSession(s.cfg.MaxRetries)

	list, err := s.devices.ListDevices(ctx)
	if err != nil {
		s.logger.Error("Camera enumeration failed", zap.Error(err))
		s.recordFailure(session, err)
		return uuid.Nil, err
	}
	if err := session.DevicesListed(); err != nil {
		return uuid.Nil, err
	}
	s.logger.Debug("Cameras enumerated",
		zap.Int("rear", len(list.Rear)),
		zap.Int("other", len(list.Other)))

	stream, err := s.devices.Open(ctx, deviceID)
	if err != nil {
		s.logger.Error("Camera acquisition failed",
			zap.String("device_id", deviceID),
			zap.Error(err))
		s.recordFailure(session, err)
		return uuid.Nil, err
	}
	if err := session.StreamStarted(deviceID); err != nil {
		s.devices.Close()
		return uuid.Nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.session = session
	s.cancel = cancel
	s.done = done
	s.lastErr = nil
	s.mu.Unlock()

	go s.runLoop(runCtx, session, stream, done)

	s.logger.Info("Scanner session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("device_id", deviceID))
	return session.ID, nil
}

// CloseScanner tears down the active session and releases the camera.
// Safe to call when no session is open.
func (s *Service) CloseScanner() {
	s.mu.Lock()
	prevCancel, prevDone := s.cancel, s.done
	session := s.session
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	s.stopLoop(prevCancel, prevDone)
	s.devices.Close()
	if session != nil && !session.IsClosed() {
		session.Close()
		s.logger.Info("Scanner session closed", zap.String("session_id", session.ID.String()))
	}
}

// Status reports the current scanner session state
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{State: scan.SessionStateClosed}
	if s.session != nil {
		status.State = s.session.State()
		status.SessionID = s.session.ID.String()
		status.DeviceID = s.session.DeviceID()
		status.RetryCount = s.session.RetryCount()
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// HandleScan resolves a manually entered barcode and inserts the
// product into the cart. It is the keyed-entry fallback for damaged
// labels and shares the resolution path with camera scans.
func (s *Service) HandleScan(ctx context.Context, raw string) (cart.Item, bool, error) {
	if !scan.ValidateBarcode(raw) {
		return cart.Item{}, false, shared.ErrInvalidInput
	}
	return s.resolveAndAdd(ctx, raw)
}

// Shutdown stops the scanner and marks the service as terminated.
// Resolutions still in flight complete but their results are
// discarded.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.CloseScanner()
}

// runLoop drives one session's decode loop to completion
func (s *Service) runLoop(ctx context.Context, session *scan.Session, stream scan.FrameSource, done chan struct{}) {
	defer close(done)

	ctx, log := logger.WithSessionID(ctx, s.logger, session.ID.String())

	code, err := s.controller.Run(ctx, session, stream)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, shared.ErrSessionClosed) {
			return
		}
		log.Warn("Scanner session ended without a scan", zap.Error(err))
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.devices.Close()
		return
	}

	// One scan per open/close cycle: the camera is released before
	// the catalog lookup so the register is free immediately.
	s.devices.Close()
	session.Close()

	// The lookup outlives the session context on purpose
	lookupCtx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), resolveTimeout)
	defer cancel()
	if _, _, err := s.resolveAndAdd(lookupCtx, code.Raw); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}
}

// resolveAndAdd performs the single catalog lookup for a barcode and
// inserts the product into the cart. Resolution is never retried; a
// failure is reported and the scan is discarded.
func (s *Service) resolveAndAdd(ctx context.Context, barcode string) (cart.Item, bool, error) {
	log := logger.WithLogger(ctx, s.logger)

	product, err := s.resolver.ResolveByBarcode(ctx, barcode)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			log.Warn("Barcode matches no product",
				zap.String("barcode", barcode))
		default:
			log.Error("Catalog lookup failed",
				zap.String("barcode", barcode),
				zap.Error(err))
		}
		return cart.Item{}, false, err
	}

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		log.Info("Discarding resolved product, service shut down",
			zap.String("barcode", barcode))
		return cart.Item{}, false, shared.ErrUnavailable
	}
	s.mu.Unlock()

	item, err := cart.NewItem(product.ID, product.Name, product.Price, product.Image)
	if err != nil {
		log.Error("Catalog returned an unusable product",
			zap.String("barcode", barcode),
			zap.Error(err))
		return cart.Item{}, false, err
	}

	added := s.cart.AddItem(ctx, item)
	log.Info("Product scanned into order",
		zap.String("product_id", item.ID),
		zap.String("barcode", barcode),
		zap.Bool("added", added))
	return item, added, nil
}

// recordFailure keeps a failed session visible to the status endpoint
func (s *Service) recordFailure(session *scan.Session, err error) {
	session.Close()
	s.mu.Lock()
	s.session = session
	s.lastErr = err
	s.mu.Unlock()
}

// stopLoop cancels a running decode loop and waits for it to exit
func (s *Service) stopLoop(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}
