// Package scan runs the decode loop over an open camera stream.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/scan"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultRetryBackoff is the pause between a transient decode error
// and the next attempt.
const DefaultRetryBackoff = time.Second

// Controller drives decode attempts against a frame source until one
// barcode is accepted, the retry budget is exhausted, or the context
// is cancelled.
//
// Only transient decoder errors count against the retry budget.
// Frames without a barcode and frames carrying an invalid code are
// part of the steady state and keep the loop running untouched.
type Controller struct {
	decoder  scan.Decoder
	feedback Feedback
	backoff  time.Duration
	logger   *zap.Logger
}

// NewController creates a decode loop controller. A backoff of zero or
// below falls back to DefaultRetryBackoff; feedback may be nil.
func NewController(decoder scan.Decoder, feedback Feedback, backoff time.Duration, logger *zap.Logger) *Controller {
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		decoder:  decoder,
		feedback: feedback,
		backoff:  backoff,
		logger:   logger,
	}
}

// Run consumes frames from the source until a valid barcode is
// accepted into the session. It returns the accepted code, or
// shared.ErrDecodeAbandoned once consecutive transient errors reach
// the session's retry bound, or the context error on cancellation.
func (c *Controller) Run(ctx context.Context, session *scan.Session, source scan.FrameSource) (scan.ScannedBarcode, error) {
	if err := session.DecodingStarted(); err != nil {
		return scan.ScannedBarcode{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return scan.ScannedBarcode{}, err
		}

		frame, err := source.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return scan.ScannedBarcode{}, ctx.Err()
			}
			if errors.Is(err, shared.ErrSessionClosed) {
				return scan.ScannedBarcode{}, err
			}
			if abandoned, terr := c.transient(ctx, session, "frame capture failed", err); abandoned || terr != nil {
				return scan.ScannedBarcode{}, terr
			}
			continue
		}

		result, err := c.decoder.Decode(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return scan.ScannedBarcode{}, ctx.Err()
			}
			if abandoned, terr := c.transient(ctx, session, "decode attempt failed", err); abandoned || terr != nil {
				return scan.ScannedBarcode{}, terr
			}
			continue
		}

		if !result.Found {
			continue
		}
		if !result.Barcode.Valid() {
			c.logger.Debug("Discarding invalid barcode read",
				zap.String("barcode", result.Barcode.Raw))
			continue
		}

		if err := session.AcceptScan(result.Barcode); err != nil {
			return scan.ScannedBarcode{}, err
		}
		if c.feedback != nil {
			c.feedback.ScanAccepted(result.Barcode)
		}
		return result.Barcode, nil
	}
}

// transient records one transient error against the session. It
// reports abandonment once the retry bound is reached; otherwise it
// waits out the backoff and rearms the session for the next attempt.
// A non-nil error return is terminal for the loop either way.
func (c *Controller) transient(ctx context.Context, session *scan.Session, msg string, cause error) (bool, error) {
	exhausted, err := session.RecordTransientError()
	if err != nil {
		return false, err
	}
	if exhausted {
		c.logger.Warn("Abandoning decode loop, retry bound reached", zap.Error(cause))
		return true, fmt.Errorf("%w: %s", shared.ErrDecodeAbandoned, cause)
	}

	c.logger.Debug(msg+", retrying",
		zap.Int("retry", session.RetryCount()),
		zap.Duration("backoff", c.backoff),
		zap.Error(cause))

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(c.backoff):
	}
	if err := session.DecodingStarted(); err != nil {
		return false, err
	}
	return false, nil
}
