package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/scan"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedSource hands out one scripted frame per call
type scriptedSource struct {
	errs []error
	next int
}

func (s *scriptedSource) NextFrame(ctx context.Context) (scan.Frame, error) {
	if s.next < len(s.errs) && s.errs[s.next] != nil {
		err := s.errs[s.next]
		s.next++
		return scan.Frame{}, err
	}
	s.next++
	return scan.Frame{Data: []byte{0x1}}, nil
}

// step describes one scripted decode outcome
type step struct {
	result scan.Result
	err    error
}

// scriptedDecoder replays decode outcomes in order, repeating the last
type scriptedDecoder struct {
	steps []step
	next  int
}

func (d *scriptedDecoder) Decode(ctx context.Context, frame scan.Frame) (scan.Result, error) {
	idx := d.next
	if idx >= len(d.steps) {
		idx = len(d.steps) - 1
	}
	d.next++
	return d.steps[idx].result, d.steps[idx].err
}

// countingFeedback records acceptance signals
type countingFeedback struct {
	codes []scan.ScannedBarcode
}

func (f *countingFeedback) ScanAccepted(code scan.ScannedBarcode) {
	f.codes = append(f.codes, code)
}

func found(raw string) step {
	return step{result: scan.Result{
		Barcode: scan.ScannedBarcode{Raw: raw, Format: "EAN_13"},
		Found:   true,
	}}
}

func newTestController(d scan.Decoder, f Feedback) *Controller {
	return NewController(d, f, time.Millisecond, zap.NewNop())
}

func runSession(t *testing.T, c *Controller) (*scan.Session, scan.ScannedBarcode, error) {
	t.Helper()
	session := scan.NewSession(3)
	require.NoError(t, session.StreamStarted("cam-1"))
	code, err := c.Run(context.Background(), session, &scriptedSource{})
	return session, code, err
}

func TestControllerAcceptsValidBarcode(t *testing.T) {
	decoder := &scriptedDecoder{steps: []step{
		{}, // empty frame, no barcode visible
		found("8901030875612"),
	}}
	feedback := &countingFeedback{}

	session, code, err := runSession(t, newTestController(decoder, feedback))
	require.NoError(t, err)
	assert.Equal(t, "8901030875612", code.Raw)
	assert.Equal(t, scan.SessionStateScanAccepted, session.State())
	require.Len(t, feedback.codes, 1)
	assert.Equal(t, "8901030875612", feedback.codes[0].Raw)
}

func TestControllerSkipsInvalidReads(t *testing.T) {
	decoder := &scriptedDecoder{steps: []step{
		found("abc"),      // too short
		found("12-45678"), // illegal character
		found("5012345678900"),
	}}

	session, code, err := runSession(t, newTestController(decoder, nil))
	require.NoError(t, err)
	assert.Equal(t, "5012345678900", code.Raw)
	// Discarded reads never touch the retry budget
	assert.Zero(t, session.RetryCount())
}

func TestControllerRecoversFromTransientErrors(t *testing.T) {
	decoder := &scriptedDecoder{steps: []step{
		{err: errors.New("blurry frame")},
		{err: errors.New("blurry frame")},
		found("8901030875612"),
	}}

	session, code, err := runSession(t, newTestController(decoder, nil))
	require.NoError(t, err)
	assert.Equal(t, "8901030875612", code.Raw)
	// Acceptance resets the consecutive error counter
	assert.Zero(t, session.RetryCount())
}

func TestControllerAbandonsAtRetryBound(t *testing.T) {
	decoder := &scriptedDecoder{steps: []step{
		{err: errors.New("decoder wedged")},
	}}

	session, _, err := runSession(t, newTestController(decoder, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDecodeAbandoned)
	assert.Equal(t, scan.SessionStateFailed, session.State())
	// Counter resets at the bound so a reopened session starts fresh
	assert.Zero(t, session.RetryCount())
}

func TestControllerCountsFrameCaptureFailures(t *testing.T) {
	source := &scriptedSource{errs: []error{
		errors.New("stream hiccup"),
		errors.New("stream hiccup"),
		errors.New("stream hiccup"),
	}}
	decoder := &scriptedDecoder{steps: []step{found("8901030875612")}}
	c := newTestController(decoder, nil)

	session := scan.NewSession(3)
	require.NoError(t, session.StreamStarted("cam-1"))
	_, err := c.Run(context.Background(), session, source)
	assert.ErrorIs(t, err, shared.ErrDecodeAbandoned)
}

func TestControllerStopsWhenStreamCloses(t *testing.T) {
	source := &scriptedSource{errs: []error{shared.ErrSessionClosed}}
	decoder := &scriptedDecoder{steps: []step{found("8901030875612")}}
	c := newTestController(decoder, nil)

	session := scan.NewSession(3)
	require.NoError(t, session.StreamStarted("cam-1"))
	_, err := c.Run(context.Background(), session, source)
	assert.ErrorIs(t, err, shared.ErrSessionClosed)
}

func TestControllerHonorsCancellation(t *testing.T) {
	decoder := &scriptedDecoder{steps: []step{{}}} // never finds anything
	c := newTestController(decoder, nil)

	session := scan.NewSession(3)
	require.NoError(t, session.StreamStarted("cam-1"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := c.Run(ctx, session, &scriptedSource{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerRequiresStreamingSession(t *testing.T) {
	decoder := &scriptedDecoder{steps: []step{found("8901030875612")}}
	c := newTestController(decoder, nil)

	session := scan.NewSession(3) // still initializing, no stream yet
	_, err := c.Run(context.Background(), session, &scriptedSource{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
