package scan

import "context"

// Frame is a single captured camera frame handed to the decoder
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// Result is the outcome of one frame decode attempt. Found is false
// when no barcode was visible in the frame, which is the expected
// steady state of the loop.
type Result struct {
	Barcode ScannedBarcode
	Found   bool
}

// Decoder attempts to read a barcode out of a single frame.
//
// The error return is reserved for transient decoder failures; "no
// barcode in this frame" is reported as Found=false with a nil error
// and never counts against the retry budget.
type Decoder interface {
	Decode(ctx context.Context, frame Frame) (Result, error)
}

// FrameSource produces the frames the decode loop consumes. The active
// media stream implements it; tests substitute scripted sources.
type FrameSource interface {
	NextFrame(ctx context.Context) (Frame, error)
}
