// Package media abstracts the camera host the scanner runs against:
// device enumeration, stream acquisition with constraint negotiation,
// and capability introspection.
package media

import (
	"context"
	"strings"

	"github.com/erp/pos/internal/domain/scan"
)

// FacingModeEnvironment requests a rear-facing camera when no
// explicit device is selected
const FacingModeEnvironment = "environment"

// Device describes one camera exposed by the host
type Device struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// IsRearFacing applies the label heuristic used to pick a default
// camera: rear cameras usually carry "back" or "environment" in their
// label
func (d Device) IsRearFacing() bool {
	label := strings.ToLower(d.Label)
	return strings.Contains(label, "back") || strings.Contains(label, FacingModeEnvironment)
}

// DeviceList partitions the available cameras. Rear-facing devices
// are the preferred defaults for barcode work.
type DeviceList struct {
	Rear  []Device `json:"rear"`
	Other []Device `json:"other"`
}

// Default returns the preferred device: the first rear camera, else
// the first of the rest, else nil
func (l DeviceList) Default() *Device {
	if len(l.Rear) > 0 {
		return &l.Rear[0]
	}
	if len(l.Other) > 0 {
		return &l.Other[0]
	}
	return nil
}

// Partition splits devices into rear-facing and others, preserving order
func Partition(devices []Device) DeviceList {
	var list DeviceList
	for _, d := range devices {
		if d.IsRearFacing() {
			list.Rear = append(list.Rear, d)
		} else {
			list.Other = append(list.Other, d)
		}
	}
	return list
}

// Constraints are the requested stream parameters. Width, Height and
// FrameRate are ideals, not hard requirements; the host delivers the
// closest match it can.
type Constraints struct {
	DeviceID   string
	FacingMode string
	Width      int
	Height     int
	FrameRate  int
}

// Capabilities reports what the acquired stream can actually deliver
type Capabilities struct {
	MaxWidth  int
	MaxHeight int
}

// Stream is an acquired camera stream. It is exclusively owned by the
// scanner session that opened it and must be stopped on every exit
// path; a leaked stream keeps the camera hardware busy.
type Stream interface {
	scan.FrameSource

	// Capabilities returns the maximum resolution the stream supports,
	// when the host exposes it
	Capabilities() Capabilities

	// ApplyConstraints renegotiates the stream parameters after
	// acquisition
	ApplyConstraints(c Constraints) error

	// Stop releases the stream and the underlying camera hardware.
	// Stop is idempotent.
	Stop()
}

// Provider is the camera host: enumeration plus stream acquisition.
// Production deployments plug in their station's camera bridge; tests
// use fakes.
type Provider interface {
	EnumerateDevices(ctx context.Context) ([]Device, error)
	OpenStream(ctx context.Context, c Constraints) (Stream, error)
}
