package scan

import (
	"github.com/erp/pos/internal/domain/scan"
	"go.uber.org/zap"
)

// Feedback receives the confirmation signal for an accepted scan. The
// signal is best-effort; implementations must not block the loop and a
// failing signal never affects the scan result.
type Feedback interface {
	ScanAccepted(code scan.ScannedBarcode)
}

// LogFeedback is the default confirmation signal, an informational log
// line at the acceptance point.
type LogFeedback struct {
	Logger *zap.Logger
}

func (f *LogFeedback) ScanAccepted(code scan.ScannedBarcode) {
	if f.Logger == nil {
		return
	}
	f.Logger.Info("Barcode accepted",
		zap.String("barcode", code.Raw),
		zap.String("format", code.Format))
}

var _ Feedback = (*LogFeedback)(nil)
