package scan

import "regexp"

// MinBarcodeLength is the shortest decoded text accepted as a barcode.
// Camera noise commonly produces partial reads shorter than this.
const MinBarcodeLength = 5

var barcodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ScannedBarcode is a raw decoded string together with the symbology
// recognized by the decoder
type ScannedBarcode struct {
	Raw    string `json:"raw"`
	Format string `json:"format"`
}

// Valid reports whether the decoded text looks like a real barcode.
// Invalid decodes are treated as noise and discarded silently, never
// surfaced as errors.
func (b ScannedBarcode) Valid() bool {
	return ValidateBarcode(b.Raw)
}

// ValidateBarcode applies the validity invariant: length of at least
// MinBarcodeLength and alphanumeric characters only
func ValidateBarcode(raw string) bool {
	if len(raw) < MinBarcodeLength {
		return false
	}
	return barcodePattern.MatchString(raw)
}
