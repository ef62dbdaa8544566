// Package decoder implements frame decoding on top of the zxing port.
package decoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/erp/pos/internal/domain/scan"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ZXingDecoder reads UPC/EAN product barcodes out of camera frames.
// A frame without a visible barcode is the steady state and is
// reported as not-found, never as an error; the error return is
// reserved for genuine decoder failures.
type ZXingDecoder struct {
	reader gozxing.Reader
}

// NewZXingDecoder creates a decoder for the retail barcode symbologies
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{
		reader: oned.NewMultiFormatUPCEANReader(nil),
	}
}

// Decode attempts to read one barcode from the frame
func (d *ZXingDecoder) Decode(ctx context.Context, frame scan.Frame) (scan.Result, error) {
	if err := ctx.Err(); err != nil {
		return scan.Result{}, err
	}
	if len(frame.Data) == 0 {
		return scan.Result{}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return scan.Result{}, fmt.Errorf("frame is not a decodable image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return scan.Result{}, fmt.Errorf("failed to binarize frame: %w", err)
	}

	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		// No barcode in this frame is expected, not a failure
		if _, ok := err.(gozxing.NotFoundException); ok {
			return scan.Result{}, nil
		}
		return scan.Result{}, fmt.Errorf("decode attempt failed: %w", err)
	}

	return scan.Result{
		Barcode: scan.ScannedBarcode{
			Raw:    result.GetText(),
			Format: result.GetBarcodeFormat().String(),
		},
		Found: true,
	}, nil
}

// Ensure ZXingDecoder implements the decoder contract
var _ scan.Decoder = (*ZXingDecoder)(nil)
