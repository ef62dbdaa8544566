package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBarcode(t *testing.T) {
	t.Run("rejects text shorter than five characters", func(t *testing.T) {
		assert.False(t, ValidateBarcode("ab"))
		assert.False(t, ValidateBarcode("ab12"))
	})

	t.Run("rejects non-alphanumeric characters", func(t *testing.T) {
		assert.False(t, ValidateBarcode("AB12#"))
		assert.False(t, ValidateBarcode("ABC 123"))
		assert.False(t, ValidateBarcode("ABC-123"))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		assert.False(t, ValidateBarcode(""))
	})

	t.Run("accepts alphanumeric text of sufficient length", func(t *testing.T) {
		assert.True(t, ValidateBarcode("ABC123"))
		assert.True(t, ValidateBarcode("8901030875612"))
		assert.True(t, ValidateBarcode("abcde"))
	})
}

func TestScannedBarcodeValid(t *testing.T) {
	assert.True(t, ScannedBarcode{Raw: "ABC123", Format: "EAN_13"}.Valid())
	assert.False(t, ScannedBarcode{Raw: "ab", Format: "EAN_13"}.Valid())
}
