package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	t.Run("follows the open to accepted path", func(t *testing.T) {
		s := NewSession(0)
		assert.Equal(t, SessionStateInitializing, s.State())
		assert.NotEmpty(t, s.ID)

		require.NoError(t, s.DevicesListed())
		require.NoError(t, s.StreamStarted("cam-back-0"))
		assert.Equal(t, "cam-back-0", s.DeviceID())
		require.NoError(t, s.DecodingStarted())

		code := ScannedBarcode{Raw: "8901030875612", Format: "EAN_13"}
		require.NoError(t, s.AcceptScan(code))
		assert.Equal(t, SessionStateScanAccepted, s.State())
		require.NotNil(t, s.Accepted())
		assert.Equal(t, code, *s.Accepted())
		assert.Equal(t, 0, s.RetryCount())

		s.Close()
		assert.True(t, s.IsClosed())
	})

	t.Run("stream may start without explicit enumeration", func(t *testing.T) {
		s := NewSession(0)
		require.NoError(t, s.StreamStarted("cam-0"))
		assert.Equal(t, SessionStateStreaming, s.State())
	})

	t.Run("rejects out-of-order transitions", func(t *testing.T) {
		s := NewSession(0)
		assert.Error(t, s.DecodingStarted())
		assert.Error(t, s.AcceptScan(ScannedBarcode{Raw: "ABC123"}))

		_, err := s.RecordTransientError()
		assert.Error(t, err)
	})

	t.Run("rejects invalid decode text", func(t *testing.T) {
		s := NewSession(0)
		require.NoError(t, s.StreamStarted("cam-0"))
		require.NoError(t, s.DecodingStarted())
		assert.Error(t, s.AcceptScan(ScannedBarcode{Raw: "ab"}))
	})
}

func TestSessionRetryBound(t *testing.T) {
	t.Run("abandons after three consecutive transient errors", func(t *testing.T) {
		s := NewSession(3)
		require.NoError(t, s.StreamStarted("cam-0"))

		for i := 0; i < 2; i++ {
			require.NoError(t, s.DecodingStarted())
			exhausted, err := s.RecordTransientError()
			require.NoError(t, err)
			assert.False(t, exhausted)
			assert.Equal(t, SessionStateRetrying, s.State())
			assert.Equal(t, i+1, s.RetryCount())
		}

		require.NoError(t, s.DecodingStarted())
		exhausted, err := s.RecordTransientError()
		require.NoError(t, err)
		assert.True(t, exhausted)
		assert.Equal(t, SessionStateFailed, s.State())

		// Counter resets to zero once the bound is reached
		assert.Equal(t, 0, s.RetryCount())
		assert.Nil(t, s.Accepted())
	})

	t.Run("acceptance resets the counter", func(t *testing.T) {
		s := NewSession(3)
		require.NoError(t, s.StreamStarted("cam-0"))
		require.NoError(t, s.DecodingStarted())

		_, err := s.RecordTransientError()
		require.NoError(t, err)
		require.NoError(t, s.DecodingStarted())
		require.NoError(t, s.AcceptScan(ScannedBarcode{Raw: "ABC123"}))
		assert.Equal(t, 0, s.RetryCount())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		s := NewSession(0)
		s.Close()
		s.Close()
		assert.True(t, s.IsClosed())
	})
}
