package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeSessionClosed is used when the scanner session has been torn down
	ErrCodeSessionClosed = "ERR_SESSION_CLOSED"
)

// Device and collaborator error codes
const (
	// ErrCodeUnavailable is used when a collaborating service cannot be reached
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
	// ErrCodeDeviceError is used when camera acquisition fails
	ErrCodeDeviceError = "ERR_DEVICE_ERROR"
	// ErrCodeNoDevices is used when no camera devices are present
	ErrCodeNoDevices = "ERR_NO_DEVICES"
	// ErrCodeDecodeAbandoned is used when the decode loop gave up
	ErrCodeDecodeAbandoned = "ERR_DECODE_ABANDONED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeSessionClosed: http.StatusUnprocessableEntity,

	// Device and collaborator errors -> 5xx
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
	ErrCodeDeviceError:     http.StatusServiceUnavailable,
	ErrCodeNoDevices:       http.StatusServiceUnavailable,
	ErrCodeDecodeAbandoned: http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"UNAVAILABLE":      ErrCodeUnavailable,
	"DEVICE_ERROR":     ErrCodeDeviceError,
	"NO_DEVICES":       ErrCodeNoDevices,
	"DECODE_ABANDONED": ErrCodeDecodeAbandoned,
	"SESSION_CLOSED":   ErrCodeSessionClosed,
	"INVALID_ITEM":     ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format.
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
