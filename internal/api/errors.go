package api

import (
	"errors"
	"fmt"
)

// Stable error codes carried in API responses. Handlers map internal
// failures onto these; clients switch on the code, not the message.
const (
	// Request decoding and shape.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrSchema     = "E_SCHEMA"

	// Blueprint resolution.
	ErrUnknownTemplate = "E_UNKNOWN_TEMPLATE"
	ErrCompile         = "E_COMPILE"
	ErrValidation      = "E_VALIDATION"

	// Execution and service state.
	ErrRconUnavailable = "E_RCON_UNAVAILABLE"
	ErrRateLimit       = "E_RATE_LIMIT"
	ErrNotFound        = "E_NOT_FOUND"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:      {},
	ErrSchema:          {},
	ErrUnknownTemplate: {},
	ErrCompile:         {},
	ErrValidation:      {},
	ErrRconUnavailable: {},
	ErrRateLimit:       {},
	ErrNotFound:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Error is a failure carrying a stable code across package boundaries.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Errorf builds a coded error.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from err, defaulting to ErrInternal.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal
}

// MessageOf extracts the bare message from err, without the code prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
