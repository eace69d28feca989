package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the class of a device-layer failure.
type ErrorCode string

// Error codes surfaced by the device layer.
const (
	// ErrCodeProtocol is a malformed, missing or timed-out register response.
	ErrCodeProtocol ErrorCode = "PROTOCOL_ERROR"
	// ErrCodeRange is a channel, port, intensity or register value outside its domain.
	ErrCodeRange ErrorCode = "RANGE_ERROR"
	// ErrCodeStream is a transport failure such as a disconnected device.
	ErrCodeStream ErrorCode = "STREAM_ERROR"
)

// ErrTimeout is returned by a Stream when no complete line arrived in time.
var ErrTimeout = errors.New("read timed out")

// Error is a typed device-layer failure.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HasCode checks if the error matches a specific code.
func (e *Error) HasCode(code ErrorCode) bool {
	return e.Code == code
}

// NewProtocolError creates a protocol error.
func NewProtocolError(message string, cause error) *Error {
	return &Error{Code: ErrCodeProtocol, Message: message, Cause: cause}
}

// NewRangeError creates a range error describing the rejected value.
func NewRangeError(what string, value, lo, hi int) *Error {
	return &Error{
		Code:    ErrCodeRange,
		Message: fmt.Sprintf("%s %d outside [%d,%d]", what, value, lo, hi),
	}
}

// NewStreamError creates a stream error.
func NewStreamError(message string, cause error) *Error {
	return &Error{Code: ErrCodeStream, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsProtocol reports whether err is a protocol error.
func IsProtocol(err error) bool { return CodeOf(err) == ErrCodeProtocol }

// IsRange reports whether err is a range error.
func IsRange(err error) bool { return CodeOf(err) == ErrCodeRange }

// IsStream reports whether err is a stream error.
func IsStream(err error) bool { return CodeOf(err) == ErrCodeStream }
