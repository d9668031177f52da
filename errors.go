package voxforge

import "fmt"

// CoreErrorCode enumerates the error taxonomy of spec §7. None of these
// are fatal: every operation reports failure locally and leaves state
// consistent.
type CoreErrorCode int

const (
	ErrFileNotFound CoreErrorCode = iota
	ErrAccessDenied
	ErrDiskFull
	ErrOutOfMemory
	ErrInvalidFormat
	ErrVersionMismatch
	ErrCorruptedData
	ErrCompressionError
	ErrWriteError
	ErrReadError
	ErrPlacementInvalid
	ErrWorkspaceResizeRejected
)

var codeNames = map[CoreErrorCode]string{
	ErrFileNotFound:            "FileNotFound",
	ErrAccessDenied:            "AccessDenied",
	ErrDiskFull:                "DiskFull",
	ErrOutOfMemory:             "OutOfMemory",
	ErrInvalidFormat:           "InvalidFormat",
	ErrVersionMismatch:         "VersionMismatch",
	ErrCorruptedData:           "CorruptedData",
	ErrCompressionError:        "CompressionError",
	ErrWriteError:              "WriteError",
	ErrReadError:               "ReadError",
	ErrPlacementInvalid:        "PlacementInvalid",
	ErrWorkspaceResizeRejected: "WorkspaceResizeRejected",
}

func (c CoreErrorCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CoreErrorCode(%d)", int(c))
}

// CoreError is the error type every core operation returns. Callers
// should branch on Code rather than the message text.
type CoreError struct {
	Code    CoreErrorCode
	Message string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Cause }

// NewCoreError builds a CoreError with no wrapped cause.
func NewCoreError(code CoreErrorCode, message string) *CoreError {
	return &CoreError{Code: code, Message: message}
}

// WrapCoreError builds a CoreError wrapping an underlying I/O or
// decoding failure.
func WrapCoreError(code CoreErrorCode, message string, cause error) *CoreError {
	return &CoreError{Code: code, Message: message, Cause: cause}
}
