// internal/status/errcode.go
package status

import (
	"context"
	"errors"
)

// ErrorCode extracts a uint16 code from err without depending on
// concrete error types. Errors that do not expose a code map to
// ErrCodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrCodeNone
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	if errors.Is(err, context.Canceled) {
		return ErrCodeCanceled
	}

	return ErrCodeGeneric
}
