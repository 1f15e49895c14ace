package cli

import (
	"errors"
	"fmt"

	"github.com/mark3labs/kiotago/internal/builder"
	"github.com/mark3labs/kiotago/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// friendlyError maps structured loader and builder errors to usage errors
// that print their location details. Other errors pass through.
func friendlyError(err error) error {
	var se *spec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		return newUsageError(msg)
	}
	var be *builder.BuildError
	if errors.As(err, &be) && be.Code != builder.CanceledError {
		msg := fmt.Sprintf("build: %s", be.Message)
		if be.Path != "" {
			msg = fmt.Sprintf("%s\nPath: %s", msg, be.Path)
		}
		if be.Schema != "" {
			msg = fmt.Sprintf("%s\nSchema: %s", msg, be.Schema)
		}
		return newUsageError(msg)
	}
	return err
}
