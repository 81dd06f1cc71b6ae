package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrCache         = errors.New("cache error")
	ErrProbe         = errors.New("probe error")
	ErrValidation    = errors.New("validation error")
	ErrTransfer      = errors.New("transfer error")
	ErrNotFound      = errors.New("not found")
	ErrLocked        = errors.New("locked")

	// ErrInventory marks any failure to produce an inventory, including a
	// missing incoming root discovered while scanning.
	ErrInventory = errors.New("inventory error")

	// ErrInvalidMode is a configuration error that carries its own exit code.
	ErrInvalidMode = fmt.Errorf("%w: invalid io mode", ErrConfiguration)

	// ErrTransferFailures reports a completed run in which at least one item failed.
	ErrTransferFailures = fmt.Errorf("%w: one or more items failed", ErrTransfer)
)

// Exit codes returned by the CLI.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitInventory     = 3
	ExitInvalidMode   = 4
	ExitTransfer      = 5
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransfer
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidMode):
		return ExitInvalidMode
	case errors.Is(err, ErrInventory):
		return ExitInventory
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrCache), errors.Is(err, ErrNotFound):
		return ExitInventory
	case errors.Is(err, ErrTransferFailures):
		return ExitTransfer
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
