package apperr_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"sift/internal/apperr"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := apperr.Wrap(apperr.ErrTransfer, "transfer", "copy", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, apperr.ErrTransfer) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transfer", "copy", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := apperr.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, apperr.ErrTransfer) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failed") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperr.ExitOK},
		{"config", apperr.Wrap(apperr.ErrConfiguration, "config", "load", "bad", nil), apperr.ExitConfiguration},
		{"invalid mode", apperr.Wrap(apperr.ErrInvalidMode, "transfer", "", "mode", nil), apperr.ExitInvalidMode},
		{"cache", apperr.Wrap(apperr.ErrCache, "inventory", "read", "", nil), apperr.ExitInventory},
		{"not found", fmt.Errorf("scan: %w", apperr.ErrNotFound), apperr.ExitInventory},
		{"inventory over config", apperr.Wrap(apperr.ErrInventory, "inventory", "build", "",
			apperr.Wrap(apperr.ErrConfiguration, "scan", "paths.incoming does not exist", "/x", nil)), apperr.ExitInventory},
		{"locked", apperr.Wrap(apperr.ErrLocked, "runlock", "", "", nil), apperr.ExitFailure},
		{"failures", fmt.Errorf("run: %w", apperr.ErrTransferFailures), apperr.ExitTransfer},
		{"other", errors.New("boom"), apperr.ExitFailure},
		{"plain transfer", apperr.Wrap(apperr.ErrTransfer, "transfer", "", "", nil), apperr.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := apperr.ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestInvalidModeIsConfiguration(t *testing.T) {
	if !errors.Is(apperr.ErrInvalidMode, apperr.ErrConfiguration) {
		t.Fatal("expected invalid mode to unwrap to configuration error")
	}
}
