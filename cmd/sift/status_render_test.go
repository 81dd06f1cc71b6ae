package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Incoming", statusError, "does not exist", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Incoming:", "[ERROR] does not exist")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("ffprobe", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestActionKind(t *testing.T) {
	tests := map[string]statusKind{
		"copied":       statusOK,
		"moved":        statusOK,
		"copy_dry_run": statusInfo,
		"move_dry_run": statusInfo,
		"skip":         statusWarn,
		"fail":         statusError,
	}
	for action, want := range tests {
		if got := actionKind(action); got != want {
			t.Fatalf("actionKind(%q) = %v, want %v", action, got, want)
		}
	}
}

func TestRenderTableWrapsLongCells(t *testing.T) {
	long := strings.Repeat("word ", 30)
	out := renderTable([]string{"Name"}, [][]string{{long}}, nil)
	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > maxCellWidth+4 {
			t.Fatalf("line exceeds wrap width: %q", line)
		}
	}
}
