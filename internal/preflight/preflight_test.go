package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sift/internal/config"
	"sift/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, Write)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read/write ok") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), Read)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, Read)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatableDirectory("out", filepath.Join(base, "a", "b"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created under "+base) {
		t.Fatalf("unexpected result: %+v", result)
	}

	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatableDirectory("out", filepath.Join(blocker, "child")); result.Passed {
		t.Fatalf("expected failure below a regular file, got %+v", result)
	}
}

func TestCheckFFprobe(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'ffprobe version 7.1'\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	ok := CheckFFprobe(context.Background(), config.FFprobe{Bin: stub})
	if !ok.Passed || !strings.Contains(ok.Detail, "ffprobe version 7.1") {
		t.Fatalf("unexpected result: %+v", ok)
	}
	missing := CheckFFprobe(context.Background(), config.FFprobe{Bin: filepath.Join(dir, "absent")})
	if missing.Passed {
		t.Fatalf("expected failure for missing binary: %+v", missing)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if got := Failed(RunAll(context.Background(), cfg)); len(got) == 0 {
		t.Fatal("expected missing incoming directory to fail")
	}

	if err := os.MkdirAll(cfg.Paths.Incoming, 0o755); err != nil {
		t.Fatal(err)
	}
	stub := filepath.Join(testsupport.BaseDir(cfg), "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho ok\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.FFprobe.Bin = stub

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 checks, got %d", len(results))
	}
}
