package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"sift/internal/config"
	"sift/internal/deps"
)

// Access is the permission a directory check requires.
type Access uint32

const (
	// Read requires listing and reading the directory.
	Read Access = unix.R_OK | unix.X_OK
	// Write additionally requires creating entries.
	Write Access = unix.R_OK | unix.W_OK | unix.X_OK
)

func (a Access) label() string {
	if a&unix.W_OK != 0 {
		return "read/write"
	}
	return "read"
}

// CheckDirectoryAccess verifies that the directory exists and grants access.
func CheckDirectoryAccess(name, path string, access Access) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, uint32(access)); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, access.label())}
}

// CheckCreatableDirectory passes when path is a writable directory or can be
// created under its nearest existing parent.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path, Write)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	result := CheckDirectoryAccess(name, parent, Write)
	if result.Passed {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, parent)
	} else {
		result.Detail = fmt.Sprintf("%s (error: cannot create: %s)", path, result.Detail)
	}
	return result
}

// CheckFFprobe verifies the configured ffprobe binary resolves and runs.
func CheckFFprobe(ctx context.Context, cfg config.FFprobe) Result {
	const name = "ffprobe"
	status := deps.CheckBinaries(ctx, []deps.Requirement{{
		Name:        name,
		Command:     cfg.Bin,
		Description: "Required for media inspection",
		VersionArgs: []string{"-version"},
	}})[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	detail := status.Path
	if status.Version != "" {
		detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
