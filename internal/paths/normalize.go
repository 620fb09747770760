package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"phpext/internal/host"
)

// SanitizeWindowsPath removes the leading "/" the sandboxed host prepends to
// Windows paths ("/C:/Users/..."). On macOS and Linux it is a no-op.
func SanitizeWindowsPath(goos host.OS, path string) string {
	if goos != host.OSWindows {
		return path
	}
	return strings.TrimLeft(path, "/")
}

// Absolute returns the canonical absolute form of path, falling back to a
// join with the current directory when the file cannot be canonicalised.
func Absolute(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			return abs, nil
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}

// Normalize makes path absolute and sanitized for invocation on goos.
func Normalize(goos host.OS, path string) (string, error) {
	abs, err := Absolute(path)
	if err != nil {
		return "", err
	}
	return SanitizeWindowsPath(goos, abs), nil
}
