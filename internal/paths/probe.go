package paths

import (
	"os"
	"path/filepath"
	"strings"

	"phpext/internal/host"
)

var windowsExecutableExts = []string{".exe", ".cmd", ".bat", ".com"}

// LookPath searches the directories of pathEnv for an executable called name.
// Unlike exec.LookPath it works against an arbitrary PATH value, so each
// workspace can carry its own environment.
func LookPath(pathEnv, name string, goos host.OS) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) {
		return probeExecutable(name, goos)
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			dir = "."
		}
		if path, ok := probeExecutable(filepath.Join(dir, name), goos); ok {
			return path, true
		}
	}
	return "", false
}

func probeExecutable(candidate string, goos host.OS) (string, bool) {
	if goos == host.OSWindows {
		if filepath.Ext(candidate) == "" {
			for _, ext := range windowsExecutableExts {
				if ok, _ := FileExists(candidate + ext); ok {
					return candidate + ext, true
				}
			}
		}
		if ok, _ := FileExists(candidate); ok {
			return candidate, true
		}
		return "", false
	}

	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", false
	}
	return candidate, true
}
