package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"phpext/internal/config"
)

const workDirEnv = "PHPEXT_WORK_DIR"

// ProjectPaths captures canonical locations for a PHP project and the
// extension's private working directory.
type ProjectPaths struct {
	Root        string
	ConfigFile  string
	VendorBin   string
	PsalmConfig string
	WorkDir     string
	LogsDir     string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	workDir, err := DefaultWorkDir()
	if err != nil {
		return ProjectPaths{}, err
	}

	return newProjectPaths(root, workDir), nil
}

func newProjectPaths(root, workDir string) ProjectPaths {
	return ProjectPaths{
		Root:        root,
		ConfigFile:  filepath.Join(root, "phpext.yaml"),
		VendorBin:   filepath.Join(root, "vendor", "bin"),
		PsalmConfig: filepath.Join(root, "psalm.xml"),
		WorkDir:     workDir,
		LogsDir:     filepath.Join(workDir, "logs"),
	}
}

// WithConfigFile points the project at an explicit settings file.
func (p ProjectPaths) WithConfigFile(path string) ProjectPaths {
	if strings.TrimSpace(path) == "" {
		return p
	}
	p.ConfigFile = resolveProjectPath(p.Root, path)
	return p
}

// ApplyConfig applies the work_dir override from the settings file.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if workDir := strings.TrimSpace(cfg.WorkDir); workDir != "" {
		pp.WorkDir = resolveProjectPath(pp.Root, workDir)
		pp.LogsDir = filepath.Join(pp.WorkDir, "logs")
	}
	return pp
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// DefaultWorkDir determines the per-user directory holding downloaded tools.
func DefaultWorkDir() (string, error) {
	if override, ok := os.LookupEnv(workDirEnv); ok && override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", workDirEnv, err)
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "phpext"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "phpext"), nil
		}
		return filepath.Join(home, "AppData", "Local", "phpext"), nil
	default:
		return filepath.Join(home, ".local", "share", "phpext"), nil
	}
}

// EnsureWorkDir creates the working and logs directories.
func (p ProjectPaths) EnsureWorkDir() error {
	for _, dir := range []string{p.WorkDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
