// Package workspace implements the host collaborators for running the
// resolvers from a terminal: the process environment stands in for the
// editor's worktree and phpext.yaml for its settings store.
package workspace

import (
	"fmt"
	"os"

	"phpext/internal/config"
	"phpext/internal/host"
	"phpext/internal/paths"
)

// Worktree is a project directory searched with the process PATH.
type Worktree struct {
	Root    string
	PathEnv string
	OS      host.OS
	Config  config.Config
}

// NewWorktree builds a worktree for root using the current PATH.
func NewWorktree(root string, cfg config.Config) *Worktree {
	return &Worktree{
		Root:    root,
		PathEnv: os.Getenv("PATH"),
		OS:      host.CurrentOS(),
		Config:  cfg,
	}
}

func (w *Worktree) RootPath() string { return w.Root }

func (w *Worktree) Which(name string) (string, bool) {
	return paths.LookPath(w.PathEnv, name, w.OS)
}

// LSPSettings returns the server's section of the lsp map in phpext.yaml.
func (w *Worktree) LSPSettings(serverID string) (host.LSPSettings, error) {
	settings, ok := w.Config.ServerSettings(serverID)
	if !ok {
		return host.LSPSettings{}, fmt.Errorf("no lsp settings for %s", serverID)
	}
	return settings, nil
}

// StatusReporter receives installation status changes.
type StatusReporter interface {
	Report(serverID string, status host.InstallationStatus)
}

// Host provides the runtime services the resolvers need from the process.
type Host struct {
	OS       host.OS
	Dir      string
	NodePath string
	PathEnv  string
	Reporter StatusReporter
}

// NewHost builds a host whose downloads live in workDir.
func NewHost(workDir string, cfg config.Config, reporter StatusReporter) *Host {
	return &Host{
		OS:       host.CurrentOS(),
		Dir:      workDir,
		NodePath: cfg.Node.Path,
		PathEnv:  os.Getenv("PATH"),
		Reporter: reporter,
	}
}

func (h *Host) CurrentOS() host.OS { return h.OS }

func (h *Host) WorkDir() string { return h.Dir }

// NodeBinaryPath returns the configured node binary, or the one on PATH.
func (h *Host) NodeBinaryPath() (string, error) {
	if h.NodePath != "" {
		ok, err := paths.FileExists(h.NodePath)
		if err != nil {
			return "", host.Wrap(host.KindEnvironment, err, "check node at %s", h.NodePath)
		}
		if !ok {
			return "", host.Errorf(host.KindEnvironment, "configured node %s does not exist", h.NodePath)
		}
		return h.NodePath, nil
	}
	if found, ok := paths.LookPath(h.PathEnv, "node", h.OS); ok {
		return found, nil
	}
	return "", host.Errorf(host.KindEnvironment, "node not found in PATH")
}

func (h *Host) SetInstallationStatus(serverID string, status host.InstallationStatus) {
	if h.Reporter != nil {
		h.Reporter.Report(serverID, status)
	}
}
