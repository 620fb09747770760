// Package hosttest provides in-memory host collaborators for tests.
package hosttest

import (
	"errors"

	"phpext/internal/host"
)

// Worktree is a scripted host.Worktree.
type Worktree struct {
	Root        string
	Bins        map[string]string
	Settings    map[string]host.LSPSettings
	SettingsErr error

	// WhichCalls records every PATH lookup in order.
	WhichCalls []string
}

func (w *Worktree) RootPath() string { return w.Root }

func (w *Worktree) Which(name string) (string, bool) {
	w.WhichCalls = append(w.WhichCalls, name)
	path, ok := w.Bins[name]
	return path, ok
}

func (w *Worktree) LSPSettings(serverID string) (host.LSPSettings, error) {
	if w.SettingsErr != nil {
		return host.LSPSettings{}, w.SettingsErr
	}
	settings, ok := w.Settings[serverID]
	if !ok {
		return host.LSPSettings{}, errors.New("no settings for " + serverID)
	}
	return settings, nil
}

// StatusEvent is one recorded SetInstallationStatus call.
type StatusEvent struct {
	ServerID string
	Status   host.InstallationStatus
}

// Host is a recording host.Host.
type Host struct {
	OS       host.OS
	Dir      string
	Node     string
	NodeErr  error
	Statuses []StatusEvent
}

func (h *Host) CurrentOS() host.OS {
	if h.OS == "" {
		return host.OSLinux
	}
	return h.OS
}

func (h *Host) WorkDir() string { return h.Dir }

func (h *Host) NodeBinaryPath() (string, error) {
	if h.NodeErr != nil {
		return "", h.NodeErr
	}
	if h.Node == "" {
		return "", host.Errorf(host.KindEnvironment, "node not found in PATH")
	}
	return h.Node, nil
}

func (h *Host) SetInstallationStatus(serverID string, status host.InstallationStatus) {
	h.Statuses = append(h.Statuses, StatusEvent{ServerID: serverID, Status: status})
}

// Last returns the most recent status reported for serverID.
func (h *Host) Last(serverID string) (host.InstallationStatus, bool) {
	for i := len(h.Statuses) - 1; i >= 0; i-- {
		if h.Statuses[i].ServerID == serverID {
			return h.Statuses[i].Status, true
		}
	}
	return host.InstallationStatus{}, false
}
