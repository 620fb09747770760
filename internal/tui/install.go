package tui

import (
	"fmt"
	"io"
	"sync"

	"phpext/internal/host"
)

// InstallReporter renders language server installation statuses. In
// spinner mode active states animate a single line; otherwise every change
// is written as its own line. JSON mode only reports failures.
type InstallReporter struct {
	w    io.Writer
	mode OutputMode

	mu      sync.Mutex
	spinner *StatusWriter
}

// NewInstallReporter writes statuses to w in the given mode.
func NewInstallReporter(w io.Writer, mode OutputMode) *InstallReporter {
	return &InstallReporter{w: w, mode: mode}
}

// Report records status for serverID.
func (r *InstallReporter) Report(serverID string, status host.InstallationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := status.State == host.InstallCheckingForUpdate || status.State == host.InstallDownloading
	if r.mode == ModeSpinner {
		if active {
			if r.spinner == nil {
				r.spinner = NewStatusWriter(r.w)
			}
			r.spinner.Set(serverID, status.State)
			return
		}
		if r.spinner != nil && r.spinner.Clear(serverID) == 0 {
			r.stopLocked()
		}
	}

	if status.State == host.InstallFailed {
		r.stopLocked()
		line := HeaderStyle.Render(serverID) + " " + StatusStyle(string(status.State)).Render("failed")
		if status.Message != "" {
			line += ": " + status.Message
		}
		fmt.Fprintln(r.w, line)
		return
	}
	if active && r.mode == ModePlain {
		fmt.Fprintf(r.w, "%s %s\n", HeaderStyle.Render(serverID), StatusStyle(string(status.State)).Render(describeState(status.State)))
	}
}

// Close stops any running spinner.
func (r *InstallReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *InstallReporter) stopLocked() {
	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}
}
