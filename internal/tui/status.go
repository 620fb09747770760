package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"phpext/internal/host"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type activeInstall struct {
	state host.InstallState
	since time.Time
}

// StatusWriter animates one status line listing every server that is
// currently checking for updates or downloading. Each server carries its
// own elapsed time, restarted whenever its state changes.
type StatusWriter struct {
	w  io.Writer
	mu sync.Mutex

	active  map[string]activeInstall
	order   []string
	done    chan struct{}
	stopped bool
}

// NewStatusWriter starts redrawing the line on w every 100ms.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:      w,
		active: map[string]activeInstall{},
		done:   make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Set records state for serverID.
func (sw *StatusWriter) Set(serverID string, state host.InstallState) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	current, ok := sw.active[serverID]
	if ok && current.state == state {
		return
	}
	if !ok {
		sw.order = append(sw.order, serverID)
	}
	sw.active[serverID] = activeInstall{state: state, since: time.Now()}
}

// Clear drops serverID from the line and reports how many servers remain.
func (sw *StatusWriter) Clear(serverID string) int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if _, ok := sw.active[serverID]; ok {
		delete(sw.active, serverID)
		for i, id := range sw.order {
			if id == serverID {
				sw.order = append(sw.order[:i], sw.order[i+1:]...)
				break
			}
		}
	}
	return len(sw.active)
}

// Stop clears the status line and stops the spinner.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.done)
	fmt.Fprintf(sw.w, "\r\033[K")
}

func (sw *StatusWriter) loop() {
	tick := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sw.done:
			return
		case now := <-ticker.C:
			line := sw.line(tick, now)
			tick++
			if line != "" {
				fmt.Fprintf(sw.w, "\r\033[K%s", line)
			}
		}
	}
}

// line renders the spinner frame for tick, or "" when nothing is active.
func (sw *StatusWriter) line(tick int, now time.Time) string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if len(sw.order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(sw.order))
	for _, id := range sw.order {
		a := sw.active[id]
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", id, describeState(a.state), formatElapsed(now.Sub(a.since))))
	}
	return spinnerFrames[tick%len(spinnerFrames)] + " " + strings.Join(parts, " · ")
}

func describeState(state host.InstallState) string {
	switch state {
	case host.InstallCheckingForUpdate:
		return "checking for update"
	case host.InstallDownloading:
		return "downloading"
	case host.InstallFailed:
		return "failed"
	default:
		return "ready"
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
