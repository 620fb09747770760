package host

import "runtime"

// OS names the platform family a command is built for.
type OS string

const (
	OSMac     OS = "mac"
	OSLinux   OS = "linux"
	OSWindows OS = "windows"
)

// CurrentOS maps runtime.GOOS onto the platform families the resolvers care about.
func CurrentOS() OS {
	switch runtime.GOOS {
	case "darwin":
		return OSMac
	case "windows":
		return OSWindows
	default:
		return OSLinux
	}
}

// Command is a resolved process invocation handed back to the host.
type Command struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// LSPSettings holds the user-declared settings scoped to one language server.
type LSPSettings struct {
	Settings              map[string]any `json:"settings,omitempty" yaml:"settings"`
	InitializationOptions map[string]any `json:"initialization_options,omitempty" yaml:"initialization_options"`
}

// Worktree is the read-only view of a project the host lends to every call.
type Worktree interface {
	RootPath() string
	Which(name string) (string, bool)
	LSPSettings(serverID string) (LSPSettings, error)
}

type InstallState string

const (
	InstallNone              InstallState = "none"
	InstallCheckingForUpdate InstallState = "checking_for_update"
	InstallDownloading       InstallState = "downloading"
	InstallFailed            InstallState = "failed"
)

// InstallationStatus is reported through the host's status channel.
type InstallationStatus struct {
	State   InstallState `json:"state"`
	Message string       `json:"message,omitempty"`
}

// Failed builds a failure status carrying a remediation message.
func Failed(message string) InstallationStatus {
	return InstallationStatus{State: InstallFailed, Message: message}
}

// Host exposes the editor-side services the core depends on.
type Host interface {
	CurrentOS() OS
	// WorkDir is the extension's private directory; downloads and caches live there.
	WorkDir() string
	NodeBinaryPath() (string, error)
	SetInstallationStatus(serverID string, status InstallationStatus)
}
