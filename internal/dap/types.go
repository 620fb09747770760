// Package dap prepares debug adapter launches: it translates editor debug
// configurations, negotiates the TCP rendezvous and locates the adapter
// runtime.
package dap

// RequestKindValue is the DAP request an adapter session starts with.
type RequestKindValue string

const (
	RequestLaunch RequestKindValue = "launch"
	RequestAttach RequestKindValue = "attach"
)

// TCPTemplate is a partially specified TCP rendezvous. Nil fields are
// filled with defaults by ResolveTCP.
type TCPTemplate struct {
	Host    *string `json:"host,omitempty"`
	Port    *uint16 `json:"port,omitempty"`
	Timeout *uint64 `json:"timeout,omitempty"`
}

// TCPArguments is a fully resolved rendezvous. Timeout is in milliseconds.
type TCPArguments struct {
	Host    string `json:"host"`
	Port    uint16 `json:"port"`
	Timeout uint64 `json:"timeout"`
}

// TaskDefinition is what the host hands over when it starts a session.
type TaskDefinition struct {
	Label         string       `json:"label"`
	Adapter       string       `json:"adapter"`
	Config        string       `json:"config"`
	TCPConnection *TCPTemplate `json:"tcp_connection,omitempty"`
}

// StartDebuggingRequestArguments are forwarded verbatim to the adapter.
type StartDebuggingRequestArguments struct {
	Configuration string           `json:"configuration"`
	Request       RequestKindValue `json:"request"`
}

// AdapterBinary is everything the host needs to spawn and connect to an
// adapter.
type AdapterBinary struct {
	Command     string                         `json:"command"`
	Arguments   []string                       `json:"arguments"`
	Envs        map[string]string              `json:"envs"`
	Cwd         string                         `json:"cwd,omitempty"`
	Connection  *TCPArguments                  `json:"connection,omitempty"`
	RequestArgs StartDebuggingRequestArguments `json:"request_args"`
}

// LaunchRequest starts a new debuggee.
type LaunchRequest struct {
	Program string            `json:"program"`
	Cwd     string            `json:"cwd,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Envs    map[string]string `json:"env,omitempty"`
}

// AttachRequest connects to a running process.
type AttachRequest struct {
	ProcessID *uint32 `json:"process_id,omitempty"`
}

// DebugRequest holds exactly one of Launch or Attach.
type DebugRequest struct {
	Launch *LaunchRequest `json:"launch,omitempty"`
	Attach *AttachRequest `json:"attach,omitempty"`
}

// DebugConfig is the editor's adapter-agnostic debug configuration.
type DebugConfig struct {
	Label       string       `json:"label"`
	Adapter     string       `json:"adapter"`
	Request     DebugRequest `json:"request"`
	StopOnEntry *bool        `json:"stop_on_entry,omitempty"`
}

// DebugScenario is a debug configuration rendered in the adapter's own
// shape. Build and TCPConnection stay nil for adapters that negotiate the
// transport at launch time.
type DebugScenario struct {
	Adapter       string          `json:"adapter"`
	Label         string          `json:"label"`
	Build         *TaskDefinition `json:"build,omitempty"`
	Config        string          `json:"config"`
	TCPConnection *TCPTemplate    `json:"tcp_connection,omitempty"`
}
