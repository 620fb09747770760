package dap

import (
	"encoding/json"

	"phpext/internal/host"
)

const errAttachUnsupported = "Xdebug adapter doesn't support attaching"

type launchConfig struct {
	Program     string            `json:"program"`
	Cwd         *string           `json:"cwd"`
	Args        []string          `json:"args"`
	Env         map[string]string `json:"env"`
	StopOnEntry bool              `json:"stopOnEntry"`
}

// ConfigToScenario renders a launch configuration in vscode-php-debug's
// native shape. Attach requests are rejected.
func ConfigToScenario(cfg DebugConfig) (DebugScenario, error) {
	if cfg.Request.Attach != nil {
		return DebugScenario{}, host.Errorf(host.KindInvalidInput, errAttachUnsupported)
	}
	launch := cfg.Request.Launch
	if launch == nil {
		return DebugScenario{}, host.Errorf(host.KindInvalidInput, "debug config %q has no launch request", cfg.Label)
	}

	native := launchConfig{
		Program: launch.Program,
		Args:    append([]string{}, launch.Args...),
		Env:     map[string]string{},
	}
	if launch.Cwd != "" {
		cwd := launch.Cwd
		native.Cwd = &cwd
	}
	for k, v := range launch.Envs {
		native.Env[k] = v
	}
	if cfg.StopOnEntry != nil {
		native.StopOnEntry = *cfg.StopOnEntry
	}

	encoded, err := json.Marshal(native)
	if err != nil {
		return DebugScenario{}, host.Wrap(host.KindInvalidInput, err, "encode debug config")
	}
	return DebugScenario{
		Adapter: cfg.Adapter,
		Label:   cfg.Label,
		Config:  string(encoded),
	}, nil
}

// RequestKind classifies a raw adapter configuration. Only "launch" is
// accepted.
func RequestKind(config json.RawMessage) (RequestKindValue, error) {
	var probe struct {
		Request *string `json:"request"`
	}
	if err := json.Unmarshal(config, &probe); err != nil || probe.Request == nil {
		return "", host.Errorf(host.KindInvalidInput, "Invalid config")
	}
	switch RequestKindValue(*probe.Request) {
	case RequestLaunch:
		return RequestLaunch, nil
	case RequestAttach:
		return "", host.Errorf(host.KindInvalidInput, errAttachUnsupported)
	default:
		return "", host.Errorf(host.KindInvalidInput, "Invalid config")
	}
}
