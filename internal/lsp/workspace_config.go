package lsp

import (
	"path/filepath"

	"phpext/internal/host"
	"phpext/internal/paths"
)

const psalmConfigFile = "psalm.xml"

// WorkspaceConfiguration builds the payload for workspace/configuration
// requests. Servers without a configuration section report false. Missing
// or unreadable settings become an empty object.
func WorkspaceConfiguration(serverID string, wt host.Worktree) (map[string]any, bool) {
	switch serverID {
	case Intelephense:
		return map[string]any{"intelephense": userSettings(serverID, wt)}, true
	case Psalm:
		settings := userSettings(serverID, wt)
		configPath := filepath.Join(wt.RootPath(), psalmConfigFile)
		if ok, _ := paths.FileExists(configPath); ok {
			settings["configPaths"] = []string{configPath}
		}
		return map[string]any{"psalm": settings}, true
	default:
		return nil, false
	}
}

// userSettings returns a shallow copy so the host's map is never mutated.
func userSettings(serverID string, wt host.Worktree) map[string]any {
	out := map[string]any{}
	settings, err := wt.LSPSettings(serverID)
	if err != nil {
		return out
	}
	for k, v := range settings.Settings {
		out[k] = v
	}
	return out
}
