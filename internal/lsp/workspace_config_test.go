package lsp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"phpext/internal/host"
	"phpext/internal/host/hosttest"
)

func TestPsalmConfigurationInjectsConfigPath(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "psalm.xml")
	require.NoError(t, os.WriteFile(configPath, []byte("<psalm/>"), 0o644))

	userSettings := map[string]any{"errorLevel": 3}
	wt := &hosttest.Worktree{
		Root:     root,
		Settings: map[string]host.LSPSettings{Psalm: {Settings: userSettings}},
	}

	cfg, ok := WorkspaceConfiguration(Psalm, wt)
	require.True(t, ok)
	require.Equal(t, map[string]any{
		"psalm": map[string]any{
			"errorLevel":  3,
			"configPaths": []string{configPath},
		},
	}, cfg)
	require.NotContains(t, userSettings, "configPaths")
}

func TestPsalmConfigurationWithoutConfigFile(t *testing.T) {
	root := t.TempDir()
	// A directory named psalm.xml is not a config file.
	require.NoError(t, os.Mkdir(filepath.Join(root, "psalm.xml"), 0o755))

	wt := &hosttest.Worktree{Root: root, SettingsErr: errors.New("settings unreadable")}
	cfg, ok := WorkspaceConfiguration(Psalm, wt)
	require.True(t, ok)
	require.Equal(t, map[string]any{"psalm": map[string]any{}}, cfg)
}

func TestIntelephenseConfiguration(t *testing.T) {
	wt := &hosttest.Worktree{
		Root: t.TempDir(),
		Settings: map[string]host.LSPSettings{
			Intelephense: {Settings: map[string]any{"files": map[string]any{"maxSize": 5000000}}},
		},
	}
	cfg, ok := WorkspaceConfiguration(Intelephense, wt)
	require.True(t, ok)
	require.Equal(t, map[string]any{
		"intelephense": map[string]any{"files": map[string]any{"maxSize": 5000000}},
	}, cfg)
}

func TestIntelephenseConfigurationDefaultsToEmpty(t *testing.T) {
	cfg, ok := WorkspaceConfiguration(Intelephense, &hosttest.Worktree{Root: t.TempDir()})
	require.True(t, ok)
	require.Equal(t, map[string]any{"intelephense": map[string]any{}}, cfg)
}

func TestPhpactorHasNoConfiguration(t *testing.T) {
	cfg, ok := WorkspaceConfiguration(Phpactor, &hosttest.Worktree{Root: t.TempDir()})
	require.False(t, ok)
	require.Nil(t, cfg)
}
