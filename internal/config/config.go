package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"phpext/internal/host"
)

const (
	DefaultGitHubAPIURL   = "https://api.github.com"
	DefaultNPMRegistryURL = "https://registry.npmjs.org"
)

// Config captures the host-side settings consumed by the resolvers.
type Config struct {
	Version int                         `yaml:"version"`
	WorkDir string                      `yaml:"work_dir"`
	Node    NodeConfig                  `yaml:"node"`
	GitHub  GitHubConfig                `yaml:"github"`
	NPM     NPMConfig                   `yaml:"npm"`
	LSP     map[string]host.LSPSettings `yaml:"lsp"`
	DAP     DAPConfig                   `yaml:"dap"`
}

// NodeConfig pins the Node.js runtime used for intelephense and Xdebug.
type NodeConfig struct {
	Path string `yaml:"path"`
}

// GitHubConfig points release lookups at a GitHub-compatible API.
type GitHubConfig struct {
	APIURL string `yaml:"api_url"`
}

// NPMConfig points package lookups at an npm registry.
type NPMConfig struct {
	RegistryURL string `yaml:"registry_url"`
}

// DAPConfig groups debug adapter settings.
type DAPConfig struct {
	Xdebug XdebugConfig `yaml:"xdebug"`
}

// XdebugConfig lets users point at a locally installed vscode-php-debug build.
type XdebugConfig struct {
	AdapterPath string `yaml:"adapter_path"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		GitHub:  GitHubConfig{APIURL: DefaultGitHubAPIURL},
		NPM:     NPMConfig{RegistryURL: DefaultNPMRegistryURL},
		LSP:     map[string]host.LSPSettings{},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left empty.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.GitHub.APIURL) == "" {
		c.GitHub.APIURL = defaults.GitHub.APIURL
	}
	if strings.TrimSpace(c.NPM.RegistryURL) == "" {
		c.NPM.RegistryURL = defaults.NPM.RegistryURL
	}
	if c.LSP == nil {
		c.LSP = map[string]host.LSPSettings{}
	}
}

// ServerSettings returns the settings declared for a language server.
func (c Config) ServerSettings(serverID string) (host.LSPSettings, bool) {
	settings, ok := c.LSP[serverID]
	return settings, ok
}
