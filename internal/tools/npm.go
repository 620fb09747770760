package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"phpext/internal/host"
	"phpext/internal/logx"
	"phpext/internal/paths"
)

// NPMClient installs npm packages into a private prefix (<Prefix>/node_modules).
type NPMClient struct {
	RegistryURL string
	Prefix      string
	HTTP        *http.Client
	Logger      *log.Logger
}

// runNPM is swapped out in tests.
var runNPM = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	return cmd.CombinedOutput()
}

// NewNPMClient returns a client installing under prefix.
func NewNPMClient(registryURL, prefix string, logger *log.Logger) *NPMClient {
	return &NPMClient{
		RegistryURL: strings.TrimRight(registryURL, "/"),
		Prefix:      prefix,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
		Logger:      logx.OrDiscard(logger),
	}
}

// PackageDir is where pkg lives once installed.
func (c *NPMClient) PackageDir(pkg string) string {
	return filepath.Join(c.Prefix, "node_modules", filepath.FromSlash(pkg))
}

// LatestVersion asks the registry for the version tagged latest.
func (c *NPMClient) LatestVersion(ctx context.Context, pkg string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/latest", c.RegistryURL, url.PathEscape(pkg))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", host.Wrap(host.KindRemote, err, "build registry query for %s", pkg)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", host.Wrap(host.KindRemote, err, "query registry for %s", pkg)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", host.Errorf(host.KindRemote, "registry query for %s failed: %s", pkg, resp.Status)
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", host.Wrap(host.KindRemote, err, "decode registry response for %s", pkg)
	}
	if payload.Version == "" {
		return "", host.Errorf(host.KindRemote, "registry returned no version for %s", pkg)
	}
	return payload.Version, nil
}

// InstalledVersion reads the version recorded in the installed package.json.
func (c *NPMClient) InstalledVersion(pkg string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(c.PackageDir(pkg), "package.json"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger().Printf("npm %s: read package.json: %v", pkg, err)
		}
		return "", false
	}
	var manifest struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil || manifest.Version == "" {
		return "", false
	}
	return manifest.Version, true
}

// Install runs npm to place pkg@version under the prefix. npm is taken from
// the directory of nodePath when present, otherwise from PATH.
func (c *NPMClient) Install(ctx context.Context, nodePath, pkg, version string) error {
	npm, err := npmBinary(nodePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Prefix, 0o755); err != nil {
		return fmt.Errorf("prepare npm prefix: %w", err)
	}

	args := []string{
		"install",
		"--prefix", c.Prefix,
		"--no-save",
		"--no-audit",
		"--no-fund",
		fmt.Sprintf("%s@%s", pkg, version),
	}
	if c.RegistryURL != "" {
		args = append(args, "--registry", c.RegistryURL)
	}
	c.logger().Printf("npm %s: installing %s via %s", pkg, version, npm)
	output, err := runNPM(ctx, npm, args...)
	if err != nil {
		return host.Wrap(host.KindRemote, err, "npm install %s@%s: %s", pkg, version, strings.TrimSpace(string(output)))
	}
	return nil
}

func npmBinary(nodePath string) (string, error) {
	goos := host.CurrentOS()
	if nodePath != "" {
		name := "npm"
		if goos == host.OSWindows {
			name = "npm.cmd"
		}
		sibling := filepath.Join(filepath.Dir(nodePath), name)
		if ok, _ := paths.FileExists(sibling); ok {
			return sibling, nil
		}
	}
	if found, ok := paths.LookPath(os.Getenv("PATH"), "npm", goos); ok {
		return found, nil
	}
	return "", host.Errorf(host.KindEnvironment, "npm not found next to %q or in PATH", nodePath)
}

func (c *NPMClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *NPMClient) logger() *log.Logger {
	return logx.OrDiscard(c.Logger)
}
