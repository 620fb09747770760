package dap

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"phpext/internal/host"
	"phpext/internal/host/hosttest"
	"phpext/internal/tools"
)

func adapterZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("extension/out/phpDebug.js")
	require.NoError(t, err)
	_, err = w.Write([]byte("// adapter\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// releaseServer serves a single Xdebug release; online toggles availability.
func releaseServer(t *testing.T, version string, online *atomic.Bool) (*httptest.Server, *int32) {
	t.Helper()
	payload := adapterZip(t)
	var hits int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if !online.Load() {
			http.Error(w, "offline", http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/repos/xdebug/vscode-php-debug/releases":
			asset := fmt.Sprintf("php-debug-%s.vsix", version[1:])
			fmt.Fprintf(w, `[{"tag_name":%q,"assets":[{"name":%q,"browser_download_url":"%s/dl/%s"}]}]`, version, asset, srv.URL, asset)
		default:
			_, _ = w.Write(payload)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestXdebug(t *testing.T, baseURL string) (*Xdebug, string) {
	t.Helper()
	workDir := t.TempDir()
	return NewXdebug(tools.NewReleaseClient(baseURL, nil), tools.NewArtifactCache(workDir, nil), nil), workDir
}

func TestGetBinaryDownloadsAndPinsVersion(t *testing.T) {
	var online atomic.Bool
	online.Store(true)
	srv, _ := releaseServer(t, "v1.34.0", &online)
	x, workDir := newTestXdebug(t, srv.URL)

	root := t.TempDir()
	h := &hosttest.Host{Node: "/usr/bin/node"}
	wt := &hosttest.Worktree{Root: root}
	port := uint16(9003)

	bin, err := x.GetBinary(context.Background(), h, TaskDefinition{
		Config:        `{"program":"app.php","request":"launch"}`,
		TCPConnection: &TCPTemplate{Port: &port},
	}, "", wt)
	require.NoError(t, err)

	script := filepath.Join(workDir, "Xdebug", "Xdebug_v1.34.0", "extension", "out", "phpDebug.js")
	require.Equal(t, "/usr/bin/node", bin.Command)
	require.Equal(t, []string{script, "--server=9003"}, bin.Arguments)
	require.Equal(t, root, bin.Cwd)
	require.Equal(t, &TCPArguments{Host: DefaultTCPHost, Port: 9003, Timeout: DefaultTCPTimeout}, bin.Connection)
	require.Empty(t, bin.Envs)
	require.Equal(t, RequestLaunch, bin.RequestArgs.Request)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(bin.RequestArgs.Configuration), &cfg))
	require.Equal(t, root, cfg["cwd"])
	require.Equal(t, "launch", cfg["request"])

	version, ok := x.Version()
	require.True(t, ok)
	require.Equal(t, "v1.34.0", version)
}

func TestGetBinaryVersionCommittedOnce(t *testing.T) {
	var online atomic.Bool
	online.Store(true)
	srv, hits := releaseServer(t, "v1.34.0", &online)
	x, _ := newTestXdebug(t, srv.URL)

	h := &hosttest.Host{Node: "/usr/bin/node"}
	wt := &hosttest.Worktree{Root: t.TempDir()}
	task := TaskDefinition{Config: `{"request":"launch"}`}

	_, err := x.GetBinary(context.Background(), h, task, "", wt)
	require.NoError(t, err)
	afterFirst := atomic.LoadInt32(hits)

	for i := 0; i < 3; i++ {
		_, err := x.GetBinary(context.Background(), h, task, "", wt)
		require.NoError(t, err)
	}
	require.Equal(t, afterFirst, atomic.LoadInt32(hits), "release index must not be queried again")
}

func TestGetBinaryFallsBackToHighestCachedVersion(t *testing.T) {
	var online atomic.Bool
	srv, _ := releaseServer(t, "v1.34.0", &online)
	x, _ := newTestXdebug(t, srv.URL)

	for _, v := range []string{"1.2.0", "1.3.0"} {
		require.NoError(t, os.MkdirAll(x.Cache.Dir(XdebugName, v), 0o755))
	}

	bin, err := x.GetBinary(context.Background(), &hosttest.Host{Node: "node"}, TaskDefinition{Config: `{"request":"launch"}`}, "", &hosttest.Worktree{Root: t.TempDir()})
	require.NoError(t, err)
	require.Contains(t, bin.Arguments[0], "Xdebug_1.3.0")

	version, ok := x.Version()
	require.True(t, ok)
	require.Equal(t, "1.3.0", version)
}

func TestGetBinaryFallsBackWhenDownloadFails(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/xdebug/vscode-php-debug/releases" {
			fmt.Fprintf(w, `[{"tag_name":"v1.34.0","assets":[{"name":"php-debug-1.34.0.vsix","browser_download_url":"%s/dl/php-debug-1.34.0.vsix"}]}]`, srv.URL)
			return
		}
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	x, _ := newTestXdebug(t, srv.URL)

	cached := x.Cache.Dir(XdebugName, "1.3.0")
	require.NoError(t, os.MkdirAll(cached, 0o755))

	bin, err := x.GetBinary(context.Background(), &hosttest.Host{Node: "node"}, TaskDefinition{Config: `{"request":"launch"}`}, "", &hosttest.Worktree{Root: t.TempDir()})
	require.NoError(t, err)
	require.Contains(t, bin.Arguments[0], "Xdebug_1.3.0")
	require.DirExists(t, cached)

	version, ok := x.Version()
	require.True(t, ok)
	require.Equal(t, "1.3.0", version)
}

func TestGetBinaryWithoutNetworkOrCache(t *testing.T) {
	var online atomic.Bool
	srv, _ := releaseServer(t, "v1.34.0", &online)
	x, _ := newTestXdebug(t, srv.URL)

	_, err := x.GetBinary(context.Background(), &hosttest.Host{Node: "node"}, TaskDefinition{Config: `{"request":"launch"}`}, "", &hosttest.Worktree{Root: t.TempDir()})
	require.ErrorIs(t, err, host.ErrNotFound)
	require.Equal(t, "no installed version of Xdebug found", err.Error())

	_, ok := x.Version()
	require.False(t, ok)
}

func TestGetBinaryOverridePathBypassesCache(t *testing.T) {
	var online atomic.Bool
	srv, hits := releaseServer(t, "v1.34.0", &online)
	x, _ := newTestXdebug(t, srv.URL)

	override := t.TempDir()
	bin, err := x.GetBinary(context.Background(), &hosttest.Host{Node: "node"}, TaskDefinition{Config: `{"request":"launch"}`}, override, &hosttest.Worktree{Root: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(override, "extension", "out", "phpDebug.js"), bin.Arguments[0])
	require.Zero(t, atomic.LoadInt32(hits))

	_, ok := x.Version()
	require.False(t, ok)
}

func TestGetBinaryKeepsUserCwd(t *testing.T) {
	x, _ := newTestXdebug(t, "http://unused.invalid")
	bin, err := x.GetBinary(context.Background(), &hosttest.Host{Node: "node"}, TaskDefinition{Config: `{"cwd":"/srv/app","request":"launch"}`}, t.TempDir(), &hosttest.Worktree{Root: "/proj"})
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(bin.RequestArgs.Configuration), &cfg))
	require.Equal(t, "/srv/app", cfg["cwd"])
	require.Equal(t, "/proj", bin.Cwd)
}

func TestGetBinaryRejectsBadConfigurations(t *testing.T) {
	x, _ := newTestXdebug(t, "http://unused.invalid")
	h := &hosttest.Host{Node: "node"}
	wt := &hosttest.Worktree{Root: "/proj"}

	_, err := x.GetBinary(context.Background(), h, TaskDefinition{Config: `{"program":`}, t.TempDir(), wt)
	require.ErrorIs(t, err, host.ErrInvalidInput)
	require.Contains(t, err.Error(), "Invalid JSON configuration")

	_, err = x.GetBinary(context.Background(), h, TaskDefinition{Config: `{"request":"attach"}`}, t.TempDir(), wt)
	require.ErrorIs(t, err, host.ErrInvalidInput)
	require.Contains(t, err.Error(), "doesn't support attaching")

	// A configuration without a request kind is not assumed to be a launch.
	_, err = x.GetBinary(context.Background(), h, TaskDefinition{Config: `{"program":"app.php"}`}, t.TempDir(), wt)
	require.ErrorIs(t, err, host.ErrInvalidInput)
	require.Equal(t, "Invalid config", err.Error())
}

func TestGetBinaryNeedsNode(t *testing.T) {
	x, _ := newTestXdebug(t, "http://unused.invalid")
	_, err := x.GetBinary(context.Background(), &hosttest.Host{}, TaskDefinition{Config: `{"request":"launch"}`}, t.TempDir(), &hosttest.Worktree{Root: "/proj"})
	require.ErrorIs(t, err, host.ErrEnvironment)
}
