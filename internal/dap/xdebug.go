package dap

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"phpext/internal/host"
	"phpext/internal/logx"
	"phpext/internal/paths"
	"phpext/internal/tools"
)

// XdebugName is the adapter identity the host asks for.
const XdebugName = tools.XdebugTool

// Xdebug launches the vscode-php-debug adapter under Node.
type Xdebug struct {
	Releases *tools.ReleaseClient
	Cache    *tools.ArtifactCache
	Logger   *log.Logger

	state VersionState
}

// NewXdebug wires the adapter to its release index and artifact cache.
func NewXdebug(releases *tools.ReleaseClient, cache *tools.ArtifactCache, logger *log.Logger) *Xdebug {
	return &Xdebug{Releases: releases, Cache: cache, Logger: logx.OrDiscard(logger)}
}

// Version returns the adapter version committed for this process.
func (x *Xdebug) Version() (string, bool) {
	return x.state.Get()
}

// GetBinary resolves the adapter invocation for one debug session. Unless
// overridePath names a local adapter checkout, the first call pins the
// adapter version: the latest release when reachable, otherwise the newest
// cached one.
func (x *Xdebug) GetBinary(ctx context.Context, h host.Host, task TaskDefinition, overridePath string, wt host.Worktree) (AdapterBinary, error) {
	adapterDir := overridePath
	if adapterDir == "" {
		version, ok := x.state.Resolve(func() (string, bool) { return x.resolveVersion(ctx) })
		if !ok {
			return AdapterBinary{}, host.Errorf(host.KindNotFound, "no installed version of %s found", XdebugName)
		}
		adapterDir = x.Cache.Dir(XdebugName, version)
	}

	conn, err := ResolveTCP(task.TCPConnection)
	if err != nil {
		return AdapterBinary{}, err
	}

	configuration, err := prepareConfiguration(task.Config, wt.RootPath())
	if err != nil {
		return AdapterBinary{}, err
	}
	kind, err := RequestKind(configuration)
	if err != nil {
		return AdapterBinary{}, err
	}

	node, err := h.NodeBinaryPath()
	if err != nil {
		return AdapterBinary{}, err
	}

	def, _ := tools.Definition(XdebugName)
	script, err := paths.Normalize(h.CurrentOS(), filepath.Join(adapterDir, filepath.FromSlash(def.Entry)))
	if err != nil {
		return AdapterBinary{}, host.Wrap(host.KindEnvironment, err, "normalize adapter path")
	}

	return AdapterBinary{
		Command:    node,
		Arguments:  []string{script, fmt.Sprintf("--server=%d", conn.Port)},
		Envs:       map[string]string{},
		Cwd:        wt.RootPath(),
		Connection: &conn,
		RequestArgs: StartDebuggingRequestArguments{
			Configuration: string(configuration),
			Request:       kind,
		},
	}, nil
}

// resolveVersion fetches the latest adapter when possible and falls back to
// the highest version already in the cache.
func (x *Xdebug) resolveVersion(ctx context.Context) (string, bool) {
	logger := logx.OrDiscard(x.Logger)
	def, _ := tools.Definition(XdebugName)

	artifact, err := x.Releases.Artifact(ctx, def)
	if err == nil {
		if _, err = x.Cache.Ensure(ctx, XdebugName, artifact); err == nil {
			logger.Printf("xdebug: using release %s", artifact.Version)
			return artifact.Version, true
		}
	}

	version, ok := x.Cache.HighestVersion(XdebugName)
	if !ok {
		logger.Printf("xdebug: release unavailable and cache empty: %v", err)
		return "", false
	}
	logger.Printf("xdebug: release unavailable (%v), using cached %s", err, version)
	return version, true
}

// prepareConfiguration parses the task's JSON and fills in cwd when the
// user left it out.
func prepareConfiguration(raw, root string) (json.RawMessage, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, host.Wrap(host.KindInvalidInput, err, "Invalid JSON configuration")
	}
	if obj, ok := parsed.(map[string]any); ok {
		if _, ok := obj["cwd"]; !ok {
			obj["cwd"] = root
		}
	}
	encoded, err := json.Marshal(parsed)
	if err != nil {
		return nil, host.Wrap(host.KindInvalidInput, err, "encode configuration")
	}
	return encoded, nil
}
