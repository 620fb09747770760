// Package extension is the single entry point a host calls into. It keeps
// one resolver per language server and one Xdebug adapter for the lifetime
// of the process.
package extension

import (
	"context"
	"encoding/json"
	"log"
	"path/filepath"
	"sync"

	"go.lsp.dev/protocol"

	"phpext/internal/config"
	"phpext/internal/dap"
	"phpext/internal/host"
	"phpext/internal/logx"
	"phpext/internal/lsp"
	"phpext/internal/tools"
)

// Options configures the remote endpoints used by installers.
type Options struct {
	GitHubAPIURL   string
	NPMRegistryURL string
	Logger         *log.Logger
}

// Extension dispatches host requests by tool identity.
type Extension struct {
	host   host.Host
	logger *log.Logger
	deps   lsp.Deps
	xdebug *dap.Xdebug

	mu      sync.Mutex
	servers map[string]*lsp.Resolver
}

// New builds an extension whose downloads live under h.WorkDir().
func New(h host.Host, opts Options) *Extension {
	logger := logx.OrDiscard(opts.Logger)
	if opts.GitHubAPIURL == "" {
		opts.GitHubAPIURL = config.DefaultGitHubAPIURL
	}
	if opts.NPMRegistryURL == "" {
		opts.NPMRegistryURL = config.DefaultNPMRegistryURL
	}

	releases := tools.NewReleaseClient(opts.GitHubAPIURL, logger)
	releases.MemoDir = h.WorkDir()
	cache := tools.NewArtifactCache(h.WorkDir(), logger)

	return &Extension{
		host:   h,
		logger: logger,
		deps: lsp.Deps{
			Releases: releases,
			Cache:    cache,
			NPM:      tools.NewNPMClient(opts.NPMRegistryURL, h.WorkDir(), logger),
			Logger:   logger,
		},
		xdebug:  dap.NewXdebug(releases, cache, logger),
		servers: map[string]*lsp.Resolver{},
	}
}

// Cache exposes the artifact cache shared by all installers.
func (e *Extension) Cache() *tools.ArtifactCache {
	return e.deps.Cache
}

// InstallTool fetches the latest release of a cached tool ahead of first
// use and returns where it was extracted.
func (e *Extension) InstallTool(ctx context.Context, name string) (tools.Status, error) {
	def, ok := tools.Definition(name)
	if !ok {
		return tools.Status{Tool: name}, host.Errorf(host.KindInvalidInput, "unknown tool: %s", name)
	}
	artifact, err := e.deps.Releases.Artifact(ctx, def)
	if err != nil {
		return tools.Status{Tool: name, Error: err.Error()}, err
	}
	dir, err := e.deps.Cache.Ensure(ctx, def.Name, artifact)
	if err != nil {
		return tools.Status{Tool: name, Version: artifact.Version, Error: err.Error()}, err
	}
	e.logger.Printf("extension: %s %s ready in %s", name, artifact.Version, dir)
	return tools.Status{Tool: name, Version: artifact.Version, Path: dir}, nil
}

// LanguageServerCommand resolves how to start the server id for wt.
func (e *Extension) LanguageServerCommand(ctx context.Context, id string, wt host.Worktree) (host.Command, error) {
	resolver, err := e.resolver(id)
	if err != nil {
		return host.Command{}, err
	}
	return resolver.Command(ctx, wt, e.host)
}

// LanguageServerWorkspaceConfiguration returns the payload for the server's
// workspace/configuration requests, or nil when it declares none.
func (e *Extension) LanguageServerWorkspaceConfiguration(id string, wt host.Worktree) (map[string]any, error) {
	if !lsp.Known(id) {
		return nil, unknownServer(id)
	}
	cfg, ok := lsp.WorkspaceConfiguration(id, wt)
	if !ok {
		return nil, nil
	}
	return cfg, nil
}

// LabelForCompletion renders a completion item for the server id.
func (e *Extension) LabelForCompletion(id string, item protocol.CompletionItem) (*lsp.CodeLabel, bool) {
	return lsp.LabelForCompletion(id, item)
}

// DapRequestKind classifies a raw adapter configuration.
func (e *Extension) DapRequestKind(adapter string, config json.RawMessage) (dap.RequestKindValue, error) {
	if adapter != dap.XdebugName {
		return "", unknownAdapter(adapter)
	}
	return dap.RequestKind(config)
}

// DapConfigToScenario renders a debug configuration for the adapter it names.
func (e *Extension) DapConfigToScenario(cfg dap.DebugConfig) (dap.DebugScenario, error) {
	if cfg.Adapter != dap.XdebugName {
		return dap.DebugScenario{}, unknownAdapter(cfg.Adapter)
	}
	return dap.ConfigToScenario(cfg)
}

// GetDapBinary resolves the adapter process for one debug session.
func (e *Extension) GetDapBinary(ctx context.Context, adapter string, task dap.TaskDefinition, overridePath string, wt host.Worktree) (dap.AdapterBinary, error) {
	if adapter != dap.XdebugName {
		return dap.AdapterBinary{}, unknownAdapter(adapter)
	}
	if overridePath != "" && !filepath.IsAbs(overridePath) {
		overridePath = filepath.Join(wt.RootPath(), overridePath)
	}
	return e.xdebug.GetBinary(ctx, e.host, task, overridePath, wt)
}

// resolver returns the cached resolver for id, creating it on first use.
func (e *Extension) resolver(id string) (*lsp.Resolver, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.servers[id]; ok {
		return r, nil
	}
	r, ok := lsp.NewResolver(id, e.deps)
	if !ok {
		return nil, unknownServer(id)
	}
	e.servers[id] = r
	e.logger.Printf("extension: created resolver for %s", id)
	return r, nil
}

func unknownServer(id string) error {
	return host.Errorf(host.KindInvalidInput, "unknown language server: %s", id)
}

func unknownAdapter(name string) error {
	return host.Errorf(host.KindInvalidInput, "unknown debug adapter: %s", name)
}
