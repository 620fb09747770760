package lsp

import (
	"context"
	"fmt"
	"path/filepath"

	"phpext/internal/host"
	"phpext/internal/paths"
	"phpext/internal/tools"
)

// PathLookup searches the workspace PATH for each name in order.
type PathLookup struct {
	Names []string
}

func (s PathLookup) Name() string { return "path" }

func (s PathLookup) Resolve(_ context.Context, req *Request) (host.Command, bool, error) {
	for _, name := range s.Names {
		found, ok := req.Worktree.Which(name)
		if !ok {
			continue
		}
		return host.Command{Command: found, Args: req.ModeArgs(name)}, true, nil
	}
	return host.Command{}, false, nil
}

// VendorPath probes project-relative paths such as vendor/bin/<name>.
type VendorPath struct {
	Paths []string
}

func (s VendorPath) Name() string { return "vendor" }

func (s VendorPath) Resolve(_ context.Context, req *Request) (host.Command, bool, error) {
	root := req.Worktree.RootPath()
	for _, rel := range s.Paths {
		candidate := filepath.Join(root, filepath.FromSlash(rel))
		ok, err := paths.FileExists(candidate)
		if err != nil {
			req.Logger.Printf("lsp %s: stat %s: %v", req.ServerID, candidate, err)
			continue
		}
		if !ok {
			continue
		}
		return host.Command{Command: candidate, Args: req.ModeArgs(rel)}, true, nil
	}
	return host.Command{}, false, nil
}

// SettingsCommand uses initialization_options.command from the server's
// workspace settings. The first element is the executable, relative to the
// workspace root unless absolute; the rest are passed through as arguments.
type SettingsCommand struct{}

func (SettingsCommand) Name() string { return "settings" }

func (SettingsCommand) Resolve(_ context.Context, req *Request) (host.Command, bool, error) {
	settings, err := req.Worktree.LSPSettings(req.ServerID)
	if err != nil {
		return host.Command{}, false, nil
	}
	parts, ok := commandFromOptions(settings.InitializationOptions)
	if !ok {
		return host.Command{}, false, nil
	}

	executable := parts[0]
	if !filepath.IsAbs(executable) {
		executable = filepath.Join(req.Worktree.RootPath(), executable)
	}
	exists, err := paths.FileExists(executable)
	if err != nil || !exists {
		return host.Command{}, false, nil
	}
	return host.Command{Command: executable, Args: append([]string(nil), parts[1:]...)}, true, nil
}

func commandFromOptions(options map[string]any) ([]string, bool) {
	raw, ok := options["command"]
	if !ok {
		return nil, false
	}
	var parts []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			parts = append(parts, s)
		}
	case []string:
		parts = append(parts, v...)
	default:
		return nil, false
	}
	if len(parts) == 0 || parts[0] == "" {
		return nil, false
	}
	return parts, true
}

// NpmPackage keeps an npm package installed in the host's work directory
// and runs its entry script with Node.
type NpmPackage struct {
	Package string
	// Script is the entry point relative to the package directory.
	Script string
	NPM    *tools.NPMClient

	cached string
}

func (s *NpmPackage) Name() string { return "npm" }

func (s *NpmPackage) Resolve(ctx context.Context, req *Request) (host.Command, bool, error) {
	node, err := req.Host.NodeBinaryPath()
	if err != nil {
		return host.Command{}, false, err
	}
	script := filepath.Join(s.NPM.PackageDir(s.Package), filepath.FromSlash(s.Script))

	if s.cached != "" {
		if ok, _ := paths.FileExists(s.cached); ok {
			return host.Command{Command: node, Args: []string{s.cached}}, true, nil
		}
	}

	req.Host.SetInstallationStatus(req.ServerID, host.InstallationStatus{State: host.InstallCheckingForUpdate})
	installed, hasInstalled := s.NPM.InstalledVersion(s.Package)
	latest, err := s.NPM.LatestVersion(ctx, s.Package)
	switch {
	case err != nil && !hasInstalled:
		return host.Command{}, false, err
	case err != nil:
		req.Logger.Printf("lsp %s: keeping %s %s: %v", req.ServerID, s.Package, installed, err)
	case !hasInstalled || installed != latest:
		req.Host.SetInstallationStatus(req.ServerID, host.InstallationStatus{State: host.InstallDownloading})
		if err := s.NPM.Install(ctx, node, s.Package, latest); err != nil {
			if !hasInstalled {
				return host.Command{}, false, err
			}
			req.Logger.Printf("lsp %s: upgrade to %s failed, keeping %s: %v", req.ServerID, latest, installed, err)
		}
	}

	if ok, _ := paths.FileExists(script); !ok {
		return host.Command{}, false, host.Errorf(host.KindNotFound, "installed package %s is missing %s", s.Package, s.Script)
	}
	req.Host.SetInstallationStatus(req.ServerID, host.InstallationStatus{State: host.InstallNone})
	s.cached = script
	return host.Command{Command: node, Args: []string{script}}, true, nil
}

// ReleaseDownload fetches a tool published as a GitHub release asset into the
// artifact cache. When the release index is unreachable the newest cached
// copy is used instead.
type ReleaseDownload struct {
	Tool     string
	Releases *tools.ReleaseClient
	Cache    *tools.ArtifactCache

	cached string
}

func (s *ReleaseDownload) Name() string { return "release" }

func (s *ReleaseDownload) Resolve(ctx context.Context, req *Request) (host.Command, bool, error) {
	def, ok := tools.Definition(s.Tool)
	if !ok {
		return host.Command{}, false, fmt.Errorf("no release definition for %s", s.Tool)
	}

	if s.cached != "" {
		if ok, _ := paths.FileExists(s.cached); ok {
			return host.Command{Command: s.cached, Args: req.ModeArgs(def.Name)}, true, nil
		}
	}

	req.Host.SetInstallationStatus(req.ServerID, host.InstallationStatus{State: host.InstallCheckingForUpdate})
	dir, err := s.fetch(ctx, req, def)
	if err != nil {
		version, found := s.Cache.HighestVersion(def.Name)
		if !found {
			return host.Command{}, false, err
		}
		req.Logger.Printf("lsp %s: release lookup failed, using cached %s: %v", req.ServerID, version, err)
		dir = s.Cache.Dir(def.Name, version)
	}

	entry := filepath.Join(dir, filepath.FromSlash(def.Entry))
	if ok, _ := paths.FileExists(entry); !ok {
		return host.Command{}, false, host.Errorf(host.KindNotFound, "%s is missing from %s", def.Entry, dir)
	}
	req.Host.SetInstallationStatus(req.ServerID, host.InstallationStatus{State: host.InstallNone})
	s.cached = entry
	return host.Command{Command: entry, Args: req.ModeArgs(def.Name)}, true, nil
}

func (s *ReleaseDownload) fetch(ctx context.Context, req *Request, def tools.ToolDefinition) (string, error) {
	artifact, err := s.Releases.Artifact(ctx, def)
	if err != nil {
		return "", err
	}
	if ok, _ := paths.DirExists(s.Cache.Dir(def.Name, artifact.Version)); !ok {
		req.Host.SetInstallationStatus(req.ServerID, host.InstallationStatus{State: host.InstallDownloading})
	}
	return s.Cache.Ensure(ctx, def.Name, artifact)
}
