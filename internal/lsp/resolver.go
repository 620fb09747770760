// Package lsp locates language server executables for a workspace and builds
// the configuration payloads sent to them once running.
package lsp

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"phpext/internal/host"
	"phpext/internal/logx"
	"phpext/internal/paths"
)

// Request carries the collaborators a strategy may consult.
type Request struct {
	ServerID string
	Worktree host.Worktree
	Host     host.Host
	// ModeFlag is appended to general-purpose CLIs to put them in server mode.
	ModeFlag string
	Logger   *log.Logger
}

// ModeArgs returns the arguments needed to run the executable called name as
// a language server. Dedicated server binaries need none.
func (r *Request) ModeArgs(name string) []string {
	if r.ModeFlag == "" || strings.Contains(filepath.Base(name), "language-server") {
		return nil
	}
	return []string{r.ModeFlag}
}

// Strategy is one way of locating a server. Resolve reports false when it
// abstains; a non-nil error stops the search.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, req *Request) (host.Command, bool, error)
}

// Interpreter describes a runtime that must launch the resolved script.
type Interpreter struct {
	Name string
	// OnlyOn restricts wrapping to one platform; empty means always.
	OnlyOn host.OS
}

func (i *Interpreter) appliesTo(goos host.OS) bool {
	return i != nil && (i.OnlyOn == "" || i.OnlyOn == goos)
}

// Resolver applies an ordered strategy list for one language server.
type Resolver struct {
	ID          string
	Strategies  []Strategy
	ModeFlag    string
	Interpreter *Interpreter
	// TransportArgs are appended to every resolved command.
	TransportArgs []string
	Hint          string
	Logger        *log.Logger

	// mu serializes resolutions; installer strategies remember their result.
	mu sync.Mutex
}

// Command resolves the invocation for the server in wt. The first strategy
// that yields wins; when all abstain the installation hint is reported to
// the host and returned as a not-found error.
func (r *Resolver) Command(ctx context.Context, wt host.Worktree, h host.Host) (host.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := logx.OrDiscard(r.Logger)
	goos := h.CurrentOS()

	var interpreterPath string
	if r.Interpreter.appliesTo(goos) {
		found, ok := wt.Which(r.Interpreter.Name)
		if !ok {
			err := host.Errorf(host.KindEnvironment, "%s not found in PATH", strings.ToUpper(r.Interpreter.Name))
			h.SetInstallationStatus(r.ID, host.Failed(err.Error()))
			return host.Command{}, err
		}
		interpreterPath = found
	}

	req := &Request{
		ServerID: r.ID,
		Worktree: wt,
		Host:     h,
		ModeFlag: r.ModeFlag,
		Logger:   logger,
	}

	for _, strategy := range r.Strategies {
		cmd, ok, err := strategy.Resolve(ctx, req)
		if err != nil {
			logger.Printf("lsp %s: strategy %s failed: %v", r.ID, strategy.Name(), err)
			h.SetInstallationStatus(r.ID, host.Failed(err.Error()))
			return host.Command{}, err
		}
		if !ok {
			logger.Printf("lsp %s: strategy %s abstained", r.ID, strategy.Name())
			continue
		}
		logger.Printf("lsp %s: strategy %s resolved %s", r.ID, strategy.Name(), cmd.Command)

		if interpreterPath != "" {
			cmd, err = wrapInterpreter(goos, interpreterPath, cmd)
			if err != nil {
				h.SetInstallationStatus(r.ID, host.Failed(err.Error()))
				return host.Command{}, err
			}
		}
		cmd.Args = append(cmd.Args, r.TransportArgs...)
		if cmd.Env == nil {
			cmd.Env = map[string]string{}
		}
		return cmd, nil
	}

	h.SetInstallationStatus(r.ID, host.Failed(r.Hint))
	return host.Command{}, host.Errorf(host.KindNotFound, "%s", r.Hint)
}

// wrapInterpreter turns "script args..." into "interpreter <abs script> args...".
func wrapInterpreter(goos host.OS, interpreter string, cmd host.Command) (host.Command, error) {
	script, err := paths.Normalize(goos, cmd.Command)
	if err != nil {
		return host.Command{}, host.Wrap(host.KindEnvironment, err, "normalize %s", cmd.Command)
	}
	args := make([]string, 0, len(cmd.Args)+1)
	args = append(args, script)
	args = append(args, cmd.Args...)
	return host.Command{Command: interpreter, Args: args, Env: cmd.Env}, nil
}
