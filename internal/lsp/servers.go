package lsp

import (
	"log"
	"sort"

	"phpext/internal/host"
	"phpext/internal/tools"
)

const (
	Intelephense = "intelephense"
	Phpactor     = "phpactor"
	Psalm        = "psalm"
)

const (
	intelephensePackage = "intelephense"
	intelephenseScript  = "lib/intelephense.js"
)

// Deps are the shared download clients handed to installer strategies.
type Deps struct {
	Releases *tools.ReleaseClient
	Cache    *tools.ArtifactCache
	NPM      *tools.NPMClient
	Logger   *log.Logger
}

type serverFactory func(Deps) *Resolver

var servers = map[string]serverFactory{
	Intelephense: newIntelephense,
	Phpactor:     newPhpactor,
	Psalm:        newPsalm,
}

// Known reports whether id names a supported language server.
func Known(id string) bool {
	_, ok := servers[id]
	return ok
}

// ServerIDs lists the supported language servers.
func ServerIDs() []string {
	ids := make([]string, 0, len(servers))
	for id := range servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewResolver builds the resolver for id.
func NewResolver(id string, deps Deps) (*Resolver, bool) {
	factory, ok := servers[id]
	if !ok {
		return nil, false
	}
	return factory(deps), true
}

func newIntelephense(deps Deps) *Resolver {
	return &Resolver{
		ID: Intelephense,
		Strategies: []Strategy{
			PathLookup{Names: []string{"intelephense"}},
			&NpmPackage{Package: intelephensePackage, Script: intelephenseScript, NPM: deps.NPM},
		},
		TransportArgs: []string{"--stdio"},
		Hint:          tools.InstallHint(Intelephense),
		Logger:        deps.Logger,
	}
}

func newPhpactor(deps Deps) *Resolver {
	return &Resolver{
		ID: Phpactor,
		Strategies: []Strategy{
			PathLookup{Names: []string{"phpactor"}},
			VendorPath{Paths: []string{"vendor/bin/phpactor"}},
			&ReleaseDownload{Tool: tools.PhpactorTool, Releases: deps.Releases, Cache: deps.Cache},
		},
		ModeFlag: "language-server",
		// .phar files are not directly executable on Windows.
		Interpreter: &Interpreter{Name: "php", OnlyOn: host.OSWindows},
		Hint:        tools.InstallHint(Phpactor),
		Logger:      deps.Logger,
	}
}

func newPsalm(deps Deps) *Resolver {
	return &Resolver{
		ID: Psalm,
		Strategies: []Strategy{
			PathLookup{Names: []string{"psalm-language-server", "psalm"}},
			VendorPath{Paths: []string{"vendor/bin/psalm-language-server", "vendor/bin/psalm"}},
			SettingsCommand{},
		},
		ModeFlag:    "--language-server",
		Interpreter: &Interpreter{Name: "php"},
		Hint:        tools.InstallHint(Psalm),
		Logger:      deps.Logger,
	}
}
