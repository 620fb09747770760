package tools

import (
	"sort"
	"strings"
)

// ToolDefinition contains metadata required to fetch a released tool.
type ToolDefinition struct {
	Name    string
	Repo    string
	Archive ArchiveKind
	// Entry is the file to launch, relative to the extracted version directory.
	Entry     string
	AssetName func(version string) string
}

const (
	XdebugTool   = "Xdebug"
	PhpactorTool = "phpactor"
)

var toolDefinitions = map[string]ToolDefinition{
	XdebugTool: {
		Name:    XdebugTool,
		Repo:    "xdebug/vscode-php-debug",
		Archive: ArchiveZip,
		Entry:   "extension/out/phpDebug.js",
		AssetName: func(version string) string {
			return "php-debug-" + strings.TrimPrefix(version, "v") + ".vsix"
		},
	},
	PhpactorTool: {
		Name:    PhpactorTool,
		Repo:    "phpactor/phpactor",
		Archive: ArchiveUncompressed,
		Entry:   "phpactor.phar",
		AssetName: func(string) string {
			return "phpactor.phar"
		},
	},
}

// KnownTools returns the list of downloadable tool names.
func KnownTools() []string {
	names := make([]string, 0, len(toolDefinitions))
	for name := range toolDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the tool definition for the provided name.
func Definition(name string) (ToolDefinition, bool) {
	def, ok := toolDefinitions[name]
	return def, ok
}
