package tools

// InstallHint returns the remediation shown when a language server cannot be
// located by any strategy.
func InstallHint(serverID string) string {
	switch serverID {
	case "psalm":
		return "psalm-language-server not found. Install with: composer require --dev vimeo/psalm"
	case "phpactor":
		return "phpactor not found. Install with: composer require --dev phpactor/phpactor, or allow the phar download"
	case "intelephense":
		return "intelephense not found. Install with: npm install -g intelephense"
	default:
		return serverID + " not found"
	}
}
