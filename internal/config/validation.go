package config

import (
	"fmt"
	"net/url"
	"sort"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate reports problems that would make a resolver misbehave.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, validateURL("github.api_url", c.GitHub.APIURL)...)
	results = append(results, validateURL("npm.registry_url", c.NPM.RegistryURL)...)
	results = append(results, c.validateServerCommands()...)
	return results
}

// HasErrors reports whether any result is error-level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func validateURL(field, value string) []ValidationResult {
	parsed, err := url.Parse(value)
	if err != nil {
		return []ValidationResult{{Level: "error", Message: fmt.Sprintf("%s: %v", field, err)}}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return []ValidationResult{{Level: "error", Message: fmt.Sprintf("%s: unsupported scheme %q", field, parsed.Scheme)}}
	}
	return nil
}

func (c Config) validateServerCommands() []ValidationResult {
	names := make([]string, 0, len(c.LSP))
	for name := range c.LSP {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []ValidationResult
	for _, name := range names {
		opts := c.LSP[name].InitializationOptions
		raw, ok := opts["command"]
		if !ok {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("lsp.%s.initialization_options.command must be a list", name),
			})
			continue
		}
		if len(items) == 0 {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("lsp.%s.initialization_options.command is empty", name),
			})
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				results = append(results, ValidationResult{
					Level:   "error",
					Message: fmt.Sprintf("lsp.%s.initialization_options.command[%d] must be a string", name, i),
				})
			}
		}
	}
	return results
}
