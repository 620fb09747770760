package config

import (
	"strings"
	"testing"

	"phpext/internal/host"
)

func TestValidateDefaultsClean(t *testing.T) {
	cfg := Default()
	if results := cfg.Validate(); len(results) != 0 {
		t.Fatalf("expected no findings, got %+v", results)
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := Default()
	cfg.GitHub.APIURL = "ftp://example.com"
	results := cfg.Validate()
	if !HasErrors(results) {
		t.Fatalf("expected error for ftp scheme, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "github.api_url") {
		t.Fatalf("expected field name in message, got %q", results[0].Message)
	}
}

func TestValidateServerCommandShape(t *testing.T) {
	cfg := Default()
	cfg.LSP["psalm"] = host.LSPSettings{
		InitializationOptions: map[string]any{"command": []any{"vendor/bin/psalm", 3}},
	}
	cfg.LSP["phpactor"] = host.LSPSettings{
		InitializationOptions: map[string]any{"command": "phpactor"},
	}
	cfg.LSP["intelephense"] = host.LSPSettings{
		InitializationOptions: map[string]any{"command": []any{}},
	}

	results := cfg.Validate()
	if len(results) != 3 {
		t.Fatalf("expected three findings, got %+v", results)
	}
	if results[0].Level != "warning" || !strings.Contains(results[0].Message, "intelephense") {
		t.Fatalf("expected intelephense warning first, got %+v", results[0])
	}
	if results[1].Level != "error" || !strings.Contains(results[1].Message, "phpactor") {
		t.Fatalf("expected phpactor error, got %+v", results[1])
	}
	if results[2].Level != "error" || !strings.Contains(results[2].Message, "command[1]") {
		t.Fatalf("expected psalm element error, got %+v", results[2])
	}
}
