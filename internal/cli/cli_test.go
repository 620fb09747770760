package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"phpext/internal/dap"
	"phpext/internal/tools"
)

// runRoot executes the full command tree against a fresh project directory
// and an isolated work directory.
func runRoot(t *testing.T, project string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("PHPEXT_WORK_DIR", filepath.Join(t.TempDir(), "work"))

	cmd := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--project", project}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLSPCommandPsalmFromVendor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bit semantics differ on windows")
	}
	project := t.TempDir()
	binDir := t.TempDir()
	writeExecutable(t, filepath.Join(binDir, "php"))
	writeExecutable(t, filepath.Join(project, "vendor", "bin", "psalm"))
	t.Setenv("PATH", binDir)

	stdout, _, err := runRoot(t, project, "", "lsp", "command", "psalm")
	if err != nil {
		t.Fatalf("lsp command returned error: %v", err)
	}
	if !strings.HasPrefix(stdout, filepath.Join(binDir, "php")+" ") {
		t.Fatalf("expected php interpreter first, got %q", stdout)
	}
	if !strings.Contains(stdout, "vendor/bin/psalm --language-server") {
		t.Fatalf("expected vendor psalm with mode flag, got %q", stdout)
	}
}

func TestLSPCommandPsalmMissingPHP(t *testing.T) {
	project := t.TempDir()
	t.Setenv("PATH", t.TempDir())

	_, stderr, err := runRoot(t, project, "", "lsp", "command", "psalm")
	if err == nil {
		t.Fatalf("expected error without php")
	}
	if !strings.Contains(err.Error(), "PHP not found in PATH") {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(stderr, "failed") {
		t.Fatalf("expected failed status on stderr, got %q", stderr)
	}
}

func TestLSPCommandUnknownServer(t *testing.T) {
	_, _, err := runRoot(t, t.TempDir(), "", "lsp", "command", "pint")
	if err == nil || err.Error() != "unknown language server: pint" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLSPConfigPsalm(t *testing.T) {
	project := t.TempDir()
	settings := "lsp:\n  psalm:\n    settings:\n      errorLevel: 3\n"
	if err := os.WriteFile(filepath.Join(project, "phpext.yaml"), []byte(settings), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	stdout, _, err := runRoot(t, project, "", "--json", "lsp", "config", "psalm")
	if err != nil {
		t.Fatalf("lsp config returned error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode output %q: %v", stdout, err)
	}
	psalm, ok := payload["psalm"].(map[string]any)
	if !ok {
		t.Fatalf("expected psalm section, got %v", payload)
	}
	if psalm["errorLevel"] != float64(3) {
		t.Fatalf("expected errorLevel 3, got %v", psalm)
	}
}

func TestLSPLabelMethod(t *testing.T) {
	stdout, _, err := runRoot(t, t.TempDir(), "", "lsp", "label", "intelephense",
		"--label", "format", "--kind", "method", "--detail", "format(string $pattern): string")
	if err != nil {
		t.Fatalf("lsp label returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if lines[0] != "format(string $pattern): string" {
		t.Fatalf("unexpected code line %q", lines[0])
	}
	if !strings.Contains(stdout, `0..6 function "format"`) {
		t.Fatalf("expected function span, got %q", stdout)
	}
}

func TestLSPLabelUnknownKind(t *testing.T) {
	_, _, err := runRoot(t, t.TempDir(), "", "lsp", "label", "intelephense", "--label", "x", "--kind", "gizmo")
	if err == nil || !strings.Contains(err.Error(), "unknown completion kind") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDAPScenarioJSON(t *testing.T) {
	stdout, _, err := runRoot(t, t.TempDir(), "", "--json", "dap", "scenario",
		"--program", "index.php", "--arg", "-v", "--env", "APP_ENV=dev", "--stop-on-entry")
	if err != nil {
		t.Fatalf("dap scenario returned error: %v", err)
	}
	var scenario dap.DebugScenario
	if err := json.Unmarshal([]byte(stdout), &scenario); err != nil {
		t.Fatalf("decode scenario %q: %v", stdout, err)
	}
	if scenario.Adapter != dap.XdebugName {
		t.Fatalf("unexpected adapter %q", scenario.Adapter)
	}
	var native map[string]any
	if err := json.Unmarshal([]byte(scenario.Config), &native); err != nil {
		t.Fatalf("decode native config: %v", err)
	}
	if native["program"] != "index.php" || native["stopOnEntry"] != true {
		t.Fatalf("unexpected native config %v", native)
	}
	env, _ := native["env"].(map[string]any)
	if env["APP_ENV"] != "dev" {
		t.Fatalf("expected env to carry APP_ENV, got %v", native["env"])
	}
}

func TestDAPScenarioAttachRejected(t *testing.T) {
	_, _, err := runRoot(t, t.TempDir(), "", "dap", "scenario", "--attach")
	if err == nil || err.Error() != "Xdebug adapter doesn't support attaching" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDAPKindFromStdin(t *testing.T) {
	stdout, _, err := runRoot(t, t.TempDir(), `{"request":"launch","port":9003}`, "dap", "kind")
	if err != nil {
		t.Fatalf("dap kind returned error: %v", err)
	}
	if strings.TrimSpace(stdout) != "launch" {
		t.Fatalf("expected launch, got %q", stdout)
	}

	_, _, err = runRoot(t, t.TempDir(), `{"port":9003}`, "dap", "kind")
	if err == nil || err.Error() != "Invalid config" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDAPUnknownAdapter(t *testing.T) {
	_, _, err := runRoot(t, t.TempDir(), `{"request":"launch"}`, "dap", "--adapter", "gdb", "kind")
	if err == nil || err.Error() != "unknown debug adapter: gdb" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToolsListEmptyCache(t *testing.T) {
	stdout, _, err := runRoot(t, t.TempDir(), "", "--json", "tools", "list")
	if err != nil {
		t.Fatalf("tools list returned error: %v", err)
	}
	var statuses []tools.Status
	if err := json.Unmarshal([]byte(stdout), &statuses); err != nil {
		t.Fatalf("decode statuses %q: %v", stdout, err)
	}
	if len(statuses) != len(tools.KnownTools()) {
		t.Fatalf("expected %d statuses, got %+v", len(tools.KnownTools()), statuses)
	}
	for _, st := range statuses {
		if st.Version != "" || st.Error != "" {
			t.Fatalf("expected empty status, got %+v", st)
		}
	}
}

func TestToolsInstallUnknown(t *testing.T) {
	_, _, err := runRoot(t, t.TempDir(), "", "tools", "install", "composer")
	if err == nil || err.Error() != "unknown tool: composer" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDoctorJSON(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	stdout, _, err := runRoot(t, t.TempDir(), "", "--json", "doctor")
	if err != nil {
		t.Fatalf("doctor returned error: %v", err)
	}
	var checks []healthCheck
	if err := json.Unmarshal([]byte(stdout), &checks); err != nil {
		t.Fatalf("decode checks %q: %v", stdout, err)
	}
	got := map[string]string{}
	for _, c := range checks {
		got[c.Name] = c.Status
	}
	want := map[string]string{"Config": "ok", "Node": "warning", "PHP": "warning", "Cache": "ok"}
	for name, status := range want {
		if got[name] != status {
			t.Fatalf("check %s: got %q, want %q (all: %+v)", name, got[name], status, checks)
		}
	}
}

func TestInvalidSettingsRejected(t *testing.T) {
	project := t.TempDir()
	settings := "github:\n  api_url: ftp://example.com\n"
	if err := os.WriteFile(filepath.Join(project, "phpext.yaml"), []byte(settings), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	_, stderr, err := runRoot(t, project, "", "doctor")
	if err == nil {
		t.Fatalf("expected invalid settings error")
	}
	if !strings.Contains(stderr, "github.api_url") {
		t.Fatalf("expected validation message on stderr, got %q", stderr)
	}
}

func TestParseEnvPairs(t *testing.T) {
	envs, err := parseEnvPairs([]string{"A=1", "B=x=y", "C="})
	if err != nil {
		t.Fatalf("parseEnvPairs error: %v", err)
	}
	if envs["A"] != "1" || envs["B"] != "x=y" || envs["C"] != "" {
		t.Fatalf("unexpected envs %v", envs)
	}
	if _, err := parseEnvPairs([]string{"=1"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := parseEnvPairs([]string{"A"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

func TestShellJoin(t *testing.T) {
	got := shellJoin([]string{"/usr/bin/php", "/path with space/psalm", "--language-server"})
	want := `/usr/bin/php "/path with space/psalm" --language-server`
	if got != want {
		t.Fatalf("shellJoin = %q, want %q", got, want)
	}
}
