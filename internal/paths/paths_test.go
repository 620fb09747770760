package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phpext/internal/config"
	"phpext/internal/host"
)

func TestApplyConfigRelativeWorkDir(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root, "/home/user/.local/share/phpext")

	cfg := config.Config{WorkDir: ".phpext"}
	applied := ApplyConfig(pp, cfg)

	expected := filepath.Join(root, ".phpext")
	if applied.WorkDir != expected {
		t.Fatalf("expected work dir %s, got %s", expected, applied.WorkDir)
	}
	if applied.LogsDir != filepath.Join(expected, "logs") {
		t.Fatalf("expected logs under work dir, got %s", applied.LogsDir)
	}
}

func TestApplyConfigNoOverrides(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root, "/srv/phpext")

	applied := ApplyConfig(pp, config.Config{})
	if applied != pp {
		t.Fatalf("expected paths unchanged, got %+v", applied)
	}
}

func TestWithConfigFile(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root, "/srv/phpext")

	if got := pp.WithConfigFile("").ConfigFile; got != filepath.Join(root, "phpext.yaml") {
		t.Fatalf("expected default config file, got %s", got)
	}
	if got := pp.WithConfigFile("conf/editor.yaml").ConfigFile; got != filepath.Join(root, "conf", "editor.yaml") {
		t.Fatalf("expected relative config file under root, got %s", got)
	}
}

func TestDefaultWorkDirHonoursEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(workDirEnv, dir)

	got, err := DefaultWorkDir()
	if err != nil {
		t.Fatalf("DefaultWorkDir: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %s, got %s", dir, got)
	}
}

func TestFileExistsRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	ok, err := FileExists(dir)
	if err != nil {
		t.Fatalf("FileExists: %v", err)
	}
	if ok {
		t.Fatal("expected directory to not count as a regular file")
	}

	file := filepath.Join(dir, "psalm.xml")
	if err := os.WriteFile(file, []byte("<psalm/>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err = FileExists(file)
	if err != nil || !ok {
		t.Fatalf("expected regular file, got ok=%v err=%v", ok, err)
	}

	ok, err = FileExists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("expected missing file to report false, got ok=%v err=%v", ok, err)
	}
}

func TestSanitizeWindowsPath(t *testing.T) {
	cases := []struct {
		os   host.OS
		in   string
		want string
	}{
		{host.OSWindows, "/C:/Users/dev/phpactor.phar", "C:/Users/dev/phpactor.phar"},
		{host.OSWindows, "C:/Users/dev/phpactor.phar", "C:/Users/dev/phpactor.phar"},
		{host.OSLinux, "/home/dev/phpactor.phar", "/home/dev/phpactor.phar"},
		{host.OSMac, "/Users/dev/phpactor.phar", "/Users/dev/phpactor.phar"},
	}
	for _, tc := range cases {
		if got := SanitizeWindowsPath(tc.os, tc.in); got != tc.want {
			t.Fatalf("SanitizeWindowsPath(%s, %q) = %q, want %q", tc.os, tc.in, got, tc.want)
		}
	}
}

func TestSanitizeBranchesDifferOnlyOnLeadingSlash(t *testing.T) {
	inputs := []string{"/C:/a", "relative/b", "C:/c", "//server/share", ""}
	for _, in := range inputs {
		win := SanitizeWindowsPath(host.OSWindows, in)
		unix := SanitizeWindowsPath(host.OSLinux, in)
		if strings.HasPrefix(win, "/") {
			t.Fatalf("windows branch kept a leading slash for %q: %q", in, win)
		}
		if strings.TrimLeft(unix, "/") != win {
			t.Fatalf("branches differ beyond the leading slash for %q: %q vs %q", in, win, unix)
		}
	}
}

func TestNormalizeMakesRelativeAbsolute(t *testing.T) {
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	got, err := Normalize(host.OSLinux, "phpactor.phar")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %s", got)
	}
	if filepath.Base(got) != "phpactor.phar" {
		t.Fatalf("expected file name preserved, got %s", got)
	}
}

func TestLookPathSearchesInOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeExecutable(t, filepath.Join(second, "psalm"))
	writeExecutable(t, filepath.Join(first, "psalm"))

	pathEnv := strings.Join([]string{first, second}, string(os.PathListSeparator))
	got, ok := LookPath(pathEnv, "psalm", host.OSLinux)
	if !ok {
		t.Fatal("expected psalm to be found")
	}
	if got != filepath.Join(first, "psalm") {
		t.Fatalf("expected first PATH entry to win, got %s", got)
	}
}

func TestLookPathSkipsNonExecutable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "php"), []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "phpactor"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, ok := LookPath(dir, "php", host.OSLinux); ok {
		t.Fatal("expected non-executable file to be skipped")
	}
	if _, ok := LookPath(dir, "phpactor", host.OSLinux); ok {
		t.Fatal("expected directory to be skipped")
	}
}

func TestLookPathWindowsExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "php.exe"), []byte("MZ"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok := LookPath(dir, "php", host.OSWindows)
	if !ok {
		t.Fatal("expected php.exe to be found")
	}
	if filepath.Base(got) != "php.exe" {
		t.Fatalf("expected php.exe, got %s", got)
	}
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
