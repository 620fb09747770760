package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode describes how status output should be rendered.
type OutputMode int

const (
	// ModeSpinner redraws a single status line in place.
	ModeSpinner OutputMode = iota
	// ModePlain writes one line per status change.
	ModePlain
	// ModeJSON suppresses decoration; results are printed as JSON.
	ModeJSON
)

// DetectMode determines the appropriate output mode for the given writer.
func DetectMode(out io.Writer, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	file, ok := out.(*os.File)
	if !ok {
		return ModePlain
	}
	info, err := file.Stat()
	if err != nil {
		return ModePlain
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeSpinner
}
