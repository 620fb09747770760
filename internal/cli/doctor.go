package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"phpext/internal/config"
	"phpext/internal/tools"
	"phpext/internal/workspace"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the runtimes and caches the resolvers depend on",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	checks := []healthCheck{
		checkConfig(s.cfg),
		checkNode(s.host),
		checkPHP(s.worktree),
		checkCache(s.ext.Cache().Statuses()),
	}
	return writeDoctorResult(cmd, s.paths.Root, checks)
}

func checkConfig(cfg config.Config) healthCheck {
	var warnings, errors int
	for _, v := range cfg.Validate() {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errors++
		}
	}

	summary := fmt.Sprintf("%d language servers configured", len(cfg.LSP))
	if errors > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errors)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkNode(h *workspace.Host) healthCheck {
	node, err := h.NodeBinaryPath()
	if err != nil {
		return healthCheck{Name: "Node", Status: "warning", Summary: err.Error() + " (needed by intelephense and Xdebug)"}
	}
	return healthCheck{Name: "Node", Status: "ok", Summary: node}
}

func checkPHP(wt *workspace.Worktree) healthCheck {
	php, ok := wt.Which("php")
	if !ok {
		return healthCheck{Name: "PHP", Status: "warning", Summary: "PHP not found in PATH (needed by psalm)"}
	}
	return healthCheck{Name: "PHP", Status: "ok", Summary: php}
}

func checkCache(statuses []tools.Status) healthCheck {
	var cached []string
	for _, st := range statuses {
		if st.Error != "" {
			return healthCheck{Name: "Cache", Status: "error", Summary: fmt.Sprintf("%s: %s", st.Tool, st.Error)}
		}
		if st.Version != "" {
			cached = append(cached, st.Tool+" "+st.Version)
		}
	}
	if len(cached) == 0 {
		return healthCheck{Name: "Cache", Status: "ok", Summary: "empty; releases download on first use"}
	}
	return healthCheck{Name: "Cache", Status: "ok", Summary: joinComma(cached)}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		return printJSON(cmd, checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

func joinComma(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for _, item := range items[1:] {
		result += ", " + item
	}
	return result
}
