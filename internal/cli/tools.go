package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"phpext/internal/tools"
	"phpext/internal/tui"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage downloaded language server and adapter releases",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInstallCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached tool versions",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	statuses := s.ext.Cache().Statuses()
	if outputJSON {
		return printJSON(cmd, statuses)
	}
	printStatusTable(cmd, statuses)
	return nil
}

func newToolsInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install [tool|all]",
		Short: "Download the latest release of a tool into the cache",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runToolsInstall,
	}
}

func runToolsInstall(cmd *cobra.Command, args []string) error {
	target := "all"
	if len(args) == 1 {
		target = args[0]
	}

	var toolsToInstall []string
	if strings.EqualFold(target, "all") {
		toolsToInstall = tools.KnownTools()
	} else {
		name, ok := lookupTool(target)
		if !ok {
			return fmt.Errorf("unknown tool: %s", target)
		}
		toolsToInstall = []string{name}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	var (
		statuses []tools.Status
		errs     []error
	)
	for _, name := range toolsToInstall {
		st, err := s.ext.InstallTool(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		statuses = append(statuses, st)
	}

	if outputJSON {
		if err := printJSON(cmd, statuses); err != nil {
			return err
		}
	} else {
		printStatusTable(cmd, statuses)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// lookupTool matches tool names case-insensitively.
func lookupTool(name string) (string, bool) {
	for _, known := range tools.KnownTools() {
		if strings.EqualFold(known, name) {
			return known, true
		}
	}
	return "", false
}

func printStatusTable(cmd *cobra.Command, statuses []tools.Status) {
	out := cmd.OutOrStdout()
	if len(statuses) == 0 {
		fmt.Fprintln(out, "(no tool statuses)")
		return
	}

	rows := make([]tools.Status, len(statuses))
	copy(rows, statuses)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Tool < rows[j].Tool
	})

	fmt.Fprintf(out, "%-10s %-12s %-10s %s\n", "Tool", "Version", "State", "Path")
	for _, st := range rows {
		state := "installed"
		switch {
		case st.Error != "":
			state = "error"
		case st.Version == "":
			state = "missing"
		}
		path := st.Path
		if path == "" {
			path = "-"
		}
		version := st.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(out, "%-10s %-12s %s %s\n", st.Tool, version, tui.StatusStyle(state).Render(fmt.Sprintf("%-10s", state)), path)
		if len(st.Versions) > 1 {
			fmt.Fprintln(out, tui.FaintStyle.Render("  also cached: "+strings.Join(olderVersions(st), ", ")))
		}
		if st.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", st.Error)
		}
	}
}

func olderVersions(st tools.Status) []string {
	var older []string
	for _, v := range st.Versions {
		if v != st.Version {
			older = append(older, v)
		}
	}
	return older
}
