package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phpext/internal/dap"
)

var (
	dapAdapter     string
	dapLabel       string
	dapProgram     string
	dapCwd         string
	dapArgs        []string
	dapEnvs        []string
	dapStopOnEntry bool
	dapAttach      bool
	dapConfigPath  string
	dapHost        string
	dapPort        uint16
	dapTimeout     uint64
	dapAdapterPath string
)

func newDAPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dap",
		Short: "Prepare debug adapter sessions",
	}

	cmd.PersistentFlags().StringVar(&dapAdapter, "adapter", dap.XdebugName, "Debug adapter name")

	cmd.AddCommand(newDAPScenarioCmd())
	cmd.AddCommand(newDAPKindCmd())
	cmd.AddCommand(newDAPBinaryCmd())

	return cmd
}

func newDAPScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Translate a launch request into the adapter's configuration",
		Args:  cobra.NoArgs,
		RunE:  runDAPScenario,
	}

	cmd.Flags().StringVar(&dapLabel, "label", "Listen for Xdebug", "Scenario label")
	cmd.Flags().StringVar(&dapProgram, "program", "", "Script to debug")
	cmd.Flags().StringVar(&dapCwd, "cwd", "", "Working directory for the debuggee")
	cmd.Flags().StringArrayVar(&dapArgs, "arg", nil, "Program argument (repeatable)")
	cmd.Flags().StringArrayVar(&dapEnvs, "env", nil, "Environment variable as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&dapStopOnEntry, "stop-on-entry", false, "Break on the first line")
	cmd.Flags().BoolVar(&dapAttach, "attach", false, "Build an attach request instead of a launch")

	return cmd
}

func runDAPScenario(cmd *cobra.Command, _ []string) error {
	cfg := dap.DebugConfig{Label: dapLabel, Adapter: dapAdapter}
	if cmd.Flags().Changed("stop-on-entry") {
		stop := dapStopOnEntry
		cfg.StopOnEntry = &stop
	}
	if dapAttach {
		cfg.Request.Attach = &dap.AttachRequest{}
	} else {
		envs, err := parseEnvPairs(dapEnvs)
		if err != nil {
			return err
		}
		cfg.Request.Launch = &dap.LaunchRequest{
			Program: dapProgram,
			Cwd:     dapCwd,
			Args:    dapArgs,
			Envs:    envs,
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	scenario, err := s.ext.DapConfigToScenario(cfg)
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd, scenario)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", scenario.Label, scenario.Adapter)
	fmt.Fprintln(out, scenario.Config)
	return nil
}

func newDAPKindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kind",
		Short: "Report the request kind of an adapter configuration",
		Args:  cobra.NoArgs,
		RunE:  runDAPKind,
	}
	cmd.Flags().StringVar(&dapConfigPath, "config-file", "-", "Adapter configuration JSON (- for stdin)")
	return cmd
}

func runDAPKind(cmd *cobra.Command, _ []string) error {
	raw, err := readConfigInput(cmd, dapConfigPath)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	kind, err := s.ext.DapRequestKind(dapAdapter, raw)
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd, map[string]string{"request": string(kind)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), kind)
	return nil
}

func newDAPBinaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binary",
		Short: "Resolve the adapter process and TCP rendezvous for a session",
		Args:  cobra.NoArgs,
		RunE:  runDAPBinary,
	}

	cmd.Flags().StringVar(&dapLabel, "label", "Listen for Xdebug", "Session label")
	cmd.Flags().StringVar(&dapConfigPath, "config-file", "-", "Adapter configuration JSON (- for stdin)")
	cmd.Flags().StringVar(&dapHost, "host", "", "TCP host (default 127.0.0.1)")
	cmd.Flags().Uint16Var(&dapPort, "port", 0, "TCP port (default: a free port)")
	cmd.Flags().Uint64Var(&dapTimeout, "timeout", 0, "Connect timeout in milliseconds (default 2000)")
	cmd.Flags().StringVar(&dapAdapterPath, "adapter-path", "", "Use a local adapter checkout instead of downloading")

	return cmd
}

func runDAPBinary(cmd *cobra.Command, _ []string) error {
	raw, err := readConfigInput(cmd, dapConfigPath)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	task := dap.TaskDefinition{
		Label:   dapLabel,
		Adapter: dapAdapter,
		Config:  string(raw),
	}
	flags := cmd.Flags()
	if flags.Changed("host") || flags.Changed("port") || flags.Changed("timeout") {
		tmpl := &dap.TCPTemplate{}
		if flags.Changed("host") {
			h := dapHost
			tmpl.Host = &h
		}
		if flags.Changed("port") {
			p := dapPort
			tmpl.Port = &p
		}
		if flags.Changed("timeout") {
			t := dapTimeout
			tmpl.Timeout = &t
		}
		task.TCPConnection = tmpl
	}

	override := dapAdapterPath
	if override == "" {
		override = s.cfg.DAP.Xdebug.AdapterPath
	}

	binary, err := s.ext.GetDapBinary(cmd.Context(), dapAdapter, task, override, s.worktree)
	if err != nil {
		s.logger.Printf("dap binary %s: %v", dapAdapter, err)
		return err
	}
	s.logger.Printf("dap binary %s: %s %s", dapAdapter, binary.Command, strings.Join(binary.Arguments, " "))

	if outputJSON {
		return printJSON(cmd, binary)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, shellJoin(append([]string{binary.Command}, binary.Arguments...)))
	if binary.Cwd != "" {
		fmt.Fprintf(out, "  cwd %s\n", binary.Cwd)
	}
	if binary.Connection != nil {
		fmt.Fprintf(out, "  tcp %s:%d (timeout %dms)\n", binary.Connection.Host, binary.Connection.Port, binary.Connection.Timeout)
	}
	fmt.Fprintf(out, "  request %s\n", binary.RequestArgs.Request)
	return nil
}

func readConfigInput(cmd *cobra.Command, path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read adapter config: %w", err)
	}
	return json.RawMessage(data), nil
}

func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	envs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", pair)
		}
		envs[key] = value
	}
	return envs, nil
}
