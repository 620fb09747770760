package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"phpext/internal/lsp"
)

var (
	labelText   string
	labelKind   string
	labelDetail string
)

var completionKinds = map[string]protocol.CompletionItemKind{
	"method":      protocol.CompletionItemKindMethod,
	"function":    protocol.CompletionItemKindFunction,
	"constructor": protocol.CompletionItemKindConstructor,
	"constant":    protocol.CompletionItemKindConstant,
	"enum-member": protocol.CompletionItemKindEnumMember,
	"property":    protocol.CompletionItemKindProperty,
	"field":       protocol.CompletionItemKindField,
	"variable":    protocol.CompletionItemKindVariable,
	"class":       protocol.CompletionItemKindClass,
	"keyword":     protocol.CompletionItemKindKeyword,
}

func newLSPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Resolve PHP language servers",
	}

	cmd.AddCommand(newLSPListCmd())
	cmd.AddCommand(newLSPCommandCmd())
	cmd.AddCommand(newLSPConfigCmd())
	cmd.AddCommand(newLSPLabelCmd())

	return cmd
}

func newLSPListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported language servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids := lsp.ServerIDs()
			if outputJSON {
				return printJSON(cmd, ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newLSPCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "command <server>",
		Short: "Resolve the command that starts a language server",
		Args:  cobra.ExactArgs(1),
		RunE:  runLSPCommand,
	}
}

func runLSPCommand(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	command, err := s.ext.LanguageServerCommand(cmd.Context(), args[0], s.worktree)
	if err != nil {
		s.logger.Printf("lsp command %s: %v", args[0], err)
		return err
	}
	s.logger.Printf("lsp command %s: %s %s", args[0], command.Command, strings.Join(command.Args, " "))

	if outputJSON {
		return printJSON(cmd, command)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, shellJoin(append([]string{command.Command}, command.Args...)))
	keys := make([]string, 0, len(command.Env))
	for k := range command.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  env %s=%s\n", k, command.Env[k])
	}
	return nil
}

func newLSPConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <server>",
		Short: "Print the workspace configuration sent to a language server",
		Args:  cobra.ExactArgs(1),
		RunE:  runLSPConfig,
	}
}

func runLSPConfig(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg, err := s.ext.LanguageServerWorkspaceConfiguration(args[0], s.worktree)
	if err != nil {
		return err
	}
	// The payload is JSON either way; --json only changes null handling.
	if cfg == nil && !outputJSON {
		fmt.Fprintf(cmd.OutOrStdout(), "(no workspace configuration for %s)\n", args[0])
		return nil
	}
	return printJSON(cmd, cfg)
}

func newLSPLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label <server>",
		Short: "Render a completion item the way the editor menu shows it",
		Args:  cobra.ExactArgs(1),
		RunE:  runLSPLabel,
	}

	cmd.Flags().StringVar(&labelText, "label", "", "Completion label")
	cmd.Flags().StringVar(&labelKind, "kind", "", "Completion kind (method, function, constant, enum-member, property, variable, ...)")
	cmd.Flags().StringVar(&labelDetail, "detail", "", "Completion detail")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func runLSPLabel(cmd *cobra.Command, args []string) error {
	item := protocol.CompletionItem{Label: labelText, Detail: labelDetail}
	if labelKind != "" {
		kind, ok := completionKinds[strings.ToLower(labelKind)]
		if !ok {
			return fmt.Errorf("unknown completion kind: %s", labelKind)
		}
		item.Kind = kind
	}

	label, ok := lsp.LabelForCompletion(args[0], item)
	if outputJSON {
		return printJSON(cmd, label)
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "(no label)")
		return nil
	}
	fmt.Fprintln(out, label.Code)
	for _, span := range label.Spans {
		fmt.Fprintf(out, "  %d..%d %s %q\n", span.Start, span.End, span.Highlight, label.Code[span.Start:span.End])
	}
	fmt.Fprintf(out, "  filter %q\n", label.Code[:label.FilterEnd])
	return nil
}

func shellJoin(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"'") {
			quoted[i] = fmt.Sprintf("%q", p)
			continue
		}
		quoted[i] = p
	}
	return strings.Join(quoted, " ")
}
