package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"phpext/internal/config"
	"phpext/internal/extension"
	"phpext/internal/logx"
	"phpext/internal/paths"
	"phpext/internal/tui"
	"phpext/internal/workspace"
)

// session bundles everything a command needs to call into the extension.
type session struct {
	paths    paths.ProjectPaths
	cfg      config.Config
	logger   *log.Logger
	closer   io.Closer
	reporter *tui.InstallReporter
	host     *workspace.Host
	worktree *workspace.Worktree
	ext      *extension.Extension
}

func openSession(cmd *cobra.Command) (*session, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return nil, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}
	pp = pp.WithConfigFile(configFile)

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	if results := cfg.Validate(); config.HasErrors(results) {
		for _, r := range results {
			if r.Level == "error" {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", r.Message)
			}
		}
		return nil, fmt.Errorf("invalid settings in %s", pp.ConfigFile)
	}

	pp = paths.ApplyConfig(pp, cfg)
	if err := pp.EnsureWorkDir(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp)
	if err != nil {
		return nil, err
	}
	logger.Printf("phpext %s: project=%s work_dir=%s", cmd.Name(), pp.Root, pp.WorkDir)

	// Progress goes to stderr so stdout stays parseable.
	reporter := tui.NewInstallReporter(cmd.ErrOrStderr(), tui.DetectMode(cmd.ErrOrStderr(), outputJSON))
	h := workspace.NewHost(pp.WorkDir, cfg, reporter)
	wt := workspace.NewWorktree(pp.Root, cfg)

	ext := extension.New(h, extension.Options{
		GitHubAPIURL:   cfg.GitHub.APIURL,
		NPMRegistryURL: cfg.NPM.RegistryURL,
		Logger:         logger,
	})

	return &session{
		paths:    pp,
		cfg:      cfg,
		logger:   logger,
		closer:   closer,
		reporter: reporter,
		host:     h,
		worktree: wt,
		ext:      ext,
	}, nil
}

func (s *session) Close() {
	s.reporter.Close()
	_ = s.closer.Close()
}

func printJSON(cmd *cobra.Command, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
