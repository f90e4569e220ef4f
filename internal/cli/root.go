// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/app"
	"github.com/jeranaias/compass-tui/internal/config"
)

// =============================================================================
// INVOCATION STATE
// =============================================================================

// globalOptions are the persistent flags.
type globalOptions struct {
	configPath string
	apiURL     string
	jsonOut    bool
	verbose    bool
}

// env is shared by the commands of one invocation. The component graph
// is built on first use so that "version" and "config path" never touch
// storage.
type env struct {
	version string
	opts    globalOptions
	cfg     *config.Config
	app     *app.App
}

func (r *env) config() (*config.Config, error) {
	if r.cfg != nil {
		return r.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if r.opts.configPath != "" {
		cfg, err = config.LoadFromPath(r.opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if cfg == nil {
			return nil, &CommandError{Command: "config", Action: "load", Reason: err.Error(), Err: err}
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", WarningStyle.Render("Warning:"), err)
	}
	if r.opts.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(r.opts.apiURL, "/")
	}
	r.cfg = cfg
	return cfg, nil
}

// App builds the component graph and restores the stored session.
func (r *env) App(ctx context.Context) (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	cfg, err := r.config()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, app.Options{
		Version:    r.version,
		Stderr:     r.opts.verbose,
		ConfigPath: r.opts.configPath,
	})
	if err != nil {
		return nil, err
	}
	a.Restore(ctx)
	r.app = a
	return a, nil
}

func (r *env) close() {
	if r.app != nil {
		_ = r.app.Close()
		r.app = nil
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

func newRootCmd(rt *env) *cobra.Command {
	var start string

	root := &cobra.Command{
		Use:   "compass",
		Short: "Terminal client for the Compliance Compass privacy-pattern wiki",
		Long: `compass browses privacy patterns, GDPR articles and Privacy-by-Design
principles, and talks to the pattern assistant.

Run without a command to start the full-screen interface.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			return a.RunTUI(cmd.Context(), start)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.opts.configPath, "config", "", "config file (default ~/.compass/config.toml)")
	pf.StringVar(&rt.opts.apiURL, "api-url", "", "API root, overrides api.base_url")
	pf.BoolVar(&rt.opts.jsonOut, "json", false, "print JSON instead of text")
	pf.BoolVarP(&rt.opts.verbose, "verbose", "v", false, "mirror warnings to stderr")
	root.Flags().StringVar(&start, "open", "/", "first screen of the TUI (e.g. /patterns/12)")

	root.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newPatternsCmd(rt),
		newSearchCmd(rt),
		newTrendingCmd(rt),
		newChatCmd(rt),
		newGdprCmd(rt),
		newNewsletterCmd(rt),
		newConfigCmd(rt),
		newVersionCmd(rt),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(version string, args []string) int {
	return execute(context.Background(), version, args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, version string, args []string, in io.Reader, out, errOut io.Writer) int {
	rt := &env{version: version}
	defer rt.close()

	root := newRootCmd(rt)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}
	if rt.opts.jsonOut {
		_ = NewJSONErrorResponse(cmd.CommandPath(), err).Write(out)
	} else {
		fmt.Fprintf(errOut, "%s %s\n", ErrorStyle.Render("Error:"), Message(err))
	}
	return ExitError
}
