// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/config"
)

func newConfigCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(rt), newConfigPathCmd(rt), newConfigSetCmd(rt))
	return cmd
}

func newConfigShowCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [KEY]",
		Short: "Print the effective configuration or one key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.config()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return rt.emit(cmd, cfg, func(w io.Writer) {
					for _, key := range config.GetAllKeys() {
						v, err := cfg.Get(key)
						if err != nil {
							continue
						}
						fmt.Fprintln(w, LabelStyle.Width(32).Render(key)+ValueStyle.Render(fmt.Sprint(v)))
					}
				})
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return usageError("config show", err.Error())
			}
			return rt.emit(cmd, map[string]interface{}{args[0]: v}, func(w io.Writer) {
				fmt.Fprintln(w, v)
			})
		},
	}
}

func newConfigPathCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config, database and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rt.config()
			if err != nil {
				return err
			}
			paths := map[string]string{}
			if rt.opts.configPath != "" {
				paths["config"] = rt.opts.configPath
			} else if p, err := config.ConfigPathTOML(); err == nil {
				paths["config"] = p
			}
			if p, err := cfg.StoragePath(); err == nil {
				paths["storage"] = p
			}
			if p, err := cfg.LogPath(); err == nil {
				paths["log"] = p
			}
			return rt.emit(cmd, paths, func(w io.Writer) {
				for _, k := range []string{"config", "storage", "log"} {
					fmt.Fprintln(w, FormatKeyValue(k, paths[k]))
				}
			})
		},
	}
}

func newConfigSetCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one key and save the config file",
		Example: `  compass config set api.base_url https://compass.example.org/api
  compass config set ui.theme light`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.config()
			if err != nil {
				return err
			}
			next := cfg.Clone()
			if err := next.Set(args[0], args[1]); err != nil {
				return usageError("config set", err.Error())
			}
			if err := next.Validate(); err != nil {
				return usageError("config set", err.Error())
			}
			path := rt.opts.configPath
			if path == "" {
				if err := config.EnsureConfigDir(); err != nil {
					return err
				}
				if path, err = config.ConfigPathTOML(); err != nil {
					return err
				}
			}
			if err := config.SaveTOML(next, path); err != nil {
				return err
			}
			rt.cfg = next
			return rt.emit(cmd, map[string]string{args[0]: args[1]}, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("✓"), args[0], args[1])
			})
		},
	}
}
