// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set from main.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo is printed by "compass version".
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

func newVersionCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := VersionInfo{
				Version:   rt.version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				Go:        runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			return rt.emit(cmd, info, func(w io.Writer) {
				fmt.Fprintf(w, "compass %s (%s, %s)\n", info.Version, info.GitCommit, info.BuildDate)
				fmt.Fprintln(w, DimStyle.Render(info.Go+" "+info.Platform))
			})
		},
	}
}
