package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kavehtehrani/cfspeed-install/internal/binary"
)

type planParams struct {
	stdout  io.Writer
	manager *binary.Manager
	version string
}

func newPlanCmd(stdout, stderr io.Writer, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what would be installed without downloading",
		Long: `Resolve the platform and release version and print the archive and
digest URLs and the install destination. Nothing is downloaded; only the
latest-release lookup touches the network, and not even that when a
version is pinned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, cmd.Flags(), opts.configFile, stderr)
			if err != nil {
				return withExitCode(err)
			}
			defer a.Close()

			return withExitCode(runPlan(ctx, planParams{
				stdout:  stdout,
				manager: a.manager,
				version: a.cfg.Version,
			}))
		},
	}
}

// runPlan prints the resolved plan.
func runPlan(ctx context.Context, p planParams) error {
	plan, err := p.manager.Plan(ctx, binary.Request{Version: p.version})
	if err != nil {
		return err
	}

	row := func(label, value string) {
		fmt.Fprintf(p.stdout, "%s %s\n", SubtitleStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	row("Platform", plan.Triple.String())
	row("Version", plan.Version)
	row("Archive", plan.Artifact.ArchiveURL)
	row("Digest", plan.Artifact.DigestURL)
	row("Destination", CmdStyle.Render(plan.Destination))
	return nil
}
