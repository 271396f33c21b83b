package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kavehtehrani/cfspeed-install/internal/config"
)

// rootOptions holds flags that are not configuration keys.
type rootOptions struct {
	configFile string
	dryRun     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cfspeed-install",
		Short: "Install the cloudflare-speed-cli binary",
		Long: `Download the cloudflare-speed-cli release archive for this machine,
verify it against its published SHA-256 digest and install the binary
into ~/.local/bin.

Settings come from flags, CLOUDFLARE_SPEED_CLI_* environment variables
and an optional Lua file at $XDG_CONFIG_HOME/cfspeed-install/install.lua,
in that order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, cmd.Flags(), opts.configFile, stderr)
			if err != nil {
				return withExitCode(err)
			}
			defer a.Close()

			if opts.dryRun {
				return withExitCode(runPlan(ctx, planParams{
					stdout:  stdout,
					manager: a.manager,
					version: a.cfg.Version,
				}))
			}

			return withExitCode(runInstall(ctx, newInstallParams(ctx, stdout, a)))
		},
	}

	addConfigFlags(cmd.PersistentFlags(), opts)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "resolve platform, version and URLs without downloading")

	cmd.AddCommand(
		newPlanCmd(stdout, stderr, opts),
		newVersionCmd(stdout),
		newConfigCmd(stdout, stderr, opts),
	)

	return cmd
}

// addConfigFlags registers one flag per configuration key. Flag names are
// the keys with dashes; config.Load binds them by that name.
func addConfigFlags(flags *pflag.FlagSet, opts *rootOptions) {
	defaults := config.DefaultConfig()

	flags.StringP("version", "V", "", "release tag to install (default: latest release)")
	flags.String("install-dir", defaults.InstallDir, "directory receiving the binary")
	flags.String("base-url", defaults.BaseURL, "release download root")
	flags.String("api-url", defaults.APIURL, "GitHub API root for the latest-release lookup")
	flags.String("repo", defaults.Repo, "GitHub repository as owner/name")
	flags.String("temp-dir", "", "parent directory of the scratch workspace (default: system temp dir)")
	flags.Duration("timeout", defaults.Timeout, "timeout for each HTTP request")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.String("log-file", "", "also write debug logs as JSON to this file")
	flags.String("os", "", "override the detected kernel (requires --arch)")
	flags.String("arch", "", "override the detected machine architecture (requires --os)")
	flags.StringVar(&opts.configFile, "config", "", "Lua config file (default: $XDG_CONFIG_HOME/cfspeed-install/install.lua)")
}
