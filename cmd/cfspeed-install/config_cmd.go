package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kavehtehrani/cfspeed-install/internal/config"
)

func newConfigCmd(stdout, stderr io.Writer, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect installer configuration",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as a Lua config file",
			Long: `Print the configuration after flags, environment and the config file
are merged, in the format of install.lua. The GitHub token is never
printed.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd.Context(), cmd.Flags(), opts.configFile, stderr)
				if err != nil {
					return withExitCode(err)
				}
				fmt.Fprint(stdout, config.NewGenerator().Generate(cfg))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the location of the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if opts.configFile != "" {
					fmt.Fprintln(stdout, opts.configFile)
					return nil
				}
				path, err := config.DefaultConfigPath()
				if err != nil {
					return withExitCode(err)
				}
				fmt.Fprintln(stdout, path)
				return nil
			},
		},
	)

	return cmd
}
