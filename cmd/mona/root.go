package main

import (
	"github.com/spf13/cobra"

	"github.com/slipstream/mona/internal/config"
)

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "mona",
		Short:         "Artwork redirect service for anime releases",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before configuration")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newPosterCommand(opts))
	rootCmd.AddCommand(newFanartCommand(opts))
	rootCmd.AddCommand(newTorrentArtCommand(opts))

	return rootCmd
}
