package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var assumeYes bool

	ctx := newCommandContext(&configFlag, &assumeYes)

	rootCmd := &cobra.Command{
		Use:           "bobbin",
		Short:         "Batch media utilities for conversion, subtitles, and audio speedup",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip interactive prompts and accept defaults")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newSubtitleCommand(ctx))
	rootCmd.AddCommand(newSpeedupCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
