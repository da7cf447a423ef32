package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bobbin/internal/batch"
	"bobbin/internal/deps"
	"bobbin/internal/journal"
	"bobbin/internal/speedup"
)

func newSpeedupCommand(ctx *commandContext) *cobra.Command {
	var factorFlag float64

	cmd := &cobra.Command{
		Use:   "speedup [directory]",
		Short: "Speed up audio files into a compressed_audio subdirectory",
		Long: `Speedup re-encodes each matching audio file in the directory at the
configured tempo factor. Outputs land in a subdirectory next to the
sources with a name prefix, so re-runs never re-process earlier output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if err := deps.Require(deps.Check([]deps.Tool{
				{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Purpose: "audio encoding"},
			})); err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			dir, err = filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}

			factor := cfg.Speedup.Factor
			if cmd.Flags().Changed("factor") {
				factor = factorFlag
			}

			processor, err := speedup.New(cfg.Tools.FFmpeg, factor,
				cfg.Speedup.OutputDir, cfg.Speedup.Prefix, logger)
			if err != nil {
				return err
			}

			files, err := batch.DiscoverAudio(dir, cfg.Speedup.Extensions, cfg.Speedup.Prefix)
			if err != nil {
				return fmt.Errorf("discover audio: %w", err)
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No audio files (%s) found in %s\n",
					strings.Join(cfg.Speedup.Extensions, ", "), dir)
				return nil
			}

			return ctx.withJournal(func(store *journal.Store) error {
				runner := batch.NewRunner("speedup", store,
					filepath.Join(cfg.Paths.LogDir, "bobbin.lock"), stdinIsTerminal(), logger)

				stats, err := runner.Run(cmd.Context(), files, func(runCtx context.Context, source string) (batch.Outcome, error) {
					if _, statErr := os.Stat(processor.OutputPath(source)); statErr == nil {
						return batch.Outcome{}, batch.Skip("output already exists")
					}
					output, procErr := processor.Process(runCtx, source)
					if procErr != nil {
						return batch.Outcome{}, procErr
					}
					return batch.Outcome{Output: output}, nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sped up %d of %d file(s) (%d failed, %d skipped)\n",
					stats.Succeeded, stats.Total, stats.Failed, stats.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().Float64VarP(&factorFlag, "factor", "f", 0, "Tempo factor, for example 1.5")

	return cmd
}
