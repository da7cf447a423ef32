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
	"bobbin/internal/subtitle"
)

func newSubtitleCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag    string
		languageFlag string
	)

	cmd := &cobra.Command{
		Use:   "subtitle [directory]",
		Short: "Generate SRT subtitles for audio files in a directory",
		Long: `Subtitle transcribes each matching audio file in the directory with the
Whisper CLI and writes a .srt file next to it. Files that already have a
subtitle are skipped.`,
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
				{Name: "whisper", Command: cfg.Tools.Whisper, Purpose: "speech transcription"},
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

			model := cfg.Subtitles.Model
			if modelFlag != "" {
				model = modelFlag
			}
			language := cfg.Subtitles.Language
			if cmd.Flags().Changed("language") {
				language = languageFlag
			}

			generator, err := subtitle.NewGenerator(cfg.Tools.Whisper, model, language, logger)
			if err != nil {
				return err
			}

			files, err := batch.DiscoverAudio(dir, cfg.Subtitles.Extensions, "")
			if err != nil {
				return fmt.Errorf("discover audio: %w", err)
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No audio files (%s) found in %s\n",
					strings.Join(cfg.Subtitles.Extensions, ", "), dir)
				return nil
			}

			return ctx.withJournal(func(store *journal.Store) error {
				runner := batch.NewRunner("subtitle", store,
					filepath.Join(cfg.Paths.LogDir, "bobbin.lock"), stdinIsTerminal(), logger)

				stats, err := runner.Run(cmd.Context(), files, func(runCtx context.Context, source string) (batch.Outcome, error) {
					srtPath := strings.TrimSuffix(source, filepath.Ext(source)) + ".srt"
					if _, statErr := os.Stat(srtPath); statErr == nil {
						return batch.Outcome{}, batch.Skip("subtitle already exists")
					}
					written, genErr := generator.Generate(runCtx, source)
					if genErr != nil {
						return batch.Outcome{}, genErr
					}
					return batch.Outcome{Output: written}, nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated subtitles for %d of %d file(s) (%d failed, %d skipped)\n",
					stats.Succeeded, stats.Total, stats.Failed, stats.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Whisper model name")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Transcription language (BCP-47 tag, empty for auto-detect)")

	return cmd
}
