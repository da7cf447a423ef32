package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bobbin/internal/batch"
	"bobbin/internal/convert"
	"bobbin/internal/deps"
	"bobbin/internal/journal"
	"bobbin/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		encoderFlag    string
		qualityFlag    string
		suffixFlag     string
		deleteOriginal bool
	)

	cmd := &cobra.Command{
		Use:   "convert [directory]",
		Short: "Convert MKV videos under a directory to MP4",
		Long: `Convert walks the directory recursively, converts every .mkv file to an
.mp4 sibling, and prefers NVIDIA hardware encoding with a one-shot CPU
fallback when the GPU path fails. Files whose output already exists are
skipped, so re-running after an interruption picks up where it left off.

On a terminal the command asks for encoder, quality, suffix, and
delete-original preferences before starting; --yes skips the questions
and takes the configured defaults.`,
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
				{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Purpose: "video and audio encoding"},
				{Name: "ffprobe", Command: cfg.Tools.FFprobe, Purpose: "media stream inspection"},
			})); err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			root, err = filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("inspect directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			prefs, err := defaultPreferences(cfg.Convert.Encoder, cfg.Convert.Quality,
				cfg.Convert.Suffix, cfg.Convert.DeleteOriginal)
			if err != nil {
				return err
			}
			pinned := pinnedPreferences{
				encoder:        cmd.Flags().Changed("encoder"),
				quality:        cmd.Flags().Changed("quality"),
				suffix:         cmd.Flags().Changed("suffix"),
				deleteOriginal: cmd.Flags().Changed("delete-original"),
			}
			if pinned.encoder {
				prefs.encoder = ""
			}
			if pinned.quality {
				if prefs.quality, err = convert.ParseQuality(qualityFlag); err != nil {
					return err
				}
			}
			if pinned.suffix {
				prefs.suffix = suffixFlag
			}
			if pinned.deleteOriginal {
				prefs.deleteOriginal = deleteOriginal
			}

			encoderName := cfg.Convert.Encoder
			if pinned.encoder {
				encoderName = encoderFlag
			}

			interactive := !ctx.skipPrompts() && stdinIsTerminal()
			var prompt *prompter
			if interactive {
				prompt = newPrompter(cmd.OutOrStdout(), cmd.InOrStdin())
				support, detectErr := deps.DetectNVENC(cmd.Context(), cfg.Tools.FFmpeg)
				if detectErr != nil {
					return fmt.Errorf("detect hardware encoders: %w", detectErr)
				}
				if prefs.encoder == "" && !pinned.encoder {
					prefs.encoder = autoEncoder(support)
				}
				prefs = promptConvertPreferences(prompt, support, prefs, pinned)
			}
			if prefs.encoder == "" {
				if prefs.encoder, err = resolveEncoder(cmd, encoderName, cfg.Tools.FFmpeg); err != nil {
					return err
				}
			}

			if err := preflight.CheckFreeSpace(root, cfg.Convert.MinFreeGiB); err != nil {
				return err
			}

			files, err := batch.DiscoverVideos(root, []string{".mkv"})
			if err != nil {
				return fmt.Errorf("discover videos: %w", err)
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No .mkv files found under %s\n", root)
				return nil
			}

			if interactive {
				fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d file(s) to convert under %s (encoder %s, quality %s)\n",
					len(files), root, prefs.encoder, prefs.quality)
				if !prompt.confirm("Proceed with conversion?", true) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			converter := convert.New(cfg.Tools.FFmpeg, cfg.Tools.FFprobe, logger)

			return ctx.withJournal(func(store *journal.Store) error {
				runner := batch.NewRunner("convert", store,
					filepath.Join(cfg.Paths.LogDir, "bobbin.lock"), stdinIsTerminal(), logger)

				stats, err := runner.Run(cmd.Context(), files, func(runCtx context.Context, source string) (batch.Outcome, error) {
					output := convertOutputPath(source, prefs.suffix)
					if _, statErr := os.Stat(output); statErr == nil {
						return batch.Outcome{}, batch.Skip("output already exists")
					}
					result, convErr := converter.Convert(runCtx, source, output, prefs.encoder, prefs.quality)
					if convErr != nil {
						return batch.Outcome{}, convErr
					}
					if prefs.deleteOriginal {
						if rmErr := os.Remove(source); rmErr != nil {
							return batch.Outcome{}, fmt.Errorf("converted but could not delete original: %w", rmErr)
						}
					}
					return batch.Outcome{Output: result.OutputPath, FallbackUsed: result.FallbackUsed}, nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d of %d file(s) (%d failed, %d skipped)\n",
					stats.Succeeded, stats.Total, stats.Failed, stats.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&encoderFlag, "encoder", "e", "", "Encoder: auto, nvenc-h264, nvenc-av1, cpu")
	cmd.Flags().StringVarP(&qualityFlag, "quality", "q", "", "Quality preset: fast, medium, high")
	cmd.Flags().StringVar(&suffixFlag, "suffix", "", "Output file name suffix")
	cmd.Flags().BoolVar(&deleteOriginal, "delete-original", false, "Delete source files after successful conversion")

	return cmd
}

// defaultPreferences maps the config section onto a preference set. An
// "auto" encoder stays empty until NVENC support has been probed.
func defaultPreferences(encoder, quality, suffix string, deleteOriginal bool) (convertPreferences, error) {
	prefs := convertPreferences{
		suffix:         suffix,
		deleteOriginal: deleteOriginal,
	}
	var err error
	if prefs.quality, err = convert.ParseQuality(quality); err != nil {
		return prefs, err
	}
	if !strings.EqualFold(strings.TrimSpace(encoder), "auto") {
		if prefs.encoder, err = convert.ParseEncoder(encoder); err != nil {
			return prefs, err
		}
	}
	return prefs, nil
}

// autoEncoder ranks detected hardware support: H.264 NVENC first for player
// compatibility, AV1 next, CPU last.
func autoEncoder(support deps.NVENCSupport) convert.Encoder {
	switch {
	case support.H264:
		return convert.EncoderNVENCH264
	case support.AV1:
		return convert.EncoderNVENCAV1
	default:
		return convert.EncoderCPU
	}
}

// resolveEncoder maps the "auto" setting onto a concrete encoder by probing
// the local ffmpeg build for NVENC support.
func resolveEncoder(cmd *cobra.Command, name, ffmpegBinary string) (convert.Encoder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "auto" {
		return convert.ParseEncoder(name)
	}

	support, err := deps.DetectNVENC(cmd.Context(), ffmpegBinary)
	if err != nil {
		return "", fmt.Errorf("detect hardware encoders: %w", err)
	}
	encoder := autoEncoder(support)
	if encoder.Hardware() {
		fmt.Fprintf(cmd.OutOrStdout(), "Hardware encoder detected: %s\n", encoder.CodecName())
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No hardware encoder detected, using CPU encoding")
	}
	return encoder, nil
}

func convertOutputPath(source, suffix string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + suffix + ".mp4"
}
