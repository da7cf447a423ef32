package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bobbin/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tool availability and hardware encoder support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.Check(deps.Known(cfg.Tools.FFmpeg, cfg.Tools.FFprobe, cfg.Tools.Whisper))

			rows := make([][]string, 0, len(statuses)+2)
			for _, status := range statuses {
				rows = append(rows, []string{status.Name, status.Command, toolState(status), status.Purpose})
			}

			support, nvErr := deps.DetectNVENC(cmd.Context(), cfg.Tools.FFmpeg)
			if nvErr != nil {
				rows = append(rows, []string{"h264_nvenc", cfg.Tools.FFmpeg, "unknown", nvErr.Error()})
				rows = append(rows, []string{"av1_nvenc", cfg.Tools.FFmpeg, "unknown", nvErr.Error()})
			} else {
				rows = append(rows, []string{"h264_nvenc", cfg.Tools.FFmpeg, encoderState(support.H264), "hardware H.264 encoding"})
				rows = append(rows, []string{"av1_nvenc", cfg.Tools.FFmpeg, encoderState(support.AV1), "hardware AV1 encoding"})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{{title: "Dependency"}, {title: "Command"}, {title: "Status"}, {title: "Detail"}},
				rows,
			))

			return deps.Require(statuses)
		},
	}
}

func toolState(status deps.Status) string {
	switch {
	case status.Available():
		return "ok"
	case status.Optional:
		return fmt.Sprintf("missing (optional): %v", status.Err)
	default:
		return fmt.Sprintf("missing: %v", status.Err)
	}
}

func encoderState(available bool) string {
	if available {
		return "ok"
	}
	return "unavailable"
}
