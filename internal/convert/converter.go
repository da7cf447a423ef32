package convert

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bobbin/internal/ffmpeg"
	"bobbin/internal/logging"
	"bobbin/internal/media/ffprobe"
	"bobbin/internal/services"
)

const stageName = "convert"

// Result describes a completed conversion.
type Result struct {
	OutputPath   string
	Encoder      Encoder
	FallbackUsed bool
	SourceTenBit bool
	Elapsed      time.Duration
}

// Converter turns source videos into MP4 outputs via ffmpeg.
type Converter struct {
	runner        *ffmpeg.Runner
	ffprobeBinary string
	logger        *slog.Logger

	// probe is swappable for tests.
	probe func(ctx context.Context, binary, path string) (ffprobe.Result, error)
}

// New constructs a Converter around the configured tool binaries.
func New(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Converter {
	return &Converter{
		runner:        ffmpeg.NewRunner(ffmpegBinary),
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewComponentLogger(logger, stageName),
		probe:         ffprobe.Inspect,
	}
}

// SetProbeFunc replaces the ffprobe call. Test hook.
func (c *Converter) SetProbeFunc(fn func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	if fn != nil {
		c.probe = fn
	}
}

// SetRunFunc replaces the ffmpeg process launcher. Test hook.
func (c *Converter) SetRunFunc(fn func(ctx context.Context, binary string, args []string) ffmpeg.Result) {
	c.runner.SetRunFunc(fn)
}

// Convert transcodes a single file. A hardware-encoder failure triggers
// exactly one CPU fallback attempt before the error is returned.
func (c *Converter) Convert(ctx context.Context, input, output string, encoder Encoder, quality Quality) (Result, error) {
	log := logging.WithContext(ctx, c.logger)

	probed, err := c.probe(ctx, c.ffprobeBinary, input)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "probe", "ffprobe inspection failed", err)
	}
	if probed.PrimaryVideo() == nil {
		return Result{}, services.Wrap(services.ErrValidation, stageName, "probe", "no video stream in source", nil)
	}

	plan := BuildPlan(input, output, encoder, quality, probed)
	if plan.SourceTenBit && plan.Encoder.Hardware() {
		log.Info("10-bit source detected",
			logging.String(logging.FieldSource, filepath.Base(input)),
			logging.String("output_pix_fmt", plan.OutputPixFmt()),
		)
	}

	start := time.Now()
	result := c.runner.Run(ctx, plan.Args()...)
	if result.Err == nil {
		return Result{
			OutputPath:   output,
			Encoder:      plan.Encoder,
			SourceTenBit: plan.SourceTenBit,
			Elapsed:      time.Since(start),
		}, nil
	}

	if ctx.Err() != nil {
		removePartial(output)
		return Result{}, ctx.Err()
	}

	if !plan.Encoder.Hardware() {
		removePartial(output)
		logStderrTail(log, result.Stderr)
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "encode", "software encode failed", result.Err)
	}

	// Single bounded fallback: rebuild the plan for libx264 and try once.
	log.Warn("hardware encode failed, falling back to CPU",
		logging.String(logging.FieldSource, filepath.Base(input)),
		logging.String("reason", FallbackReason(result.Stderr)),
	)
	removePartial(output)

	fallback := plan.CPUFallback()
	fallbackResult := c.runner.Run(ctx, fallback.Args()...)
	if fallbackResult.Err != nil {
		removePartial(output)
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logStderrTail(log, fallbackResult.Stderr)
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "encode", "hardware and CPU fallback both failed", fallbackResult.Err)
	}

	return Result{
		OutputPath:   output,
		Encoder:      fallback.Encoder,
		FallbackUsed: true,
		SourceTenBit: plan.SourceTenBit,
		Elapsed:      time.Since(start),
	}, nil
}

func removePartial(output string) {
	if output == "" {
		return
	}
	_ = os.Remove(output)
}

func logStderrTail(log *slog.Logger, stderr string) {
	for _, line := range ffmpeg.TailLines(stderr, 10) {
		log.Error("ffmpeg: " + line)
	}
}
