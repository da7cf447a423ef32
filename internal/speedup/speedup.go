package speedup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bobbin/internal/ffmpeg"
	"bobbin/internal/logging"
	"bobbin/internal/services"
)

const stageName = "speedup"

// atempo accepts tempo values between 0.5 and 2.0 per filter instance, so
// factors above 2.0 are expressed as a chain. FactorMin/FactorMax bound the
// accepted factors; config validation enforces the same range.
const (
	atempoMax = 2.0

	FactorMin = 0.5
	FactorMax = 4.0
)

// Processor speeds up audio files into a sibling output directory.
type Processor struct {
	runner    *ffmpeg.Runner
	factor    float64
	outputDir string
	prefix    string
	logger    *slog.Logger
}

// New builds a Processor. outputDir is the directory name created next to
// each source file, prefix is prepended to output file names.
func New(ffmpegBinary string, factor float64, outputDir, prefix string, logger *slog.Logger) (*Processor, error) {
	if _, err := AtempoChain(factor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(outputDir) == "" {
		outputDir = "compressed_audio"
	}
	return &Processor{
		runner:    ffmpeg.NewRunner(ffmpegBinary),
		factor:    factor,
		outputDir: outputDir,
		prefix:    prefix,
		logger:    logging.NewComponentLogger(logger, stageName),
	}, nil
}

// SetRunFunc replaces the ffmpeg launcher. Test hook.
func (p *Processor) SetRunFunc(fn func(ctx context.Context, binary string, args []string) ffmpeg.Result) {
	p.runner.SetRunFunc(fn)
}

// AtempoChain renders a factor as an atempo filter expression, chaining
// instances when the factor exceeds a single filter's 2.0 ceiling. Factors
// outside [FactorMin, FactorMax] are rejected.
func AtempoChain(factor float64) (string, error) {
	if factor < FactorMin || factor > FactorMax {
		return "", services.Wrap(services.ErrValidation, stageName, "factor",
			fmt.Sprintf("speed factor %g is outside the supported range %g-%g", factor, FactorMin, FactorMax), nil)
	}
	var stages []string
	remaining := factor
	for remaining > atempoMax {
		stages = append(stages, formatTempo(atempoMax))
		remaining /= atempoMax
	}
	stages = append(stages, formatTempo(remaining))
	return strings.Join(stages, ","), nil
}

func formatTempo(tempo float64) string {
	return "atempo=" + strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", tempo), "0"), ".")
}

// OutputPath returns the destination for a source file: the configured
// output directory beside the source, file name prefixed.
func (p *Processor) OutputPath(source string) string {
	return filepath.Join(filepath.Dir(source), p.outputDir, p.prefix+filepath.Base(source))
}

// Process speeds up a single audio file. The output keeps the source
// container and drops any video or subtitle streams.
func (p *Processor) Process(ctx context.Context, source string) (string, error) {
	log := logging.WithContext(ctx, p.logger)

	output := p.OutputPath(source)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "prepare", "create output directory", err)
	}

	chain, err := AtempoChain(p.factor)
	if err != nil {
		return "", err
	}
	args := []string{
		"-hide_banner",
		"-i", source,
		"-filter:a", chain,
		"-vn", "-sn",
		"-y", output,
	}
	result := p.runner.Run(ctx, args...)
	if result.Err != nil {
		if removeErr := os.Remove(output); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Warn("failed to remove partial output", logging.Error(removeErr))
		}
		detail := strings.Join(ffmpeg.TailLines(result.Stderr, 5), "; ")
		return "", services.Wrap(services.ErrExternalTool, stageName, "encode", detail, result.Err)
	}

	log.Info("audio sped up",
		logging.String(logging.FieldSource, filepath.Base(source)),
		logging.Float64("factor", p.factor),
		logging.String("output", output))
	return output, nil
}
