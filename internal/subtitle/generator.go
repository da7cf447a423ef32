package subtitle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"bobbin/internal/logging"
	"bobbin/internal/services"
)

const stageName = "subtitle"

// Generator produces .srt files from audio via the Whisper CLI.
type Generator struct {
	binary   string
	model    string
	language string
	logger   *slog.Logger

	// run is swappable for tests. It must leave the JSON transcript in
	// outputDir the way the Whisper CLI does.
	run func(ctx context.Context, binary string, args []string) error
}

// NewGenerator constructs a Generator. languageTag may be empty for
// auto-detection; otherwise it must be a valid BCP-47 tag.
func NewGenerator(binary, model, languageTag string, logger *slog.Logger) (*Generator, error) {
	normalized, err := NormalizeLanguage(languageTag)
	if err != nil {
		return nil, err
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "whisper"
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "base"
	}
	return &Generator{
		binary:   binary,
		model:    model,
		language: normalized,
		logger:   logging.NewComponentLogger(logger, stageName),
		run:      runWhisper,
	}, nil
}

// NormalizeLanguage validates a BCP-47 tag and reduces it to the base
// language code Whisper expects ("en-US" becomes "en"). Empty input stays
// empty, meaning auto-detection.
func NormalizeLanguage(tag string) (string, error) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "", nil
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "language", fmt.Sprintf("invalid language tag %q", tag), err)
	}
	base, _ := parsed.Base()
	return base.String(), nil
}

// SetRunFunc replaces the Whisper process launcher. Test hook.
func (g *Generator) SetRunFunc(fn func(ctx context.Context, binary string, args []string) error) {
	if fn != nil {
		g.run = fn
	}
}

// Generate transcribes one audio file and writes the subtitle file next to
// it with the extension swapped to .srt. Returns the subtitle path.
func (g *Generator) Generate(ctx context.Context, audioPath string) (string, error) {
	log := logging.WithContext(ctx, g.logger)

	outputDir, err := os.MkdirTemp("", "bobbin-whisper-")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "workdir", "create temp output dir", err)
	}
	defer os.RemoveAll(outputDir)

	args := buildWhisperArgs(audioPath, outputDir, g.model, g.language)
	if err := g.run(ctx, g.binary, args); err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageName, "transcribe", "whisper invocation failed", err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	segments, detected, err := loadWhisperSegments(filepath.Join(outputDir, stem+".json"))
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageName, "transcript", "read whisper transcript", err)
	}
	if len(segments) == 0 {
		return "", services.Wrap(services.ErrValidation, stageName, "transcript", "whisper produced no segments", nil)
	}

	srtPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".srt"
	if err := WriteSRT(srtPath, segments); err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "write", "write srt file", err)
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldSource, filepath.Base(audioPath)),
		logging.Int("segments", len(segments)),
	}
	if detected != "" {
		attrs = append(attrs, logging.String("language", detected))
	}
	log.Info("subtitles generated", logging.Args(attrs...)...)
	return srtPath, nil
}

func runWhisper(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
