package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeConvert()
	c.normalizeSubtitles()
	c.normalizeSpeedup()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		c.Paths.JournalPath = filepath.Join(c.Paths.LogDir, "journal.db")
	}
	if c.Paths.JournalPath, err = expandPath(c.Paths.JournalPath); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	c.Tools.Whisper = strings.TrimSpace(c.Tools.Whisper)
	if c.Tools.Whisper == "" {
		c.Tools.Whisper = defaultWhisperBinary
	}
}

func (c *Config) normalizeConvert() {
	c.Convert.Encoder = strings.ToLower(strings.TrimSpace(c.Convert.Encoder))
	if c.Convert.Encoder == "" {
		c.Convert.Encoder = defaultConvertEncoder
	}
	c.Convert.Quality = strings.ToLower(strings.TrimSpace(c.Convert.Quality))
	if c.Convert.Quality == "" {
		c.Convert.Quality = defaultConvertQuality
	}
	if strings.TrimSpace(c.Convert.Suffix) == "" {
		c.Convert.Suffix = defaultConvertSuffix
	}
	if c.Convert.MinFreeGiB < 0 {
		c.Convert.MinFreeGiB = 0
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.Model = strings.TrimSpace(c.Subtitles.Model)
	if c.Subtitles.Model == "" {
		c.Subtitles.Model = defaultWhisperModel
	}
	c.Subtitles.Language = strings.TrimSpace(c.Subtitles.Language)
	c.Subtitles.Extensions = normalizeExtensions(c.Subtitles.Extensions, defaultSubtitleExtensions())
}

func (c *Config) normalizeSpeedup() {
	if c.Speedup.Factor == 0 {
		c.Speedup.Factor = defaultSpeedupFactor
	}
	c.Speedup.Extensions = normalizeExtensions(c.Speedup.Extensions, defaultSpeedupExtensions())
	c.Speedup.OutputDir = strings.TrimSpace(c.Speedup.OutputDir)
	if c.Speedup.OutputDir == "" {
		c.Speedup.OutputDir = defaultSpeedupOutputDir
	}
	if strings.TrimSpace(c.Speedup.Prefix) == "" {
		c.Speedup.Prefix = defaultSpeedupPrefix
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeExtensions lowercases entries, guarantees a leading dot, drops
// blanks and duplicates, and falls back to defaults when nothing survives.
func normalizeExtensions(values, fallback []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		result = append(result, ext)
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
