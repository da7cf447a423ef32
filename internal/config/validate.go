package config

import (
	"errors"
	"fmt"
)

var validEncoders = map[string]struct{}{
	"auto":       {},
	"nvenc-h264": {},
	"nvenc-av1":  {},
	"cpu":        {},
}

var validQualities = map[string]struct{}{
	"fast":   {},
	"medium": {},
	"high":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateSpeedup(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if _, ok := validEncoders[c.Convert.Encoder]; !ok {
		return fmt.Errorf("convert.encoder: unsupported value %q (expected auto, nvenc-h264, nvenc-av1, or cpu)", c.Convert.Encoder)
	}
	if _, ok := validQualities[c.Convert.Quality]; !ok {
		return fmt.Errorf("convert.quality: unsupported value %q (expected fast, medium, or high)", c.Convert.Quality)
	}
	return nil
}

func (c *Config) validateSpeedup() error {
	// Same range the atempo chain builder accepts (speedup.FactorMin/Max);
	// ffmpeg rejects atempo stages below 0.5 and absurd factors are typos.
	if c.Speedup.Factor < 0.5 || c.Speedup.Factor > 4.0 {
		return fmt.Errorf("speedup.factor: %g is outside the supported range 0.5-4.0", c.Speedup.Factor)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
}
