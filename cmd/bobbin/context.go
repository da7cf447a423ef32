package main

import (
	"log/slog"
	"strings"
	"sync"

	"bobbin/internal/config"
	"bobbin/internal/journal"
	"bobbin/internal/logging"
)

type commandContext struct {
	configFlag *string
	assumeYes  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, assumeYes *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		assumeYes:  assumeYes,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) skipPrompts() bool {
	return c.assumeYes != nil && *c.assumeYes
}

// withJournal opens the run journal for the duration of fn and closes it
// afterwards.
func (c *commandContext) withJournal(fn func(*journal.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
