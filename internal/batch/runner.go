package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"

	"bobbin/internal/journal"
	"bobbin/internal/logging"
	"bobbin/internal/services"
)

// ErrSkip is returned by a ProcessFunc to mark a file as skipped rather
// than failed, for example when its output already exists.
var ErrSkip = errors.New("batch: item skipped")

// Skip wraps ErrSkip with a human-readable reason.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkip, reason)
}

// Outcome describes one successfully processed file.
type Outcome struct {
	Output       string
	FallbackUsed bool
}

// ProcessFunc handles a single discovered file.
type ProcessFunc func(ctx context.Context, source string) (Outcome, error)

// Stats aggregates counters across a batch run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Runner drives sequential processing of a file list. A lock file keeps
// concurrent invocations from stepping on each other's outputs.
type Runner struct {
	command      string
	store        *journal.Store
	logger       *slog.Logger
	lockPath     string
	showProgress bool
}

// NewRunner constructs a Runner. store may be nil, in which case no
// history is recorded.
func NewRunner(command string, store *journal.Store, lockPath string, showProgress bool, logger *slog.Logger) *Runner {
	return &Runner{
		command:      command,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "batch"),
		lockPath:     lockPath,
		showProgress: showProgress,
	}
}

// Run processes files sequentially. Individual failures are logged and
// counted without aborting the batch; the returned error reports only
// infrastructure faults such as a held lock or a closed journal.
func (r *Runner) Run(ctx context.Context, files []string, process ProcessFunc) (Stats, error) {
	stats := Stats{Total: len(files)}
	if len(files) == 0 {
		r.logger.Info("nothing to process")
		return stats, nil
	}

	if r.lockPath != "" {
		lock := flock.New(r.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return stats, services.Wrap(services.ErrTransient, "batch", "lock", "acquire run lock", err)
		}
		if !ok {
			return stats, services.Wrap(services.ErrValidation, "batch", "lock", "another bobbin run is already in progress", nil)
		}
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				r.logger.Warn("failed to release run lock", logging.Error(unlockErr))
			}
		}()
	}

	runID := ""
	if r.store != nil {
		id, err := r.store.BeginRun(ctx, r.command)
		if err != nil {
			return stats, services.Wrap(services.ErrTransient, "batch", "journal", "begin run", err)
		}
		runID = id
	}
	ctx = services.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, r.logger)

	var bar *progressbar.ProgressBar
	if r.showProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription(r.command),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for index, source := range files {
		if ctx.Err() != nil {
			log.Warn("run interrupted",
				logging.Int("processed", index),
				logging.Int("remaining", len(files)-index))
			break
		}

		started := time.Now()
		outcome, err := process(ctx, source)
		elapsed := time.Since(started)

		item := journal.Item{
			RunID:   runID,
			Source:  source,
			Elapsed: elapsed,
		}
		switch {
		case errors.Is(err, ErrSkip):
			stats.Skipped++
			item.Status = journal.StatusSkipped
			item.Detail = skipReason(err)
			log.Info("skipped",
				logging.String(logging.FieldSource, filepath.Base(source)),
				logging.String("reason", item.Detail))
		case err != nil:
			stats.Failed++
			item.Status = journal.StatusFailed
			item.Detail = err.Error()
			log.Error("processing failed",
				logging.String(logging.FieldSource, filepath.Base(source)),
				logging.Error(err))
		default:
			stats.Succeeded++
			item.Status = journal.StatusCompleted
			item.Output = outcome.Output
			item.FallbackUsed = outcome.FallbackUsed
			log.Info("processed",
				logging.String(logging.FieldSource, filepath.Base(source)),
				logging.Duration("elapsed", elapsed))
		}

		if r.store != nil {
			if recordErr := r.store.RecordItem(ctx, item); recordErr != nil {
				log.Warn("failed to record journal item", logging.Error(recordErr))
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	if r.store != nil {
		if err := r.store.FinishRun(ctx, runID, stats.Succeeded, stats.Failed, stats.Skipped); err != nil {
			log.Warn("failed to finalize journal run", logging.Error(err))
		}
	}

	log.Info("run complete",
		logging.Int("total", stats.Total),
		logging.Int("succeeded", stats.Succeeded),
		logging.Int("failed", stats.Failed),
		logging.Int("skipped", stats.Skipped))
	return stats, nil
}

func skipReason(err error) string {
	msg := err.Error()
	prefix := ErrSkip.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
