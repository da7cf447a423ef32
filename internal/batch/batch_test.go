package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bobbin/internal/journal"
	"bobbin/internal/logging"
	"bobbin/internal/services"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverVideosRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.mkv"))
	writeFile(t, filepath.Join(root, "season1", "a.MKV"))
	writeFile(t, filepath.Join(root, "season1", "notes.txt"))
	writeFile(t, filepath.Join(root, ".stash", "hidden.mkv"))

	files, err := DiscoverVideos(root, []string{".mkv"})
	if err != nil {
		t.Fatalf("DiscoverVideos failed: %v", err)
	}
	want := []string{
		filepath.Join(root, "b.mkv"),
		filepath.Join(root, "season1", "a.MKV"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestDiscoverAudioFlat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "track.mp3"))
	writeFile(t, filepath.Join(dir, "sped_track.mp3"))
	writeFile(t, filepath.Join(dir, "compressed_audio", "nested.mp3"))
	writeFile(t, filepath.Join(dir, "cover.jpg"))

	files, err := DiscoverAudio(dir, []string{"mp3", ".m4a"}, "sped_")
	if err != nil {
		t.Fatalf("DiscoverAudio failed: %v", err)
	}
	if len(files) != 1 || files[0] != filepath.Join(dir, "track.mp3") {
		t.Fatalf("expected only track.mp3, got %v", files)
	}
}

func TestRunCountsOutcomes(t *testing.T) {
	dir := t.TempDir()
	store, err := journal.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	runner := NewRunner("convert", store, filepath.Join(dir, "run.lock"), false, logging.NewNop())
	files := []string{"a.mkv", "b.mkv", "c.mkv", "d.mkv"}
	stats, err := runner.Run(context.Background(), files, func(ctx context.Context, source string) (Outcome, error) {
		switch source {
		case "b.mkv":
			return Outcome{}, errors.New("encode failed")
		case "c.mkv":
			return Outcome{}, Skip("output exists")
		default:
			return Outcome{Output: source + ".mp4", FallbackUsed: source == "d.mkv"}, nil
		}
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Succeeded != 2 || stats.Failed != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	runs, err := store.RecentRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Succeeded != 2 || runs[0].Failed != 1 || runs[0].Skipped != 1 {
		t.Fatalf("journal counters mismatch: %+v", runs[0])
	}

	items, err := store.RunItems(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("RunItems failed: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	if items[1].Status != journal.StatusFailed || items[1].Detail != "encode failed" {
		t.Fatalf("failed item mismatch: %+v", items[1])
	}
	if items[2].Status != journal.StatusSkipped || items[2].Detail != "output exists" {
		t.Fatalf("skipped item mismatch: %+v", items[2])
	}
	if !items[3].FallbackUsed {
		t.Fatal("expected fallback flag recorded for d.mkv")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	runner := NewRunner("convert", nil, "", false, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	processed := 0
	stats, err := runner.Run(ctx, []string{"a.mkv", "b.mkv", "c.mkv"}, func(ctx context.Context, source string) (Outcome, error) {
		processed++
		cancel()
		return Outcome{Output: source + ".mp4"}, nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected processing to stop after cancellation, processed %d", processed)
	}
	if stats.Succeeded != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunLockHeld(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "run.lock")
	runner := NewRunner("convert", nil, lockPath, false, logging.NewNop())

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = runner.Run(context.Background(), []string{"a.mkv"}, func(ctx context.Context, source string) (Outcome, error) {
			close(started)
			<-release
			return Outcome{}, nil
		})
	}()
	<-started

	other := NewRunner("convert", nil, lockPath, false, logging.NewNop())
	_, err := other.Run(context.Background(), []string{"b.mkv"}, func(ctx context.Context, source string) (Outcome, error) {
		return Outcome{}, nil
	})
	close(release)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected held-lock error, got %v", err)
	}
}
