package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "convert")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run ID")
	}

	items := []Item{
		{RunID: runID, Source: "a.mkv", Output: "a_converted.mp4", Status: StatusCompleted, FallbackUsed: true, Elapsed: 3 * time.Second},
		{RunID: runID, Source: "b.mkv", Status: StatusFailed, Detail: "no video stream"},
		{RunID: runID, Source: "c.mkv", Status: StatusSkipped, Detail: "output exists"},
	}
	for _, item := range items {
		if err := store.RecordItem(ctx, item); err != nil {
			t.Fatalf("RecordItem failed: %v", err)
		}
	}
	if err := store.FinishRun(ctx, runID, 1, 1, 1); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != runID || run.Command != "convert" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Succeeded != 1 || run.Failed != 1 || run.Skipped != 1 {
		t.Fatalf("unexpected counters: %+v", run)
	}
	if run.EndedAt.IsZero() {
		t.Fatal("expected ended timestamp")
	}

	stored, err := store.RunItems(ctx, runID)
	if err != nil {
		t.Fatalf("RunItems failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 items, got %d", len(stored))
	}
	if !stored[0].FallbackUsed {
		t.Fatal("expected fallback flag persisted")
	}
	if stored[0].Elapsed != 3*time.Second {
		t.Fatalf("expected elapsed persisted, got %v", stored[0].Elapsed)
	}
	if stored[1].Detail != "no video stream" {
		t.Fatalf("expected detail persisted, got %q", stored[1].Detail)
	}
}

func TestFindRunByPrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// More runs than the RecentRuns default page, so prefix lookup must not
	// depend on the run being recent.
	first, err := store.BeginRun(ctx, "convert")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	for i := 0; i < 25; i++ {
		if _, err := store.BeginRun(ctx, "speedup"); err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
	}

	run, err := store.FindRun(ctx, first[:8])
	if err != nil {
		t.Fatalf("FindRun by prefix failed: %v", err)
	}
	if run.ID != first {
		t.Fatalf("expected run %s, got %s", first, run.ID)
	}

	run, err = store.FindRun(ctx, first)
	if err != nil {
		t.Fatalf("FindRun by full ID failed: %v", err)
	}
	if run.ID != first {
		t.Fatalf("expected run %s, got %s", first, run.ID)
	}

	if _, err := store.FindRun(ctx, "zzzzzzzz"); err == nil {
		t.Fatal("expected error for unknown prefix")
	}
	if _, err := store.FindRun(ctx, ""); err == nil {
		t.Fatal("expected error for empty identifier")
	}
}

func TestRecentRunsOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.BeginRun(ctx, "convert")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.BeginRun(ctx, "speedup")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != second {
		t.Fatalf("expected newest run %s first, got %+v", second, runs)
	}

	runs, err = store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[1].ID != first {
		t.Fatalf("expected both runs newest first, got %+v", runs)
	}
}
