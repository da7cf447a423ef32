package speedup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bobbin/internal/ffmpeg"
	"bobbin/internal/logging"
	"bobbin/internal/services"
)

func TestAtempoChain(t *testing.T) {
	cases := []struct {
		factor float64
		want   string
	}{
		{0.5, "atempo=0.5"},
		{1.0, "atempo=1"},
		{1.5, "atempo=1.5"},
		{2.0, "atempo=2"},
		{3.0, "atempo=2,atempo=1.5"},
		{4.0, "atempo=2,atempo=2"},
	}
	for _, tc := range cases {
		got, err := AtempoChain(tc.factor)
		if err != nil {
			t.Fatalf("AtempoChain(%v) failed: %v", tc.factor, err)
		}
		if got != tc.want {
			t.Errorf("AtempoChain(%v) = %q, want %q", tc.factor, got, tc.want)
		}
	}
}

func TestAtempoChainRejectsOutOfRangeFactors(t *testing.T) {
	// Same bounds config validation enforces for speedup.factor, so a
	// --factor override cannot sneak past them.
	for _, factor := range []float64{0, -1, 0.4, 4.5} {
		if _, err := AtempoChain(factor); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for factor %v, got %v", factor, err)
		}
	}
	if _, err := New("ffmpeg", 5.0, "compressed_audio", "sped_", logging.NewNop()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected New to reject out-of-range factor, got %v", err)
	}
}

func TestProcessorOutputPath(t *testing.T) {
	p, err := New("ffmpeg", 1.5, "compressed_audio", "sped_", logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got := p.OutputPath(filepath.Join("music", "track.mp3"))
	want := filepath.Join("music", "compressed_audio", "sped_track.mp3")
	if got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}
}

func TestProcessorProcess(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "episode.mp3")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := New("ffmpeg", 1.5, "compressed_audio", "sped_", logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var capturedArgs []string
	p.SetRunFunc(func(ctx context.Context, binary string, args []string) ffmpeg.Result {
		capturedArgs = args
		return ffmpeg.Result{}
	})

	output, err := p.Process(context.Background(), source)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if want := filepath.Join(dir, "compressed_audio", "sped_episode.mp3"); output != want {
		t.Fatalf("output = %q, want %q", output, want)
	}
	if _, err := os.Stat(filepath.Dir(output)); err != nil {
		t.Fatalf("output directory not created: %v", err)
	}
	joined := ""
	for i, arg := range capturedArgs {
		if arg == "-filter:a" {
			joined = capturedArgs[i+1]
		}
	}
	if joined != "atempo=1.5" {
		t.Fatalf("expected atempo filter in args, got %v", capturedArgs)
	}
}

func TestProcessorFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "episode.mp3")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := New("ffmpeg", 1.5, "compressed_audio", "sped_", logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.SetRunFunc(func(ctx context.Context, binary string, args []string) ffmpeg.Result {
		// Simulate ffmpeg leaving a truncated file behind.
		output := args[len(args)-1]
		if err := os.WriteFile(output, []byte("partial"), 0o644); err != nil {
			t.Fatalf("write partial: %v", err)
		}
		return ffmpeg.Result{Stderr: "Invalid data found when processing input", Err: errors.New("exit status 1")}
	})

	if _, err := p.Process(context.Background(), source); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	partial := filepath.Join(dir, "compressed_audio", "sped_episode.mp3")
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("partial output should have been removed")
	}
}
