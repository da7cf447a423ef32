package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bobbin/internal/convert"
	"bobbin/internal/ffmpeg"
	"bobbin/internal/media/ffprobe"
	"bobbin/internal/services"
)

func newTestConverter(t *testing.T, pixFmt string) *convert.Converter {
	t.Helper()
	converter := convert.New("ffmpeg", "ffprobe", nil)
	converter.SetProbeFunc(func(context.Context, string, string) (ffprobe.Result, error) {
		return probed(pixFmt, true), nil
	})
	return converter
}

func TestConvertSuccessOnFirstAttempt(t *testing.T) {
	converter := newTestConverter(t, "yuv420p")
	var invocations [][]string
	converter.SetRunFunc(func(_ context.Context, _ string, args []string) ffmpeg.Result {
		invocations = append(invocations, args)
		return ffmpeg.Result{}
	})

	result, err := converter.Convert(context.Background(), "in.mkv", "out.mp4", convert.EncoderNVENCH264, convert.QualityMedium)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.FallbackUsed {
		t.Fatal("unexpected fallback")
	}
	if result.Encoder != convert.EncoderNVENCH264 {
		t.Fatalf("unexpected encoder: %q", result.Encoder)
	}
	if len(invocations) != 1 {
		t.Fatalf("expected a single ffmpeg invocation, got %d", len(invocations))
	}
}

func TestConvertHardwareFailureFallsBackOnce(t *testing.T) {
	converter := newTestConverter(t, "yuv420p10le")
	var invocations [][]string
	converter.SetRunFunc(func(_ context.Context, _ string, args []string) ffmpeg.Result {
		invocations = append(invocations, args)
		if len(invocations) == 1 {
			return ffmpeg.Result{Stderr: "No capable devices found", Err: errors.New("exit status 1")}
		}
		return ffmpeg.Result{}
	})

	result, err := converter.Convert(context.Background(), "in.mkv", "out.mp4", convert.EncoderNVENCH264, convert.QualityMedium)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected fallback to be recorded")
	}
	if result.Encoder != convert.EncoderCPU {
		t.Fatalf("expected CPU encoder after fallback, got %q", result.Encoder)
	}
	if len(invocations) != 2 {
		t.Fatalf("expected exactly two invocations, got %d", len(invocations))
	}
	if !strings.Contains(strings.Join(invocations[1], " "), "libx264") {
		t.Fatalf("second attempt should use libx264: %v", invocations[1])
	}
}

func TestConvertFallbackFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(output, []byte("partial"), 0o644); err != nil {
		t.Fatalf("seed partial output: %v", err)
	}

	converter := newTestConverter(t, "yuv420p")
	attempts := 0
	converter.SetRunFunc(func(context.Context, string, []string) ffmpeg.Result {
		attempts++
		return ffmpeg.Result{Stderr: "boom", Err: errors.New("exit status 1")}
	})

	_, err := converter.Convert(context.Background(), "in.mkv", output, convert.EncoderNVENCAV1, convert.QualityFast)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly two attempts, got %d", attempts)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("expected partial output to be removed")
	}
}

func TestConvertCPUFailureDoesNotRetry(t *testing.T) {
	converter := newTestConverter(t, "yuv420p")
	attempts := 0
	converter.SetRunFunc(func(context.Context, string, []string) ffmpeg.Result {
		attempts++
		return ffmpeg.Result{Stderr: "broken input", Err: errors.New("exit status 1")}
	})

	_, err := converter.Convert(context.Background(), "in.mkv", "out.mp4", convert.EncoderCPU, convert.QualityMedium)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("software path must not retry, got %d attempts", attempts)
	}
}

func TestConvertRejectsSourceWithoutVideo(t *testing.T) {
	converter := convert.New("ffmpeg", "ffprobe", nil)
	converter.SetProbeFunc(func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}, nil
	})
	converter.SetRunFunc(func(context.Context, string, []string) ffmpeg.Result {
		t.Fatal("ffmpeg must not run for unprobeable sources")
		return ffmpeg.Result{}
	})

	_, err := converter.Convert(context.Background(), "in.mkv", "out.mp4", convert.EncoderCPU, convert.QualityMedium)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConvertProbeFailure(t *testing.T) {
	converter := convert.New("ffmpeg", "ffprobe", nil)
	converter.SetProbeFunc(func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("no such file")
	})

	_, err := converter.Convert(context.Background(), "missing.mkv", "out.mp4", convert.EncoderCPU, convert.QualityMedium)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}
