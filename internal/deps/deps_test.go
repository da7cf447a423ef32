package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	statuses := Check([]Tool{
		{Name: "present", Command: present},
		{Name: "missing", Command: "clearly-not-present-binary"},
		{Name: "blank", Command: "  "},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available() {
		t.Fatalf("expected resolvable command to be available, got %v", statuses[0].Err)
	}
	if statuses[1].Available() {
		t.Fatal("expected missing binary to be unavailable")
	}
	if statuses[2].Err == nil || statuses[2].Err.Error() != "command not configured" {
		t.Fatalf("unexpected blank command error: %v", statuses[2].Err)
	}
}

func TestRequireAggregatesMissingTools(t *testing.T) {
	statuses := Check([]Tool{
		{Name: "ffmpeg", Command: "no-such-ffmpeg"},
		{Name: "ffprobe", Command: "no-such-ffprobe"},
		{Name: "whisper", Command: "no-such-whisper", Optional: true},
	})

	err := Require(statuses)
	if err == nil {
		t.Fatal("expected error for missing required tools")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ffmpeg") || !strings.Contains(msg, "ffprobe") {
		t.Fatalf("expected both required tools in error, got %q", msg)
	}
	if strings.Contains(msg, "whisper") {
		t.Fatalf("optional tool should not fail the check: %q", msg)
	}
}

func TestRequireAllAvailable(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "stub")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if err := Require(Check([]Tool{{Name: "stub", Command: stub}})); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestKnownMarksWhisperOptional(t *testing.T) {
	tools := Known("ffmpeg", "ffprobe", "whisper")
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools))
	}
	for _, tool := range tools {
		if tool.Name == "whisper" && !tool.Optional {
			t.Fatal("whisper should be optional")
		}
		if tool.Name != "whisper" && tool.Optional {
			t.Fatalf("%s should be required", tool.Name)
		}
	}
}

func TestParseEncoderList(t *testing.T) {
	output := `Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder (codec h264)
 V....D libsvtav1            SVT-AV1(Scalable Video Technology for AV1) encoder
`
	support := ParseEncoderList(output)
	if !support.H264 {
		t.Fatal("expected h264_nvenc to be detected")
	}
	if support.AV1 {
		t.Fatal("did not expect av1_nvenc")
	}
	if !support.Any() {
		t.Fatal("expected Any to report support")
	}

	if ParseEncoderList("Encoders:\n").Any() {
		t.Fatal("expected no support from empty list")
	}
}
