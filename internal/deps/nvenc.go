package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// NVENCSupport reports which NVIDIA hardware encoders the local ffmpeg build
// exposes. A build can list an encoder without a capable GPU being present;
// the conversion path still falls back to CPU encoding when the invocation
// fails at runtime.
type NVENCSupport struct {
	H264 bool
	AV1  bool
}

// DetectNVENC asks ffmpeg for its encoder list and scans it for the NVENC
// entries. A missing ffmpeg binary yields zero support rather than an error
// so callers can degrade to CPU encoding.
func DetectNVENC(ctx context.Context, ffmpegBinary string) (NVENCSupport, error) {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, "-hide_banner", "-encoders")
	out, err := cmd.Output()
	if err != nil {
		if _, lookErr := exec.LookPath(binary); lookErr != nil {
			return NVENCSupport{}, nil
		}
		return NVENCSupport{}, fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	return ParseEncoderList(string(out)), nil
}

// ParseEncoderList scans `ffmpeg -encoders` output for NVENC entries.
// Exported for testing without a real ffmpeg binary.
func ParseEncoderList(output string) NVENCSupport {
	var support NVENCSupport
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[1] {
		case "h264_nvenc":
			support.H264 = true
		case "av1_nvenc":
			support.AV1 = true
		}
	}
	return support
}

// Any reports whether at least one hardware encoder is available.
func (s NVENCSupport) Any() bool {
	return s.H264 || s.AV1
}
