package subtitle

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// FormatTimestamp renders seconds as the SRT timestamp form HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT renders segments as numbered SubRip cues. Segments with empty
// text are dropped; cue numbering stays sequential.
func WriteSRT(path string, segments []Segment) error {
	var builder strings.Builder
	index := 1
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		end := segment.End
		if end <= segment.Start {
			end = segment.Start + 0.5
		}
		fmt.Fprintf(&builder, "%d\n%s --> %s\n%s\n\n",
			index, FormatTimestamp(segment.Start), FormatTimestamp(end), text)
		index++
	}
	if index == 1 {
		return fmt.Errorf("no usable segments for %s", path)
	}
	return os.WriteFile(path, []byte(builder.String()), 0o644)
}

// CountCues returns the number of cue blocks in an SRT file.
func CountCues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return 0, nil
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count, nil
}
