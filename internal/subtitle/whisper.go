package subtitle

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Segment is one transcribed span with absolute timestamps in seconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperPayload struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// loadWhisperSegments reads the JSON transcript the Whisper CLI writes
// alongside its other output formats.
func loadWhisperSegments(path string) ([]Segment, string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, "", os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, "", fmt.Errorf("parse whisper json: %w", err)
	}
	return payload.Segments, payload.Language, nil
}

// buildWhisperArgs assembles the CLI arguments for a transcription run.
func buildWhisperArgs(source, outputDir, model, language string) []string {
	args := []string{
		source,
		"--model", model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--word_timestamps", "True",
	}
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		args = append(args, "--language", trimmed)
	}
	return args
}
