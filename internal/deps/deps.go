package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Tool identifies one external binary bobbin shells out to.
type Tool struct {
	Name     string
	Command  string
	Purpose  string
	Optional bool
}

// Status is the PATH-resolution outcome for one tool. A nil Err means the
// command resolved.
type Status struct {
	Tool
	Err error
}

// Available reports whether the tool's command resolved.
func (s Status) Available() bool {
	return s.Err == nil
}

// Known returns every external tool bobbin may invoke. Whisper is optional
// because only subtitle generation needs it.
func Known(ffmpeg, ffprobe, whisper string) []Tool {
	return []Tool{
		{Name: "ffmpeg", Command: ffmpeg, Purpose: "video and audio encoding"},
		{Name: "ffprobe", Command: ffprobe, Purpose: "media stream inspection"},
		{Name: "whisper", Command: whisper, Purpose: "speech transcription", Optional: true},
	}
}

// Check resolves each tool's command. Bare names resolve via PATH; commands
// holding a path separator are checked as-is by LookPath.
func Check(tools []Tool) []Status {
	statuses := make([]Status, 0, len(tools))
	for _, tool := range tools {
		tool.Command = strings.TrimSpace(tool.Command)
		status := Status{Tool: tool}
		if tool.Command == "" {
			status.Err = errors.New("command not configured")
		} else if _, err := exec.LookPath(tool.Command); err != nil {
			status.Err = fmt.Errorf("%q not found", tool.Command)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Require collects every missing non-optional tool into a single error so a
// batch can fail fast before touching any file.
func Require(statuses []Status) error {
	var missing []string
	for _, status := range statuses {
		if status.Optional || status.Available() {
			continue
		}
		missing = append(missing, fmt.Sprintf("%s (%v)", status.Name, status.Err))
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}
