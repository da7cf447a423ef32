package convert

import "regexp"

// Pre-compiled patterns for classifying NVENC stderr output. The fallback
// fires on any hardware failure; classification only improves the log line.
var nvencFailurePatterns = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`10 bit encode not supported`), "device cannot encode 10-bit input"},
	{regexp.MustCompile(`No capable devices found`), "no NVENC-capable device found"},
	{regexp.MustCompile(`(?i)cannot load (libcuda|libnvidia-encode|nvcuda)`), "NVIDIA driver libraries unavailable"},
	{regexp.MustCompile(`OpenEncodeSessionEx failed`), "NVENC session rejected (driver or session limit)"},
	{regexp.MustCompile(`(?i)driver does not support the required nvenc api version`), "NVIDIA driver too old for this ffmpeg build"},
	{regexp.MustCompile(`(?i)unknown encoder '(h264|av1)_nvenc'`), "ffmpeg built without NVENC support"},
}

// FallbackReason classifies hardware-encoder stderr into a short description
// for logging. Unrecognized output yields a generic reason.
func FallbackReason(stderr string) string {
	for _, pattern := range nvencFailurePatterns {
		if pattern.re.MatchString(stderr) {
			return pattern.reason
		}
	}
	return "hardware encoder failed"
}
