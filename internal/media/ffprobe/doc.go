// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no bobbin-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result provide convenient access to the primary video
// stream, bit depth detection, and duration parsing.
package ffprobe
