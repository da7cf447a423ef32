// Package subtitle generates SRT subtitle files from audio by invoking a
// Whisper CLI, parsing its JSON segment output, and rendering standard
// SubRip cues next to the source file.
package subtitle
