// Package speedup re-encodes audio files at an adjusted playback rate
// using ffmpeg's atempo filter.
package speedup
