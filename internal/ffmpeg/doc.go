// Package ffmpeg runs ffmpeg invocations for the conversion and speedup
// paths, capturing stderr so failures can be classified by callers.
package ffmpeg
