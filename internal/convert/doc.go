// Package convert implements the video conversion orchestrator.
//
// For each input file it probes the source with ffprobe, builds an encoding
// plan (NVENC hardware or x264 software, quality preset, pixel format
// handling for 10-bit sources), and invokes ffmpeg. A failed hardware
// invocation falls back exactly once to the CPU path; there is no general
// retry machinery.
package convert
