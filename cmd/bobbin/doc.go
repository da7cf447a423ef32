// Package main hosts the bobbin CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into batch
// media operations: video conversion, subtitle generation, audio speedup,
// dependency checks, and run history review. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
