// Package services defines shared utilities consumed by the batch commands
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     messages consistent across convert, subtitle, and speedup paths.
//
// Use these helpers when wiring new command logic so operational behaviour
// (error handling, observability) stays uniform across the toolkit.
package services
