// Package batch orchestrates file discovery and sequential per-file
// processing, recording outcomes in the run journal.
package batch
