// Package cli wires together the Cobra command tree for the forgereview binary.
//
// It defines the root command and all subcommands (review, serve, history,
// config, cache, models, version), binds flags, loads configuration, builds
// the review engine and returns deterministic exit codes for CI gating.
package cli
