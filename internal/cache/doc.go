// Package cache provides a file-based cache of review text returned by
// automated reviewers.
//
// Entries are keyed by a SHA-256 hash of the reviewer, model and the final
// prompt, so a re-run against an unchanged pull request reuses the earlier
// review instead of paying for another model call. Each entry records its
// creation time; entries older than the TTL are treated as misses and removed
// on read.
//
// The default cache directory is $XDG_CACHE_HOME/forgereview (or the
// OS-appropriate equivalent). Prompts are redacted before they are hashed.
package cache
