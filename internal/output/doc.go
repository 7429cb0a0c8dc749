// Package output formats review results, history and statistics.
//
// Four formats are supported:
//   - text     human-readable terminal output (default); the review body is
//     rendered as markdown with glamour when color is enabled
//   - json     the machine-readable result {pr_url, provider, title, review,
//     changed_files}
//   - markdown a PR-comment-friendly document
//   - yaml     the same fields as json
//
// Use [GetWriter] to obtain a [Writer] for a format string. [WriteResult]
// handles choosing between a file and stdout.
package output
