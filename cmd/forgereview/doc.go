// Forgereview reviews GitHub pull requests, GitLab merge requests and
// Bitbucket pull requests.
//
// It fetches the title, description and unified diff of a change, builds a
// review prompt, has the review written by a person (manual, file) or an LLM
// (anthropic, openai, gemini, ollama), and keeps the last 50 reviews in a
// local history with summary statistics.
//
// Usage:
//
//	forgereview review https://github.com/owner/repo/pull/42
//	forgereview review --reviewer anthropic --format json <pr-url>
//	forgereview review --prompt-only <pr-url>   # print the prompt only
//	forgereview history list                    # newest reviews first
//	forgereview history stats
//	forgereview serve --addr :5000              # dashboard and JSON API
package main
