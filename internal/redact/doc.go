// Package redact removes secrets from pull request text before it is placed
// in a review prompt and handed to a reviewer outside the machine.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, database connection strings with passwords, and provider-specific
// tokens (Anthropic, OpenAI, GitHub, GitLab, Slack). A [Redactor] can also be
// seeded with literal values, such as the credentials from the active
// configuration, which are removed wherever they appear.
package redact
