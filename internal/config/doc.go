// Package config loads and merges forgereview configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (FORGEREVIEW_*, plus GITHUB_TOKEN, GITLAB_TOKEN,
//     BITBUCKET_USER, BITBUCKET_TOKEN and the LLM API keys), including any
//     declared in a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/forgereview/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
