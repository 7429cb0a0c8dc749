// Package providers turns a review prompt into review text.
//
// Hosted models (Anthropic, OpenAI, Gemini) and local OpenAI-compatible
// servers (Ollama, LM Studio) are called over HTTP. The manual and file
// reviewers hand the prompt to a person and collect their answer.
package providers
