// Package server exposes reviews over HTTP: a small HTML dashboard, a form
// endpoint, a JSON API and read-only history and statistics endpoints.
package server
