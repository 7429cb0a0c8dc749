package forge

import "strings"

// NoDescription is the body used when a pull request has no description.
const NoDescription = "No description provided"

// Details is the normalized view of a pull request shared by all forges.
type Details struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	Diff         string `json:"diff"`
	ChangedFiles int    `json:"changed_files"`
	Provider     Kind   `json:"provider"`
}

func bodyOrPlaceholder(body string) string {
	if strings.TrimSpace(body) == "" {
		return NoDescription
	}
	return body
}
