package forge

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies a supported forge.
type Kind string

const (
	GitHub    Kind = "github"
	GitLab    Kind = "gitlab"
	Bitbucket Kind = "bitbucket"
)

// Kinds lists the supported forges in resolution priority order.
var Kinds = []Kind{GitHub, GitLab, Bitbucket}

var kindDomains = map[Kind]string{
	GitHub:    "github.com",
	GitLab:    "gitlab.com",
	Bitbucket: "bitbucket.org",
}

// Domain returns the host substring used to recognize URLs of this forge.
func (k Kind) Domain() string { return kindDomains[k] }

func (k Kind) String() string { return string(k) }

// Resolve maps a pull request URL to its forge by its host name. Domains are
// checked in the order of [Kinds] and the first one contained in the host
// wins. The path and query are never consulted.
func Resolve(prURL string) (Kind, error) {
	u, err := url.Parse(strings.TrimSpace(prURL))
	if err != nil || u.Hostname() == "" {
		return "", &UnsupportedProviderError{URL: prURL}
	}
	host := strings.ToLower(u.Hostname())
	for _, k := range Kinds {
		if strings.Contains(host, k.Domain()) {
			return k, nil
		}
	}
	return "", &UnsupportedProviderError{URL: prURL}
}

// ParseKind maps a forge name such as "GitHub" to its Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := kindDomains[k]; !ok {
		return "", fmt.Errorf("unknown provider %q (valid: github, gitlab, bitbucket)", name)
	}
	return k, nil
}
