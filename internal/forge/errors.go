package forge

import "fmt"

// UnsupportedProviderError is returned when a URL matches none of the known
// forge domains.
type UnsupportedProviderError struct {
	URL string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported git provider in URL: %s", e.URL)
}

// InvalidURLFormatError is returned when a URL belongs to a known forge but
// does not have the pull request path shape that forge expects.
type InvalidURLFormatError struct {
	Provider Kind
	URL      string
	Expected string
}

func (e *InvalidURLFormatError) Error() string {
	return fmt.Sprintf("invalid %s pull request URL %q (expected %s)", e.Provider, e.URL, e.Expected)
}

// FetchError is returned for any failed forge API call: a non-2xx response, a
// network failure, or a response missing an expected field. StatusCode is 0
// when no HTTP response was received.
type FetchError struct {
	Provider   Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch PR details from %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("failed to fetch PR details from %s: %s", e.Provider, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }
