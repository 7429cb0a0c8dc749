// Package forge resolves pull request URLs to a hosting forge and fetches
// normalized pull request details from the GitHub, GitLab and Bitbucket REST
// APIs.
//
// [Resolve] maps a URL to a [Kind] by substring match in the fixed order
// github.com, gitlab.com, bitbucket.org. [Client.Fetch] resolves the URL and
// dispatches to the matching per-forge client. Every fetch either returns a
// fully populated [Details] or an error; failures are one of
// [UnsupportedProviderError], [InvalidURLFormatError] or [FetchError].
package forge
