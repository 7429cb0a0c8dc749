// Package review runs a pull request review end to end.
//
// An [Engine] fetches the pull request through a [Fetcher], optionally strips
// secrets from the diff, builds the prompt with [BuildPrompt], obtains the
// review text from an [AcquireFunc] and records the result in a
// history.Store. Nothing is recorded unless every earlier step succeeds.
//
// Automated reviews are cached by prompt so re-reviewing an unchanged pull
// request does not call the model again.
package review
