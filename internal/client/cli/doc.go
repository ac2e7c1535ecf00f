// Package cli implements the interactive CV Advisor terminal client: a
// read-eval-print loop over the session store, the upload flow, and the
// recommendation fetcher. Commands that need an authenticated session are
// wrapped in a guard that sends the user to login instead of running them.
package cli
