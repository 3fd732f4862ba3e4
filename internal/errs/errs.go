// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures..
// (e.g. HTTPError for API responses)..
// to ensure the client receive meaningful, actionable, and consistent..
// error messages.
//
// - Return consistent error shapes to API clients (JSON).
// - Keep the underlying cause for logs without leaking it to clients.
// - Provide errors that play nicely with Go's standard errors package.
package errs
