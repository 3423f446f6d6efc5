// Package testutil holds helpers shared by the package test suites.
package testutil

import "log/slog"

// NopLogger drops every record
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
