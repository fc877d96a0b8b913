// Package slog provides log/slog decorators for the spider interfaces.
// The extraction engine itself never logs; these wrappers are applied at
// the edges by the CLI and the HTTP server.
package slog
