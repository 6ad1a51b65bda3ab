// Package log provides slog handlers that mask personal data before it
// reaches any log sink. Every logger in the pipeline is built through this
// package so that scanned identity attributes, hit previews, and secrets
// never appear in operational logs.
package log
