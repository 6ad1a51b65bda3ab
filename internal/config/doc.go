// Package config holds runtime configuration for the pipeline: scanner
// timeout budgets, fan-out limits, staleness windows, plan policy tables,
// and the optional YAML file with per-source overrides and broker directory
// extensions.
package config
