// Package main provides the entry point for the DataScrub Pro CLI.
package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Rank127/datascrub-pro-sub004/internal/broker"
	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/database"
	"github.com/Rank127/datascrub-pro-sub004/internal/identity"
	"github.com/Rank127/datascrub-pro-sub004/internal/log"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/scanner"
)

// NewRootCmd creates the root command for DataScrub Pro.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datascrub",
		Short: "Personal data exposure scanner and removal pipeline",
		Long: `DataScrub Pro scans people-search brokers, breach databases, and dark-web
indexes for your personal data, scores every finding, and drives removal
requests against the sources that list it.

Profiles are encrypted at rest. Scans never log identity data.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .datascrub.yaml in current or XDG config directory)")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewExposuresCmd())
	cmd.AddCommand(NewRemovalCmd())
	cmd.AddCommand(NewBrokersCmd())
	cmd.AddCommand(NewRecoverCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig creates a Config from persistent flags and the optional
// YAML file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, run on defaults.
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		cfg.File, err = config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the redacting structured logger. Identity fields
// never reach log output regardless of level.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// openStore opens the SQLite store in the configured data directory,
// creating it on first use.
func openStore(cfg *config.Config) (*database.Store, error) {
	if err := os.MkdirAll(cfg.DBDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// buildDirectory builds the broker directory with any config extensions.
func buildDirectory(cfg *config.Config) (*broker.Directory, error) {
	var extensions []model.BrokerEntry
	if cfg.File != nil {
		extensions = cfg.File.Brokers
	}
	return broker.NewDirectory(extensions...)
}

// loadCipher loads the profile encryption key, generating one on first
// use. The key file lives next to the database with owner-only access.
func loadCipher(cfg *config.Config) (*identity.SecretboxCipher, error) {
	keyPath := filepath.Join(cfg.DBDir, "profile.key")

	key, err := os.ReadFile(keyPath) //nolint:gosec // Path is under our data dir
	if os.IsNotExist(err) {
		key = make([]byte, identity.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate profile key: %w", err)
		}
		if err := os.MkdirAll(cfg.DBDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := os.WriteFile(keyPath, key, 0600); err != nil {
			return nil, fmt.Errorf("failed to write profile key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read profile key: %w", err)
	}

	return identity.NewSecretboxCipher(key)
}

// buildRegistry builds the scanner registry from the broker directory and
// per-source config overrides.
//
// Dark-web sources are only registered when a Tor-backed client is
// provided; without one they are skipped so a scan still covers every
// clearnet source.
func buildRegistry(cfg *config.Config, directory *broker.Directory, torClient *http.Client, logger *slog.Logger) (*scanner.Registry, error) {
	// Per-scanner deadlines come from the execution context. The client
	// timeout is a backstop at the longest clearnet budget.
	client := &http.Client{Timeout: cfg.DynamicTimeout}

	var scanners []scanner.Scanner
	for _, source := range directory.Sources() {
		entry, ok := directory.Info(source)
		if !ok || entry.ScannerKind == "" {
			continue
		}

		sc := cfg.File.SourceConfigFor(source)
		if sc.Disabled {
			logger.Debug("source disabled by config", "source", source)
			continue
		}
		endpoint := entry.SearchEndpoint
		if sc.Endpoint != "" {
			endpoint = sc.Endpoint
		}
		if endpoint == "" {
			continue
		}

		switch entry.ScannerKind {
		case model.ScannerStaticBroker:
			scanners = append(scanners, scanner.NewStaticBroker(client, source, entry.DisplayName, endpoint,
				scanner.WithUserAgent(cfg.UserAgent),
				scanner.WithMaxBodySize(cfg.MaxBodySize),
				scanner.WithHeaders(sc.Headers),
			))
		case model.ScannerDynamicBroker:
			scanners = append(scanners, scanner.NewDynamicBroker(client, source, entry.DisplayName, endpoint,
				scanner.WithDynamicHeaders(sc.Headers),
			))
		case model.ScannerBreachDB:
			scanners = append(scanners, scanner.NewBreachDB(client, source, entry.DisplayName, endpoint,
				scanner.WithBreachHeaders(sc.Headers),
			))
		case model.ScannerDarkWeb:
			if torClient == nil {
				logger.Debug("dark-web source skipped, no Tor client", "source", source)
				continue
			}
			scanners = append(scanners, scanner.NewDarkWebIndex(torClient, source, entry.DisplayName, endpoint))
		}
	}

	return scanner.NewRegistry(scanners...)
}
