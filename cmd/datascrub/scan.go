package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/darkweb"
	"github.com/Rank127/datascrub-pro-sub004/internal/identity"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/notify"
	"github.com/Rank127/datascrub-pro-sub004/internal/orchestrator"
	"github.com/Rank127/datascrub-pro-sub004/internal/removal"
	"github.com/Rank127/datascrub-pro-sub004/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan data sources for the user's personal data",
		Long: `Scan fans out across people-search brokers, breach databases, and
(on PREMIUM plans) dark-web indexes, looking for the user's personal data.

Every finding is confidence-scored and deduplicated against previous scans.
High-confidence findings on sources that support automated removal open
removal requests automatically.

Examples:
  # Full scan on the free tier
  datascrub scan --user jane

  # Quick scan on a paid plan
  datascrub scan --user jane --plan PRO --type QUICK

  # Premium scan including dark-web sources via an external Tor proxy
  datascrub scan --user jane --plan PREMIUM --external-tor 127.0.0.1:9150

  # Premium scan with the embedded Tor daemon
  datascrub scan --user jane --plan PREMIUM --embedded-tor

  # Machine-readable report
  datascrub scan --user jane --json --output report.json`,
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID to scan for (required)")
	cmd.Flags().StringP("type", "t", string(model.ScanTypeFull),
		"Scan type: FULL, QUICK, or MONITORING")
	cmd.Flags().StringP("plan", "p", string(model.PlanFree),
		"Plan tier: FREE, PRO, or PREMIUM")

	// Tor connection flags. Dark-web sources only run when one of these
	// is set; clearnet sources run either way.
	cmd.Flags().StringP("external-tor", "e", "",
		"Use external Tor proxy at specified address (e.g., 127.0.0.1:9150)")
	cmd.Flags().Bool("embedded-tor", false,
		"Start an embedded Tor daemon for dark-web sources")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}

	return cmd
}

// scanFlags holds the scan command's flag values after parsing.
type scanFlags struct {
	userID      string
	scanType    model.ScanType
	plan        model.PlanTier
	externalTor string
	embeddedTor bool
	jsonOut     bool
	markdownOut bool
	outputPath  string
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	flags, err := parseScanFlags(cmd, cfg)
	if err != nil {
		return err
	}
	if flags.jsonOut && flags.markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}
	if !flags.scanType.Valid() {
		return fmt.Errorf("invalid scan type %q (want FULL, QUICK, or MONITORING)", flags.scanType)
	}
	if !flags.plan.Valid() {
		return fmt.Errorf("invalid plan %q (want FREE, PRO, or PREMIUM)", flags.plan)
	}

	logger := setupLogger(cfg.Verbose)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, flags, logger)
}

// parseScanFlags reads the scan command's flags.
func parseScanFlags(cmd *cobra.Command, cfg *config.Config) (*scanFlags, error) {
	flags := &scanFlags{}

	var err error
	flags.userID, err = cmd.Flags().GetString("user")
	if err != nil {
		return nil, err
	}

	scanType, err := cmd.Flags().GetString("type")
	if err != nil {
		return nil, err
	}
	flags.scanType = model.ScanType(scanType)

	plan, err := cmd.Flags().GetString("plan")
	if err != nil {
		return nil, err
	}
	flags.plan = model.PlanTier(plan)

	flags.externalTor, err = cmd.Flags().GetString("external-tor")
	if err != nil {
		return nil, err
	}
	if flags.externalTor != "" {
		cfg.TorProxyAddress = flags.externalTor
	}

	flags.embeddedTor, err = cmd.Flags().GetBool("embedded-tor")
	if err != nil {
		return nil, err
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}

	flags.jsonOut, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	flags.markdownOut, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	flags.outputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	return flags, nil
}

// runScan wires the pipeline and executes one scan.
func runScan(ctx context.Context, cfg *config.Config, flags *scanFlags, logger *slog.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	directory, err := buildDirectory(cfg)
	if err != nil {
		return fmt.Errorf("broker directory error: %w", err)
	}

	// Dark-web sources need a Tor-backed client. Without one they are
	// skipped and the scan covers clearnet sources only.
	torClient, stopTor, err := setupTor(ctx, cfg, flags, logger)
	if err != nil {
		return err
	}
	defer stopTor()

	registry, err := buildRegistry(cfg, directory, torClient, logger)
	if err != nil {
		return fmt.Errorf("scanner registry error: %w", err)
	}

	cipher, err := loadCipher(cfg)
	if err != nil {
		return err
	}
	accessor := identity.NewAccessor(cipher)

	dispatcher := notify.NewDispatcher(
		[]notify.Notifier{notify.NewLogNotifier(logger)},
		notify.WithLogger(logger),
	)

	removals := removal.NewService(store, directory, cfg,
		removal.WithLogger(logger),
		removal.WithDispatcher(dispatcher),
	)

	pipeline := orchestrator.NewPipeline(store, registry, accessor, directory, removals, cfg,
		orchestrator.WithPipelineLogger(logger),
		orchestrator.WithDispatcher(dispatcher),
	)

	fmt.Printf("Scanning %d sources for user %s...\n", registry.Len(), flags.userID)
	startTime := time.Now()

	result, err := pipeline.Run(ctx, orchestrator.ScanRequest{
		UserID: flags.userID,
		Type:   flags.scanType,
		Plan:   flags.plan,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	dispatcher.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

	exposures, err := store.ExposuresByUser(ctx, flags.userID)
	if err != nil {
		return fmt.Errorf("failed to load exposures: %w", err)
	}

	summary := report.NewScanSummary(result.Run, exposures, result.Outcomes, directory)
	return outputReport(flags, summary)
}

// setupTor builds the dark-web HTTP client per the Tor flags. The returned
// cleanup func is always safe to call.
func setupTor(ctx context.Context, cfg *config.Config, flags *scanFlags, logger *slog.Logger) (client *http.Client, cleanup func(), err error) {
	cleanup = func() {}

	switch {
	case flags.externalTor != "":
		proxy, err := darkweb.NewProxy(cfg.TorProxyAddress, cfg.DarkWebTimeout)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create Tor proxy: %w", err)
		}
		if status := proxy.CheckConnection(ctx); status != darkweb.ProxyStatusOK {
			return nil, cleanup, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.TorProxyAddress)
		}
		logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
		return proxy.HTTPClient(), cleanup, nil

	case flags.embeddedTor:
		fmt.Println("Starting embedded Tor daemon...")
		fmt.Printf("This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		embedded := darkweb.NewEmbeddedTor(
			darkweb.WithStartupTimeout(cfg.TorStartupTimeout),
		)
		if err := embedded.Start(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		cleanup = func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}

		proxy, err := embedded.NewProxy(cfg.DarkWebTimeout)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to create Tor proxy: %w", err)
		}
		if status := proxy.CheckConnection(ctx); status != darkweb.ProxyStatusOK {
			cleanup()
			return nil, func() {}, fmt.Errorf("embedded Tor proxy check failed: %s", status)
		}
		logger.Info("embedded Tor daemon started", "socksAddr", embedded.SocksAddr())
		return proxy.HTTPClient(), cleanup, nil

	default:
		logger.Debug("no Tor client configured, dark-web sources will be skipped")
		return nil, cleanup, nil
	}
}

// outputReport writes the scan summary in the requested format.
func outputReport(flags *scanFlags, summary *report.ScanSummary) error {
	var output *os.File
	if flags.outputPath != "" {
		dir := filepath.Dir(flags.outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports contain exposure previews, so keep them owner-readable
		// only.
		f, err := os.OpenFile(flags.outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case flags.jsonOut:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case flags.markdownOut:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(summary)
	return err
}
