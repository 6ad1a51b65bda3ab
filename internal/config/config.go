package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// Default configuration values.
// These are calibrated against typical data-broker response behavior rather
// than clearnet norms: brokers rate-limit aggressively and dark-web sources
// answer slowly through Tor.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "datascrub"

	// DefaultStaticTimeout bounds one static broker search. Broker search
	// endpoints normally answer within a few seconds; 15s absorbs slow
	// outliers without stalling the run.
	DefaultStaticTimeout = 15 * time.Second

	// DefaultDynamicTimeout bounds one dynamic (browser/API-flow) scanner.
	// These flows involve multiple round trips, so the budget is larger.
	DefaultDynamicTimeout = 60 * time.Second

	// DefaultBreachTimeout bounds one breach database lookup.
	DefaultBreachTimeout = 20 * time.Second

	// DefaultDarkWebTimeout bounds one dark-web source query. Tor circuits
	// add multi-second latency per hop, so this mirrors the generous
	// timeouts Tor tooling uses.
	DefaultDarkWebTimeout = 120 * time.Second

	// DefaultConcurrency is the scanner fan-out limit. Scanners hit
	// distinct hosts, so the limit protects local resources, not sources.
	DefaultConcurrency = 16

	// DefaultScanStaleAfter is how long a ScanRun may sit IN_PROGRESS
	// before staleness recovery force-fails it. A run's true upper bound
	// is the largest scanner timeout; one hour covers that with margin.
	DefaultScanStaleAfter = time.Hour

	// DefaultRemovalStaleAfter is how long a removal request may sit
	// non-terminal before staleness recovery escalates it. Brokers quote
	// up to 45 days of processing; past that we treat silence as failure.
	DefaultRemovalStaleAfter = 45 * 24 * time.Hour

	// DefaultDailySubmissionCap limits removal submissions per source per
	// day. Brokers throttle or block senders that burst opt-outs.
	DefaultDailySubmissionCap = 50

	// DefaultUserAgent identifies the scanner in HTTP requests to sources.
	DefaultUserAgent = "DataScrubPro/1.0 (privacy removal agent)"

	// DefaultMaxBodySize limits response body reads from sources.
	// Search result pages are small; 2MB prevents memory exhaustion from
	// misbehaving endpoints.
	DefaultMaxBodySize = 2 * 1024 * 1024

	// DefaultTorStartupTimeout is the bootstrap budget for the embedded
	// Tor daemon used by dark-web scanners.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// monthlyScanCaps is the per-plan monthly scan allowance. The core enforces
// the cap from a scan-count input; billing itself is an external concern.
var monthlyScanCaps = map[model.PlanTier]int{
	model.PlanFree:    1,
	model.PlanPro:     10,
	model.PlanPremium: 30,
}

// MonthlyScanCap returns the monthly scan allowance for a plan.
// Unknown plans get the FREE allowance.
func MonthlyScanCap(plan model.PlanTier) int {
	if cap, ok := monthlyScanCaps[plan]; ok {
		return cap
	}
	return monthlyScanCaps[model.PlanFree]
}

// AllowsScanType reports whether a plan may run the given scan type.
// MONITORING scans are a paid feature; FULL and QUICK are universal.
func AllowsScanType(plan model.PlanTier, scanType model.ScanType) bool {
	if scanType == model.ScanTypeMonitoring {
		return plan == model.PlanPro || plan == model.PlanPremium
	}
	return scanType.Valid()
}

// TimeoutFor returns the per-invocation timeout budget for a scanner type.
func (c *Config) TimeoutFor(t model.ScannerType) time.Duration {
	switch t {
	case model.ScannerDynamicBroker:
		return c.DynamicTimeout
	case model.ScannerBreachDB:
		return c.BreachTimeout
	case model.ScannerDarkWeb:
		return c.DarkWebTimeout
	default:
		return c.StaticTimeout
	}
}

// Config holds all runtime options for the pipeline. It is populated from
// CLI flags plus the optional YAML file and passed by dependency injection;
// there is no global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// StaticTimeout bounds one static broker scanner invocation.
	StaticTimeout time.Duration

	// DynamicTimeout bounds one dynamic broker scanner invocation.
	DynamicTimeout time.Duration

	// BreachTimeout bounds one breach database scanner invocation.
	BreachTimeout time.Duration

	// DarkWebTimeout bounds one dark-web scanner invocation.
	DarkWebTimeout time.Duration

	// Concurrency is the maximum number of scanners running at once.
	Concurrency int

	// ScanStaleAfter is the staleness window for stuck ScanRuns.
	ScanStaleAfter time.Duration

	// RemovalStaleAfter is the staleness window for stuck removal requests.
	RemovalStaleAfter time.Duration

	// DailySubmissionCap limits removal submissions per source per day.
	// Per-source overrides in the config file take precedence.
	DailySubmissionCap int

	// UserAgent is sent with every HTTP request to a source.
	UserAgent string

	// MaxBodySize limits response body reads from sources, in bytes.
	MaxBodySize int64

	// TorProxyAddress is an external Tor SOCKS5 proxy in "host:port"
	// format. Empty means dark-web scanners start an embedded daemon.
	TorProxyAddress string

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// DBDir is the directory holding the SQLite store. Defaults to the
	// XDG data directory when empty.
	DBDir string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is an explicit YAML config file path. When empty the
	// loader searches the usual locations.
	ConfigFilePath string

	// File holds per-source overrides and broker directory extensions
	// loaded from the YAML file. Nil when no file was found.
	File *File
}

// NewConfig creates a Config with default values. Callers override specific
// fields after creation, usually from CLI flags.
func NewConfig() *Config {
	return &Config{
		StaticTimeout:      DefaultStaticTimeout,
		DynamicTimeout:     DefaultDynamicTimeout,
		BreachTimeout:      DefaultBreachTimeout,
		DarkWebTimeout:     DefaultDarkWebTimeout,
		Concurrency:        DefaultConcurrency,
		ScanStaleAfter:     DefaultScanStaleAfter,
		RemovalStaleAfter:  DefaultRemovalStaleAfter,
		DailySubmissionCap: DefaultDailySubmissionCap,
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
		TorStartupTimeout:  DefaultTorStartupTimeout,
		DBDir:              XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for the application.
// On Linux: ~/.local/share/datascrub
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the application.
// On Linux: ~/.config/datascrub
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any scanning begins.
func (c *Config) Validate() error {
	if c.StaticTimeout <= 0 || c.DynamicTimeout <= 0 || c.BreachTimeout <= 0 || c.DarkWebTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.ScanStaleAfter <= 0 || c.RemovalStaleAfter <= 0 {
		return ErrInvalidStaleness
	}
	if c.DailySubmissionCap <= 0 {
		return ErrInvalidSubmissionCap
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
