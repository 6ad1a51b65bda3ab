package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".datascrub.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// SourceConfig holds per-source overrides for a single scanner target.
// Operators use this to tune endpoints and caps without a release.
type SourceConfig struct {
	// Endpoint overrides the source's search endpoint URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Disabled removes the source from every scanner set.
	Disabled bool `yaml:"disabled,omitempty"`

	// DailySubmissionCap overrides the global per-source removal
	// submission cap for this source.
	DailySubmissionCap int `yaml:"dailySubmissionCap,omitempty"`

	// Headers are extra HTTP headers to send to this source.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .datascrub.yaml configuration file.
type File struct {
	// Sources maps source ids to their per-source overrides.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Brokers extends the built-in broker directory with additional or
	// corrected entries. Entries here shadow built-ins with the same id.
	Brokers []model.BrokerEntry `yaml:"brokers,omitempty"`
}

// SourceConfigFor returns the overrides for a source id, or the zero value
// when none are configured.
func (f *File) SourceConfigFor(source string) SourceConfig {
	if f == nil {
		return SourceConfig{}
	}
	return f.Sources[source]
}

// SubmissionCapFor returns the effective daily submission cap for a source,
// preferring the per-source override over the global default.
func (c *Config) SubmissionCapFor(source string) int {
	if sc := c.File.SourceConfigFor(source); sc.DailySubmissionCap > 0 {
		return sc.DailySubmissionCap
	}
	return c.DailySubmissionCap
}

// LoadConfigFile loads the YAML configuration file from path.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Sources == nil {
		f.Sources = make(map[string]SourceConfig)
	}

	return &f, nil
}

// FindConfigFile searches for the configuration file in order:
// the explicit path, the current directory, the XDG config directory.
// Returns empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}
