// Package core contains the business logic for archivist: record selection,
// date extraction, archive building, the pipeline stage, and configuration.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// ConfigFileName is the base name (without extension) of the config file.
const ConfigFileName = "archivist"

// ConfigurationManager defines the interface for loading and validating
// configuration from archivist.yaml.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where archivist.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		SourceDir: "content",
		Output:    "archive.yaml",
		EventLog:  ".archivist_events.jsonl",
		LogLevel:  "info",
		Archive:   models.DefaultArchiveOptions(),
	}
}

// LoadGlobalConfig reads archivist.yaml from the base path using Viper.
// Values can be overridden with ARCHIVIST_* environment variables. If the
// file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("ARCHIVIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source_dir", cfg.SourceDir)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("event_log", cfg.EventLog)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("archive.group_by_month", cfg.Archive.GroupByMonth)
	v.SetDefault("archive.list_sort_order", string(cfg.Archive.ListSortOrder))
	v.SetDefault("archive.post_sort_order", string(cfg.Archive.PostSortOrder))
	v.SetDefault("archive.month_sort_order", string(cfg.Archive.MonthSortOrder))
	v.SetDefault("archive.locale", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg.SourceDir = v.GetString("source_dir")
	cfg.Output = v.GetString("output")
	cfg.EventLog = v.GetString("event_log")
	cfg.LogLevel = v.GetString("log_level")

	// collections and date_fields accept a string or a list, so they go
	// through the same normalization as programmatic options.
	groupByMonth := v.GetBool("archive.group_by_month")
	opts, err := ResolveOptions(RawOptions{
		Collections:    v.Get("archive.collections"),
		DateFields:     v.Get("archive.date_fields"),
		GroupByMonth:   &groupByMonth,
		ListSortOrder:  v.GetString("archive.list_sort_order"),
		PostSortOrder:  v.GetString("archive.post_sort_order"),
		MonthSortOrder: v.GetString("archive.month_sort_order"),
		Locale:         v.GetString("archive.locale"),
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s.yaml archive section: %w", ConfigFileName, err)
	}
	cfg.Archive = opts

	return cfg, nil
}

// ValidateConfig checks the provided configuration for invalid values and
// returns a clear error message identifying the problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.SourceDir) == "" {
		errs = append(errs, "source_dir must not be empty")
	}
	if strings.TrimSpace(cfg.Output) == "" {
		errs = append(errs, "output must not be empty")
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, fmt.Sprintf(
			"log_level %q is invalid, must be one of: debug, info, warn, error",
			cfg.LogLevel,
		))
	}
	if err := ValidateOptions(cfg.Archive); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// validLogLevels is the set of allowed log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}
