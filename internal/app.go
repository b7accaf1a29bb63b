// Package internal provides the App struct that wires all components of
// archivist together and initializes the CLI layer.
package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/valter-silva-au/archivist/internal/cli"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/internal/observability"
	"github.com/valter-silva-au/archivist/internal/storage"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// App holds all service dependencies for archivist.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Logging
	Logger *log.Logger

	// Storage layer
	FS     afero.Fs
	Loader storage.ContentLoader
	Store  storage.MetadataStore

	// Core services
	Archive core.ArchiveService

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of archivist. basePath is the
// directory holding archivist.yaml; relative paths in the config resolve
// against it.
func NewApp(basePath string) (*App, error) {
	return newApp(basePath, afero.NewOsFs(), os.Stderr)
}

func newApp(basePath string, fs afero.Fs, logOut io.Writer) (*App, error) {
	app := &App{BasePath: basePath, FS: fs}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Logging ---
	app.Logger = log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		Prefix:          "archivist",
	})
	if lvl, err := log.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		app.Logger.SetLevel(lvl)
	}

	// --- Storage layer ---
	app.Loader = storage.NewContentLoader(fs, app.resolve(cfg.SourceDir), app.Logger)
	app.Store = storage.NewMetadataStore(fs, app.resolve(cfg.Output))

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(app.resolve(cfg.EventLog))
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.Logger.Warn("event log disabled", "err", err)
		app.EventLog = nil
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	app.Archive = core.NewArchiveService(app.Loader, app.Store, app.Logger, evtAdapter)

	// --- Wire CLI package-level variables ---
	cli.Config = cfg
	cli.Logger = app.Logger
	cli.ArchiveSvc = app.Archive
	cli.NewSource = func(dir string) core.RecordSource {
		return storage.NewContentLoader(fs, app.resolve(dir), app.Logger)
	}
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

func (a *App) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.BasePath, p)
}

// ResolveBasePath determines the archivist base directory. It checks the
// ARCHIVIST_HOME env var, then walks up from the current directory looking
// for archivist.yaml, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("ARCHIVIST_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := observability.LevelInfo
	if eventType == core.EventArchiveFailed {
		level = observability.LevelError
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
