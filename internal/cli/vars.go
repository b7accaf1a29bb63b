package cli

import (
	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/internal/observability"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Config     *models.GlobalConfig
	Logger     *log.Logger
	ArchiveSvc core.ArchiveService

	// NewSource builds a record source for a --src override.
	NewSource func(dir string) core.RecordSource
)

// MetricsCalc is nil when the event log could not be opened.
var MetricsCalc observability.MetricsCalculator
