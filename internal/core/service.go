package core

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// RecordSource supplies the record set for a build.
// This interface is defined locally in core to avoid importing storage.
type RecordSource interface {
	Load() (models.Files, error)
}

// MetadataSink loads and persists the pipeline metadata.
// This interface is defined locally in core to avoid importing storage.
type MetadataSink interface {
	Load() (models.Metadata, error)
	Save(meta models.Metadata) error
}

// BuildOutcome is the result of one archive build.
type BuildOutcome struct {
	Options models.ArchiveOptions
	Loaded  int
	Result  models.BuildResult
	Archive models.Archive
}

// ArchiveService loads content, runs the archive stage and persists the
// resulting metadata.
type ArchiveService interface {
	Build(opts models.ArchiveOptions) (*BuildOutcome, error)
	BuildFrom(source RecordSource, opts models.ArchiveOptions) (*BuildOutcome, error)
	Current() (models.Archive, error)
	// CurrentOptions returns the options the persisted archive was built
	// with, so readers resolve record dates the same way the build did.
	CurrentOptions() (models.ArchiveOptions, error)
}

type archiveService struct {
	source RecordSource
	sink   MetadataSink
	logger *log.Logger
	events EventLogger
}

// NewArchiveService creates an ArchiveService. logger and events may be nil.
func NewArchiveService(source RecordSource, sink MetadataSink, logger *log.Logger, events EventLogger) ArchiveService {
	return &archiveService{source: source, sink: sink, logger: logger, events: events}
}

// Build runs a build against the default record source.
func (s *archiveService) Build(opts models.ArchiveOptions) (*BuildOutcome, error) {
	return s.BuildFrom(s.source, opts)
}

// BuildFrom runs a build against source. Options are validated before any
// content is read.
func (s *archiveService) BuildFrom(source RecordSource, opts models.ArchiveOptions) (*BuildOutcome, error) {
	if source == nil {
		return nil, fmt.Errorf("building archive: no record source configured")
	}
	stage, err := NewArchiveStage(opts, s.logger, s.events)
	if err != nil {
		return nil, fmt.Errorf("building archive: %w", err)
	}

	files, err := source.Load()
	if err != nil {
		s.logEvent(EventArchiveFailed, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("building archive: %w", err)
	}
	s.logEvent(EventContentLoaded, map[string]any{"records": len(files)})

	meta := models.Metadata{}
	if s.sink != nil {
		if meta, err = s.sink.Load(); err != nil {
			return nil, fmt.Errorf("building archive: %w", err)
		}
	}

	if err := NewPipeline(stage).Run(files, meta); err != nil {
		s.logEvent(EventArchiveFailed, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("building archive: %w", err)
	}

	if s.sink != nil {
		if err := s.sink.Save(meta); err != nil {
			return nil, fmt.Errorf("building archive: %w", err)
		}
	}

	archive, _ := meta.Archive()
	return &BuildOutcome{
		Options: opts,
		Loaded:  len(files),
		Result:  stage.LastResult(),
		Archive: archive,
	}, nil
}

// Current returns the archive persisted by the last build.
func (s *archiveService) Current() (models.Archive, error) {
	if s.sink == nil {
		return nil, fmt.Errorf("reading archive: no metadata store configured")
	}
	meta, err := s.sink.Load()
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	a, ok := meta.Archive()
	if !ok {
		return nil, fmt.Errorf("reading archive: no archive found; run 'archivist build' first")
	}
	return a, nil
}

// CurrentOptions returns the options stored with the last build.
func (s *archiveService) CurrentOptions() (models.ArchiveOptions, error) {
	if s.sink == nil {
		return models.ArchiveOptions{}, fmt.Errorf("reading archive options: no metadata store configured")
	}
	meta, err := s.sink.Load()
	if err != nil {
		return models.ArchiveOptions{}, fmt.Errorf("reading archive options: %w", err)
	}
	opts, ok := meta.ArchiveOptions()
	if !ok {
		return models.ArchiveOptions{}, fmt.Errorf("reading archive options: none recorded; run 'archivist build' first")
	}
	return opts, nil
}

func (s *archiveService) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogEvent(eventType, data) // Non-fatal.
}
