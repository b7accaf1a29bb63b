package core

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// Stage is one step of a site pipeline. It reads the record set and may
// write into the shared metadata. A nil error signals completion.
type Stage interface {
	Name() string
	Run(files models.Files, meta models.Metadata) error
}

// ArchiveStage writes the date archive of files into meta under "archive".
type ArchiveStage struct {
	builder *Builder
	events  EventLogger

	last models.BuildResult
}

// NewArchiveStage validates opts and returns the stage. events may be nil.
func NewArchiveStage(opts models.ArchiveOptions, logger *log.Logger, events EventLogger) (*ArchiveStage, error) {
	b, err := NewBuilder(opts, logger)
	if err != nil {
		return nil, err
	}
	return &ArchiveStage{builder: b, events: events}, nil
}

// Name implements Stage.
func (s *ArchiveStage) Name() string { return "archive" }

// Run implements Stage. The archive is rebuilt from files on every call.
func (s *ArchiveStage) Run(files models.Files, meta models.Metadata) error {
	if meta == nil {
		return fmt.Errorf("running archive stage: metadata is nil")
	}

	archive, res := s.builder.Build(files)
	meta[models.ArchiveKey] = archive
	meta[models.ArchiveOptionsKey] = s.builder.Options()
	s.last = res

	if s.events != nil {
		opts := s.builder.Options()
		_ = s.events.LogEvent(EventArchiveBuilt, map[string]any{
			"collections": opts.Collections,
			"selected":    res.Selected,
			"archived":    res.Archived,
			"skipped":     res.Skipped,
			"unparseable": res.Unparseable,
			"years":       res.Years,
		}) // Non-fatal: the archive is already in meta.
	}
	return nil
}

// LastResult returns the statistics of the most recent Run.
func (s *ArchiveStage) LastResult() models.BuildResult {
	return s.last
}

// Pipeline runs stages in order against the same record set and metadata.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a Pipeline from stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Use appends a stage.
func (p *Pipeline) Use(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Run executes every stage, stopping at the first error.
func (p *Pipeline) Run(files models.Files, meta models.Metadata) error {
	for _, s := range p.stages {
		if err := s.Run(files, meta); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return nil
}
