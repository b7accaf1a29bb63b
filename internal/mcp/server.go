// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the archive as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/internal/observability"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// Server wraps archivist services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	archive     core.ArchiveService
	config      *models.GlobalConfig
	extractor   *core.Extractor // for archives stored without their options
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server. cfg supplies the default archive
// options; metricsCalc may be nil if observability is disabled.
func NewServer(archive core.ArchiveService, cfg *models.GlobalConfig, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = core.DefaultGlobalConfig()
	}

	s := &Server{
		archive:     archive,
		config:      cfg,
		extractor:   core.NewExtractor(cfg.Archive.DateFields),
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "archivist", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type buildArchiveInput struct {
	Collections    []string `json:"collections,omitempty" jsonschema:"collection key prefixes to archive, e.g. posts"`
	DateFields     []string `json:"date_fields,omitempty" jsonschema:"front matter fields probed for a date, in order"`
	GroupByMonth   *bool    `json:"group_by_month,omitempty" jsonschema:"group each year by month (default true)"`
	ListSortOrder  string   `json:"list_sort_order,omitempty" jsonschema:"year order: asc or desc"`
	PostSortOrder  string   `json:"post_sort_order,omitempty" jsonschema:"record order within a year: asc or desc"`
	MonthSortOrder string   `json:"month_sort_order,omitempty" jsonschema:"month order within a year: asc or desc"`
	Locale         string   `json:"locale,omitempty" jsonschema:"locale for month names, e.g. fr"`
}

type monthSummary struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}

type yearSummary struct {
	Year    int            `json:"year"`
	Records int            `json:"records"`
	Months  []monthSummary `json:"months,omitempty"`
}

type buildArchiveOutput struct {
	Loaded      int           `json:"loaded"`
	Selected    int           `json:"selected"`
	Archived    int           `json:"archived"`
	Skipped     int           `json:"skipped"`
	Unparseable int           `json:"unparseable"`
	Years       []yearSummary `json:"years"`
}

type getArchiveInput struct {
	Year int `json:"year,omitempty" jsonschema:"only return this year"`
}

type recordOutput struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
}

type monthOutput struct {
	Name    string         `json:"name"`
	Month   int            `json:"month"`
	Records []recordOutput `json:"records"`
}

type yearOutput struct {
	Year    int            `json:"year"`
	Records []recordOutput `json:"records"`
	Months  []monthOutput  `json:"months,omitempty"`
}

type getArchiveOutput struct {
	Years []yearOutput `json:"years"`
	Count int          `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Builds             int            `json:"builds"`
	FailedBuilds       int            `json:"failed_builds"`
	RecordsLoaded      int            `json:"records_loaded"`
	RecordsArchived    int            `json:"records_archived"`
	RecordsSkipped     int            `json:"records_skipped"`
	RecordsUnparseable int            `json:"records_unparseable"`
	LastYears          int            `json:"last_years"`
	ByCollection       map[string]int `json:"by_collection"`
	EventCount         int            `json:"event_count"`
	OldestEvent        string         `json:"oldest_event,omitempty"`
	NewestEvent        string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "build_archive",
		Description: "Rebuild the year/month archive from the content directory. Options override the configured archive settings for this build.",
	}, s.handleBuildArchive)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_archive",
		Description: "Return the archive from the last build, optionally limited to one year. Each record has its key, title and date.",
	}, s.handleGetArchive)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get build statistics from the event log: builds, records archived, and records left out for missing or bad dates.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleBuildArchive(_ context.Context, _ *gomcp.CallToolRequest, input buildArchiveInput) (*gomcp.CallToolResult, buildArchiveOutput, error) {
	opts, err := s.resolveOptions(input)
	if err != nil {
		return errorResult(err.Error()), buildArchiveOutput{}, nil
	}

	outcome, err := s.archive.Build(opts)
	if err != nil {
		return errorResult(err.Error()), buildArchiveOutput{}, nil
	}

	out := buildArchiveOutput{
		Loaded:      outcome.Loaded,
		Selected:    outcome.Result.Selected,
		Archived:    outcome.Result.Archived,
		Skipped:     outcome.Result.Skipped,
		Unparseable: outcome.Result.Unparseable,
		Years:       make([]yearSummary, 0, len(outcome.Archive)),
	}
	for _, e := range outcome.Archive {
		ys := yearSummary{Year: e.Year, Records: len(e.Data)}
		for _, m := range e.Months {
			ys.Months = append(ys.Months, monthSummary{Name: m.Name, Records: len(m.Data)})
		}
		out.Years = append(out.Years, ys)
	}
	return nil, out, nil
}

func (s *Server) handleGetArchive(_ context.Context, _ *gomcp.CallToolRequest, input getArchiveInput) (*gomcp.CallToolResult, getArchiveOutput, error) {
	archive, err := s.archive.Current()
	if err != nil {
		return errorResult(err.Error()), getArchiveOutput{}, nil
	}

	if input.Year != 0 {
		entry, ok := archive.Year(input.Year)
		if !ok {
			return errorResult(fmt.Sprintf("year %d is not in the archive", input.Year)), getArchiveOutput{}, nil
		}
		archive = models.Archive{*entry}
	}

	ex := s.extractor
	if opts, err := s.archive.CurrentOptions(); err == nil && len(opts.DateFields) > 0 {
		ex = core.NewExtractor(opts.DateFields)
	}

	out := getArchiveOutput{
		Years: make([]yearOutput, len(archive)),
		Count: len(archive),
	}
	for i, e := range archive {
		yo := yearOutput{Year: e.Year, Records: recordsToOutput(e.Data, ex)}
		for _, m := range e.Months {
			yo.Months = append(yo.Months, monthOutput{
				Name:    m.Name,
				Month:   int(m.Month),
				Records: recordsToOutput(m.Data, ex),
			})
		}
		out.Years[i] = yo
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		Builds:             metrics.Builds,
		FailedBuilds:       metrics.FailedBuilds,
		RecordsLoaded:      metrics.RecordsLoaded,
		RecordsArchived:    metrics.RecordsArchived,
		RecordsSkipped:     metrics.RecordsSkipped,
		RecordsUnparseable: metrics.RecordsMalformed,
		LastYears:          metrics.LastYears,
		ByCollection:       metrics.ByCollection,
		EventCount:         metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// resolveOptions layers the tool input over the configured archive options.
func (s *Server) resolveOptions(in buildArchiveInput) (models.ArchiveOptions, error) {
	base := s.config.Archive
	groupByMonth := base.GroupByMonth
	if in.GroupByMonth != nil {
		groupByMonth = *in.GroupByMonth
	}
	raw := core.RawOptions{
		GroupByMonth:   &groupByMonth,
		ListSortOrder:  firstNonEmpty(in.ListSortOrder, string(base.ListSortOrder)),
		PostSortOrder:  firstNonEmpty(in.PostSortOrder, string(base.PostSortOrder)),
		MonthSortOrder: firstNonEmpty(in.MonthSortOrder, string(base.MonthSortOrder)),
		Locale:         firstNonEmpty(in.Locale, base.Locale),
	}
	if len(base.Collections) > 0 {
		raw.Collections = base.Collections
	}
	if len(in.Collections) > 0 {
		raw.Collections = in.Collections
	}
	if len(base.DateFields) > 0 {
		raw.DateFields = base.DateFields
	}
	if len(in.DateFields) > 0 {
		raw.DateFields = in.DateFields
	}
	return core.ResolveOptions(raw)
}

func recordsToOutput(records []*models.Record, ex *core.Extractor) []recordOutput {
	out := make([]recordOutput, len(records))
	for i, r := range records {
		ro := recordOutput{Key: r.FileName, Title: r.Title()}
		if ro.Key == "" {
			ro.Key = r.Key
		}
		if t, ok, err := ex.Resolve(r); ok && err == nil {
			ro.Date = t.Format(time.RFC3339)
		}
		out[i] = ro
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{ByCollection: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
