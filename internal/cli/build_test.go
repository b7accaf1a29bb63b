package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// --- Fakes ---

type fakeSource struct {
	files models.Files
}

func (f *fakeSource) Load() (models.Files, error) {
	return f.files, nil
}

// fakeArchiveSvc builds with the real Builder and keeps the last archive.
type fakeArchiveSvc struct {
	source   *fakeSource
	current  models.Archive
	lastOpts models.ArchiveOptions
	usedFrom core.RecordSource
}

func (f *fakeArchiveSvc) Build(opts models.ArchiveOptions) (*core.BuildOutcome, error) {
	return f.BuildFrom(f.source, opts)
}

func (f *fakeArchiveSvc) BuildFrom(source core.RecordSource, opts models.ArchiveOptions) (*core.BuildOutcome, error) {
	f.lastOpts = opts
	f.usedFrom = source
	b, err := core.NewBuilder(opts, nil)
	if err != nil {
		return nil, err
	}
	files, err := source.Load()
	if err != nil {
		return nil, err
	}
	archive, res := b.Build(files)
	f.current = archive
	return &core.BuildOutcome{Options: opts, Loaded: len(files), Result: res, Archive: archive}, nil
}

func (f *fakeArchiveSvc) Current() (models.Archive, error) {
	if f.current == nil {
		return nil, errors.New("reading archive: no archive found; run 'archivist build' first")
	}
	return f.current, nil
}

func (f *fakeArchiveSvc) CurrentOptions() (models.ArchiveOptions, error) {
	if f.current == nil {
		return models.ArchiveOptions{}, errors.New("reading archive options: none recorded")
	}
	return f.lastOpts, nil
}

// --- Helpers ---

func sampleSource() *fakeSource {
	rec := func(key, date string) *models.Record {
		return models.NewRecord(key, map[string]any{"title": strings.ToUpper(key[6:7]), "date": date})
	}
	return &fakeSource{files: models.Files{
		"posts/a.md": rec("posts/a.md", "2020-03-01"),
		"posts/b.md": rec("posts/b.md", "2019-07-04"),
		"posts/c.md": models.NewRecord("posts/c.md", nil),
		"pages/x.md": rec("pages/x.md", "2020-01-01"),
	}}
}

// newBuildTestCmd returns a build command with fresh flag state.
func newBuildTestCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "build", RunE: buildCmd.RunE}
	registerBuildFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func withArchiveSvc(t *testing.T, svc core.ArchiveService, cfg *models.GlobalConfig) {
	t.Helper()
	origSvc, origCfg, origSource := ArchiveSvc, Config, NewSource
	t.Cleanup(func() {
		ArchiveSvc, Config, NewSource = origSvc, origCfg, origSource
	})
	ArchiveSvc = svc
	Config = cfg
}

// --- buildOptions tests ---

func TestBuildOptions_UsesConfig(t *testing.T) {
	cfg := core.DefaultGlobalConfig()
	cfg.Archive.Collections = []string{"notes"}
	cfg.Archive.PostSortOrder = models.SortAsc
	withArchiveSvc(t, nil, cfg)

	cmd, _ := newBuildTestCmd(t)
	opts, err := buildOptions(cmd)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if len(opts.Collections) != 1 || opts.Collections[0] != "notes" {
		t.Errorf("Collections = %v, want [notes]", opts.Collections)
	}
	if opts.PostSortOrder != models.SortAsc {
		t.Errorf("PostSortOrder = %q, want asc", opts.PostSortOrder)
	}
	if !opts.GroupByMonth {
		t.Error("GroupByMonth should come from config (true)")
	}
}

func TestBuildOptions_FlagsOverrideConfig(t *testing.T) {
	withArchiveSvc(t, nil, core.DefaultGlobalConfig())

	cmd, _ := newBuildTestCmd(t,
		"--collections", "posts,notes",
		"--date-fields", "published",
		"--group-by-month=false",
		"--list-order", "asc",
		"--month-order", "asc",
		"--locale", "fr",
	)
	opts, err := buildOptions(cmd)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if strings.Join(opts.Collections, ",") != "posts,notes" {
		t.Errorf("Collections = %v", opts.Collections)
	}
	if strings.Join(opts.DateFields, ",") != "published" {
		t.Errorf("DateFields = %v", opts.DateFields)
	}
	if opts.GroupByMonth {
		t.Error("GroupByMonth should be false")
	}
	if opts.ListSortOrder != models.SortAsc || opts.MonthSortOrder != models.SortAsc {
		t.Errorf("orders = %q/%q, want asc/asc", opts.ListSortOrder, opts.MonthSortOrder)
	}
	if opts.PostSortOrder != models.SortDesc {
		t.Errorf("PostSortOrder = %q, want desc", opts.PostSortOrder)
	}
	if opts.Locale != "fr" {
		t.Errorf("Locale = %q, want fr", opts.Locale)
	}
}

func TestBuildOptions_NilConfigUsesDefaults(t *testing.T) {
	withArchiveSvc(t, nil, nil)

	cmd, _ := newBuildTestCmd(t)
	opts, err := buildOptions(cmd)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if strings.Join(opts.Collections, ",") != "posts" {
		t.Errorf("Collections = %v, want [posts]", opts.Collections)
	}
}

func TestBuildOptions_InvalidOrder(t *testing.T) {
	withArchiveSvc(t, nil, core.DefaultGlobalConfig())

	cmd, _ := newBuildTestCmd(t, "--post-order", "sideways")
	_, err := buildOptions(cmd)
	if err == nil || !strings.Contains(err.Error(), "postSortOrder") {
		t.Fatalf("expected postSortOrder error, got %v", err)
	}
}

// --- buildCmd tests ---

func TestBuildCmd_PrintsSummary(t *testing.T) {
	svc := &fakeArchiveSvc{source: sampleSource()}
	withArchiveSvc(t, svc, core.DefaultGlobalConfig())

	cmd, out := newBuildTestCmd(t)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Archived 2 of 3 selected records into 2 years",
		"Collections:   posts",
		"Loaded:        4",
		"No date:       1",
		"2020  1 records (March)",
		"2019  1 records (July)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Bad date:") {
		t.Errorf("Bad date line should be omitted when zero:\n%s", got)
	}
}

func TestBuildCmd_JSON(t *testing.T) {
	svc := &fakeArchiveSvc{source: sampleSource()}
	withArchiveSvc(t, svc, core.DefaultGlobalConfig())

	cmd, out := newBuildTestCmd(t, "--json")
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	var res models.BuildResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if res.Archived != 2 || res.Skipped != 1 || res.Years != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestBuildCmd_SrcOverride(t *testing.T) {
	svc := &fakeArchiveSvc{source: &fakeSource{}}
	withArchiveSvc(t, svc, core.DefaultGlobalConfig())

	var gotDir string
	other := sampleSource()
	NewSource = func(dir string) core.RecordSource {
		gotDir = dir
		return other
	}

	cmd, _ := newBuildTestCmd(t, "--src", "elsewhere")
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotDir != "elsewhere" {
		t.Errorf("NewSource dir = %q, want elsewhere", gotDir)
	}
	if svc.usedFrom != other {
		t.Error("build should read from the --src source")
	}
}

func TestBuildCmd_SrcWithoutLoader(t *testing.T) {
	withArchiveSvc(t, &fakeArchiveSvc{source: &fakeSource{}}, core.DefaultGlobalConfig())
	NewSource = nil

	cmd, _ := newBuildTestCmd(t, "--src", "elsewhere")
	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatal("expected error when no content loader is configured")
	}
}

func TestBuildCmd_LogsResolvedOptions(t *testing.T) {
	withArchiveSvc(t, &fakeArchiveSvc{source: sampleSource()}, core.DefaultGlobalConfig())

	var logs bytes.Buffer
	origLogger := Logger
	t.Cleanup(func() { Logger = origLogger })
	Logger = log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	cmd, _ := newBuildTestCmd(t, "--date-fields", "released")
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if got := logs.String(); !strings.Contains(got, "building archive") || !strings.Contains(got, "released") {
		t.Errorf("expected a debug line with the date fields, got %q", got)
	}
}

func TestBuildCmd_NilService(t *testing.T) {
	withArchiveSvc(t, nil, core.DefaultGlobalConfig())

	cmd, _ := newBuildTestCmd(t)
	err := cmd.RunE(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}
