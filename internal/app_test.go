package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/valter-silva-au/archivist/internal/cli"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/internal/observability"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveBasePath_ArchivistHomeSet(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("ARCHIVIST_HOME", tmpDir)

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsConfigInParent(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "content", "posts")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(tmpDir, "archivist.yaml"), "log_level: info\n")

	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(subDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARCHIVIST_HOME", "")

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should find archivist.yaml in parent)", got, tmpDir)
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARCHIVIST_HOME", "")

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should fall back to cwd)", got, tmpDir)
	}
}

func TestNewApp_Success(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	if app.Config == nil || app.ConfigMgr == nil || app.Logger == nil {
		t.Fatal("configuration and logging must be wired")
	}
	if app.Loader == nil || app.Store == nil || app.Archive == nil {
		t.Fatal("storage and archive service must be wired")
	}
	if app.EventLog == nil || app.MetricsCalc == nil {
		t.Fatal("observability must be wired")
	}
	if app.Store.Path() != filepath.Join(tmpDir, "archive.yaml") {
		t.Errorf("Store.Path() = %q, want output resolved against the base path", app.Store.Path())
	}

	if cli.ArchiveSvc != app.Archive || cli.Config != app.Config || cli.NewSource == nil {
		t.Error("CLI package variables must be wired")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "archivist.yaml"), "log_level: chatty\n")

	_, err := NewApp(tmpDir)
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected log_level validation error, got %v", err)
	}
}

func TestNewApp_LogLevelFromConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "archivist.yaml"), "log_level: debug\n")

	var logs bytes.Buffer
	app, err := newApp(tmpDir, afero.NewOsFs(), &logs)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer app.Close()

	if app.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("logger level = %v, want debug", app.Logger.GetLevel())
	}
}

func TestNewApp_EventLogDisabledWhenUnwritable(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "archivist.yaml"), "event_log: missing/dir/events.jsonl\n")

	var logs bytes.Buffer
	app, err := newApp(tmpDir, afero.NewOsFs(), &logs)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer app.Close()

	if app.EventLog != nil || app.MetricsCalc != nil {
		t.Error("observability should be disabled when the event log cannot be opened")
	}
	if !strings.Contains(logs.String(), "event log disabled") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestApp_BuildEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "archivist.yaml"), `
output: data/archive.json
archive:
  collections: posts
  month_sort_order: asc
  locale: fr
`)
	writeFile(t, filepath.Join(tmpDir, "content", "posts", "first.md"), "---\ntitle: First\ndate: 2020-01-05\n---\nHello\n")
	writeFile(t, filepath.Join(tmpDir, "content", "posts", "second.md"), "---\ntitle: Second\npublishDate: 2020-03-09\n---\n")
	writeFile(t, filepath.Join(tmpDir, "content", "posts", "undated.md"), "---\ntitle: Undated\n---\n")
	writeFile(t, filepath.Join(tmpDir, "content", "about.md"), "---\ntitle: About\ndate: 2020-01-01\n---\n")

	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	outcome, err := app.Archive.Build(app.Config.Archive)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if outcome.Loaded != 4 || outcome.Result.Archived != 2 || outcome.Result.Skipped != 1 {
		t.Errorf("outcome = loaded %d, result %+v", outcome.Loaded, outcome.Result)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "data", "archive.json")); err != nil {
		t.Fatalf("archive file not written: %v", err)
	}

	current, err := app.Archive.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if len(current) != 1 || current[0].Year != 2020 {
		t.Fatalf("archive years = %+v, want [2020]", current)
	}
	months := current[0].Months
	if len(months) != 2 || months[0].Name != "janvier" || months[1].Name != "mars" {
		t.Errorf("months = %+v, want [janvier mars]", months)
	}

	events, err := app.EventLog.Read(observability.EventFilter{Type: core.EventArchiveBuilt})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 archive.built event, got %d", len(events))
	}
}

func TestEventLogAdapter_FailedBuildsLogAtErrorLevel(t *testing.T) {
	el, err := observability.NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer el.Close()

	adapter := &eventLogAdapter{log: el}
	if err := adapter.LogEvent(core.EventArchiveFailed, map[string]any{"error": "boom"}); err != nil {
		t.Fatal(err)
	}
	if err := adapter.LogEvent(core.EventArchiveBuilt, nil); err != nil {
		t.Fatal(err)
	}

	events, err := el.Read(observability.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Level != observability.LevelError || events[1].Level != observability.LevelInfo {
		t.Errorf("levels = %s/%s, want ERROR/INFO", events[0].Level, events[1].Level)
	}
}

func TestEventTypesMatchMetrics(t *testing.T) {
	pairs := map[string]string{
		core.EventArchiveBuilt:  observability.TypeArchiveBuilt,
		core.EventArchiveFailed: observability.TypeArchiveFailed,
		core.EventContentLoaded: observability.TypeContentLoaded,
	}
	for emitted, counted := range pairs {
		if emitted != counted {
			t.Errorf("core emits %q but metrics count %q", emitted, counted)
		}
	}
}

func TestApp_BuildEventsFeedMetrics(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "content", "posts", "a.md"), "---\ndate: 2021-04-02\n---\n")
	writeFile(t, filepath.Join(tmpDir, "content", "posts", "b.md"), "---\ntitle: undated\n---\n")

	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	if _, err := app.Archive.Build(app.Config.Archive); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	m, err := app.MetricsCalc.Calculate(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if m.Builds != 1 || m.RecordsLoaded != 2 || m.RecordsArchived != 1 || m.RecordsSkipped != 1 || m.LastYears != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestApp_CloseWithoutEventLog(t *testing.T) {
	app := &App{}
	if err := app.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
