package observability

import (
	"fmt"
	"time"
)

// Metrics holds build statistics derived from the event log.
type Metrics struct {
	Builds           int            `json:"builds"`
	FailedBuilds     int            `json:"failed_builds"`
	RecordsLoaded    int            `json:"records_loaded"`
	RecordsArchived  int            `json:"records_archived"`
	RecordsSkipped   int            `json:"records_skipped"`
	RecordsMalformed int            `json:"records_unparseable"`
	LastYears        int            `json:"last_years"`
	ByCollection     map[string]int `json:"by_collection"`
	EventCount       int            `json:"event_count"`
	OldestEvent      *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent      *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates all events since the given time.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{ByCollection: make(map[string]int)}
	m.EventCount = len(events)

	var lastBuild time.Time

	for _, event := range events {
		t := event.Time
		if m.OldestEvent == nil || t.Before(*m.OldestEvent) {
			m.OldestEvent = &t
		}
		if m.NewestEvent == nil || t.After(*m.NewestEvent) {
			newest := t
			m.NewestEvent = &newest
		}

		switch event.Type {
		case TypeArchiveBuilt:
			m.Builds++
			m.RecordsArchived += intField(event.Data, "archived")
			m.RecordsSkipped += intField(event.Data, "skipped")
			m.RecordsMalformed += intField(event.Data, "unparseable")
			if !t.Before(lastBuild) {
				lastBuild = t
				m.LastYears = intField(event.Data, "years")
			}
			for _, c := range stringsField(event.Data, "collections") {
				m.ByCollection[c]++
			}
		case TypeArchiveFailed:
			m.FailedBuilds++
		case TypeContentLoaded:
			m.RecordsLoaded += intField(event.Data, "records")
		}
	}

	return m, nil
}

// intField reads a numeric event field. JSON numbers decode as float64.
func intField(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// stringsField reads a list-of-strings event field. JSON arrays decode as []any.
func stringsField(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
