package models

import "time"

// SortOrder selects ascending or descending ordering for a sort pass.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ArchiveKey is the metadata key the archive stage writes its result under.
const ArchiveKey = "archive"

// ArchiveOptionsKey holds the options the stored archive was built with.
const ArchiveOptionsKey = "archive_options"

// MonthGroup holds the records of one calendar month within a year.
type MonthGroup struct {
	Name  string     `yaml:"name" json:"name"`
	Month time.Month `yaml:"month" json:"month"`
	Data  []*Record  `yaml:"data" json:"data"`
}

// ArchiveEntry holds one calendar year's worth of records.
type ArchiveEntry struct {
	Year   int          `yaml:"year" json:"year"`
	Data   []*Record    `yaml:"data" json:"data"`
	Months []MonthGroup `yaml:"months,omitempty" json:"months,omitempty"`
}

// Archive is the ordered sequence of year groups.
type Archive []ArchiveEntry

// Year returns the entry for the given year, if present.
func (a Archive) Year(year int) (*ArchiveEntry, bool) {
	for i := range a {
		if a[i].Year == year {
			return &a[i], true
		}
	}
	return nil, false
}

// Len returns the total number of records across all years.
func (a Archive) Len() int {
	n := 0
	for _, e := range a {
		n += len(e.Data)
	}
	return n
}

// Metadata is the shared, mutable metadata map owned by the host pipeline.
type Metadata map[string]any

// Archive returns the archive stored under ArchiveKey, if any.
func (m Metadata) Archive() (Archive, bool) {
	a, ok := m[ArchiveKey].(Archive)
	return a, ok
}

// ArchiveOptions returns the options stored under ArchiveOptionsKey, if any.
func (m Metadata) ArchiveOptions() (ArchiveOptions, bool) {
	o, ok := m[ArchiveOptionsKey].(ArchiveOptions)
	return o, ok
}

// BuildResult summarises one archive build.
type BuildResult struct {
	Selected    int `yaml:"selected" json:"selected"`
	Archived    int `yaml:"archived" json:"archived"`
	Skipped     int `yaml:"skipped" json:"skipped"`
	Unparseable int `yaml:"unparseable" json:"unparseable"`
	Years       int `yaml:"years" json:"years"`
}
