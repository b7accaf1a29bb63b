package core

import (
	"regexp"
	"sort"
	"strings"

	"github.com/valter-silva-au/archivist/pkg/models"
)

// Selector picks the records whose key starts with one of the configured
// collection prefixes.
type Selector struct {
	prefixes []string
	pattern  *regexp.Regexp
}

// NewSelector compiles prefixes into a single anchored alternation. Each
// prefix is matched literally.
func NewSelector(prefixes []string) (*Selector, error) {
	list, err := checkStringList("collections", prefixes)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(list))
	for i, p := range list {
		quoted[i] = regexp.QuoteMeta(p)
	}
	pattern, err := regexp.Compile("^(" + strings.Join(quoted, "|") + ")")
	if err != nil {
		return nil, &ConfigError{Option: "collections", Reason: err.Error()}
	}
	return &Selector{prefixes: list, pattern: pattern}, nil
}

// Prefixes returns the configured collection prefixes.
func (s *Selector) Prefixes() []string {
	return append([]string(nil), s.prefixes...)
}

// Match reports whether key belongs to a configured collection.
func (s *Selector) Match(key string) bool {
	return s.pattern.MatchString(key)
}

// Select returns the matching records ordered by key.
func (s *Selector) Select(files models.Files) []*models.Record {
	keys := make([]string, 0, len(files))
	for key := range files {
		if s.Match(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	selected := make([]*models.Record, 0, len(keys))
	for _, key := range keys {
		r := files[key]
		if r == nil {
			continue
		}
		// The map key is authoritative for identity.
		if r.Key != key {
			r = &models.Record{Key: key, Fields: r.Fields, Body: r.Body}
		}
		selected = append(selected, r)
	}
	return selected
}
