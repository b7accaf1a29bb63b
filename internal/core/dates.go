package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// DateField reads one candidate date value from a record.
type DateField interface {
	Name() string
	Lookup(r *models.Record) (any, bool)
}

type frontMatterField string

func (f frontMatterField) Name() string { return string(f) }

func (f frontMatterField) Lookup(r *models.Record) (any, bool) {
	return r.Field(string(f))
}

// FieldAccessor returns a DateField reading the named front matter key.
func FieldAccessor(name string) DateField {
	return frontMatterField(name)
}

// Extractor resolves the representative date of a record by scanning its
// date fields in order and taking the first non-empty one.
type Extractor struct {
	fields []DateField
}

// NewExtractor creates an Extractor probing the named front matter keys.
func NewExtractor(names []string) *Extractor {
	fields := make([]DateField, len(names))
	for i, n := range names {
		fields[i] = FieldAccessor(n)
	}
	return &Extractor{fields: fields}
}

// NewExtractorWithFields creates an Extractor over explicit accessors.
func NewExtractorWithFields(fields ...DateField) *Extractor {
	return &Extractor{fields: fields}
}

// Representative returns the first non-empty date value of r and the name of
// the field that supplied it.
func (e *Extractor) Representative(r *models.Record) (any, string, bool) {
	if r == nil {
		return nil, "", false
	}
	for _, f := range e.fields {
		v, ok := f.Lookup(r)
		if ok && !isEmptyValue(v) {
			return v, f.Name(), true
		}
	}
	return nil, "", false
}

// Resolve returns the representative date of r in UTC. ok is false when no
// field is populated; err is set when the value found does not parse.
func (e *Extractor) Resolve(r *models.Record) (t time.Time, ok bool, err error) {
	v, field, found := e.Representative(r)
	if !found {
		return time.Time{}, false, nil
	}
	t, err = ParseDate(v)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("field %s: %w", field, err)
	}
	return t, true, nil
}

// ParseDate converts a front matter value into a UTC time. Strings without a
// zone are read as UTC; numbers are Unix milliseconds.
func ParseDate(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case *time.Time:
		if val == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return val.UTC(), nil
	case string:
		t, err := dateparse.ParseIn(strings.TrimSpace(val), time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date %q: %w", val, err)
		}
		return t.UTC(), nil
	case int:
		return unixMilli(float64(val))
	case int64:
		return unixMilli(float64(val))
	case uint64:
		return unixMilli(float64(val))
	case float64:
		return unixMilli(val)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

// maxUnixMillis bounds numeric timestamps to +-100,000,000 days around the
// epoch, the range of an ECMAScript Date.
const maxUnixMillis = 8.64e15

func unixMilli(ms float64) (time.Time, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("timestamp %v is not finite", ms)
	}
	if math.Abs(ms) > maxUnixMillis {
		return time.Time{}, fmt.Errorf("timestamp %v out of range", ms)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

// isEmptyValue mirrors "not populated" for front matter values.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case uint64:
		return val == 0
	case float64:
		return val == 0 || math.IsNaN(val)
	case time.Time:
		return val.IsZero()
	case *time.Time:
		return val == nil || val.IsZero()
	}
	return false
}
