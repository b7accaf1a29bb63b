package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/valter-silva-au/archivist/pkg/models"
)

func TestResolveOptions_Defaults(t *testing.T) {
	opts, err := ResolveOptions(RawOptions{})
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	want := models.DefaultArchiveOptions()
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("ResolveOptions(zero) = %+v, want %+v", opts, want)
	}
}

func TestResolveOptions_StringOrList(t *testing.T) {
	opts, err := ResolveOptions(RawOptions{
		Collections: "rando",
		DateFields:  []any{"published", "date"},
	})
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if !reflect.DeepEqual(opts.Collections, []string{"rando"}) {
		t.Errorf("Collections = %v, want [rando]", opts.Collections)
	}
	if !reflect.DeepEqual(opts.DateFields, []string{"published", "date"}) {
		t.Errorf("DateFields = %v, want [published date]", opts.DateFields)
	}
}

func TestResolveOptions_Overrides(t *testing.T) {
	off := false
	opts, err := ResolveOptions(RawOptions{
		GroupByMonth:   &off,
		ListSortOrder:  "ASC",
		PostSortOrder:  "asc",
		MonthSortOrder: "desc",
		Locale:         " fr ",
	})
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if opts.GroupByMonth {
		t.Error("GroupByMonth should be false")
	}
	if opts.ListSortOrder != models.SortAsc || opts.PostSortOrder != models.SortAsc {
		t.Errorf("sort orders = %q/%q, want asc/asc", opts.ListSortOrder, opts.PostSortOrder)
	}
	if opts.MonthSortOrder != models.SortDesc {
		t.Errorf("MonthSortOrder = %q, want desc", opts.MonthSortOrder)
	}
	if opts.Locale != "fr" {
		t.Errorf("Locale = %q, want fr", opts.Locale)
	}
}

func TestResolveOptions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawOptions
		option string
	}{
		{"numeric collections", RawOptions{Collections: 42}, "collections"},
		{"empty collections list", RawOptions{Collections: []string{}}, "collections"},
		{"non-string element", RawOptions{DateFields: []any{"date", 7}}, "dateFields"},
		{"blank date field", RawOptions{DateFields: []string{"date", ""}}, "dateFields"},
		{"bad list order", RawOptions{ListSortOrder: "up"}, "listSortOrder"},
		{"bad post order", RawOptions{PostSortOrder: "newest"}, "postSortOrder"},
		{"bad month order", RawOptions{MonthSortOrder: "x"}, "monthSortOrder"},
		{"bad locale", RawOptions{Locale: "not a tag"}, "locale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveOptions(tt.raw)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Option != tt.option {
				t.Errorf("Option = %q, want %q", cfgErr.Option, tt.option)
			}
			if !strings.HasPrefix(err.Error(), "options."+tt.option) {
				t.Errorf("error %q should start with options.%s", err, tt.option)
			}
		})
	}
}

func TestNormalizeStringList_CopiesDefault(t *testing.T) {
	def := []string{"posts"}
	got, err := NormalizeStringList("collections", nil, def)
	if err != nil {
		t.Fatalf("NormalizeStringList: %v", err)
	}
	got[0] = "changed"
	if def[0] != "posts" {
		t.Error("NormalizeStringList must not alias the default slice")
	}
}

func TestValidateOptions_ZeroValue(t *testing.T) {
	err := ValidateOptions(models.ArchiveOptions{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for zero options, got %v", err)
	}
}
