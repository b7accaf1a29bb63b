package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// ConfigError reports an archive option that cannot be used. It is always
// returned before any record is processed.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("options.%s %s", e.Option, e.Reason)
}

// RawOptions carries archive options as a host supplies them: collections and
// date fields may be a single string or a list. Zero values mean "default".
type RawOptions struct {
	Collections    any
	DateFields     any
	GroupByMonth   *bool
	ListSortOrder  string
	PostSortOrder  string
	MonthSortOrder string
	Locale         string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ResolveOptions applies defaults to raw, normalizes string-or-list values and
// validates the result.
func ResolveOptions(raw RawOptions) (models.ArchiveOptions, error) {
	opts := models.DefaultArchiveOptions()

	collections, err := NormalizeStringList("collections", raw.Collections, models.DefaultCollections)
	if err != nil {
		return models.ArchiveOptions{}, err
	}
	dateFields, err := NormalizeStringList("dateFields", raw.DateFields, models.DefaultDateFields)
	if err != nil {
		return models.ArchiveOptions{}, err
	}
	opts.Collections = collections
	opts.DateFields = dateFields

	if raw.GroupByMonth != nil {
		opts.GroupByMonth = *raw.GroupByMonth
	}
	if raw.ListSortOrder != "" {
		opts.ListSortOrder = models.SortOrder(strings.ToLower(raw.ListSortOrder))
	}
	if raw.PostSortOrder != "" {
		opts.PostSortOrder = models.SortOrder(strings.ToLower(raw.PostSortOrder))
	}
	if raw.MonthSortOrder != "" {
		opts.MonthSortOrder = models.SortOrder(strings.ToLower(raw.MonthSortOrder))
	}
	opts.Locale = strings.TrimSpace(raw.Locale)

	if err := ValidateOptions(opts); err != nil {
		return models.ArchiveOptions{}, err
	}
	return opts, nil
}

// NormalizeStringList turns a string-or-list option into a list. nil and the
// empty string select def; any other non-string, non-list value is an error.
func NormalizeStringList(option string, v any, def []string) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return append([]string(nil), def...), nil
	case string:
		if val == "" {
			return append([]string(nil), def...), nil
		}
		return []string{val}, nil
	case []string:
		return checkStringList(option, val)
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &ConfigError{Option: option, Reason: fmt.Sprintf("element %d must be a string, got %T", i, item)}
			}
			out = append(out, s)
		}
		return checkStringList(option, out)
	default:
		return nil, &ConfigError{Option: option, Reason: fmt.Sprintf("must be a string or an array of strings, got %T", v)}
	}
}

func checkStringList(option string, list []string) ([]string, error) {
	if len(list) == 0 {
		return nil, &ConfigError{Option: option, Reason: "must not be empty"}
	}
	for i, s := range list {
		if strings.TrimSpace(s) == "" {
			return nil, &ConfigError{Option: option, Reason: fmt.Sprintf("element %d must not be empty", i)}
		}
	}
	return append([]string(nil), list...), nil
}

// ValidateOptions checks resolved options using their validate struct tags.
func ValidateOptions(opts models.ArchiveOptions) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating archive options: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return &ConfigError{
		Option: strings.ToLower(verrs[0].Field()[:1]) + verrs[0].Field()[1:],
		Reason: "is invalid:\n  - " + strings.Join(msgs, "\n  - "),
	}
}
