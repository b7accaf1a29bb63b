package models

// ArchiveOptions holds the resolved options of the archive stage.
type ArchiveOptions struct {
	Collections    []string  `yaml:"collections" json:"collections" mapstructure:"collections" validate:"required,min=1,dive,required"`
	DateFields     []string  `yaml:"date_fields" json:"date_fields" mapstructure:"date_fields" validate:"required,min=1,dive,required"`
	GroupByMonth   bool      `yaml:"group_by_month" json:"group_by_month" mapstructure:"group_by_month"`
	ListSortOrder  SortOrder `yaml:"list_sort_order" json:"list_sort_order" mapstructure:"list_sort_order" validate:"required,oneof=asc desc"`
	PostSortOrder  SortOrder `yaml:"post_sort_order" json:"post_sort_order" mapstructure:"post_sort_order" validate:"required,oneof=asc desc"`
	MonthSortOrder SortOrder `yaml:"month_sort_order" json:"month_sort_order" mapstructure:"month_sort_order" validate:"required,oneof=asc desc"`
	Locale         string    `yaml:"locale,omitempty" json:"locale,omitempty" mapstructure:"locale" validate:"omitempty,bcp47_language_tag"`
}

// DefaultCollections is used when no collections are configured.
var DefaultCollections = []string{"posts"}

// DefaultDateFields is used when no date fields are configured.
var DefaultDateFields = []string{"publishDate", "modifiedDate", "date"}

// DefaultArchiveOptions returns the options used when nothing is configured.
func DefaultArchiveOptions() ArchiveOptions {
	return ArchiveOptions{
		Collections:    append([]string(nil), DefaultCollections...),
		DateFields:     append([]string(nil), DefaultDateFields...),
		GroupByMonth:   true,
		ListSortOrder:  SortDesc,
		PostSortOrder:  SortDesc,
		MonthSortOrder: SortDesc,
	}
}

// GlobalConfig holds settings read from archivist.yaml via Viper.
type GlobalConfig struct {
	SourceDir string         `yaml:"source_dir" mapstructure:"source_dir"`
	Output    string         `yaml:"output" mapstructure:"output"`
	EventLog  string         `yaml:"event_log" mapstructure:"event_log"`
	LogLevel  string         `yaml:"log_level" mapstructure:"log_level"`
	Archive   ArchiveOptions `yaml:"archive" mapstructure:"archive"`
}
