package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/pkg/models"
)

var (
	buildSrc          string
	buildCollections  []string
	buildDateFields   []string
	buildGroupByMonth bool
	buildListOrder    string
	buildPostOrder    string
	buildMonthOrder   string
	buildLocale       string
	buildJSON         bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the archive from the content directory",
	Long: `Load every content file under the source directory, group the records of
the configured collections by year (and month), and write the archive to the
metadata file.

Flags override the archive section of archivist.yaml for this run only.
Records without any of the date fields are left out of the archive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ArchiveSvc == nil {
			return fmt.Errorf("archive service not initialized")
		}

		opts, err := buildOptions(cmd)
		if err != nil {
			return err
		}
		if Logger != nil {
			Logger.Debug("building archive", "collections", opts.Collections, "date_fields", opts.DateFields, "src", buildSrc)
		}

		var outcome *core.BuildOutcome
		if cmd.Flags().Changed("src") {
			if NewSource == nil {
				return fmt.Errorf("--src is not supported: no content loader configured")
			}
			outcome, err = ArchiveSvc.BuildFrom(NewSource(buildSrc), opts)
		} else {
			outcome, err = ArchiveSvc.Build(opts)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if buildJSON {
			data, err := json.MarshalIndent(outcome.Result, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting build result as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		printBuildSummary(out, outcome)
		return nil
	},
}

// buildOptions layers changed flags over the configured archive options.
func buildOptions(cmd *cobra.Command) (models.ArchiveOptions, error) {
	base := models.DefaultArchiveOptions()
	if Config != nil {
		base = Config.Archive
	}
	groupByMonth := base.GroupByMonth
	raw := core.RawOptions{
		GroupByMonth:   &groupByMonth,
		ListSortOrder:  string(base.ListSortOrder),
		PostSortOrder:  string(base.PostSortOrder),
		MonthSortOrder: string(base.MonthSortOrder),
		Locale:         base.Locale,
	}
	if len(base.Collections) > 0 {
		raw.Collections = base.Collections
	}
	if len(base.DateFields) > 0 {
		raw.DateFields = base.DateFields
	}

	f := cmd.Flags()
	if f.Changed("collections") {
		raw.Collections = buildCollections
	}
	if f.Changed("date-fields") {
		raw.DateFields = buildDateFields
	}
	if f.Changed("group-by-month") {
		groupByMonth = buildGroupByMonth
	}
	if f.Changed("list-order") {
		raw.ListSortOrder = buildListOrder
	}
	if f.Changed("post-order") {
		raw.PostSortOrder = buildPostOrder
	}
	if f.Changed("month-order") {
		raw.MonthSortOrder = buildMonthOrder
	}
	if f.Changed("locale") {
		raw.Locale = buildLocale
	}

	opts, err := core.ResolveOptions(raw)
	if err != nil {
		return models.ArchiveOptions{}, fmt.Errorf("resolving archive options: %w", err)
	}
	return opts, nil
}

func printBuildSummary(w io.Writer, o *core.BuildOutcome) {
	r := o.Result
	fmt.Fprintf(w, "Archived %d of %d selected records into %d years\n", r.Archived, r.Selected, r.Years)
	fmt.Fprintf(w, "  %-14s %s\n", "Collections:", strings.Join(o.Options.Collections, ", "))
	fmt.Fprintf(w, "  %-14s %d\n", "Loaded:", o.Loaded)
	if r.Skipped > 0 {
		fmt.Fprintf(w, "  %-14s %d\n", "No date:", r.Skipped)
	}
	if r.Unparseable > 0 {
		fmt.Fprintf(w, "  %-14s %d\n", "Bad date:", r.Unparseable)
	}
	for _, e := range o.Archive {
		line := fmt.Sprintf("  %d  %d records", e.Year, len(e.Data))
		if len(e.Months) > 0 {
			names := make([]string, len(e.Months))
			for i, m := range e.Months {
				names[i] = m.Name
			}
			line += " (" + strings.Join(names, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// registerBuildFlags binds the build flags to cmd.
func registerBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&buildSrc, "src", "", "Content directory (overrides source_dir)")
	f.StringSliceVar(&buildCollections, "collections", nil, "Collection key prefixes to archive (e.g. posts,notes)")
	f.StringSliceVar(&buildDateFields, "date-fields", nil, "Front matter fields probed for a date, in order")
	f.BoolVar(&buildGroupByMonth, "group-by-month", true, "Group each year by month")
	f.StringVar(&buildListOrder, "list-order", "", "Year order: asc or desc")
	f.StringVar(&buildPostOrder, "post-order", "", "Record order within a year: asc or desc")
	f.StringVar(&buildMonthOrder, "month-order", "", "Month order within a year: asc or desc")
	f.StringVar(&buildLocale, "locale", "", "Locale for month names (e.g. fr, de-CH)")
	f.BoolVar(&buildJSON, "json", false, "Output the build result as JSON")
	registerBuildCompletions(cmd)
}

func init() {
	registerBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
