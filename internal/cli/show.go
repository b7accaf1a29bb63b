package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/pkg/models"
)

var showYear int

// Tree styles, shared with the browse view.
var (
	yearStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	monthStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	recordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the archive from the last build",
	Long: `Print the archive written by the last 'archivist build' as a tree of
years, months and records. Use --year to print a single year.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ArchiveSvc == nil {
			return fmt.Errorf("archive service not initialized")
		}
		archive, err := ArchiveSvc.Current()
		if err != nil {
			return err
		}
		if showYear != 0 {
			entry, ok := archive.Year(showYear)
			if !ok {
				return fmt.Errorf("year %d is not in the archive", showYear)
			}
			archive = models.Archive{*entry}
		}
		fmt.Fprint(cmd.OutOrStdout(), renderArchiveTree(archive, archiveExtractor()))
		return nil
	},
}

// archiveExtractor resolves dates with the fields the stored archive was
// built with, falling back to the configured fields for older files.
func archiveExtractor() *core.Extractor {
	if ArchiveSvc != nil {
		if opts, err := ArchiveSvc.CurrentOptions(); err == nil && len(opts.DateFields) > 0 {
			return core.NewExtractor(opts.DateFields)
		}
	}
	return configuredExtractor()
}

// configuredExtractor returns the date extractor for the configured fields.
func configuredExtractor() *core.Extractor {
	fields := models.DefaultDateFields
	if Config != nil && len(Config.Archive.DateFields) > 0 {
		fields = Config.Archive.DateFields
	}
	return core.NewExtractor(fields)
}

func renderArchiveTree(archive models.Archive, ex *core.Extractor) string {
	if len(archive) == 0 {
		return "Archive is empty.\n"
	}

	var b strings.Builder
	for i, entry := range archive {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(yearStyle.Render(fmt.Sprintf("%d", entry.Year)))
		b.WriteString(dateStyle.Render(fmt.Sprintf("  %d records", len(entry.Data))))
		b.WriteString("\n")

		if len(entry.Months) == 0 {
			for _, r := range entry.Data {
				b.WriteString(renderRecordLine(r, ex, "  "))
			}
			continue
		}
		for _, m := range entry.Months {
			b.WriteString("  " + monthStyle.Render(m.Name) + dateStyle.Render(fmt.Sprintf(" (%d)", len(m.Data))) + "\n")
			for _, r := range m.Data {
				b.WriteString(renderRecordLine(r, ex, "    "))
			}
		}
	}
	return b.String()
}

func renderRecordLine(r *models.Record, ex *core.Extractor, indent string) string {
	date := "          "
	if t, ok, err := ex.Resolve(r); ok && err == nil {
		date = t.Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s  %s  %s\n", indent, dateStyle.Render(date), recordStyle.Render(r.Title()), keyStyle.Render(r.FileName))
}

func init() {
	showCmd.Flags().IntVar(&showYear, "year", 0, "Only print the given year")
	_ = showCmd.RegisterFlagCompletionFunc("year", completeYears)
	rootCmd.AddCommand(showCmd)
}
