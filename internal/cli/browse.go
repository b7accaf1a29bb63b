package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/archivist/internal/core"
	"github.com/valter-silva-au/archivist/pkg/models"
)

type browseModel struct {
	cursor int
	width  int
	height int

	archive   models.Archive
	extractor *core.Extractor

	loading bool
	err     error
}

// archiveLoadedMsg carries the loaded archive back to the model.
type archiveLoadedMsg struct {
	archive   models.Archive
	extractor *core.Extractor
	err       error
}

var (
	browseTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	yearListStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedYearStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	browseHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBrowseModel() browseModel {
	return browseModel{
		loading:   true,
		extractor: configuredExtractor(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return loadArchive
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.archive)-1 {
				m.cursor++
			}
			return m, nil
		case "home", "g":
			m.cursor = 0
			return m, nil
		case "end", "G":
			if len(m.archive) > 0 {
				m.cursor = len(m.archive) - 1
			}
			return m, nil
		case "r":
			m.loading = true
			return m, loadArchive
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case archiveLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.archive = msg.archive
		if msg.extractor != nil {
			m.extractor = msg.extractor
		}
		m.err = nil
		if m.cursor >= len(m.archive) {
			m.cursor = max(len(m.archive)-1, 0)
		}
		return m, nil
	}

	return m, nil
}

func (m browseModel) View() string {
	title := browseTitleStyle.Render(" Archive ")
	help := browseHelpStyle.Render("↑/↓: year | r: reload | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading archive...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}
	if len(m.archive) == 0 {
		return fmt.Sprintf("%s\n\n  Archive is empty.\n\n%s", title, help)
	}

	var years strings.Builder
	for i, e := range m.archive {
		label := fmt.Sprintf("%d (%d)", e.Year, len(e.Data))
		if i == m.cursor {
			years.WriteString(selectedYearStyle.Render("> " + label))
		} else {
			years.WriteString("  " + label)
		}
		if i < len(m.archive)-1 {
			years.WriteString("\n")
		}
	}

	title = browseTitleStyle.Render(fmt.Sprintf(" Archive · %d ", m.selectedYear()))
	detail := renderArchiveTree(models.Archive{m.archive[m.cursor]}, m.extractor)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		yearListStyle.Render(years.String()),
		detailStyle.Render(strings.TrimRight(detail, "\n")),
	)
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

// selectedYear returns the year under the cursor, or 0 when there is none.
func (m browseModel) selectedYear() int {
	if m.cursor < 0 || m.cursor >= len(m.archive) {
		return 0
	}
	return m.archive[m.cursor].Year
}

func loadArchive() tea.Msg {
	if ArchiveSvc == nil {
		return archiveLoadedMsg{err: fmt.Errorf("archive service not initialized")}
	}
	a, err := ArchiveSvc.Current()
	if err != nil {
		return archiveLoadedMsg{err: err}
	}
	return archiveLoadedMsg{archive: a, extractor: archiveExtractor()}
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse the archive",
	Long: `Open an interactive terminal view of the archive written by the last
build. Move between years with the arrow keys, reload with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ArchiveSvc == nil {
			return fmt.Errorf("archive service not initialized")
		}
		p := tea.NewProgram(newBrowseModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
