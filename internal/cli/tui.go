package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gpuvenv/gpuvenv/internal/config"
	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProfileListModel - Interactive profile selection
// =============================================================================

// ProfileListModel is the bubbletea model for picking a provisioning
// profile when several are defined and none was named on the command
// line.
type ProfileListModel struct {
	Names    []string
	Profiles map[string]config.Profile
	Default  string
	Cursor   int
	Selected string
}

// NewProfileListModel creates a profile list model with the cursor on
// the default profile.
func NewProfileListModel(f *config.File) ProfileListModel {
	m := ProfileListModel{
		Names:    f.Names(),
		Profiles: f.Profiles,
		Default:  f.Default,
	}
	for i, name := range m.Names {
		if name == f.Default {
			m.Cursor = i
		}
	}
	return m
}

func (m ProfileListModel) Init() tea.Cmd {
	return nil
}

func (m ProfileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Names)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Names[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ProfileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Profile"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, name := range m.Names {
		p := m.Profiles[name]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		label := name
		if name == m.Default {
			label += " *"
		}

		rows = append(rows, []string{
			cursor,
			label,
			orDefault(p.Purpose, pipeline.DefaultPurpose),
			orDefault(p.Python, pipeline.DefaultPythonVersion),
			orDefault(p.EnvDir, pipeline.DefaultEnvDir),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Profile", "Purpose", "Python", "Env").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Names))))

	return b.String()
}

// pickProfile runs the interactive picker and returns the chosen
// profile name, or "" when the user backed out.
func pickProfile(f *config.File) (string, error) {
	model, err := tea.NewProgram(NewProfileListModel(f)).Run()
	if err != nil {
		return "", err
	}
	if m, ok := model.(ProfileListModel); ok {
		return m.Selected, nil
	}
	return "", nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
