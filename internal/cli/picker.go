package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tarper/pkg/pipeline"
	"github.com/matzehuels/tarper/pkg/strategy"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// StrategyListModel - Interactive strategy selection
// =============================================================================

// StrategyListModel is the bubbletea model for picking a strategy.
type StrategyListModel struct {
	Strategies []strategy.Strategy
	Cursor     int
	Selected   string
}

// NewStrategyListModel creates a list with the cursor on the default strategy.
func NewStrategyListModel(strategies []strategy.Strategy, initial string) StrategyListModel {
	m := StrategyListModel{Strategies: strategies}
	for i, s := range strategies {
		if s.Name() == initial {
			m.Cursor = i
		}
	}
	return m
}

func (m StrategyListModel) Init() tea.Cmd {
	return nil
}

func (m StrategyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Strategies)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(m.Strategies) - 1
		case "enter":
			if len(m.Strategies) > 0 {
				m.Selected = m.Strategies[m.Cursor].Name()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m StrategyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Strategy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, s := range m.Strategies {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		kind := "static"
		if s.Evaluates() {
			kind = "search"
		}
		line := fmt.Sprintf("%s%-28s %-7s", cursor, s.Name(), kind)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString(" " + listDimStyle.Render(s.Describe()))
		b.WriteString("\n")
	}
	return b.String()
}

// pickStrategy runs the picker and returns the chosen name, or "" when the
// user quit without choosing.
func pickStrategy(catalog *strategy.Catalog) (string, error) {
	model := NewStrategyListModel(catalog.All(), pipeline.DefaultStrategy)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", fmt.Errorf("strategy picker: %w", err)
	}
	return final.(StrategyListModel).Selected, nil
}
