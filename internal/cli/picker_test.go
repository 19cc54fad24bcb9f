package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tarper/pkg/strategy"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStrategyListModel(t *testing.T) {
	all := strategy.Default().All()
	m := NewStrategyListModel(all, "mcts")
	if all[m.Cursor].Name() != "mcts" {
		t.Fatalf("cursor starts on %q, want mcts", all[m.Cursor].Name())
	}

	next, _ := m.Update(key("down"))
	m = next.(StrategyListModel)
	next, _ = m.Update(key("k"))
	m = next.(StrategyListModel)
	next, cmd := m.Update(key("enter"))
	m = next.(StrategyListModel)

	if m.Selected != "mcts" {
		t.Errorf("Selected = %q, want mcts", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestStrategyListModelBounds(t *testing.T) {
	all := strategy.Default().All()
	m := NewStrategyListModel(all, "")

	next, _ := m.Update(key("up"))
	m = next.(StrategyListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first entry: %d", m.Cursor)
	}

	next, _ = m.Update(key("G"))
	m = next.(StrategyListModel)
	next, _ = m.Update(key("down"))
	m = next.(StrategyListModel)
	if m.Cursor != len(all)-1 {
		t.Errorf("cursor = %d, want %d", m.Cursor, len(all)-1)
	}
}

func TestStrategyListModelQuit(t *testing.T) {
	m := NewStrategyListModel(strategy.Default().All(), "mcts")
	next, cmd := m.Update(key("q"))
	if next.(StrategyListModel).Selected != "" {
		t.Error("quitting should not select anything")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestStrategyListModelView(t *testing.T) {
	view := NewStrategyListModel(strategy.Default().All(), "mcts").View()
	for _, want := range []string{"Select Strategy", "mcts", "binsort", "search", "static"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
