package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/schedule"
)

type searchModel struct {
	svc    *schedule.Service
	width  int
	height int

	input   textinput.Model
	query   string
	results []planner.Event
	cursor  int
}

func newSearchModel(svc *schedule.Service) searchModel {
	ti := textinput.New()
	ti.Placeholder = "Search events"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	return searchModel{svc: svc, input: ti}
}

func (s *searchModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.input.Width = max(10, w-12)
}

// typing reports whether the text input owns the keyboard.
func (s searchModel) typing() bool {
	return s.input.Focused()
}

func (s *searchModel) focus() tea.Cmd {
	return s.input.Focus()
}

type searchResultsMsg struct {
	query   string
	results []planner.Event
	err     error
}

func (s searchModel) run(query string) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		res, err := svc.Search(context.Background(), query)
		return searchResultsMsg{query: query, results: res, err: err}
	}
}

func (s searchModel) update(msg tea.Msg) (searchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		// Drop results for a query the user has already typed past.
		if msg.query != s.query {
			return s, nil
		}
		if msg.err != nil {
			return s, func() tea.Msg { return errStatus("Search", msg.err) }
		}
		s.results = msg.results
		if s.cursor >= len(s.results) {
			s.cursor = max(0, len(s.results)-1)
		}
		return s, nil

	case tea.KeyMsg:
		if s.typing() {
			switch msg.String() {
			case "esc", "enter":
				s.input.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			if q := s.input.Value(); q != s.query {
				s.query = q
				return s, tea.Batch(cmd, s.run(q))
			}
			return s, cmd
		}

		switch {
		case key.Matches(msg, keys.Search), key.Matches(msg, keys.Enter):
			cmd := s.focus()
			return s, cmd
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Down):
			if s.cursor < len(s.results)-1 {
				s.cursor++
			}
		}
	}
	return s, nil
}

func (s searchModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Search")

	rows := []string{title, "", s.input.View(), ""}

	switch {
	case strings.TrimSpace(s.query) == "":
		rows = append(rows, mutedStyle.Render("Type to filter upcoming events by title."))
	case len(s.results) == 0:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("Nothing matches %q.", s.query)))
	default:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("Searching for: %s (%d)", s.query, len(s.results))))
		for i, ev := range s.results {
			cursor := "  "
			style := normalItemStyle
			if i == s.cursor && !s.typing() {
				cursor = "> "
				style = selectedItemStyle
			}
			local := ev.Start.In(s.svc.Location())
			rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %-6s %s",
				cursor, formatDay(local), formatClock(local), ev.Title)))
		}
	}

	rows = append(rows, "")
	if s.typing() {
		rows = append(rows, mutedStyle.Render("  enter/esc: done"))
	} else {
		rows = append(rows, mutedStyle.Render("  /: edit query  ↑/↓: move"))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
