package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sleepreset/internal/calendar"
	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/schedule"
)

type calendarModel struct {
	svc    *schedule.Service
	width  int
	height int

	events []planner.Event
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle    *string
	formStart    *string
	formDuration *string
}

func newCalendarModel(svc *schedule.Service) calendarModel {
	title, start, dur := "", "", ""
	return calendarModel{
		svc:          svc,
		formTitle:    &title,
		formStart:    &start,
		formDuration: &dur,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	events []planner.Event
	err    error
}

func (c calendarModel) refresh() tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		events, err := svc.Snapshot(context.Background())
		return calendarDataMsg{events: events, err: err}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		if msg.err != nil {
			return c, func() tea.Msg { return errStatus("Load events", msg.err) }
		}
		c.events = msg.events
		if c.cursor >= len(c.events) {
			c.cursor = max(0, len(c.events)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.events)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showNewEventForm()
		case key.Matches(msg, keys.Refresh):
			return c, c.refresh()
		}
	}
	return c, nil
}

func (c calendarModel) showNewEventForm() (calendarModel, tea.Cmd) {
	start := c.svc.Now().Add(time.Hour).Truncate(time.Hour)
	*c.formTitle = ""
	*c.formStart = start.Format("2006-01-02 15:04")
	*c.formDuration = strconv.Itoa(int(calendar.DefaultEventDuration.Minutes()))

	loc := c.svc.Location()
	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(c.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewInput().Title("Starts (YYYY-MM-DD HH:MM)").Value(c.formStart).
				Validate(func(s string) error {
					_, err := calendar.ParseStart(s, loc)
					return err
				}),
			huh.NewInput().Title("Duration (min)").Value(c.formDuration).
				Validate(func(s string) error {
					if _, err := parseMinutes(s); err != nil {
						return err
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		c.form = nil
		return c, c.createEvent(*c.formTitle, *c.formStart, *c.formDuration)
	}

	return c, cmd
}

func (c calendarModel) createEvent(title, start, duration string) tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		t, err := calendar.ParseStart(start, svc.Location())
		if err != nil {
			return errStatus("New event", err)
		}
		d, err := parseMinutes(duration)
		if err != nil {
			return errStatus("New event", err)
		}
		ev, err := svc.CreateEvent(context.Background(), title, t, d)
		if err != nil {
			return errStatus("New event", err)
		}
		return eventCreatedMsg{event: ev}
	}
}

// parseMinutes accepts an empty string as "use the default".
func parseMinutes(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("duration must be a number of minutes")
	}
	return time.Duration(n) * time.Minute, nil
}

func (c calendarModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Event")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()),
		)
	}

	days := int(c.svc.Window().Hours() / 24)
	title := titleStyle.Render(fmt.Sprintf("Next %d days", days))

	if len(c.events) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No upcoming events. Press n to add one."),
		))
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-6s %-8s %s", "Day", "Time", "Length", "Title")))

	visible := c.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if c.cursor >= visible {
		start = c.cursor - visible + 1
	}
	end := min(len(c.events), start+visible)

	lastDay := ""
	for i := start; i < end; i++ {
		ev := c.events[i]
		local := ev.Start.In(c.svc.Location())
		day := formatDay(local)
		if day == lastDay {
			day = ""
		} else {
			lastDay = day
		}

		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %-6s %-8s %s",
			cursor, day, formatClock(local), formatSpan(ev.Duration()), ev.Title)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new event  r: refresh  ↑/↓: move"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
