package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/schedule"
	"github.com/sadopc/sleepreset/internal/store"
)

const outlookNights = 7

type sleepModel struct {
	svc    *schedule.Service
	width  int
	height int

	prefs   store.Preferences
	rec     planner.Recommendation
	loaded  bool
	nights  []planner.Night
	lastErr error

	chart barchart.Model
}

func newSleepModel(svc *schedule.Service) sleepModel {
	return sleepModel{
		svc:   svc,
		prefs: store.DefaultPreferences(),
		chart: barchart.New(60, 10),
	}
}

func (m *sleepModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

type sleepDataMsg struct {
	prefs  store.Preferences
	rec    planner.Recommendation
	nights []planner.Night
	err    error
}

func (m sleepModel) refresh() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		prefs, err := svc.Preferences()
		if err != nil {
			return sleepDataMsg{err: err}
		}
		rec, err := svc.Recommend(ctx)
		if err != nil {
			return sleepDataMsg{prefs: prefs, err: err}
		}
		nights, err := svc.Outlook(ctx, outlookNights)
		return sleepDataMsg{prefs: prefs, rec: rec, nights: nights, err: err}
	}
}

// adjustGoal changes the goal by delta hours within the settings range,
// saves it and recomputes.
func (m sleepModel) adjustGoal(delta float64) tea.Cmd {
	svc := m.svc
	prefs := m.prefs
	goal := clampGoal(prefs.SleepGoalHours + delta)
	if goal == prefs.SleepGoalHours {
		return nil
	}
	prefs.SleepGoalHours = goal
	return func() tea.Msg {
		if err := svc.SavePreferences(prefs); err != nil {
			return errStatus("Save sleep goal", err)
		}
		return prefsSavedMsg{prefs: prefs}
	}
}

func (m sleepModel) update(msg tea.Msg) (sleepModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sleepDataMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.prefs = msg.prefs
			m.rec = msg.rec
			m.nights = msg.nights
			m.loaded = true
			m.buildChart()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Plus):
			return m, m.adjustGoal(1)
		case key.Matches(msg, keys.Minus):
			return m, m.adjustGoal(-1)
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		}
	}
	return m, nil
}

// buildChart draws one bar per night; the value is the wake hour so early
// starts stand out. Event-driven wakes use the accent colour.
func (m *sleepModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, n := range m.nights {
		wake := n.WakeTime
		style := lipgloss.NewStyle().Foreground(colorSubtle)
		if n.Source == planner.WakeFromEvent {
			style = lipgloss.NewStyle().Foreground(colorPrimary)
		}
		bars = append(bars, barchart.BarData{
			Label: n.Evening.Format("Mon"),
			Values: []barchart.BarValue{{
				Name:  formatClock(wake),
				Value: float64(wake.Hour()) + float64(wake.Minute())/60,
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m sleepModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Recommended Bedtime")

	if m.lastErr != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render(m.lastErr.Error())))
	}
	if !m.loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Loading...")))
	}

	bed := bedtimeStyle.Width(w - 4).Render(formatClock(m.rec.Bedtime))
	day := mutedStyle.Width(w - 4).Align(lipgloss.Center).Render(formatDay(m.rec.Bedtime))

	var info []string
	info = append(info, fmt.Sprintf("  Wake      %s  %s",
		highlightStyle.Render(formatClock(m.rec.WakeTime)), mutedStyle.Render(formatDay(m.rec.WakeTime))))
	if ev, ok := m.rec.NextEvent(); ok {
		info = append(info, fmt.Sprintf("  Next      %s at %s",
			normalItemStyle.Render(ev.Title), formatClock(ev.Start)))
		info = append(info, mutedStyle.Render(fmt.Sprintf("            wake %s before it",
			formatSpan(ev.Start.Sub(m.rec.WakeTime)))))
	} else {
		info = append(info, mutedStyle.Render("  No early events; using the default wake time"))
	}
	info = append(info, fmt.Sprintf("  Goal      %s",
		successStyle.Render(fmt.Sprintf("%.0f hours", m.prefs.SleepGoalHours))))

	chartTitle := subtitleStyle.Render(fmt.Sprintf("Wake times, next %d nights", len(m.nights)))

	nav := mutedStyle.Render("  +/-: sleep goal  r: refresh")

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", bed, day, "", strings.Join(info, "\n"), "", chartTitle, m.chart.View(), "", nav,
	))
}
