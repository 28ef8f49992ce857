package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/export"
	"github.com/sadopc/sleepreset/internal/schedule"
)

// refreshEvery re-runs the recommendation so the default wake follows the
// clock across midnight.
const refreshEvery = time.Minute

// App is the root Bubble Tea model.
type App struct {
	svc       *schedule.Service
	fs        afero.Fs
	exportDir string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	sleep    sleepModel
	calendar calendarModel
	search   searchModel
	settings settingsModel
	profile  profileModel

	help    help.Model
	status  string
	isError bool
}

// NewApp builds the TUI. Exports are written to exportDir through fs.
func NewApp(svc *schedule.Service, fs afero.Fs, exportDir string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		svc:        svc,
		fs:         fs,
		exportDir:  exportDir,
		activeView: viewSleep,
		sleep:      newSleepModel(svc),
		calendar:   newCalendarModel(svc),
		search:     newSearchModel(svc),
		settings:   newSettingsModel(svc),
		profile:    newProfileModel(svc),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.settings.refresh(),
		a.sleep.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.sleep.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.search.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.profile.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewSleep)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewCalendar)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewSearch)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewProfile)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		return a, tea.Batch(tickCmd(), a.sleep.refresh())

	case statusMsg:
		a.status = msg.text
		a.isError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isError = false
		a.exportPicking = false
		return a, nil

	case eventCreatedMsg:
		a.status = fmt.Sprintf("Added %q on %s", msg.event.Title, formatDay(msg.event.Start.In(a.svc.Location())))
		a.isError = false
		return a, tea.Batch(a.calendar.refresh(), a.sleep.refresh())

	case prefsSavedMsg:
		applyTheme(msg.prefs.Theme, msg.prefs.DarkMode)
		a.sleep.prefs = msg.prefs
		a.settings.prefs = msg.prefs
		a.profile.prefs = msg.prefs
		a.status = "Settings saved"
		a.isError = false
		return a, a.sleep.refresh()

	case settingsDataMsg:
		if msg.err == nil {
			applyTheme(msg.prefs.Theme, msg.prefs.DarkMode)
		}
		var c1, c2 tea.Cmd
		a.settings, c1 = a.settings.update(msg)
		a.profile, c2 = a.profile.update(msg)
		return a, tea.Batch(c1, c2)

	case sleepDataMsg:
		var cmd tea.Cmd
		a.sleep, cmd = a.sleep.update(msg)
		return a, cmd

	case calendarDataMsg:
		var cmd tea.Cmd
		a.calendar, cmd = a.calendar.update(msg)
		return a, cmd

	case searchResultsMsg:
		var cmd tea.Cmd
		a.search, cmd = a.search.update(msg)
		return a, cmd

	case profileSavedMsg:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.update(msg)
		a.settings.prefs = msg.prefs
		a.sleep.prefs = msg.prefs
		a.status = "Profile saved"
		a.isError = false
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	switch v {
	case viewSleep:
		return a, a.sleep.refresh()
	case viewCalendar:
		return a, a.calendar.refresh()
	case viewSearch:
		cmd := a.search.focus()
		return a, cmd
	case viewSettings:
		return a, a.settings.refresh()
	case viewProfile:
		return a, a.profile.refresh()
	}
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewSleep:
		a.sleep, cmd = a.sleep.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewSearch:
		a.search, cmd = a.search.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewCalendar:
		return a.calendar.formActive
	case viewSearch:
		return a.search.typing()
	case viewSettings:
		return a.settings.formActive
	case viewProfile:
		return a.profile.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewSleep:
		content = a.sleep.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewSearch:
		content = a.search.view()
	case viewSettings:
		content = a.settings.view()
	case viewProfile:
		content = a.profile.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("sleepreset")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Tonight's bedtime stays visible on every tab.
	bedInfo := ""
	if a.sleep.loaded {
		bedInfo = successStyle.Render(" ☾ " + formatClock(a.sleep.rec.Bedtime))
	}

	left := footerStyle.Render(helpView)
	right := bedInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	svc, fs, dir := a.svc, a.fs, a.exportDir
	return func() tea.Msg {
		events, err := svc.StoredEvents()
		if err != nil {
			return errStatus("Export", err)
		}

		dateStr := svc.Now().Format("2006-01-02")
		path := filepath.Join(dir, fmt.Sprintf("sleepreset-export-%s.%s", dateStr, format))
		if err := export.Write(fs, format, events, path); err != nil {
			return errStatus(strings.ToUpper(format)+" export", err)
		}
		return exportDoneMsg{path: path}
	}
}
