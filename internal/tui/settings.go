package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sleepreset/internal/schedule"
	"github.com/sadopc/sleepreset/internal/store"
)

type settingsModel struct {
	svc    *schedule.Service
	width  int
	height int

	prefs      store.Preferences
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	theme            *string
	darkMode         *bool
	sleepGoal        *string
	wakeBuffer       *string
	workdayStart     *string
	workdayEnd       *string
	defaultWake      *string
	notifications    *bool
	bedtimeReminders *bool
}

func newSettingsModel(svc *schedule.Service) settingsModel {
	th, sg, wb, ws, we, dw := "", "", "", "", "", ""
	dm, n, br := false, false, false
	return settingsModel{
		svc:              svc,
		prefs:            store.DefaultPreferences(),
		theme:            &th,
		darkMode:         &dm,
		sleepGoal:        &sg,
		wakeBuffer:       &wb,
		workdayStart:     &ws,
		workdayEnd:       &we,
		defaultWake:      &dw,
		notifications:    &n,
		bedtimeReminders: &br,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	prefs store.Preferences
	err   error
}

func (s settingsModel) refresh() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		p, err := svc.Preferences()
		return settingsDataMsg{prefs: p, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, func() tea.Msg { return errStatus("Load settings", msg.err) }
		}
		s.prefs = msg.prefs
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	p := s.prefs
	*s.theme = p.Theme
	*s.darkMode = p.DarkMode
	*s.sleepGoal = formatFloat(p.SleepGoalHours)
	*s.wakeBuffer = formatFloat(p.WakeBufferMinutes)
	*s.workdayStart = strconv.Itoa(p.WorkdayStartHour)
	*s.workdayEnd = strconv.Itoa(p.WorkdayEndHour)
	*s.defaultWake = store.FormatClock(p.DefaultWakeHour, p.DefaultWakeMinute)
	*s.notifications = p.Notifications
	*s.bedtimeReminders = p.BedtimeReminders

	themeOptions := make([]huh.Option[string], len(themes))
	for i, t := range themes {
		dot := lipgloss.NewStyle().Foreground(t.Accent).Render("●")
		themeOptions[i] = huh.NewOption(fmt.Sprintf("%s %s", dot, t.Name), t.Key)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").Options(themeOptions...).Value(s.theme),
			huh.NewConfirm().Title("Dark mode").Value(s.darkMode),
		).Title("Appearance"),
		huh.NewGroup(
			huh.NewInput().Title("Sleep goal (hours, 4-12)").Value(s.sleepGoal).Validate(validateGoal),
			huh.NewInput().Title("Wake before first event (min)").Value(s.wakeBuffer).Validate(validateBuffer),
			huh.NewInput().Title("Workday starts (hour)").Value(s.workdayStart).Validate(validateHour),
			huh.NewInput().Title("Workday ends (hour)").Value(s.workdayEnd).Validate(validateHour),
			huh.NewInput().Title("Default wake (HH:MM)").Value(s.defaultWake).Validate(validateClock),
		).Title("Sleep"),
		huh.NewGroup(
			huh.NewConfirm().Title("Enable notifications").Value(s.notifications),
			huh.NewConfirm().Title("Bedtime reminders").Value(s.bedtimeReminders),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save(s.collect())
	}

	return s, cmd
}

// collect folds the form values into a copy of the loaded preferences.
// Fields that fail to parse keep their previous value.
func (s settingsModel) collect() store.Preferences {
	p := s.prefs
	p.Theme = *s.theme
	p.DarkMode = *s.darkMode
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.sleepGoal), 64); err == nil {
		p.SleepGoalHours = clampGoal(v)
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.wakeBuffer), 64); err == nil && v >= 0 {
		p.WakeBufferMinutes = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(*s.workdayStart)); err == nil {
		p.WorkdayStartHour = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(*s.workdayEnd)); err == nil {
		p.WorkdayEndHour = v
	}
	if h, m, err := store.ParseClock(*s.defaultWake); err == nil {
		p.DefaultWakeHour, p.DefaultWakeMinute = h, m
	}
	p.Notifications = *s.notifications
	p.BedtimeReminders = *s.bedtimeReminders
	return p
}

func (s settingsModel) save(p store.Preferences) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		cfg := p.PlanningConfig(svc.Location())
		if err := cfg.Validate(); err != nil {
			return errStatus("Settings not saved", err)
		}
		if err := svc.SavePreferences(p); err != nil {
			return errStatus("Save settings", err)
		}
		return prefsSavedMsg{prefs: p}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	p := s.prefs
	rows := []string{title, ""}
	add := func(label, value string) {
		l := lipgloss.NewStyle().Width(28).Render(label)
		rows = append(rows, fmt.Sprintf("  %s %s", l, highlightStyle.Render(value)))
	}

	add("Theme", themeByKey(p.Theme).Name)
	add("Dark mode", onOff(p.DarkMode))
	add("Sleep goal", fmt.Sprintf("%s hours", formatFloat(p.SleepGoalHours)))
	add("Wake before first event", fmt.Sprintf("%s min", formatFloat(p.WakeBufferMinutes)))
	add("Workday hours", fmt.Sprintf("%02d:00 - %02d:59", p.WorkdayStartHour, p.WorkdayEndHour))
	add("Default wake", store.FormatClock(p.DefaultWakeHour, p.DefaultWakeMinute))
	add("Notifications", onOff(p.Notifications))
	add("Bedtime reminders", onOff(p.BedtimeReminders))

	rows = append(rows, "")
	rows = append(rows, subtitleStyle.Render("  SleepReset: manage your sleep goals and schedules."))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func validateGoal(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return errors.New("enter a number of hours")
	}
	if f < store.MinSleepGoal || f > store.MaxSleepGoal {
		return fmt.Errorf("between %.0f and %.0f hours", store.MinSleepGoal, store.MaxSleepGoal)
	}
	return nil
}

func validateBuffer(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return errors.New("enter zero or more minutes")
	}
	return nil
}

func validateHour(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > 23 {
		return errors.New("hour must be 0-23")
	}
	return nil
}

func validateClock(v string) error {
	_, _, err := store.ParseClock(v)
	return err
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
