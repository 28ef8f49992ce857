package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sleepreset/internal/schedule"
	"github.com/sadopc/sleepreset/internal/store"
)

type profileModel struct {
	svc    *schedule.Service
	width  int
	height int

	prefs     store.Preferences
	lastSaved time.Time

	formActive bool
	form       *huh.Form

	displayName *string
	username    *string
	sync        *bool
}

func newProfileModel(svc *schedule.Service) profileModel {
	name, user, sync := "", "", true
	return profileModel{
		svc:         svc,
		prefs:       store.DefaultPreferences(),
		displayName: &name,
		username:    &user,
		sync:        &sync,
	}
}

func (p *profileModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type profileSavedMsg struct {
	prefs store.Preferences
	at    time.Time
}

func (p profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err == nil {
			p.prefs = msg.prefs
		}
		return p, nil

	case profileSavedMsg:
		p.prefs = msg.prefs
		p.lastSaved = msg.at
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return p.showForm()
		}
	}
	return p, nil
}

func (p profileModel) showForm() (profileModel, tea.Cmd) {
	*p.displayName = p.prefs.DisplayName
	*p.username = p.prefs.Username
	*p.sync = p.prefs.Sync

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(p.displayName),
			huh.NewInput().Title("Username").Value(p.username),
			huh.NewConfirm().Title("Sync app data").Value(p.sync),
		).Title("Profile"),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p profileModel) updateForm(msg tea.Msg) (profileModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		prefs := p.prefs
		prefs.DisplayName = strings.TrimSpace(*p.displayName)
		prefs.Username = strings.TrimSpace(*p.username)
		prefs.Sync = *p.sync
		return p, p.save(prefs)
	}
	return p, cmd
}

func (p profileModel) save(prefs store.Preferences) tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		if err := svc.SavePreferences(prefs); err != nil {
			return errStatus("Save profile", err)
		}
		return profileSavedMsg{prefs: prefs, at: svc.Now()}
	}
}

func (p profileModel) view() string {
	w := p.width - 4
	title := titleStyle.Render("Profile")

	if p.formActive && p.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}

	name := p.prefs.DisplayName
	if name == "" {
		name = mutedStyle.Render("not set")
	}
	user := p.prefs.Username
	if user == "" {
		user = mutedStyle.Render("not set")
	} else {
		user = "@" + user
	}

	rows := []string{
		title, "",
		fmt.Sprintf("  %-12s %s", "Name", highlightStyle.Render(name)),
		fmt.Sprintf("  %-12s %s", "Username", highlightStyle.Render(user)),
		fmt.Sprintf("  %-12s %s", "Sync", highlightStyle.Render(onOff(p.prefs.Sync))),
		"",
	}
	if !p.lastSaved.IsZero() {
		rows = append(rows, mutedStyle.Render("  Last saved: "+p.lastSaved.Format("Jan 02, 15:04")))
	}
	rows = append(rows, mutedStyle.Render("Press enter to edit your profile"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (p profileModel) refresh() tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		prefs, err := svc.Preferences()
		return settingsDataMsg{prefs: prefs, err: err}
	}
}
