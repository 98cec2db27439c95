package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
)

// settingsModel edits the current session's durations and shows the
// configuration the program runs with.
type settingsModel struct {
	engine    *pomodoro.Engine
	sessionID int64
	cfg       *config.Config
	width     int
	height    int

	session    *store.Session
	stored     []store.Setting
	formActive bool
	form       *huh.Form
	fields     *durationFields
}

func newSettingsModel(e *pomodoro.Engine, sessionID int64, cfg *config.Config) settingsModel {
	return settingsModel{
		engine:    e,
		sessionID: sessionID,
		cfg:       cfg,
		fields:    &durationFields{},
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	session *store.Session
	stored  []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	e, id := s.engine, s.sessionID
	return func() tea.Msg {
		sess, err := e.GetSession(id)
		if err != nil {
			return errStatus("Load session", err)
		}
		stored, err := e.Store().GetAllSettings()
		if err != nil {
			return errStatus("Load settings", err)
		}
		return settingsDataMsg{session: sess, stored: stored}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.session = msg.session
		s.stored = msg.stored
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			if s.session != nil {
				return s.showForm()
			}
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	s.fields.load(s.session.SessionConfig)
	s.form = huh.NewForm(
		s.fields.group(fmt.Sprintf("Session %d", s.session.ID)),
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
		return s, s.save(s.fields.config())
	}

	return s, cmd
}

func (s settingsModel) save(c store.SessionConfig) tea.Cmd {
	e, id := s.engine, s.sessionID
	return func() tea.Msg {
		sess, err := e.UpdateSessionConfig(id, store.ConfigUpdate{
			WorkMinutes:       &c.WorkMinutes,
			ShortBreakMinutes: &c.ShortBreakMinutes,
			LongBreakMinutes:  &c.LongBreakMinutes,
			LongBreakInterval: &c.LongBreakInterval,
		})
		if err != nil {
			return errStatus("Save settings", err)
		}
		return sessionUpdatedMsg{session: sess}
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

	rows := []string{title, ""}
	if s.session != nil {
		rows = append(rows, subtitleStyle.Render(fmt.Sprintf("Session %d", s.session.ID)))
		rows = append(rows,
			settingRow("Work", fmt.Sprintf("%d min", s.session.WorkMinutes)),
			settingRow("Short break", fmt.Sprintf("%d min", s.session.ShortBreakMinutes)),
			settingRow("Long break", fmt.Sprintf("%d min", s.session.LongBreakMinutes)),
			settingRow("Long break every", fmt.Sprintf("%d work phases", s.session.LongBreakInterval)),
		)
	}

	if s.cfg != nil {
		rows = append(rows, "", subtitleStyle.Render("Configuration"))
		rows = append(rows,
			settingRow("database.path", s.cfg.Database.Path),
			settingRow("timezone", s.cfg.Timezone),
			settingRow("logging.level", s.cfg.Logging.Level),
			settingRow("tui.auto_complete", fmt.Sprintf("%v", s.cfg.TUI.AutoComplete)),
			settingRow("tui.auto_start_next", fmt.Sprintf("%v", s.cfg.TUI.AutoStartNext)),
		)
	}

	if len(s.stored) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Stored"))
		for _, st := range s.stored {
			rows = append(rows, settingRow(st.Key, st.Value))
		}
	}

	rows = append(rows, "", mutedStyle.Render("Press enter to edit the session durations"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(label), highlightStyle.Render(value))
}
