package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
)

type sessionsModel struct {
	engine    *pomodoro.Engine
	sessionID int64
	width     int
	height    int

	sessions []store.Session
	cursor   int

	formActive bool
	form       *huh.Form
	fields     *durationFields
	defaults   store.SessionConfig
}

// durationFields holds huh form values behind a pointer so they survive value copies.
type durationFields struct {
	work, short, long, interval string
}

func (f *durationFields) load(c store.SessionConfig) {
	f.work = strconv.Itoa(c.WorkMinutes)
	f.short = strconv.Itoa(c.ShortBreakMinutes)
	f.long = strconv.Itoa(c.LongBreakMinutes)
	f.interval = strconv.Itoa(c.LongBreakInterval)
}

// config parses the fields. Validation already ran in the form.
func (f *durationFields) config() store.SessionConfig {
	work, _ := strconv.Atoi(f.work)
	short, _ := strconv.Atoi(f.short)
	long, _ := strconv.Atoi(f.long)
	interval, _ := strconv.Atoi(f.interval)
	return store.SessionConfig{
		WorkMinutes:       work,
		ShortBreakMinutes: short,
		LongBreakMinutes:  long,
		LongBreakInterval: interval,
	}
}

func (f *durationFields) group(title string) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Work (min)").Value(&f.work).Validate(positiveInt),
		huh.NewInput().Title("Short break (min)").Value(&f.short).Validate(positiveInt),
		huh.NewInput().Title("Long break (min)").Value(&f.long).Validate(positiveInt),
		huh.NewInput().Title("Work phases before a long break").Value(&f.interval).Validate(positiveInt),
	).Title(title)
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func newSessionsModel(e *pomodoro.Engine, sessionID int64, defaults store.SessionConfig) sessionsModel {
	return sessionsModel{
		engine:    e,
		sessionID: sessionID,
		fields:    &durationFields{},
		defaults:  defaults,
	}
}

func (p *sessionsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type sessionsDataMsg struct {
	sessions []store.Session
}

func (p sessionsModel) refresh() tea.Cmd {
	e := p.engine
	return func() tea.Msg {
		sessions, err := e.ListSessions()
		if err != nil {
			return errStatus("List sessions", err)
		}
		return sessionsDataMsg{sessions: sessions}
	}
}

func (p sessionsModel) update(msg tea.Msg) (sessionsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case sessionsDataMsg:
		p.sessions = msg.sessions
		if p.cursor >= len(p.sessions) {
			p.cursor = max(0, len(p.sessions)-1)
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.sessions)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(p.sessions) > 0 {
				return p, p.useSession(p.sessions[p.cursor].ID)
			}
		case key.Matches(msg, keys.New):
			return p.showNewSessionForm()
		}
	}
	return p, nil
}

func (p sessionsModel) useSession(id int64) tea.Cmd {
	e := p.engine
	return func() tea.Msg {
		if _, err := e.UseSession(id); err != nil {
			return errStatus("Use session", err)
		}
		return sessionSelectedMsg{id: id}
	}
}

func (p sessionsModel) showNewSessionForm() (sessionsModel, tea.Cmd) {
	p.fields.load(p.defaults)
	p.form = huh.NewForm(p.fields.group("New Session")).WithShowHelp(true).WithShowErrors(true)
	p.formActive = true
	return p, p.form.Init()
}

func (p sessionsModel) updateForm(msg tea.Msg) (sessionsModel, tea.Cmd) {
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
		return p, p.createSession(p.fields.config())
	}
	return p, cmd
}

func (p sessionsModel) createSession(cfg store.SessionConfig) tea.Cmd {
	e := p.engine
	return func() tea.Msg {
		sess, err := e.CreateSession(cfg)
		if err != nil {
			return errStatus("Create session", err)
		}
		if _, err := e.UseSession(sess.ID); err != nil {
			return errStatus("Use session", err)
		}
		return sessionSelectedMsg{id: sess.ID}
	}
}

func (p sessionsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Session"), "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Sessions")
	if len(p.sessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No sessions yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-6s %-13s %-10s %-16s %s", "ID", "Phase", "Done", "Durations", "Updated")))

	loc := p.engine.Location()
	for i, s := range p.sessions {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		current := " "
		if s.ID == p.sessionID {
			current = "*"
		}
		row := style.Render(fmt.Sprintf("%s%s %-6d %-13s %-10d %-16s %s",
			cursor, current, s.ID, phaseTitle(s.CurrentPhase()), s.CompletedPomodoros,
			fmt.Sprintf("%d/%d/%d ×%d", s.WorkMinutes, s.ShortBreakMinutes, s.LongBreakMinutes, s.LongBreakInterval),
			s.UpdatedAt.In(loc).Format("Jan 02 15:04"),
		))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: use  *: current"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
