package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/export"
	"github.com/sadopc/tomato/internal/pomodoro"
)

// App is the root Bubble Tea model.
type App struct {
	engine    *pomodoro.Engine
	cfg       *config.Config
	sessionID int64
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	pomodoro pomodoroModel
	today    todayModel
	sessions sessionsModel
	reports  reportsModel
	settings settingsModel

	help   help.Model
	status string
}

// NewApp builds the UI for sessionID, which must exist.
func NewApp(e *pomodoro.Engine, cfg *config.Config, sessionID int64) App {
	h := help.New()
	h.ShowAll = false

	return App{
		engine:     e,
		cfg:        cfg,
		sessionID:  sessionID,
		activeView: viewTimer,
		pomodoro:   newPomodoroModel(e, sessionID, cfg.TUI),
		today:      newTodayModel(e, sessionID),
		sessions:   newSessionsModel(e, sessionID, cfg.Defaults.SessionConfig()),
		reports:    newReportsModel(e),
		settings:   newSettingsModel(e, sessionID, cfg),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.pomodoro.refresh(),
		a.today.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.pomodoro.setSize(a.width, contentHeight)
		a.today.setSize(a.width, contentHeight)
		a.sessions.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
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
			a.activeView = viewTimer
			return a, a.pomodoro.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewToday
			return a, a.today.loadData()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSessions
			return a, a.sessions.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The countdown runs regardless of the visible view
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case phaseStartedMsg:
		a.status = fmt.Sprintf("%s started", phaseTitle(msg.phase))
		return a, tea.Batch(a.pomodoro.refresh(), a.today.loadData())

	case phaseCompletedMsg:
		if msg.interrupted {
			a.status = "Phase interrupted"
		} else {
			a.status = "Phase complete! \a"
		}
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		return a, tea.Batch(cmd, a.pomodoro.refresh(), a.today.loadData(), a.refreshCurrentView())

	case phaseFailedMsg:
		a.status = errorStyle.Render(msg.status.text)
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		return a, cmd

	case sessionSelectedMsg:
		a.setSession(msg.id)
		a.status = fmt.Sprintf("Using session %d", msg.id)
		return a, tea.Batch(a.pomodoro.refresh(), a.today.loadData(), a.refreshCurrentView())

	case sessionUpdatedMsg:
		a.status = "Session settings saved"
		return a, tea.Batch(a.pomodoro.refresh(), a.settings.refresh())

	case ConfigChangedMsg:
		a.applyConfig(msg.Config)
		a.status = "Config reloaded"
		return a, nil

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.status = errorStyle.Render(msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = fmt.Sprintf("Exported %d entries to %s", msg.count, msg.path)
		a.exportPicking = false
		return a, nil

	case pomodoroDataMsg:
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		return a, cmd

	case todayDataMsg:
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a *App) setSession(id int64) {
	a.sessionID = id
	a.pomodoro.sessionID = id
	a.today.sessionID = id
	a.sessions.sessionID = id
	a.settings.sessionID = id
}

func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.cfg = cfg
	a.pomodoro.applyConfig(cfg.TUI)
	a.sessions.defaults = cfg.Defaults.SessionConfig()
	a.settings.cfg = cfg
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewSessions:
		a.sessions, cmd = a.sessions.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewSessions:
		return a.sessions.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.pomodoro.refresh()
	case viewToday:
		return a.today.loadData()
	case viewSessions:
		return a.sessions.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.pomodoro.view()
	case viewToday:
		content = a.today.view()
	case viewSessions:
		content = a.sessions.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
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

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tomato")
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
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator in footer
	timerInfo := ""
	if a.pomodoro.isRunning() {
		c := a.pomodoro.countdown
		remaining := c.remaining(a.pomodoro.now())
		if remaining < 0 {
			timerInfo = warningStyle.Render(" ● +" + formatPomodoroTime(-remaining))
		} else {
			timerInfo = phaseStyle(c.phase).Render(" ● " + formatPomodoroTime(remaining))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
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

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
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

// doExport writes every entry of the current session to the home directory.
func (a App) doExport(format string) tea.Cmd {
	e, id := a.engine, a.sessionID
	return func() tea.Msg {
		logs, err := e.SessionLogs(id)
		if err != nil {
			return errStatus("Export", err)
		}
		stats, err := e.SessionStats(id)
		if err != nil {
			return errStatus("Export", err)
		}

		home, _ := os.UserHomeDir()
		name := fmt.Sprintf("tomato-export-%d-%s%s", id, time.Now().Format("2006-01-02"), export.Extension(format))
		path := filepath.Join(home, name)
		if err := export.Write(format, logs, stats, e.Location(), path); err != nil {
			return errStatus(strings.ToUpper(format)+" export", err)
		}
		return exportDoneMsg{path: path, count: len(logs)}
	}
}
