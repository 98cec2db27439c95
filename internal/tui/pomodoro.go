package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
)

type pomodoroModel struct {
	engine    *pomodoro.Engine
	sessionID int64
	width     int
	height    int

	autoComplete  bool
	autoStartNext bool

	session   *store.Session
	next      store.Phase
	countdown countdown

	// completing is set while a completion is in flight so expiry is not
	// reported twice.
	completing bool
	now        func() time.Time
}

func newPomodoroModel(e *pomodoro.Engine, sessionID int64, cfg config.TUIConfig) pomodoroModel {
	return pomodoroModel{
		engine:        e,
		sessionID:     sessionID,
		autoComplete:  cfg.AutoComplete,
		autoStartNext: cfg.AutoStartNext,
		countdown:     newCountdown(nil),
		next:          store.PhaseWork,
		now:           time.Now,
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *pomodoroModel) applyConfig(cfg config.TUIConfig) {
	p.autoComplete = cfg.AutoComplete
	p.autoStartNext = cfg.AutoStartNext
}

func (p pomodoroModel) isRunning() bool { return p.countdown.running() }

type pomodoroDataMsg struct {
	session *store.Session
	open    *store.PhaseLog
	next    store.Phase
}

func (p pomodoroModel) refresh() tea.Cmd {
	e, id := p.engine, p.sessionID
	return func() tea.Msg {
		sess, err := e.GetSession(id)
		if err != nil {
			return errStatus("Load session", err)
		}
		open, err := e.Store().OpenLog(id)
		if err != nil {
			return errStatus("Load session", err)
		}
		next, err := e.NextPhaseType(id)
		if err != nil {
			return errStatus("Load session", err)
		}
		return pomodoroDataMsg{session: sess, open: open, next: next}
	}
}

// startPhaseCmd starts phase, or the recommended phase when phase is empty.
func startPhaseCmd(e *pomodoro.Engine, id int64, phase store.Phase) tea.Cmd {
	return func() tea.Msg {
		if phase == "" {
			next, err := e.NextPhaseType(id)
			if err != nil {
				return phaseFailedMsg{status: errStatus("Start", err)}
			}
			phase = next
		}
		sess, err := e.StartPhase(id, phase)
		if err != nil {
			return phaseFailedMsg{status: errStatus("Start", err)}
		}
		return phaseStartedMsg{session: sess, phase: phase}
	}
}

func completePhaseCmd(e *pomodoro.Engine, id int64, interrupted bool) tea.Cmd {
	return func() tea.Msg {
		sess, err := e.CompletePhase(id, interrupted)
		if err != nil {
			return phaseFailedMsg{status: errStatus("Complete", err)}
		}
		return phaseCompletedMsg{session: sess, interrupted: interrupted}
	}
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pomodoroDataMsg:
		p.session = msg.session
		p.next = msg.next
		p.countdown = newCountdown(msg.open)
		p.completing = false
		return p, nil

	case tickMsg:
		if p.autoComplete && !p.completing && p.countdown.expired(p.now()) {
			p.completing = true
			return p, completePhaseCmd(p.engine, p.sessionID, false)
		}
		return p, nil

	case phaseCompletedMsg:
		p.countdown = newCountdown(nil)
		p.completing = false
		if p.autoStartNext && !msg.interrupted {
			return p, startPhaseCmd(p.engine, p.sessionID, "")
		}
		return p, nil

	case phaseFailedMsg:
		p.completing = false
		return p, p.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if !p.countdown.running() {
				return p, startPhaseCmd(p.engine, p.sessionID, "")
			}
		case key.Matches(msg, keys.Work):
			if !p.countdown.running() {
				return p, startPhaseCmd(p.engine, p.sessionID, store.PhaseWork)
			}
		case key.Matches(msg, keys.Complete):
			if p.countdown.running() && !p.completing {
				p.completing = true
				return p, completePhaseCmd(p.engine, p.sessionID, false)
			}
		case key.Matches(msg, keys.Interrupt):
			if p.countdown.running() && !p.completing {
				p.completing = true
				return p, completePhaseCmd(p.engine, p.sessionID, true)
			}
		}
	}
	return p, nil
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	now := p.now()

	title := titleStyle.Render("Pomodoro Timer")
	if p.session != nil {
		title += mutedStyle.Render(fmt.Sprintf("  session %d", p.session.ID))
	}

	var timeDisplay, phaseLabel, indicator string
	if p.countdown.running() {
		style := phaseStyle(p.countdown.phase).Bold(true).Width(w - 6).Align(lipgloss.Center)
		remaining := p.countdown.remaining(now)
		if remaining < 0 {
			style = timerOverdueStyle.Width(w - 6)
			timeDisplay = style.Render("+" + formatPomodoroTime(-remaining))
		} else {
			timeDisplay = style.Render(formatPomodoroTime(remaining))
		}
		phaseLabel = phaseStyle(p.countdown.phase).Bold(true).Render(phaseTitle(p.countdown.phase))
		indicator = renderBar(p.countdown.progress(now), min(w-10, 40)) +
			mutedStyle.Render("  elapsed "+formatDuration(p.countdown.elapsed(now)))
	} else {
		planned := 0
		if p.session != nil {
			planned, _ = p.session.DurationFor(p.next)
		}
		timeDisplay = timerStyle.Width(w - 6).Render(formatPomodoroTime(time.Duration(planned) * time.Minute))
		phaseLabel = mutedStyle.Render("Next: ") + phaseStyle(p.next).Render(phaseTitle(p.next))
		indicator = mutedStyle.Render("Press s to begin")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		indicator,
		"",
		p.renderProgress(),
	)

	var controls string
	if p.countdown.running() {
		controls = mutedStyle.Render("c: complete  x: interrupt")
	} else {
		controls = mutedStyle.Render("s: start next  w: start work  q: quit")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderProgress shows the position within the current long-break cycle.
func (p pomodoroModel) renderProgress() string {
	if p.session == nil {
		return ""
	}
	interval := p.session.LongBreakInterval
	done := p.session.CompletedPomodoros % interval
	if done == 0 && p.session.CompletedPomodoros > 0 && (p.next == store.PhaseLongBreak || p.countdown.phase == store.PhaseLongBreak) {
		done = interval
	}

	var parts []string
	for i := 0; i < interval; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && p.countdown.phase == store.PhaseWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d pomodoros", p.session.CompletedPomodoros))
	return strings.Join(parts, " ") + counter
}

func renderBar(progress float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := int(progress * float64(width))
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
