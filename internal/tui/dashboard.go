package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
)

// todayModel shows the calendar day's log entries and the current session's stats.
type todayModel struct {
	engine    *pomodoro.Engine
	sessionID int64
	width     int
	height    int

	logs    []store.PhaseLog
	summary store.DailySummary
	stats   *store.SessionStats
}

func newTodayModel(e *pomodoro.Engine, sessionID int64) todayModel {
	return todayModel{engine: e, sessionID: sessionID}
}

func (d todayModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type todayDataMsg struct {
	logs    []store.PhaseLog
	summary store.DailySummary
	stats   *store.SessionStats
}

func (d todayModel) loadData() tea.Cmd {
	e, id := d.engine, d.sessionID
	return func() tea.Msg {
		now := time.Now()
		today := now.In(e.Location()).Format(pomodoro.DateLayout)
		logs, err := e.DailyLogs(today)
		if err != nil {
			return errStatus("Load today", err)
		}
		summary := store.DailySummary{Date: today}
		rows, err := e.DailySummary(now, 1)
		if err != nil {
			return errStatus("Load today", err)
		}
		if len(rows) > 0 {
			summary = rows[0]
		}
		stats, err := e.SessionStats(id)
		if err != nil {
			return errStatus("Load stats", err)
		}
		return todayDataMsg{logs: logs, summary: summary, stats: stats}
	}
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		d.logs = msg.logs
		d.summary = msg.summary
		d.stats = msg.stats
	}
	return d, nil
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderSummaryPanel(contentWidth),
		d.renderStatsPanel(contentWidth),
		d.renderLogPanel(contentWidth),
	)
}

func (d todayModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	s := d.summary
	line := fmt.Sprintf("%s  %s  %s  %s",
		highlightStyle.Render(fmt.Sprintf("%d pomodoros", s.CompletedPomodoros)),
		accentStyle.Render("work "+formatMinutes(s.WorkMinutes)),
		successStyle.Render("break "+formatMinutes(s.BreakMinutes)),
		mutedStyle.Render(fmt.Sprintf("%d interrupted", s.InterruptedCount)),
	)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, line))
}

func (d todayModel) renderStatsPanel(w int) string {
	title := titleStyle.Render("Session")
	if d.stats == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No data")))
	}
	st := d.stats
	last := "never"
	if st.LastActivity != nil {
		last = st.LastActivity.In(d.engine.Location()).Format("Jan 02 15:04")
	}
	rows := []string{
		title + mutedStyle.Render(fmt.Sprintf("  #%d", st.SessionID)),
		fmt.Sprintf("  %-18s %d", "Pomodoros", st.TotalCompletedPomodoros),
		fmt.Sprintf("  %-18s %s / %s", "Work / break", formatMinutes(st.TotalWorkMinutes), formatMinutes(st.TotalBreakMinutes)),
		fmt.Sprintf("  %-18s %.1f%% of %d entries", "Completion rate", st.CompletionRate, st.TotalLogs),
		fmt.Sprintf("  %-18s %s", "Last activity", last),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderLogPanel(w int) string {
	title := titleStyle.Render("Entries")
	if len(d.logs) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No entries today")))
	}

	limit := len(d.logs)
	if room := d.height - 16; room > 0 && room < limit {
		limit = room
	}
	// Most recent entries at the bottom
	shown := d.logs[len(d.logs)-limit:]

	rows := []string{title}
	loc := d.engine.Location()
	for _, l := range shown {
		status := successStyle.Render("✓")
		end := "running"
		if l.CompletedAt != nil {
			end = l.CompletedAt.In(loc).Format("15:04")
			if l.WasInterrupted {
				status = errorStyle.Render("✗")
			}
		} else {
			status = accentStyle.Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %s–%-7s %s %s",
			status,
			l.StartedAt.In(loc).Format("15:04"),
			end,
			phaseStyle(l.Phase).Render(fmt.Sprintf("%-12s", phaseTitle(l.Phase))),
			mutedStyle.Render(formatMinutes(l.DurationMinutes)),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
