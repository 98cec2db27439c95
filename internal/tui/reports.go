package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	engine *pomodoro.Engine
	width  int
	height int

	mode      reportMode
	summaries []store.DailySummary
	offset    int // 7-day blocks or weeks back from today (0 = current)

	chart barchart.Model
	now   func() time.Time
}

func newReportsModel(e *pomodoro.Engine) reportsModel {
	return reportsModel{
		engine: e,
		chart:  barchart.New(60, 12),
		now:    time.Now,
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	summaries []store.DailySummary
}

func (r reportsModel) refresh() tea.Cmd {
	from, to := r.dateRange()
	s := r.engine.Store()
	return func() tea.Msg {
		summaries, err := s.DailySummary(from, to)
		if err != nil {
			return errStatus("Load report", err)
		}
		return reportsDataMsg{summaries: summaries}
	}
}

// dateRange returns [from, to) in the engine's location.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	today := startOfDay(r.now().In(r.engine.Location()))

	switch r.mode {
	case reportWeekly:
		// Weeks start on Monday
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*r.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.summaries = msg.summaries
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DailySummary, len(r.summaries))
	for _, s := range r.summaries {
		byDate[s.Date] = s
	}

	workStyle := lipgloss.NewStyle().Foreground(colorAccent)
	breakStyle := lipgloss.NewStyle().Foreground(colorSecondary)

	from, to := r.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		s := byDate[d.Format(pomodoro.DateLayout)]
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: "Work", Value: float64(s.WorkMinutes) / 60, Style: workStyle},
				{Name: "Break", Value: float64(s.BreakMinutes) / 60, Style: breakStyle},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	legend := "  " + accentStyle.Render("● work") + "  " +
		lipgloss.NewStyle().Foreground(colorSecondary).Render("● break") +
		mutedStyle.Render("  (hours)")

	nav := mutedStyle.Render("  ←/→: navigate  enter: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %8s %8s %12s", "Date", "Pomodoros", "Work", "Break", "Interrupted")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 54)))))

	var pomodoros, work, brk int
	for _, s := range r.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %10d %8s %8s %12d",
			s.Date, s.CompletedPomodoros, formatHours(s.WorkMinutes), formatHours(s.BreakMinutes), s.InterruptedCount,
		))
		pomodoros += s.CompletedPomodoros
		work += s.WorkMinutes
		brk += s.BreakMinutes
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 54)))))
	rows = append(rows, titleStyle.Render(fmt.Sprintf("  %-12s %10d %8s %8s", "Total", pomodoros, formatHours(work), formatHours(brk))))

	return strings.Join(rows, "\n")
}
