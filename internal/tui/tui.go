// Package tui is the interactive trend dashboard.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jgehrcke/runni/internal/trend"
	"github.com/jgehrcke/runni/pkg/pace"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	graphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// weeksShown caps the bar graph width; one bar per calendar week.
const weeksShown = 16

// Loader runs the fetch+aggregate pipeline. The dashboard calls it on
// startup and on refresh.
type Loader func() (trend.Result, error)

type Model struct {
	load   Loader
	result *trend.Result
	width  int
	height int
	err    error
}

type trendMsg struct {
	result trend.Result
	err    error
}

func New(load Loader) Model {
	return Model{load: load}
}

func (m Model) Init() tea.Cmd {
	return m.fetchTrend
}

func (m Model) fetchTrend() tea.Msg {
	result, err := m.load()
	if err != nil {
		return trendMsg{err: err}
	}
	return trendMsg{result: result}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetchTrend
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case trendMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.result = &msg.result
			m.err = nil
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if m.result == nil {
		return "Loading..."
	}

	res := m.result

	var b strings.Builder

	b.WriteString(titleStyle.Render("🏃 runni — running trends"))
	b.WriteString("\n\n")

	if res.Empty() {
		b.WriteString("No runs in the log yet.\n")
		b.WriteString(helpStyle.Render("r: refresh • q: quit"))
		return b.String()
	}

	// Current trend box: newest centered rolling-week values.
	currentContent := fmt.Sprintf(
		"%s %s",
		statLabelStyle.Render("Distance:"),
		statValueStyle.Render(weeklyKmText(res)),
	)
	if res.HasDuration {
		currentContent += fmt.Sprintf(
			"\n%s %s\n%s %s",
			statLabelStyle.Render("Duration:"),
			statValueStyle.Render(weeklyHoursText(res)),
			statLabelStyle.Render("Avg pace:"),
			statValueStyle.Render(weeklyPaceText(res)),
		)
	}
	b.WriteString(boxStyle.Render(fmt.Sprintf("Per week (%d-day window)\n", res.WindowDays) + currentContent))
	b.WriteString("\n\n")

	// Log summary box.
	summaryContent := fmt.Sprintf(
		"%s %s\n%s %s",
		statLabelStyle.Render("Logged:"),
		statValueStyle.Render(fmt.Sprintf("%d days, %s", len(res.DailyKm), pace.Km(totalKm(res.DailyKm)))),
		statLabelStyle.Render("Best week:"),
		statValueStyle.Render(bestWeekText(res)),
	)
	b.WriteString(boxStyle.Render("Log\n" + summaryContent))
	b.WriteString("\n\n")

	b.WriteString(statLabelStyle.Render(fmt.Sprintf("Weekly distance, last %d weeks:", weeksShown)))
	b.WriteString("\n")
	b.WriteString(renderWeeklyGraph(sampleWeekly(res.WeeklyKm, weeksShown)))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("r: refresh • q: quit"))

	return b.String()
}

func weeklyKmText(res *trend.Result) string {
	p, ok := res.WeeklyKm.Last()
	if !ok {
		return "-"
	}
	return pace.Km(p.Value)
}

func weeklyHoursText(res *trend.Result) string {
	p, ok := res.WeeklyHours.Last()
	if !ok {
		return "-"
	}
	return pace.Hours(p.Value)
}

func weeklyPaceText(res *trend.Result) string {
	p, ok := res.WeeklyPace.Last()
	if !ok {
		return "-"
	}
	return pace.MinPerKm(p.Value)
}

func bestWeekText(res *trend.Result) string {
	p, ok := res.WeeklyKm.Max()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", pace.Km(p.Value), p.Date.Format("2006-01-02"))
}

func totalKm(daily trend.Series) float64 {
	var total float64
	for _, p := range daily {
		if p.Defined() {
			total += p.Value
		}
	}
	return total
}

// sampleWeekly picks one value per calendar week from the rolling series,
// newest last, at most maxWeeks entries.
func sampleWeekly(s trend.Series, maxWeeks int) []float64 {
	var values []float64
	for i := len(s) - 1; i >= 0 && len(values) < maxWeeks; i -= 7 {
		if !s[i].Defined() {
			continue
		}
		values = append(values, s[i].Value)
	}
	// Reverse into chronological order.
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

func renderWeeklyGraph(values []float64) string {
	if len(values) == 0 {
		return "No data"
	}

	var maxValue float64
	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}

	if maxValue == 0 {
		return "No distance in range"
	}

	bars := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	var graph strings.Builder

	for _, v := range values {
		idx := int(math.Round(v / maxValue * float64(len(bars)-1)))
		if v > 0 && idx == 0 {
			idx = 1
		}
		graph.WriteString(graphStyle.Render(bars[idx]))
		graph.WriteString(" ")
	}

	return graph.String()
}
