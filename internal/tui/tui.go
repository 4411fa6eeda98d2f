// internal/tui/tui.go
// Package tui renders a live progress view for a running benchmark pass.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/medbench/internal/answer"
	"github.com/mwiater/medbench/internal/report"
	"github.com/mwiater/medbench/internal/util"
)

const recentItems = 8

// ItemMsg carries one scored item from the evaluation loop into the view.
type ItemMsg report.ScoredItem

// DoneMsg signals the end of the run with its summary.
type DoneMsg report.Summary

var (
	headerStyle  = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	refuseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Model is the Bubble Tea model for one benchmark pass.
type Model struct {
	suiteName string
	modelName string
	total     int

	spinner  spinner.Model
	progress progress.Model
	items    []report.ScoredItem
	summary  *report.Summary
	width    int
	quitting bool
}

// New builds the progress model for a run over total questions.
func New(suiteName, modelName string, total int) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Model{
		suiteName: suiteName,
		modelName: modelName,
		total:     total,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient()),
		width:     80,
	}
}

// Init starts the spinner animation.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles item completions, the run summary, resizes, and quit keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = util.Min(msg.Width-8, 60)
		return m, nil
	case ItemMsg:
		m.items = append(m.items, report.ScoredItem(msg))
		return m, nil
	case DoneMsg:
		s := report.Summary(msg)
		m.summary = &s
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the header, progress bar, and the most recent scored items.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s | %s", m.suiteName, m.modelName)))
	b.WriteString("\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(len(m.items)) / float64(m.total)
	}
	if m.summary == nil && !m.quitting {
		b.WriteString(fmt.Sprintf("  %s %d/%d  %s\n\n", m.spinner.View(), len(m.items), m.total, m.progress.ViewAs(pct)))
	} else {
		b.WriteString(fmt.Sprintf("    %d/%d  %s\n\n", len(m.items), m.total, m.progress.ViewAs(pct)))
	}

	n := util.Min(recentItems, len(m.items))
	for _, item := range m.items[len(m.items)-n:] {
		b.WriteString("  " + m.itemLine(item) + "\n")
	}

	if m.summary != nil {
		b.WriteString(fmt.Sprintf("\n  Accuracy: %.2f%%  (%d/%d correct)\n", m.summary.AccuracyPct, m.summary.Correct, m.summary.Total))
	} else if !m.quitting {
		b.WriteString("\n  " + dimStyle.Render("press q to abort") + "\n")
	}
	return b.String()
}

func (m *Model) itemLine(item report.ScoredItem) string {
	var mark string
	switch {
	case item.Correct:
		mark = correctStyle.Render("✓")
	case item.Prediction == answer.Refusal:
		mark = refuseStyle.Render("~")
	default:
		mark = wrongStyle.Render("✗")
	}
	preview := dimStyle.Render(util.Preview(item.Question, util.Min(m.width-24, 70)))
	return fmt.Sprintf("%s #%-4d %-8s %s", mark, item.ID, item.Prediction, preview)
}
