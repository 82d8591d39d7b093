package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/model"
)

type reviewMode int

const (
	reviewModeBrowse reviewMode = iota
	reviewModeFilter
)

var (
	reviewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	reviewMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reviewFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	reviewOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	reviewPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	reviewSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

type reviewModel struct {
	ledgerPath string

	entries  []model.LedgerEntry
	filtered []int

	cursor       int
	width        int
	height       int
	mode         reviewMode
	failuresOnly bool
	filter       textinput.Model

	fatalErr error
}

type reviewLoadedMsg struct {
	entries []model.LedgerEntry
	err     error
}

func runReview(args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("review requires an interactive terminal (TTY); use history --json instead")
	}

	filter := textinput.New()
	filter.Placeholder = "filter by filename"
	filter.CharLimit = 120

	m := reviewModel{
		ledgerPath: newWorkspacePaths(*dir).LedgerPath,
		filter:     filter,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(reviewModel); ok && fm.fatalErr != nil {
		return fm.fatalErr
	}
	return nil
}

func (m reviewModel) Init() tea.Cmd {
	return loadLedgerCmd(m.ledgerPath)
}

func loadLedgerCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := ledger.Open(path).ReadAll()
		return reviewLoadedMsg{entries: entries, err: err}
	}
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case reviewLoadedMsg:
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, tea.Quit
		}
		// Newest first; run summaries stay out of the list.
		for i := len(msg.entries) - 1; i >= 0; i-- {
			if msg.entries[i].Kind == model.RecordAttempt {
				m.entries = append(m.entries, msg.entries[i])
			}
		}
		m.applyFilter()
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.mode == reviewModeFilter {
		return m.updateFilter(keyMsg)
	}
	return m.updateBrowse(keyMsg)
}

func (m reviewModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "g":
		m.cursor = 0
	case "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}
	case "f":
		m.failuresOnly = !m.failuresOnly
		m.applyFilter()
	case "/":
		m.mode = reviewModeFilter
		m.filter.Focus()
		return m, textinput.Blink
	case "r":
		m.entries = nil
		m.filtered = nil
		m.cursor = 0
		return m, loadLedgerCmd(m.ledgerPath)
	}
	return m, nil
}

func (m reviewModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = reviewModeBrowse
		m.filter.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *reviewModel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.filtered = m.filtered[:0]
	for i, e := range m.entries {
		if m.failuresOnly && e.Outcome != model.OutcomeFailure {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Filename), needle) {
			continue
		}
		m.filtered = append(m.filtered, i)
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
}

func (m reviewModel) View() string {
	header := reviewTitleStyle.Render("upload history") +
		reviewMutedStyle.Render(fmt.Sprintf("  %d attempt(s)", len(m.entries)))
	hints := reviewMutedStyle.Render("j/k move  f failures  / filter  r reload  q quit")

	if m.mode == reviewModeFilter {
		hints = m.filter.View()
	} else if m.filter.Value() != "" || m.failuresOnly {
		var active []string
		if m.filter.Value() != "" {
			active = append(active, "filter: "+m.filter.Value())
		}
		if m.failuresOnly {
			active = append(active, "failures only")
		}
		hints += reviewMutedStyle.Render("  [" + strings.Join(active, ", ") + "]")
	}

	listHeight := m.height - 10
	if listHeight < 4 {
		listHeight = 4
	}
	list := m.renderList(listHeight)
	details := m.renderDetails()

	return lipgloss.JoinVertical(lipgloss.Left, header, hints, list, details)
}

func (m reviewModel) renderList(height int) string {
	if len(m.filtered) == 0 {
		return reviewMutedStyle.Render("  (no matching entries)")
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	var lines []string
	for pos := start; pos < end; pos++ {
		e := m.entries[m.filtered[pos]]
		mark := reviewOKStyle.Render("ok  ")
		if e.Outcome == model.OutcomeFailure {
			mark = reviewFailStyle.Render("fail")
		}
		line := fmt.Sprintf("%s  %s  %s", e.Timestamp, mark, e.Filename)
		if pos == m.cursor {
			line = reviewSelStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m reviewModel) renderDetails() string {
	if m.cursor >= len(m.filtered) {
		return ""
	}
	e := m.entries[m.filtered[m.cursor]]

	var rows []string
	rows = append(rows, "file: "+e.Filename)
	rows = append(rows, "outcome: "+e.Outcome)
	if e.RemoteID != "" {
		rows = append(rows, "remote id: "+e.RemoteID)
	}
	if e.ScheduledTime != "" {
		rows = append(rows, "publish at: "+e.ScheduledTime)
	}
	if e.SizeBytes > 0 {
		rows = append(rows, "size: "+humanize.IBytes(uint64(e.SizeBytes)))
	}
	if e.DurationSeconds > 0 {
		rows = append(rows, fmt.Sprintf("upload took: %.1fs", e.DurationSeconds))
	}
	if e.RateBytesPerSec > 0 {
		rows = append(rows, "rate: "+humanize.IBytes(uint64(e.RateBytesPerSec))+"/s")
	}
	if e.ErrorKind != "" {
		rows = append(rows, reviewFailStyle.Render("error ("+e.ErrorKind+"): ")+e.ErrorMessage)
	}
	for _, w := range e.Warnings {
		rows = append(rows, reviewMutedStyle.Render("warning: "+w))
	}
	return reviewPanelStyle.Render(strings.Join(rows, "\n"))
}
