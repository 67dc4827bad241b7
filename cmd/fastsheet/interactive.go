package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/fastsheet"
	"github.com/wippyai/fastsheet/native"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sheetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxColumnWidth caps a column in the table view.
const maxColumnWidth = 32

type modelState int

const (
	stateSelectSheet modelState = iota
	stateLoading
	stateShowTable
	stateFilter
)

type interactiveModel struct {
	err      error
	tbl      *fastsheet.Table
	filename string
	lib      string
	sheet    string
	sheets   []string
	rows     []table.Row
	view     table.Model
	filter   textinput.Model
	selected int
	height   int
	header   bool
	state    modelState
}

func newInteractiveModel(filename, sheet, lib string, header bool) *interactiveModel {
	f := textinput.New()
	f.Prompt = "/"
	f.Placeholder = "filter rows"
	f.Width = 40

	m := &interactiveModel{
		filename: filename,
		sheet:    sheet,
		lib:      lib,
		header:   header,
		filter:   f,
		view:     table.New(),
		height:   20,
		state:    stateSelectSheet,
	}
	if sheet != "" {
		m.state = stateLoading
	}
	return m
}

type sheetsMsg struct {
	err    error
	sheets []string
}

type tableMsg struct {
	err error
	tbl *fastsheet.Table
}

func (m *interactiveModel) Init() tea.Cmd {
	if m.state == stateLoading {
		return m.loadTable
	}
	return m.loadSheets
}

func (m *interactiveModel) loadSheets() tea.Msg {
	names, err := native.New(nil).Sheets(m.filename)
	return sheetsMsg{sheets: names, err: err}
}

func (m *interactiveModel) loadTable() tea.Msg {
	t, err := open(context.Background(), m.filename, m.sheet, m.lib, m.header)
	return tableMsg{tbl: t, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, blank line, status line and help line
		m.height = max(msg.Height-6, 3)
		m.view.SetHeight(m.height)
		m.view.SetWidth(msg.Width)
		return m, nil

	case sheetsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sheets = msg.sheets
		return m, nil

	case tableMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateSelectSheet
			return m, nil
		}
		m.err = nil
		m.tbl = msg.tbl
		m.buildView()
		m.state = stateShowTable
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectSheet && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectSheet && m.selected < len(m.sheets)-1 {
				m.selected++
				return m, nil
			}

		case "enter":
			if m.state == stateSelectSheet && len(m.sheets) > 0 {
				m.sheet = m.sheets[m.selected]
				m.state = stateLoading
				return m, m.loadTable
			}

		case "/":
			if m.state == stateShowTable {
				m.state = stateFilter
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "esc":
			if m.state == stateShowTable {
				if m.filter.Value() != "" {
					m.filter.SetValue("")
					m.applyFilter()
					return m, nil
				}
				m.state = stateSelectSheet
				m.tbl = nil
				if m.sheets == nil {
					return m, m.loadSheets
				}
				return m, nil
			}
		}
	}

	if m.state == stateShowTable {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.filter.Blur()
		m.applyFilter()
		m.state = stateShowTable
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// buildView converts the table into display rows and resets the view.
func (m *interactiveModel) buildView() {
	t := m.tbl
	cols := make([]table.Column, t.Width())
	hdr, hasHeader := t.Header()
	for j := range cols {
		title := fmt.Sprintf("col_%d", j)
		if hasHeader && hdr[j].String() != "" {
			title = hdr[j].String()
		}
		cols[j] = table.Column{Title: title, Width: lipgloss.Width(title)}
	}

	m.rows = nil
	for _, r := range t.Rows() {
		row := table.Row(r.Strings())
		for j, s := range row {
			cols[j].Width = min(max(cols[j].Width, lipgloss.Width(s)), maxColumnWidth)
		}
		m.rows = append(m.rows, row)
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#666666")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = selectedStyle

	m.view = table.New(
		table.WithColumns(cols),
		table.WithRows(m.rows),
		table.WithFocused(true),
		table.WithHeight(m.height),
	)
	m.view.SetStyles(styles)
	m.applyFilter()
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		m.view.SetRows(m.rows)
		return
	}
	var out []table.Row
	for _, r := range m.rows {
		for _, s := range r {
			if strings.Contains(strings.ToLower(s), q) {
				out = append(out, r)
				break
			}
		}
	}
	m.view.SetRows(out)
	m.view.GotoTop()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("fastsheet"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	if m.state == stateShowTable || m.state == stateFilter {
		b.WriteString(" ")
		b.WriteString(sheetStyle.Render(m.sheet))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	switch m.state {
	case stateSelectSheet:
		if m.sheets == nil {
			if m.err == nil {
				b.WriteString("Reading workbook...")
			}
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a sheet:\n\n")
		for i, s := range m.sheets {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + s))
			} else {
				b.WriteString("  " + sheetStyle.Render(s))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateLoading:
		b.WriteString(fmt.Sprintf("Decoding %s...", sheetStyle.Render(m.sheet)))

	case stateShowTable, stateFilter:
		b.WriteString(m.view.View())
		b.WriteString("\n")
		status := fmt.Sprintf("%d rows x %d columns", m.tbl.Height(), m.tbl.Width())
		if n := len(m.view.Rows()); n != m.tbl.Height() {
			status = fmt.Sprintf("%d of %s", n, status)
		}
		b.WriteString(infoStyle.Render(status))
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(m.filter.View())
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ scroll • / filter • esc back • q quit"))
		}
	}

	return b.String()
}

func runInteractive(filename, sheet, lib string, header bool) error {
	p := tea.NewProgram(newInteractiveModel(filename, sheet, lib, header), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
