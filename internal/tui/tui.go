// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package tui renders the city search box and the weather report in the terminal.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/vorlif/spreak"

	"github.com/wneessen/climatix/internal/autocomplete"
)

const (
	appTitle     = "climatix"
	defaultWidth = 72
	helpText     = "↑/↓ select • enter confirm • esc close • tab reopen • ctrl+l locate • " +
		"alt+1…5 recent • F1…F9 favourite • ctrl+s save • ctrl+x unsave • ctrl+u clear • ctrl+c quit"
)

// Controller is the part of the autocomplete controller the terminal UI drives.
type Controller interface {
	SetQuery(text string)
	Press(key autocomplete.Key)
	Select(index int)
	SelectRecent(index int)
	SelectFavourite(index int)
	AddFavourite(label string)
	RemoveFavourite(label string)
	Clear()
	Focus()
	UseLocation()
	States() <-chan autocomplete.State
}

// Report is a rendered weather report for a committed label.
type Report struct {
	Label string
	Text  string
	Err   error
}

type (
	StateMsg  autocomplete.State
	ReportMsg Report
)

type Model struct {
	ctrl      Controller
	reports   <-chan Report
	localizer *spreak.Localizer

	input   textinput.Model
	spinner spinner.Model
	state   autocomplete.State
	report  Report
	width   int

	minQueryLength int
}

type Option func(*Model)

// WithMinQueryLength sets the query length below which recent searches are listed.
func WithMinQueryLength(length int) Option {
	return func(m *Model) {
		m.minQueryLength = length
	}
}

func New(ctrl Controller, reports <-chan Report, loc *spreak.Localizer, opts ...Option) *Model {
	input := textinput.New()
	input.Placeholder = loc.Get("Search for a city")
	input.Prompt = "🔎 "
	input.CharLimit = 128
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		ctrl:           ctrl,
		reports:        reports,
		localizer:      loc,
		input:          input,
		spinner:        spin,
		state:          autocomplete.State{Cursor: -1},
		width:          defaultWidth,
		minQueryLength: autocomplete.DefaultConfig().MinQueryLength,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	m.ctrl.Focus()
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForState(m.ctrl.States()),
		waitForReport(m.reports),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case StateMsg:
		m.state = autocomplete.State(msg)
		return m, waitForState(m.ctrl.States())
	case ReportMsg:
		m.report = Report(msg)
		return m, waitForReport(m.reports)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "up":
		m.ctrl.Press(autocomplete.KeyUp)
		return m, nil
	case "down":
		m.ctrl.Press(autocomplete.KeyDown)
		return m, nil
	case "esc":
		m.ctrl.Press(autocomplete.KeyEscape)
		return m, nil
	case "tab":
		m.ctrl.Focus()
		return m, nil
	case "enter":
		// commit the row the user is looking at
		if selected, ok := m.state.Selected(); ok {
			m.input.SetValue(selected.Label())
			m.input.CursorEnd()
			m.ctrl.Select(m.state.Cursor)
			return m, nil
		}
		m.ctrl.Press(autocomplete.KeyEnter)
		return m, nil
	case "ctrl+l":
		m.ctrl.UseLocation()
		return m, nil
	case "ctrl+u":
		m.input.Reset()
		m.ctrl.Clear()
		return m, nil
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
		index := int(msg.Runes[0] - '1')
		if index < len(m.state.Recent) {
			m.input.SetValue(m.state.Recent[index])
			m.input.CursorEnd()
			m.ctrl.SelectRecent(index)
		}
		return m, nil
	case "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9":
		index := int(msg.Type - tea.KeyF1)
		if index < len(m.state.Favourites) {
			m.input.SetValue(m.state.Favourites[index])
			m.input.CursorEnd()
			m.ctrl.SelectFavourite(index)
		}
		return m, nil
	case "ctrl+s":
		m.ctrl.AddFavourite("")
		return m, nil
	case "ctrl+x":
		m.ctrl.RemoveFavourite("")
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.ctrl.SetQuery(value)
	}
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(appTitle))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.state.Notice != "" {
		b.WriteString(noticeStyle.Render(m.localizer.Get(m.state.Notice)))
		b.WriteString("\n")
	}
	if m.state.Locating {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.localizer.Get("Locating…")))
	}
	b.WriteString(m.dropdownView())
	b.WriteString(m.recentView())
	b.WriteString(m.favouritesView())

	if m.state.Busy {
		b.WriteString(fmt.Sprintf("\n%s %s\n", m.spinner.View(), m.localizer.Get("Fetching weather…")))
	}
	if m.report.Err != nil {
		b.WriteString(noticeStyle.Render(m.localizer.Get("Failed to fetch weather data.")))
		b.WriteString("\n")
	} else if m.report.Text != "" {
		b.WriteString(reportStyle.Render(m.report.Text))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(runewidth.Truncate(helpText, m.width, "…")))
	return b.String()
}

func (m *Model) dropdownView() string {
	if !m.state.Open {
		return ""
	}
	var b strings.Builder
	if m.state.Searching {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.localizer.Get("Searching…")))
	}
	if m.state.NoResults {
		b.WriteString(dimStyle.Render(m.localizer.Get("No results found")))
		b.WriteString("\n")
	}
	for i, suggestion := range m.state.Suggestions {
		label := runewidth.Truncate(suggestion.Label(), max(m.width-4, 10), "…")
		if i == m.state.Cursor {
			b.WriteString(selectedStyle.Render("› " + label))
		} else {
			b.WriteString(suggestionStyle.Render(label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// shortQuery reports whether the input is too short to search, which is when the
// stored lists are shown instead of suggestions.
func (m *Model) shortQuery() bool {
	return utf8.RuneCountInString(strings.TrimSpace(m.input.Value())) < m.minQueryLength
}

func (m *Model) recentView() string {
	if len(m.state.Recent) == 0 || !m.shortQuery() {
		return ""
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render(m.localizer.Get("Recent searches")))
	b.WriteString("\n")
	for i, label := range m.state.Recent {
		b.WriteString(suggestionStyle.Render(fmt.Sprintf("%d %s", i+1, runewidth.Truncate(label, max(m.width-6, 10), "…"))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) favouritesView() string {
	if len(m.state.Favourites) == 0 || !m.shortQuery() {
		return ""
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render(m.localizer.Get("Favourites")))
	b.WriteString("\n")
	for i, label := range m.state.Favourites {
		marker := "F" + strconv.Itoa(i+1)
		if strings.EqualFold(label, m.state.Committed) {
			marker += "★"
		}
		b.WriteString(suggestionStyle.Render(fmt.Sprintf("%s %s", marker, runewidth.Truncate(label, max(m.width-8, 10), "…"))))
		b.WriteString("\n")
	}
	return b.String()
}

func waitForState(states <-chan autocomplete.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return StateMsg(state)
	}
}

func waitForReport(reports <-chan Report) tea.Cmd {
	return func() tea.Msg {
		report, ok := <-reports
		if !ok {
			return nil
		}
		return ReportMsg(report)
	}
}
