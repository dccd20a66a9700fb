package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/nativeformat/typesystem"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))
)

const pageSize = 20

type browserState int

const (
	stateList browserState = iota
	stateDetail
	stateCanon
)

type typeEntry struct {
	scope string
	typ   *typesystem.MetadataType
}

type browserModel struct {
	err      error
	session  *session
	result   string
	types    []typeEntry
	visible  []int
	filter   textinput.Model
	query    textinput.Model
	selected int
	state    browserState
}

type loadedMsg struct {
	err   error
	types []typeEntry
}

func newBrowserModel(s *session) *browserModel {
	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "type name"
	filter.Width = 50
	filter.Focus()

	query := textinput.New()
	query.Prompt = "type: "
	query.Placeholder = "System.Collections.Generic.List`1<System.String>"
	query.Width = 60

	return &browserModel{session: s, filter: filter, query: query}
}

func (m *browserModel) Init() tea.Cmd {
	return tea.Batch(m.loadTypes, textinput.Blink)
}

func (m *browserModel) loadTypes() tea.Msg {
	var out []typeEntry
	for _, mod := range m.session.Modules {
		types, err := mod.Types()
		if err != nil {
			return loadedMsg{err: err}
		}
		for _, t := range types {
			out = append(out, typeEntry{scope: mod.Name(), typ: t})
		}
	}
	return loadedMsg{types: out}
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.types {
		if q == "" || strings.Contains(strings.ToLower(e.typ.String()), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateList:
				if len(m.visible) > 0 {
					m.state = stateDetail
					m.filter.Blur()
				}
			case stateCanon:
				m.result, m.err = m.canon(m.query.Value())
			}
			return m, nil

		case "tab":
			if m.state != stateCanon {
				m.state = stateCanon
				m.filter.Blur()
				m.result, m.err = "", nil
				return m, m.query.Focus()
			}

		case "esc":
			switch m.state {
			case stateDetail, stateCanon:
				m.state = stateList
				m.query.Blur()
				return m, m.filter.Focus()
			default:
				return m, tea.Quit
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.types = msg.types
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateList:
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
	case stateCanon:
		m.query, cmd = m.query.Update(msg)
	}
	return m, cmd
}

// canon reports the canonical forms of a type name under every policy.
func (m *browserModel) canon(name string) (string, error) {
	t, err := m.session.Type(name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %s\n", "type:", t)
	for _, kind := range []typesystem.CanonicalFormKind{typesystem.CanonicalFormSpecific, typesystem.CanonicalFormUniversal} {
		fmt.Fprintf(&b, "%-10s %s\n", kind.String()+":", t.ConvertToCanonForm(kind))
	}
	fmt.Fprintf(&b, "%-10s %t", "canonical:", t.IsCanonicalSubtype(typesystem.CanonicalFormAny))
	return b.String(), nil
}

func (m *browserModel) View() string {
	if m.err != nil && m.state != stateCanon {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.types == nil {
		return "Loading types..."
	}

	var b strings.Builder
	b.WriteString(scopeStyle.Render("NativeFormat"))
	b.WriteString(" ")
	b.WriteString(m.session.path)
	b.WriteString("\n\n")

	switch m.state {
	case stateList:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		start := 0
		if m.selected >= pageSize {
			start = m.selected - pageSize + 1
		}
		for i := start; i < len(m.visible) && i < start+pageSize; i++ {
			e := m.types[m.visible[i]]
			line := e.scope + "  " + e.typ.String()
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\n%d of %d types\n", len(m.visible), len(m.types))
		b.WriteString(helpStyle.Render("↑/↓ select • enter members • tab canonical form • esc quit"))

	case stateDetail:
		e := m.types[m.visible[m.selected]]
		b.WriteString(typeHeader(e.typ))
		b.WriteString("\n\n")
		for _, line := range typeMembers(e.typ) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • tab canonical form"))

	case stateCanon:
		b.WriteString(m.query.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else if m.result != "" {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter convert • esc back"))
	}
	return b.String()
}

func runBrowser(s *session) error {
	p := tea.NewProgram(newBrowserModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
