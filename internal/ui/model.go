package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sharefind/internal/domain"
	"sharefind/internal/eventbus"
	"sharefind/internal/sharee"
)

// maxVisibleRows caps the rendered result list
const maxVisibleRows = 15

// Model is the Bubble Tea model for the typeahead view. It owns no search
// state of its own: the query box feeds the sharee model and the rendered
// list is read back from it when results become ready.
type Model struct {
	sharees *sharee.Model
	styles  *Styles

	input   textinput.Model
	spin    spinner.Model
	server  string

	fetching bool
	count    int
	selected int
	errMsg   string
	width    int
	height   int
}

// NewModel creates the typeahead UI around an already-wired sharee model
func NewModel(sharees *sharee.Model, server string) *Model {
	input := textinput.New()
	input.Placeholder = "Type a name, group or email..."
	input.Prompt = "search> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		sharees: sharees,
		styles:  NewStyles(),
		input:   input,
		spin:    spin,
		server:  server,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < m.count-1 {
				m.selected++
			}
			return m, nil
		case "tab":
			if m.sharees.LookupMode() == domain.GlobalSearch {
				m.sharees.SetLookupMode(domain.LocalSearch)
			} else {
				m.sharees.SetLookupMode(domain.GlobalSearch)
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.sharees.SetSearchText(after)
		}
		return m, cmd

	case EventMsg:
		return m.handleEvent(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleEvent reacts to forwarded domain events
func (m *Model) handleEvent(msg EventMsg) (tea.Model, tea.Cmd) {
	switch event := msg.Event.(type) {
	case eventbus.FetchStateChangedEvent:
		m.fetching = event.Fetching
		if event.Fetching {
			m.errMsg = ""
		}
	case eventbus.ResultsReadyEvent:
		m.count = event.Count
		if m.selected >= m.count {
			m.selected = 0
		}
	case eventbus.SearchErrorEvent:
		m.errMsg = fmt.Sprintf("search failed (%d): %s", event.StatusCode, event.Message)
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	title := "sharefind"
	if m.server != "" {
		title += " · " + m.server
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	mode := m.styles.Mode.Render("[" + m.sharees.LookupMode().String() + "]")
	b.WriteString(m.input.View() + " " + mode)
	if m.fetching {
		b.WriteString(" " + m.spin.View())
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	rows := m.count
	if rows > maxVisibleRows {
		rows = maxVisibleRows
	}
	for i := 0; i < rows; i++ {
		s, ok := m.sharees.ShareeAt(i)
		if !ok {
			break
		}
		badge := m.styles.TypeBadge.Render(fmt.Sprintf("%-7s", s.Type))
		line := fmt.Sprintf("%s %s", badge, s.Format())
		target := m.styles.Dim.Render(" <" + s.ShareWith + ">")
		if i == m.selected {
			b.WriteString(m.styles.SelectedRow.Render(line) + target)
		} else {
			b.WriteString(m.styles.Row.Render(line) + target)
		}
		b.WriteString("\n")
	}
	if m.count > rows {
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("… %d more", m.count-rows)))
		b.WriteString("\n")
	}
	if m.count == 0 && !m.fetching && m.input.Value() != "" && m.errMsg == "" {
		b.WriteString(m.styles.Dim.Render("no recipients found"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/↓ select · tab toggle local/global · esc quit"))
	b.WriteString("\n")

	return b.String()
}
