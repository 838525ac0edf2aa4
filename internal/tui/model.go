package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oplab/lab400/internal/screen"
	"github.com/oplab/lab400/internal/server"
)

// frameSource is the connection as the model sees it.
type frameSource interface {
	Send(server.Action) error
	WaitFrame() tea.Cmd
	Close() error
}

// fieldRef locates one input field within the current frame.
type fieldRef struct {
	row      int
	span     int
	id       string
	width    int
	password bool
}

// Model renders server frames and turns terminal keys into actions.
// All state lives on the server; the model only tracks unsent keystrokes
// and which field has the cursor.
type Model struct {
	client frameSource
	frame  server.Frame
	fields []fieldRef
	values map[string]string
	focus  int
	input  textinput.Model

	width  int
	height int
	err    error
}

func NewModel(client frameSource) Model {
	input := textinput.New()
	input.Prompt = ""
	input.TextStyle = focusedStyle
	return Model{
		client: client,
		values: map[string]string{},
		focus:  -1,
		input:  input,
	}
}

func (m Model) Init() tea.Cmd {
	if err := m.client.Send(server.Action{Action: "init"}); err != nil {
		return func() tea.Msg { return connErrMsg{err: err} }
	}
	return tea.Batch(m.client.WaitFrame(), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.applyFrame(server.Frame(msg))
		if m.frame.Terminated {
			_ = m.client.Close()
			return m, tea.Quit
		}
		return m, m.client.WaitFrame()

	case connErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		_ = m.client.Close()
		return m, tea.Quit

	case tea.KeyTab:
		m.captureInput()
		m.moveFocus(1)
		return m, nil

	case tea.KeyShiftTab:
		m.captureInput()
		m.moveFocus(-1)
		return m, nil

	case tea.KeyEnter:
		m.captureInput()
		return m, m.send(server.Action{Action: "submit", Fields: m.values})

	case tea.KeyPgDown:
		m.captureInput()
		return m, m.send(server.Action{Action: "roll", Dir: "down", Fields: m.values})

	case tea.KeyPgUp:
		m.captureInput()
		return m, m.send(server.Action{Action: "roll", Dir: "up", Fields: m.values})

	case tea.KeyEsc:
		m.captureInput()
		return m, m.send(server.Action{
			Action: "function_key", Key: "F12",
			Field: m.focusedID(), Fields: m.values,
		})
	}

	if fkey, ok := functionKeyName(msg.Type); ok {
		m.captureInput()
		return m, m.send(server.Action{
			Action: "function_key", Key: fkey,
			Field: m.focusedID(), Fields: m.values,
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send writes the action; the response arrives through the already
// pending WaitFrame command.
func (m *Model) send(action server.Action) tea.Cmd {
	if err := m.client.Send(action); err != nil {
		return func() tea.Msg { return connErrMsg{err: err} }
	}
	return nil
}

// applyFrame replaces the displayed screen and rebinds field state.
func (m *Model) applyFrame(frame server.Frame) {
	m.frame = frame
	m.fields = m.fields[:0]
	m.values = map[string]string{}
	m.focus = -1

	for ri, row := range frame.Rows {
		for si, span := range row {
			if span.Type != "field" {
				continue
			}
			m.fields = append(m.fields, fieldRef{
				row: ri, span: si,
				id: span.ID, width: span.Width, password: span.Password,
			})
			m.values[span.ID] = span.Value
			if span.ID == frame.Focus {
				m.focus = len(m.fields) - 1
			}
		}
	}
	if m.focus < 0 && len(m.fields) > 0 {
		m.focus = 0
	}
	m.syncInput()
}

// captureInput folds the live textinput value back into the field map.
func (m *Model) captureInput() {
	if m.focus >= 0 && m.focus < len(m.fields) {
		m.values[m.fields[m.focus].id] = m.input.Value()
	}
}

func (m *Model) moveFocus(delta int) {
	if len(m.fields) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.syncInput()
}

// syncInput points the shared textinput at the focused field.
func (m *Model) syncInput() {
	if m.focus < 0 || m.focus >= len(m.fields) {
		m.input.Blur()
		return
	}
	ref := m.fields[m.focus]
	m.input.CharLimit = ref.width
	m.input.Width = ref.width
	if ref.password {
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '*'
	} else {
		m.input.EchoMode = textinput.EchoNormal
	}
	m.input.SetValue(m.values[ref.id])
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) focusedID() string {
	if m.focus >= 0 && m.focus < len(m.fields) {
		return m.fields[m.focus].id
	}
	return ""
}

func (m Model) View() string {
	if m.err != nil {
		return disconnectedStyle.Render("Connection lost: "+m.err.Error()) + "\n"
	}
	if m.frame.Screen == "" {
		return statusStyle.Render("Connecting...") + "\n"
	}

	var b strings.Builder
	fieldIdx := 0
	for _, row := range m.frame.Rows {
		for _, span := range row {
			if span.Type == "field" {
				b.WriteString(m.renderField(span, fieldIdx == m.focus))
				fieldIdx++
				continue
			}
			b.WriteString(spanStyle(span.Class).Render(span.Text))
		}
		b.WriteString("\n")
	}

	if m.frame.Message != "" {
		b.WriteString(messageStyle(m.frame.MessageLevel)(m.frame.Message))
		b.WriteString("\n")
	}
	if legend := keyLegend(m.frame.Keys); legend != "" {
		b.WriteString(keyLegendStyle.Render(legend))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderField(span screen.Span, focused bool) string {
	if focused {
		// The textinput draws its own cursor; styling the rendered
		// string again would mangle its escape sequences.
		return m.input.View()
	}
	value := m.values[span.ID]
	if span.Password {
		value = strings.Repeat("*", len(value))
	}
	return fieldStyle.Render(padTo(value, span.Width))
}

func messageStyle(level screen.Level) func(...string) string {
	switch level {
	case screen.LevelError:
		return msgErrorStyle.Render
	case screen.LevelWarning:
		return msgWarnStyle.Render
	default:
		return msgInfoStyle.Render
	}
}

func keyLegend(keys []screen.Key) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k.Key+"="+k.Label)
	}
	return strings.Join(parts, "  ")
}

func padTo(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func functionKeyName(t tea.KeyType) (string, bool) {
	switch t {
	case tea.KeyF1:
		return "F1", true
	case tea.KeyF2:
		return "F2", true
	case tea.KeyF3:
		return "F3", true
	case tea.KeyF4:
		return "F4", true
	case tea.KeyF5:
		return "F5", true
	case tea.KeyF6:
		return "F6", true
	case tea.KeyF7:
		return "F7", true
	case tea.KeyF8:
		return "F8", true
	case tea.KeyF9:
		return "F9", true
	case tea.KeyF10:
		return "F10", true
	case tea.KeyF11:
		return "F11", true
	case tea.KeyF12:
		return "F12", true
	}
	return "", false
}
