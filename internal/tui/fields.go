package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.Width = 32
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	return in
}

type field struct {
	key   string
	label string
	input textinput.Model
}

// fieldSet is a vertical stack of labelled inputs with one focused.
type fieldSet struct {
	fields []field
	focus  int
}

func (s *fieldSet) add(key, label, placeholder, value string) {
	in := newInput(placeholder, value)
	if len(s.fields) == 0 {
		in.Focus()
	}
	s.fields = append(s.fields, field{key: key, label: label, input: in})
}

func (s *fieldSet) move(delta int) {
	if len(s.fields) == 0 {
		return
	}
	s.fields[s.focus].input.Blur()
	s.focus = (s.focus + delta + len(s.fields)) % len(s.fields)
	s.fields[s.focus].input.Focus()
}

func (s *fieldSet) update(msg tea.Msg) tea.Cmd {
	if len(s.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	s.fields[s.focus].input, cmd = s.fields[s.focus].input.Update(msg)
	return cmd
}

func (s *fieldSet) value(key string) string {
	for _, f := range s.fields {
		if f.key == key {
			return f.input.Value()
		}
	}
	return ""
}

func (s *fieldSet) view() string {
	var b strings.Builder
	for i, f := range s.fields {
		label := labelStyle.Render(f.label)
		if i == s.focus {
			label = focusStyle.Render(f.label)
		}
		b.WriteString(label + f.input.View())
		if i < len(s.fields)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
