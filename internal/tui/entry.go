package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tipy-dev/tipy/internal/session"
	"github.com/tipy-dev/tipy/internal/textenc"
)

// Entry form fields, in focus order.
const (
	fieldMode = iota
	fieldPath
	fieldDelimiter
	fieldEncoding
	fieldCount
)

var titleCase = cases.Title(language.English)

// entryForm collects a session.Request.
type entryForm struct {
	mode   session.Mode
	focus  int
	inputs [fieldCount]textinput.Model
}

func newEntryForm(defaults session.Request) *entryForm {
	f := &entryForm{mode: defaults.Mode}
	for i := fieldPath; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 1024
		f.inputs[i] = ti
	}
	f.inputs[fieldPath].Placeholder = "data.csv or shop.db"
	f.inputs[fieldPath].SetValue(defaults.Path)
	f.inputs[fieldDelimiter].Placeholder = ","
	f.inputs[fieldDelimiter].CharLimit = 3
	f.inputs[fieldDelimiter].SetValue(defaults.Delimiter)
	f.inputs[fieldEncoding].Placeholder = textenc.Default
	f.inputs[fieldEncoding].ShowSuggestions = true
	f.inputs[fieldEncoding].SetSuggestions(textenc.Names())
	f.inputs[fieldEncoding].SetValue(defaults.Encoding)
	f.setFocus(fieldPath)
	return f
}

func (f *entryForm) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := fieldPath; j < fieldCount; j++ {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// Request returns what the form holds.
func (f *entryForm) Request() session.Request {
	return session.Request{
		Mode:      f.mode,
		Path:      strings.TrimSpace(f.inputs[fieldPath].Value()),
		Delimiter: f.inputs[fieldDelimiter].Value(),
		Encoding:  strings.TrimSpace(f.inputs[fieldEncoding].Value()),
	}
}

// Update handles navigation and typing. It reports whether the form was
// submitted.
func (f *entryForm) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return true, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil
	}

	if f.focus == fieldMode {
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			if f.mode == session.Edit {
				f.mode = session.Create
			} else {
				f.mode = session.Edit
			}
		}
		return false, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f *entryForm) View(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TIPY"))
	b.WriteString("\n\n")

	label := func(i int, name string) string {
		if f.focus == i {
			return focusLabelStyle.Render(name)
		}
		return labelStyle.Render(name)
	}

	modes := make([]string, 0, 2)
	for _, m := range []session.Mode{session.Edit, session.Create} {
		name := titleCase.String(m.String())
		if m == f.mode {
			modes = append(modes, activeTabStyle.Render(name))
		} else {
			modes = append(modes, tabStyle.Render(name))
		}
	}
	b.WriteString(label(fieldMode, "Mode") + strings.Join(modes, " "))
	b.WriteString("\n")
	b.WriteString(label(fieldPath, "Path") + f.inputs[fieldPath].View() + "\n")
	b.WriteString(label(fieldDelimiter, "Delimiter") + f.inputs[fieldDelimiter].View() + "\n")
	b.WriteString(label(fieldEncoding, "Encoding") + f.inputs[fieldEncoding].View() + "\n\n")

	hint := "Delimiter and encoding are used for CSV files and new tables."
	if f.mode == session.Create {
		hint = "Path is not needed: new tables are saved with ctrl+s."
	}
	b.WriteString(statusStyle.Render(hint))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("tab: next field · ←/→: mode · enter: open · esc: back"))

	return lipgloss.NewStyle().MaxWidth(max(width, 20)).Render(b.String())
}
