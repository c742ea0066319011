package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tipy-dev/tipy/internal/dispatch"
)

type dialogKind int

const (
	dialogError dialogKind = iota
	dialogWarning
	dialogConfirm
)

// dialog is a blocking message box. Confirm dialogs run onYes when
// accepted.
type dialog struct {
	kind    dialogKind
	message string
	onYes   func() tea.Cmd
}

func errorDialog(err error) *dialog {
	sev, msg := dispatch.Classify(err)
	kind := dialogError
	if sev == dispatch.SeverityWarning {
		kind = dialogWarning
	}
	return &dialog{kind: kind, message: msg}
}

func confirmDialog(prompt string, onYes func() tea.Cmd) *dialog {
	return &dialog{kind: dialogConfirm, message: prompt, onYes: onYes}
}

// Update reports whether the dialog is done and the command to run.
func (d *dialog) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	if d.kind != dialogConfirm {
		switch msg.String() {
		case "enter", "esc", " ", "q":
			return true, nil
		}
		return false, nil
	}
	switch msg.String() {
	case "y", "Y", "enter":
		return true, d.onYes()
	case "n", "N", "esc", "q":
		return true, nil
	}
	return false, nil
}

func (d *dialog) View(width, height int) string {
	var title, hint string
	switch d.kind {
	case dialogConfirm:
		title, hint = confirmTitleStyle.Render("Confirm"), "y: yes · n: no"
	case dialogWarning:
		title, hint = warnTitleStyle.Render("Warning"), "enter: ok"
	default:
		title, hint = errorTitleStyle.Render("Error"), "enter: ok"
	}
	body := lipgloss.NewStyle().Width(min(60, max(width-8, 20))).Render(d.message)
	box := dialogStyle.Render(strings.Join([]string{title, "", body, "", statusStyle.Render(hint)}, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// prompt asks for one line of text.
type prompt struct {
	title    string
	input    textinput.Model
	onSubmit func(string) tea.Cmd
}

func newPrompt(title, placeholder string, onSubmit func(string) tea.Cmd) *prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Focus()
	return &prompt{title: title, input: ti, onSubmit: onSubmit}
}

// Update reports whether the prompt is done and the command to run.
func (p *prompt) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return true, p.onSubmit(p.input.Value())
	case "esc":
		return true, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return false, cmd
}

func (p *prompt) View(width int) string {
	p.input.Width = max(width-4, 10)
	return titleStyle.Render(p.title) + "\n" + p.input.View() + "\n" +
		statusStyle.Render("enter: submit · esc: cancel")
}
