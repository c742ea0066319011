// Package guide holds the usage instructions shown by the instructions
// screen and the guide command.
package guide

import (
	_ "embed"
	"strings"
)

//go:embed guide.md
var text string

// Text returns the whole guide.
func Text() string { return text }

// Topics returns the section headings in order.
func Topics() []string {
	var topics []string
	for _, line := range strings.Split(text, "\n") {
		if t, ok := strings.CutPrefix(line, "## "); ok {
			topics = append(topics, strings.TrimSpace(t))
		}
	}
	return topics
}

// Section returns the body of the section titled topic, matched without
// regard to case.
func Section(topic string) (string, bool) {
	var b strings.Builder
	in := false
	for _, line := range strings.Split(text, "\n") {
		if t, ok := strings.CutPrefix(line, "## "); ok {
			if in {
				break
			}
			in = strings.EqualFold(strings.TrimSpace(t), topic)
			continue
		}
		if in {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if !in {
		return "", false
	}
	return strings.TrimSpace(b.String()), true
}
