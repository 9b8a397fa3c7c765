package chat

import "fmt"

// Answer is what a surface shows for one user turn. Source is set only when
// a bill detail lookup succeeded.
type Answer struct {
	Text     string
	Function string
	Source   string
}

// Markdown renders the reply with the source link line, if any.
func (a Answer) Markdown() string {
	if a.Source == "" {
		return a.Text
	}
	return fmt.Sprintf("%s\n\n[🔗 Read the full bill here](%s)", a.Text, a.Source)
}
