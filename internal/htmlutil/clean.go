package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts recommendation markup to plain text, one trimmed line
// per paragraph. Strings without tags or entities are only trimmed.
func ToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	text := strings.ReplaceAll(html2text.HTML2Text(s), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
