package output

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// terminalSafe removes escape sequences and control characters from
// untrusted text. Newlines and tabs are kept when multiline is set and become
// spaces otherwise.
func terminalSafe(s string, multiline bool) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			if multiline {
				return r
			}
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, ansi.Strip(s))
}
