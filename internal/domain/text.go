package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// PlainText strips escape sequences and control characters from text supplied by the
// quiz service so it can only ever be displayed, never interpreted by a terminal.
// Newlines and tabs become spaces.
func PlainText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\x1b':
			i = skipEscape(runes, i)
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// skipEscape returns the index of the last rune of the escape sequence starting at i.
func skipEscape(runes []rune, i int) int {
	if i+1 >= len(runes) {
		return i
	}
	switch runes[i+1] {
	case '[':
		// CSI: parameters then a final byte in @..~
		for j := i + 2; j < len(runes); j++ {
			if runes[j] >= '@' && runes[j] <= '~' {
				return j
			}
		}
		return len(runes) - 1
	case ']':
		// OSC: terminated by BEL or ST (ESC \)
		for j := i + 2; j < len(runes); j++ {
			if runes[j] == '\a' {
				return j
			}
			if runes[j] == '\x1b' && j+1 < len(runes) && runes[j+1] == '\\' {
				return j + 1
			}
		}
		return len(runes) - 1
	default:
		return i + 1
	}
}

// FormatRemaining renders a countdown as m:ss, clamping negative durations to zero.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ConfirmPrompt builds the confirmation question shown before a manual submission.
func ConfirmPrompt(unanswered int) string {
	msg := "Are you sure you want to submit your quiz?"
	if unanswered > 0 {
		suffix := ""
		if unanswered > 1 {
			suffix = "s"
		}
		msg += fmt.Sprintf("\n\nYou have %d unanswered question%s.", unanswered, suffix)
	}
	return msg
}
