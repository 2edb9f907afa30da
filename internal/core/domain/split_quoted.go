package domain

import "strings"

type scanState int

const (
	stateCode scanState = iota
	stateQuote
	stateLineComment
	stateBlockComment
)

// splitQuoted splits on ';' outside of quoted text and comments.
// Quotes are ', " and `; a doubled quote character inside a quoted run
// is an escaped quote. Comments are removed from the statement text and
// each statement keeps its terminating ';'. Text after the last ';' is
// returned as a final statement when it is not blank.
func splitQuoted(text string) []located {
	var (
		out   []located
		cur   strings.Builder
		state = stateCode
		quote rune
		line  = 1
	)

	flush := func(withTerminator bool) {
		if withTerminator {
			cur.WriteByte(';')
		}
		stmt := strings.TrimSpace(cur.String())
		cur.Reset()
		if stmt == "" || stmt == ";" {
			return
		}
		out = append(out, located{line: line, text: stmt})
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch state {
		case stateCode:
			switch {
			case r == '\'' || r == '"' || r == '`':
				state = stateQuote
				quote = r
				cur.WriteRune(r)
			case r == '-' && next == '-':
				state = stateLineComment
				i++
			case r == '/' && next == '*':
				state = stateBlockComment
				i++
			case r == ';':
				flush(true)
			default:
				cur.WriteRune(r)
			}
		case stateQuote:
			cur.WriteRune(r)
			if r == quote {
				if next == quote {
					cur.WriteRune(next)
					i++
				} else {
					state = stateCode
				}
			}
		case stateLineComment:
			if r == '\n' {
				state = stateCode
				cur.WriteRune(r)
			}
		case stateBlockComment:
			if r == '*' && next == '/' {
				state = stateCode
				i++
				cur.WriteRune(' ')
			}
		}

		if r == '\n' {
			line++
		}
	}
	flush(false)
	return out
}
