package shell

import "unicode"

// splitWords splits a command line into argv. Single quotes, double quotes and backslash
// escapes (outside single quotes) group words.
func splitWords(s string) []string {
	var out []string
	var cur []rune
	inSingle := false
	inDouble := false
	escaped := false
	started := false

	flush := func() {
		if !started {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
		started = false
	}

	for _, r := range s {
		if escaped {
			cur = append(cur, r)
			escaped = false
			continue
		}
		switch {
		case r == '\\' && !inSingle:
			escaped = true
			started = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			started = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			started = true
		case !inSingle && !inDouble && unicode.IsSpace(r):
			flush()
		default:
			cur = append(cur, r)
			started = true
		}
	}

	flush()
	return out
}
