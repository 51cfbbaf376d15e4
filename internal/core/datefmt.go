package core

import "strings"

type fmtToken struct {
	ch  byte // lowercased date part letter, 'a' for AM/PM, 0 for literal
	n   int
	lit string
}

// GoLayout translates an Excel date/time number format such as
// "yyyy/dd/MM HH:mm:ss" into the equivalent Go time layout.
//
// Letters are case-insensitive as in Excel. "m" and "mm" mean minutes when
// they follow an hour or precede seconds, and months otherwise.
func GoLayout(excelFmt string) string {
	toks := tokenizeDateFormat(excelFmt)

	ampm := false
	for _, t := range toks {
		if t.ch == 'a' {
			ampm = true
			break
		}
	}

	var b strings.Builder
	for i, t := range toks {
		switch t.ch {
		case 0:
			b.WriteString(t.lit)
		case 'a':
			b.WriteString("PM")
		case 'y':
			if t.n <= 2 {
				b.WriteString("06")
			} else {
				b.WriteString("2006")
			}
		case 'm':
			if t.n <= 2 && isMinute(toks, i) {
				b.WriteString(pick(t.n, "4", "04"))
			} else {
				b.WriteString(pick(t.n, "1", "01", "Jan", "January"))
			}
		case 'd':
			b.WriteString(pick(t.n, "2", "02", "Mon", "Monday"))
		case 'h':
			if ampm {
				b.WriteString(pick(t.n, "3", "03"))
			} else {
				b.WriteString("15")
			}
		case 's':
			b.WriteString(pick(t.n, "5", "05"))
		}
	}
	return b.String()
}

func tokenizeDateFormat(f string) []fmtToken {
	var toks []fmtToken
	for i := 0; i < len(f); {
		c := f[i]
		lc := c | 0x20
		switch {
		case c == '"':
			end := strings.IndexByte(f[i+1:], '"')
			if end < 0 {
				toks = append(toks, fmtToken{lit: f[i+1:]})
				return toks
			}
			toks = append(toks, fmtToken{lit: f[i+1 : i+1+end]})
			i += end + 2
		case c == '\\' && i+1 < len(f):
			toks = append(toks, fmtToken{lit: f[i+1 : i+2]})
			i += 2
		case len(f)-i >= 5 && strings.EqualFold(f[i:i+5], "AM/PM"):
			toks = append(toks, fmtToken{ch: 'a'})
			i += 5
		case lc == 'y' || lc == 'm' || lc == 'd' || lc == 'h' || lc == 's':
			j := i
			for j < len(f) && f[j]|0x20 == lc {
				j++
			}
			toks = append(toks, fmtToken{ch: lc, n: j - i})
			i = j
		case c == '.' && i+1 < len(f) && f[i+1] == '0' && lastPart(toks) == 's':
			j := i + 1
			for j < len(f) && f[j] == '0' {
				j++
			}
			toks = append(toks, fmtToken{lit: f[i:j]})
			i = j
		default:
			toks = append(toks, fmtToken{lit: f[i : i+1]})
			i++
		}
	}
	return toks
}

// isMinute resolves the m/mm ambiguity by looking at the neighboring parts.
func isMinute(toks []fmtToken, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if toks[j].ch != 0 && toks[j].ch != 'a' {
			if toks[j].ch == 'h' {
				return true
			}
			break
		}
	}
	for j := i + 1; j < len(toks); j++ {
		if toks[j].ch != 0 && toks[j].ch != 'a' {
			return toks[j].ch == 's'
		}
	}
	return false
}

func lastPart(toks []fmtToken) byte {
	for j := len(toks) - 1; j >= 0; j-- {
		if toks[j].ch != 0 {
			return toks[j].ch
		}
	}
	return 0
}

// pick returns forms[n-1], clamped to the longest form.
func pick(n int, forms ...string) string {
	if n > len(forms) {
		n = len(forms)
	}
	return forms[n-1]
}
