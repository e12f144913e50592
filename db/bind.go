package db

import (
	"strconv"
	"strings"
)

// BindStyle is the placeholder syntax a driver accepts.
type BindStyle int

const (
	// BindQuestion keeps `?` placeholders (sqlite3, mysql).
	BindQuestion BindStyle = iota
	// BindDollar numbers placeholders `$1..$n` (postgres, pgx).
	BindDollar
)

// Rebind rewrites the `?` placeholders of query into style. Question marks
// inside single-quoted literals, double-quoted identifiers and comments are
// left alone. Queries are always authored with `?`.
func Rebind(style BindStyle, query string) string {
	if style == BindQuestion || strings.IndexByte(query, '?') < 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' || c == '"':
			end := closingQuote(query, i+1, c)
			b.WriteString(query[i:end])
			i = end - 1
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				b.WriteString(query[i:])
				return b.String()
			}
			b.WriteString(query[i : i+end])
			i += end - 1
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closingQuote returns the index just past the quote that closes the literal
// opened before start. A doubled quote is an escaped quote.
func closingQuote(s string, start int, q byte) int {
	for i := start; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}
