package param

import (
	"strings"
)

// Parse breaks a parameterized header value into a Set. It never fails. Commas
// and semicolons inside double quotes are not separators. Inside quotes, a
// backslash escapes the following character. An unterminated quote runs to the
// end of the input. Tokens with an empty name are dropped.
func Parse(v string) Set {
	groups := splitUnquoted(v, ',')

	s := make(Set, 0, len(groups))
	for _, gs := range groups {
		tokens := splitUnquoted(gs, ';')

		g := make(Group, 0, len(tokens))
		for _, tok := range tokens {
			if p, ok := parseParam(tok); ok {
				g = append(g, p)
			}
		}

		if len(g) > 0 {
			s = append(s, g)
		}
	}

	return s
}

// splitUnquoted splits s on every sep that is not inside a double-quoted
// string.
func splitUnquoted(s string, sep byte) []string {
	var (
		parts   []string
		start   = 0
		inQuote = false
	)

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case inQuote && c == '\\':
			i++ // skip the escaped char, whatever it is
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	return append(parts, s[start:])
}

// parseParam turns "name", "name=value", or `name="value"` into a Param.
func parseParam(tok string) (Param, bool) {
	eq := indexUnquoted(tok, '=')
	if eq < 0 {
		name := strings.ToLower(unquote(strings.TrimSpace(tok)))
		return Param{Name: name}, name != ""
	}

	name := strings.ToLower(strings.TrimSpace(tok[:eq]))
	if name == "" {
		return Param{}, false
	}

	value := unquote(strings.TrimSpace(tok[eq+1:]))
	return Param{Name: name, Value: value}, true
}

// indexUnquoted is strings.IndexByte, but ignores any c inside quotes.
func indexUnquoted(s string, c byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case inQuote && s[i] == '\\':
			i++
		case s[i] == '"':
			inQuote = !inQuote
		case !inQuote && s[i] == c:
			return i
		}
	}
	return -1
}

// unquote strips a leading double quote and everything from the matching
// closing quote onward, resolving backslash escapes in between. Values that do
// not start with a quote are returned unchanged.
func unquote(v string) string {
	if len(v) == 0 || v[0] != '"' {
		return v
	}

	var b strings.Builder
	b.Grow(len(v))
	for i := 1; i < len(v); i++ {
		c := v[i]
		if c == '\\' && i+1 < len(v) {
			i++
			b.WriteByte(v[i])
			continue
		}
		if c == '"' {
			break
		}
		b.WriteByte(c)
	}

	return b.String()
}
