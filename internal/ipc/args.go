package ipc

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned by SplitArgs for an open quote.
var ErrUnterminatedQuote = errors.New("ipc: unterminated quote in command line")

// JoinArgs renders an argument vector as one command line. Arguments that
// are empty or contain whitespace, quotes or backslashes are double-quoted.
func JoinArgs(args []string) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a != "" && !strings.ContainsFunc(a, needsQuote) {
			parts = append(parts, a)
			continue
		}
		var b strings.Builder
		b.WriteByte('"')
		for _, r := range a {
			if r == '"' || r == '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		b.WriteByte('"')
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " ")
}

func needsQuote(r rune) bool {
	return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '\\'
}

// SplitArgs splits a command line with shell-like quoting: single quotes
// are literal, inside double quotes a backslash escapes only " and \,
// outside quotes it escapes any character.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			if quote == '"' && r != '"' && r != '\\' {
				cur.WriteByte('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inArg = true
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
