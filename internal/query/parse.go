// Package query turns the textual form of a probe into an arg tree.
//
// The grammar is deliberately small: tokens are separated by single blanks,
// and parentheses group tokens. Each call to Parse strips one layer of
// parentheses; a token still holding blanks is a group and is parsed again.
// Parse never fails. Unbalanced parentheses produce odd leaves instead: a
// stray closing parenthesis is kept as text and never drives the depth
// below zero, which keeps every recursive step strictly shorter.
package query

import (
	"strings"

	"github.com/funvibe/typeprobe/internal/arg"
)

// Parse splits raw into an arg tree. A single token comes back as a leaf,
// anything longer as a list.
func Parse(raw string) arg.Arg {
	items := split(raw)
	if len(items) == 1 {
		return items[0]
	}
	return arg.NewList(items...)
}

func split(raw string) []arg.Arg {
	var (
		items   []arg.Arg
		current strings.Builder
		depth   int
	)

	for _, ch := range raw + " " {
		if ch == '(' {
			depth++
		}
		if ch == ' ' && depth == 0 {
			items = append(items, token(current.String()))
			current.Reset()
		} else if depth != 1 || (ch != '(' && ch != ')') {
			current.WriteRune(ch)
		}
		if ch == ')' && depth > 0 {
			depth--
		}
	}

	return items
}

// token classifies one accumulated token: text that still holds a blank
// came from a nested group and is parsed one layer deeper.
func token(text string) arg.Arg {
	if strings.Contains(text, " ") {
		return arg.NewList(split(text)...)
	}
	return arg.NewLeaf(text)
}
