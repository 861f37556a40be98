package query

import (
	"fmt"
	"strings"
)

// JoinMode decides how separate command-line words become one query.
type JoinMode string

const (
	// JoinSpace puts a single blank between words. Shell quoting then
	// makes no difference: `CHECK CLASS "(a b)"` and `CHECK CLASS (a b)`
	// produce the same query.
	JoinSpace JoinMode = "space"

	// JoinConcat glues words with no separator at all, for hosts that
	// split the line themselves and pass the query as a single word.
	JoinConcat JoinMode = "concat"
)

// ParseJoinMode validates a mode name; "" means JoinSpace.
func ParseJoinMode(s string) (JoinMode, error) {
	switch JoinMode(strings.ToLower(s)) {
	case "", JoinSpace:
		return JoinSpace, nil
	case JoinConcat:
		return JoinConcat, nil
	}
	return "", fmt.Errorf("unknown join mode %q (want %q or %q)", s, JoinSpace, JoinConcat)
}

// Join builds the query text from external argument words and trims the
// surrounding whitespace.
func Join(words []string, mode JoinMode) string {
	sep := " "
	if mode == JoinConcat {
		sep = ""
	}
	return strings.TrimSpace(strings.Join(words, sep))
}
