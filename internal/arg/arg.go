// Package arg defines the parsed form of a query: a tree whose nodes are
// either a single token (leaf) or an ordered group of nodes (list).
package arg

import (
	"strconv"
	"strings"

	"github.com/funvibe/typeprobe/internal/diagnostics"
)

type Kind int

const (
	Leaf Kind = iota
	List
)

func (k Kind) String() string {
	if k == List {
		return "list"
	}
	return "leaf"
}

// Arg is a tagged union of Leaf(text) and List(items).
// The zero value is an empty leaf.
type Arg struct {
	kind  Kind
	text  string
	items []Arg
}

// NewLeaf returns a token node.
func NewLeaf(text string) Arg {
	return Arg{kind: Leaf, text: text}
}

// NewList returns a group node holding items in order.
func NewList(items ...Arg) Arg {
	if items == nil {
		items = []Arg{}
	}
	return Arg{kind: List, items: items}
}

// Leaves is shorthand for a list of leaf nodes.
func Leaves(texts ...string) Arg {
	items := make([]Arg, len(texts))
	for i, t := range texts {
		items[i] = NewLeaf(t)
	}
	return NewList(items...)
}

func (a Arg) Kind() Kind   { return a.kind }
func (a Arg) IsLeaf() bool { return a.kind == Leaf }
func (a Arg) IsList() bool { return a.kind == List }

// Text returns the token of a leaf. Reading a list this way is a
// type mismatch.
func (a Arg) Text() (string, error) {
	if a.kind == List {
		return "", diagnostics.NewError(diagnostics.ErrQ004, a.String(), a.String())
	}
	return a.text, nil
}

// Items views the node as a list: a leaf is a list of itself.
func (a Arg) Items() []Arg {
	if a.kind == Leaf {
		return []Arg{a}
	}
	return a.items
}

// Len is len(a.Items()).
func (a Arg) Len() int {
	if a.kind == Leaf {
		return 1
	}
	return len(a.items)
}

// At returns the i-th item. A missing position is a malformed query.
func (a Arg) At(i int) (Arg, error) {
	items := a.Items()
	if i < 0 || i >= len(items) {
		return Arg{}, diagnostics.NewError(diagnostics.ErrQ003, a.String(),
			"missing argument at position "+strconv.Itoa(i)+" in "+a.String())
	}
	return items[i], nil
}

// AtOr returns the i-th item, or def when there is none.
func (a Arg) AtOr(i int, def Arg) Arg {
	items := a.Items()
	if i < 0 || i >= len(items) {
		return def
	}
	return items[i]
}

// Equal compares two trees structurally.
func (a Arg) Equal(b Arg) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == Leaf {
		return a.text == b.text
	}
	if len(a.items) != len(b.items) {
		return false
	}
	for i := range a.items {
		if !a.items[i].Equal(b.items[i]) {
			return false
		}
	}
	return true
}

// String renders leaves as their text and lists as [a, b, c].
func (a Arg) String() string {
	if a.kind == Leaf {
		return a.text
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range a.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(item.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
