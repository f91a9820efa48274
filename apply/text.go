package apply

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/samthor/otext/ot"
)

// Text applies operation lists to a string.
type Text struct{}

var _ Applier[string] = Text{}

func (Text) Initial() string {
	return ""
}

func (Text) Fingerprint(text string) Fingerprint {
	return Fingerprint(xxhash.Sum64String(text))
}

// Apply walks text by rune, copying untouched bytes as they are.
// Invalid UTF-8 bytes count as one character each and survive unchanged.
func (Text) Apply(text string, ops []ot.Op) (string, []ot.Op, error) {
	if err := ot.Validate(ops); err != nil {
		return "", nil, err
	}

	var out strings.Builder
	out.Grow(len(text))
	undo := make([]ot.Op, 0, len(ops))
	rest := text // not yet walked

	for _, op := range ops {
		switch op := op.(type) {
		case ot.Insert:
			out.WriteString(string(op))
			undo = append(undo, ot.Remove(op.Len()))

		case ot.Remove:
			head, tail, ok := cutRunes(rest, int(op))
			if !ok {
				return "", nil, fmt.Errorf("%w: remove %d, only %d left", ot.ErrOutOfRange, int(op), utf8.RuneCountInString(rest))
			}
			undo = append(undo, ot.Insert(head))
			rest = tail

		case ot.Retain:
			head, tail, ok := cutRunes(rest, int(op))
			if !ok {
				return "", nil, fmt.Errorf("%w: retain %d, only %d left", ot.ErrOutOfRange, int(op), utf8.RuneCountInString(rest))
			}
			out.WriteString(head)
			undo = append(undo, op)
			rest = tail
		}
	}

	out.WriteString(rest)
	return out.String(), ot.Simplify(undo), nil
}

// cutRunes splits s after n runes.
// Returns false if s is shorter than that.
func cutRunes(s string, n int) (head, tail string, ok bool) {
	var at int
	for range n {
		if at >= len(s) {
			return "", "", false
		}
		_, size := utf8.DecodeRuneInString(s[at:])
		at += size
	}
	return s[:at], s[at:], true
}
