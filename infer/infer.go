// Package infer guesses the edit between two snapshots of text.
package infer

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/samthor/otext/ot"
)

// Infer returns ops which turn oldText into newText, or nil if they are the same.
//
// This assumes a single contiguous change, which is what a user typing, pasting or deleting a selection produces.
// Two separate changes are reported as one larger replacement that covers both.
// Common prefix and suffix are matched by grapheme cluster, so an edit never splits a cluster.
// Bytes that are not valid UTF-8 each count as one character and are copied unchanged.
func Infer(oldText, newText string) []ot.Op {
	if oldText == newText {
		return nil
	}
	if newText == "" {
		return []ot.Op{ot.Remove(utf8.RuneCountInString(oldText))}
	}
	if oldText == "" {
		return []ot.Op{ot.Insert(newText)}
	}

	oldParts := clusters(oldText)
	newParts := clusters(newText)

	// Suffix first, bounded so that it never eats into the shorter text entirely.
	bound := min(len(oldParts), len(newParts))
	var postfix, postfixRunes int
	for postfix < bound {
		o := oldParts[len(oldParts)-1-postfix]
		if o != newParts[len(newParts)-1-postfix] {
			break
		}
		postfix++
		postfixRunes += utf8.RuneCountInString(o)
	}
	oldParts = oldParts[:len(oldParts)-postfix]
	newParts = newParts[:len(newParts)-postfix]

	var prefix, prefixRunes int
	for prefix < min(len(oldParts), len(newParts)) {
		o := oldParts[prefix]
		if o != newParts[prefix] {
			break
		}
		prefix++
		prefixRunes += utf8.RuneCountInString(o)
	}

	var middle []byte
	for _, part := range newParts[prefix:] {
		middle = append(middle, part...)
	}

	oldLen := utf8.RuneCountInString(oldText)
	return ot.Simplify([]ot.Op{
		ot.Retain(prefixRunes),
		ot.Remove(oldLen - postfixRunes - prefixRunes),
		ot.Insert(string(middle)),
	})
}

// clusters splits s into its grapheme clusters.
func clusters(s string) (out []string) {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
