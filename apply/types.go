// Package apply advances state by operation lists.
package apply

import (
	"github.com/samthor/otext/ot"
)

// Fingerprint is a cheap token identifying a state.
// Replicas with different fingerprints have diverged.
type Fingerprint uint64

// Applier applies operation lists to some state S.
type Applier[S any] interface {
	// Initial returns the empty state.
	Initial() S

	// Fingerprint returns a token for comparing states between replicas.
	Fingerprint(state S) Fingerprint

	// Apply applies ops to state, returning the new state and ops that undo the change.
	// On error, the returned state is the zero S and the passed state is untouched.
	Apply(state S, ops []ot.Op) (S, []ot.Op, error)
}

// Cursor is a selection as rune offsets into text.
type Cursor struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DocumentState is text along with a cursor into it.
type DocumentState struct {
	Text   string `json:"text"`
	Cursor Cursor `json:"cursor"`
}
