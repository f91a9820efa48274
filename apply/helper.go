package apply

import (
	"github.com/samthor/otext/ot"
)

// Nullable applies ops unless they are nil, in which case state is returned as-is with no undo.
func Nullable[S any](a Applier[S], state S, ops []ot.Op) (S, []ot.Op, error) {
	if ops == nil {
		return state, nil, nil
	}
	return a.Apply(state, ops)
}

// Simple applies ops and discards the undo.
func Simple[S any](a Applier[S], state S, ops []ot.Op) (S, error) {
	out, _, err := a.Apply(state, ops)
	return out, err
}

// NullableSimple is Nullable without the undo.
func NullableSimple[S any](a Applier[S], state S, ops []ot.Op) (S, error) {
	out, _, err := Nullable(a, state, ops)
	return out, err
}
