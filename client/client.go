// Package client tracks a local replica of a shared document.
//
// Local edits apply immediately. At most one update is in flight to the server at a time; edits made while waiting for its ack are composed into a buffer and sent once the ack arrives.
// Remote changes are transformed against the in-flight and buffered edits before they are applied.
package client

import (
	"errors"
	"fmt"

	"github.com/samthor/otext/apply"
	"github.com/samthor/otext/ot"
	"github.com/samthor/otext/protocol"
)

var (
	// ErrOutOfOrder is returned when a change is not the next one after the client's base.
	ErrOutOfOrder = errors.New("change out of order")

	// ErrDiverged is returned when the local state doesn't match the server after all local edits are acked.
	ErrDiverged = errors.New("state diverged from server")

	// ErrUnexpectedAck is returned for an ack when nothing is in flight.
	ErrUnexpectedAck = errors.New("ack with nothing in flight")
)

// Client is a local replica of a document with state S.
// It is not goroutine-safe.
type Client[S any] struct {
	applier apply.Applier[S]
	id      int
	state   S
	base    int // last change ID seen

	waiting  bool    // an update is in flight
	inflight []ot.Op // sent, waiting for ack; may be transformed away to nil
	buffer   []ot.Op // not yet sent

	undo, redo [][]ot.Op
}

// New returns a Client for the given state, which must be at change ID base.
func New[S any](a apply.Applier[S], id, base int, state S) *Client[S] {
	return &Client[S]{applier: a, id: id, base: base, state: state}
}

// ID returns the server-assigned ID of this client.
func (c *Client[S]) ID() int { return c.id }

// Base returns the last change ID seen from the server.
func (c *Client[S]) Base() int { return c.base }

// State returns the local state, including unacked edits.
func (c *Client[S]) State() S { return c.state }

// Pending returns whether there are local edits the server hasn't acked.
func (c *Client[S]) Pending() bool { return c.waiting || c.buffer != nil }

func (c *Client[S]) CanUndo() bool { return len(c.undo) != 0 }
func (c *Client[S]) CanRedo() bool { return len(c.redo) != 0 }

// SetState replaces the local state with an equivalent one, e.g., with a moved cursor.
// The fingerprint must not change.
func (c *Client[S]) SetState(state S) error {
	if c.applier.Fingerprint(state) != c.applier.Fingerprint(c.state) {
		return fmt.Errorf("%w: SetState changed content", ErrDiverged)
	}
	c.state = state
	return nil
}

// PerformEdit applies a local edit.
// If this returns a non-nil Update, it should be sent to the server.
func (c *Client[S]) PerformEdit(ops []ot.Op) (*protocol.Update, error) {
	ops = ot.Simplify(ops)
	if ops == nil {
		return nil, nil
	}

	state, undo, err := c.applier.Apply(c.state, ops)
	if err != nil {
		return nil, err
	}
	u, err := c.queue(ops)
	if err != nil {
		return nil, err
	}

	c.state = state
	c.undo = append(c.undo, undo)
	c.redo = nil
	return u, nil
}

// Undo reverts the most recent local edit that hasn't been undone.
// Remote changes since then are preserved.
func (c *Client[S]) Undo() (*protocol.Update, error) {
	return c.swap(&c.undo, &c.redo)
}

// Redo reapplies the most recently undone edit.
func (c *Client[S]) Redo() (*protocol.Update, error) {
	return c.swap(&c.redo, &c.undo)
}

func (c *Client[S]) swap(from, to *[][]ot.Op) (*protocol.Update, error) {
	if len(*from) == 0 {
		return nil, nil
	}
	ops := (*from)[len(*from)-1]

	state, inverse, err := apply.Nullable(c.applier, c.state, ops)
	if err != nil {
		return nil, err
	}
	var u *protocol.Update
	if ops != nil {
		if u, err = c.queue(ops); err != nil {
			return nil, err
		}
	}

	c.state = state
	*from = (*from)[:len(*from)-1]
	*to = append(*to, inverse)
	return u, nil
}

// queue sends ops now, or adds them to the buffer if something is already in flight.
// It only modifies c on success.
func (c *Client[S]) queue(ops []ot.Op) (*protocol.Update, error) {
	if !c.waiting {
		c.waiting = true
		c.inflight = ops
		return &protocol.Update{Base: c.base, Ops: ops}, nil
	}

	buffer, err := ot.Compose(c.buffer, ops)
	if err != nil {
		return nil, err
	}
	c.buffer = buffer
	return nil, nil
}

// HandleChange processes a change from the server.
// If this returns a non-nil Update, it should be sent to the server.
func (c *Client[S]) HandleChange(ch protocol.Change) (*protocol.Update, error) {
	if ch.ID != c.base+1 {
		return nil, fmt.Errorf("%w: got %d, at %d", ErrOutOfOrder, ch.ID, c.base)
	}

	if ch.ClientID == c.id {
		if !c.waiting {
			return nil, ErrUnexpectedAck
		}
		c.base = ch.ID
		c.inflight, c.buffer = c.buffer, nil
		c.waiting = c.inflight != nil
		if c.waiting {
			return &protocol.Update{Base: c.base, Ops: c.inflight}, nil
		}
		return nil, c.checkFingerprint(ch)
	}

	remote := []ot.Op(ch.Ops)
	inflight, remote, err := ot.TransformNullable(c.inflight, remote)
	if err != nil {
		return nil, err
	}
	buffer, remote, err := ot.TransformNullable(c.buffer, remote)
	if err != nil {
		return nil, err
	}
	state, err := apply.NullableSimple(c.applier, c.state, remote)
	if err != nil {
		return nil, err
	}
	undo, err := transformStack(c.undo, remote)
	if err != nil {
		return nil, err
	}
	redo, err := transformStack(c.redo, remote)
	if err != nil {
		return nil, err
	}

	c.base = ch.ID
	c.inflight, c.buffer = inflight, buffer
	c.state = state
	c.undo, c.redo = undo, redo
	return nil, c.checkFingerprint(ch)
}

func (c *Client[S]) checkFingerprint(ch protocol.Change) error {
	if c.Pending() || ch.Fingerprint == 0 {
		return nil
	}
	if local := c.applier.Fingerprint(c.state); local != apply.Fingerprint(ch.Fingerprint) {
		return fmt.Errorf("%w: at change %d", ErrDiverged, ch.ID)
	}
	return nil
}

// transformStack transforms every entry of an undo or redo stack so it applies after remote.
// The top entry applies to the current state, and each entry below applies to the state after the one above it.
func transformStack(stack [][]ot.Op, remote []ot.Op) ([][]ot.Op, error) {
	out := make([][]ot.Op, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		var err error
		out[i], remote, err = ot.TransformNullable(stack[i], remote)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
