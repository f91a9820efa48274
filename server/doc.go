package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samthor/otext/apply"
	"github.com/samthor/otext/ot"
	"github.com/samthor/otext/protocol"
)

var (
	// ErrUnknownBase is returned for an update against a change this Doc has never had.
	ErrUnknownBase = errors.New("unknown base change")

	// ErrNotParented is returned for an update which skips over the client's own prior change.
	// Clients must wait for an ack before sending their next update.
	ErrNotParented = errors.New("update is not parented off server state")
)

// Doc is the authoritative copy of a shared text.
// It keeps every change so that updates made against older states can be transformed forward.
type Doc struct {
	session string

	lock    sync.Mutex
	cond    *sync.Cond
	text    string
	changes []protocol.Change // changes[i].ID == i+1
}

// NewDoc returns a Doc starting with the given text.
func NewDoc(text string) *Doc {
	d := &Doc{session: uuid.NewString(), text: text}
	d.cond = sync.NewCond(&d.lock)
	return d
}

// Text returns the current text and the ID of the change it is at.
func (d *Doc) Text() (text string, id int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.text, len(d.changes)
}

// Snapshot returns the current state for a newly joined client.
func (d *Doc) Snapshot(clientID int) protocol.Snapshot {
	text, id := d.Text()
	return protocol.Snapshot{
		ClientID: clientID,
		Session:  d.session,
		Base:     id,
		Text:     text,
	}
}

// Submit transforms the update against any changes the client hadn't seen, applies it and records it as a new change.
func (d *Doc) Submit(clientID int, u protocol.Update) (protocol.Change, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if u.Base < 0 || u.Base > len(d.changes) {
		return protocol.Change{}, fmt.Errorf("%w: %d (at %d)", ErrUnknownBase, u.Base, len(d.changes))
	}

	ops := []ot.Op(u.Ops)
	for _, prior := range d.changes[u.Base:] {
		if prior.ClientID == clientID {
			return protocol.Change{}, fmt.Errorf("%w: client %d has change %d", ErrNotParented, clientID, prior.ID)
		}
		var err error
		ops, _, err = ot.Transform(ops, prior.Ops)
		if err != nil {
			return protocol.Change{}, err
		}
	}

	var text apply.Text
	next, _, err := text.Apply(d.text, ops)
	if err != nil {
		return protocol.Change{}, err
	}

	ch := protocol.Change{
		ID:          len(d.changes) + 1,
		ClientID:    clientID,
		Ops:         ops,
		Fingerprint: uint64(text.Fingerprint(next)),
	}
	d.text = next
	d.changes = append(d.changes, ch)
	d.cond.Broadcast()
	return ch, nil
}

// Since returns all changes after the given ID, waiting until there is at least one.
// Returns the context's cause if it is done first.
func (d *Doc) Since(ctx context.Context, after int) ([]protocol.Change, error) {
	stop := context.AfterFunc(ctx, func() {
		d.lock.Lock()
		defer d.lock.Unlock()
		d.cond.Broadcast()
	})
	defer stop()

	d.lock.Lock()
	defer d.lock.Unlock()

	if after < 0 || after > len(d.changes) {
		return nil, fmt.Errorf("%w: %d (at %d)", ErrUnknownBase, after, len(d.changes))
	}

	for len(d.changes) == after {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		d.cond.Wait()
	}
	return slices.Clone(d.changes[after:]), nil
}
