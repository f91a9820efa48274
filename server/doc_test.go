package server

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samthor/otext/apply"
	"github.com/samthor/otext/ot"
	"github.com/samthor/otext/protocol"
)

func TestSubmit(t *testing.T) {
	d := NewDoc("hello")

	ch, err := d.Submit(1, protocol.Update{Base: 0, Ops: ot.Insertion(5, " world")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ch.ID != 1 || ch.ClientID != 1 {
		t.Errorf("unexpected change: %+v", ch)
	}
	if ch.Fingerprint != uint64((apply.Text{}).Fingerprint("hello world")) {
		t.Errorf("bad fingerprint: %v", ch.Fingerprint)
	}

	// client 2 hasn't seen change 1
	ch, err = d.Submit(2, protocol.Update{Base: 0, Ops: ot.Replacement(0, 1, "J")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ot.Equal(ch.Ops, []ot.Op{ot.Remove(1), ot.Insert("J")}) {
		t.Errorf("unexpected transformed ops: %v", ch.Ops)
	}

	text, id := d.Text()
	if text != "Jello world" || id != 2 {
		t.Errorf("expected Jello world at 2, was: %q at %d", text, id)
	}

	snap := d.Snapshot(3)
	if snap.Base != 2 || snap.Text != "Jello world" || snap.ClientID != 3 || snap.Session == "" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestSubmitErrors(t *testing.T) {
	d := NewDoc("abc")

	_, err := d.Submit(1, protocol.Update{Base: 1, Ops: ot.Insertion(0, "x")})
	if !errors.Is(err, ErrUnknownBase) {
		t.Errorf("expected ErrUnknownBase, was: %v", err)
	}

	_, err = d.Submit(1, protocol.Update{Base: 0, Ops: ot.Deletion(2, 5)})
	if !errors.Is(err, ot.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, was: %v", err)
	}

	_, err = d.Submit(1, protocol.Update{Base: 0, Ops: ot.Ops{ot.Retain(-1)}})
	if !errors.Is(err, ot.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, was: %v", err)
	}

	if _, err := d.Submit(1, protocol.Update{Base: 0, Ops: ot.Insertion(0, "x")}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = d.Submit(1, protocol.Update{Base: 0, Ops: ot.Insertion(0, "y")})
	if !errors.Is(err, ErrNotParented) {
		t.Errorf("expected ErrNotParented, was: %v", err)
	}

	if text, id := d.Text(); text != "xabc" || id != 1 {
		t.Errorf("failed submits should not change doc: %q at %d", text, id)
	}
}

func TestSince(t *testing.T) {
	d := NewDoc("")

	got := make(chan []protocol.Change, 1)
	go func() {
		changes, err := d.Since(t.Context(), 0)
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		got <- changes
	}()

	time.Sleep(10 * time.Millisecond)
	d.Submit(1, protocol.Update{Ops: ot.Insertion(0, "a")})

	changes := <-got
	if len(changes) != 1 || changes[0].ID != 1 {
		t.Errorf("unexpected changes: %+v", changes)
	}

	d.Submit(1, protocol.Update{Base: 1, Ops: ot.Insertion(1, "b")})
	changes, err := d.Since(t.Context(), 0)
	if err != nil || len(changes) != 2 {
		t.Errorf("expected both changes, was: %+v %v", changes, err)
	}

	_, err = d.Since(t.Context(), 3)
	if !errors.Is(err, ErrUnknownBase) {
		t.Errorf("expected ErrUnknownBase, was: %v", err)
	}
}

func TestSinceCancel(t *testing.T) {
	d := NewDoc("")
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Since(ctx, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, was: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := &Registry{Initial: func(name string) string { return "doc:" + name }}

	if _, ok := r.Lookup("a"); ok {
		t.Errorf("expected no doc before Get")
	}
	a := r.Get("a")
	if r.Get("a") != a {
		t.Errorf("expected same doc")
	}
	if d, ok := r.Lookup("a"); !ok || d != a {
		t.Errorf("expected Lookup to find doc")
	}
	if _, ok := r.Lookup("other"); ok {
		t.Errorf("Lookup should not create docs")
	}
	if text, _ := r.Get("b").Text(); text != "doc:b" {
		t.Errorf("unexpected initial text: %q", text)
	}

	seen := map[int]bool{}
	for range 10_000 {
		id := r.NextClientID()
		if id <= 0 || id > math.MaxInt32 {
			t.Fatalf("bad id: %d", id)
		}
		if seen[id] {
			t.Fatalf("repeated id: %d", id)
		}
		seen[id] = true
	}
}
