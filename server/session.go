package server

import (
	"errors"
	"log"

	"github.com/coder/websocket"
	"github.com/samthor/otext/ot"
	"github.com/samthor/otext/protocol"
	"github.com/samthor/otext/transport"
	"golang.org/x/sync/errgroup"
)

// Serve runs a single client over tr.
// The client sends a Join and is sent a Snapshot. After that, it may send Updates, and is sent every Change in order, including its own as an ack.
// This returns when the transport closes or the client misbehaves.
func Serve(tr transport.Transport, reg *Registry) error {
	var join protocol.Join
	if err := tr.ReadJSON(&join); err != nil {
		return err
	}
	if join.Doc == "" {
		return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "no doc"}
	}

	doc := reg.Get(join.Doc)
	clientID := reg.NextClientID()
	snap := doc.Snapshot(clientID)
	if err := tr.WriteJSON(snap); err != nil {
		return err
	}
	log.Printf("client %d joined doc=%q at=%d", clientID, join.Doc, snap.Base)

	eg, ctx := errgroup.WithContext(tr.Context())

	eg.Go(func() error {
		for {
			var u protocol.Update
			if err := tr.ReadJSON(&u); err != nil {
				return err
			}
			if _, err := doc.Submit(clientID, u); err != nil {
				log.Printf("client %d sent bad update: %v", clientID, err)
				return rejectError(err)
			}
		}
	})

	eg.Go(func() error {
		at := snap.Base
		for {
			changes, err := doc.Since(ctx, at)
			if err != nil {
				return err
			}
			for _, ch := range changes {
				if err := tr.WriteJSON(ch); err != nil {
					return err
				}
				at = ch.ID
			}
		}
	})

	err := eg.Wait()
	log.Printf("client %d left doc=%q: %v", clientID, join.Doc, err)
	return err
}

// rejectError converts an error caused by the client into one passed back to it on close.
func rejectError(err error) error {
	switch {
	case errors.Is(err, ot.ErrInvalidOperation),
		errors.Is(err, ot.ErrOutOfRange),
		errors.Is(err, ErrUnknownBase),
		errors.Is(err, ErrNotParented):
		reason := err.Error()
		if len(reason) > maxCloseReason {
			reason = reason[:maxCloseReason]
		}
		return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: reason}
	}
	return err
}

const maxCloseReason = 120 // WebSocket allows 123 bytes
