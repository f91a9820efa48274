// Package transport carries JSON packets between a client and a server.
package transport

import (
	"context"
)

type Transport interface {
	// ReadJSON reads the next packet into the given target.
	ReadJSON(v any) error

	// WriteJSON sends the given packet.
	WriteJSON(v any) error

	// Context returns a context which is Done when the underlying connection has closed.
	Context() context.Context
}

// Handler runs a Transport until it returns.
type Handler func(tr Transport) (err error)
