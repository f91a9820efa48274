package transport

import (
	"context"
	"encoding/json"
)

// NewPipe returns two connected in-memory Transport ends.
// Packets are JSON-encoded as they would be over a socket.
// Both ends share a context which is cancelled by the returned func, or when either side fails to decode.
func NewPipe(ctx context.Context, size int) (left, right Transport, cancel context.CancelCauseFunc) {
	ctx, cancel = context.WithCancelCause(ctx)

	a := make(chan []byte, size)
	b := make(chan []byte, size)

	left = &pipeEnd{ctx: ctx, cancel: cancel, in: a, out: b}
	right = &pipeEnd{ctx: ctx, cancel: cancel, in: b, out: a}
	return left, right, cancel
}

type pipeEnd struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	in     <-chan []byte
	out    chan<- []byte
}

func (p *pipeEnd) Context() context.Context {
	return p.ctx
}

func (p *pipeEnd) ReadJSON(v any) error {
	if err := context.Cause(p.ctx); err != nil {
		return err
	}

	select {
	case b := <-p.in:
		err := json.Unmarshal(b, v)
		if err != nil {
			p.cancel(err)
		}
		return err
	case <-p.ctx.Done():
		return context.Cause(p.ctx)
	}
}

func (p *pipeEnd) WriteJSON(v any) error {
	if err := context.Cause(p.ctx); err != nil {
		return err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case p.out <- b:
		return nil
	case <-p.ctx.Done():
		return context.Cause(p.ctx)
	}
}
