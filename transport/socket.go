package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"
)

const (
	// Version is the handshake version that clients must send.
	Version = "otext/1"

	// DefaultMaxPacketSize is the maximum size of a JSON packet we accept.
	DefaultMaxPacketSize = 1 << 20

	// DefaultInMessageBuffer allows for this many packets to be pending before we close the connection.
	DefaultInMessageBuffer = 128

	// DefaultRateLimit is the number of packets per second we allow.
	DefaultRateLimit = 50

	// DefaultRateBurst is the maximum burst of packets we allow.
	DefaultRateBurst = 100
)

// Hello is the first packet a client sends.
type Hello struct {
	Type    string `json:"type"` // always "hello"
	Version string `json:"version"`
}

// HandshakeResponse is the response sent to the client after a successful hello.
type HandshakeResponse struct {
	Ok            bool `json:"ok"`
	MaxPacketSize int  `json:"max_packet_size"`
	RateLimit     int  `json:"rate_limit"`
	RateBurst     int  `json:"rate_burst"`
}

// SocketOpts configures the WebSocket handler.
type SocketOpts struct {
	// MaxPacketSize is the maximum size of a JSON packet we accept.
	// Defaults to DefaultMaxPacketSize if zero.
	MaxPacketSize int

	// InMessageBuffer allows for this many packets to be pending before we close the connection.
	// Defaults to DefaultInMessageBuffer if zero.
	InMessageBuffer int

	// RateLimit is the number of packets per second we allow.
	// Defaults to DefaultRateLimit if zero.
	RateLimit int

	// RateBurst is the maximum burst of packets we allow.
	// Defaults to DefaultRateBurst if zero.
	RateBurst int

	// PingEvery sends a ping every ~duration.
	PingEvery time.Duration

	// OriginPatterns lists hosts allowed to connect cross-origin.
	// If empty, any origin is allowed.
	OriginPatterns []string
}

func (o *SocketOpts) setDefaults() {
	if o.MaxPacketSize == 0 {
		o.MaxPacketSize = DefaultMaxPacketSize
	}
	if o.InMessageBuffer == 0 {
		o.InMessageBuffer = DefaultInMessageBuffer
	}
	if o.RateLimit == 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.RateBurst == 0 {
		o.RateBurst = DefaultRateBurst
	}
}

// NewWebSocketHandler returns an http.Handler that upgrades requests to WebSocket connections and runs the given Handler over each.
// Each connection must start with a Hello for Version.
// When the Handler returns, the connection is closed: a returned websocket.CloseError is passed to the client, other errors become an internal error.
func NewWebSocketHandler(opts SocketOpts, handler Handler) http.Handler {
	opts.setDefaults()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := &websocket.AcceptOptions{OriginPatterns: opts.OriginPatterns}
		if len(opts.OriginPatterns) == 0 {
			accept.InsecureSkipVerify = true
		}
		c, err := websocket.Accept(w, r, accept)
		if err != nil {
			log.Printf("got err setting up websocket %s: %v", r.URL.Path, err)
			return // websocket.Accept already writes an error response
		}
		c.SetReadLimit(int64(opts.MaxPacketSize))

		// Don't use the http.Request Context, see websocket.Accept.
		// The read loop gets its own context which outlives ctx, so the socket isn't torn down before Close.
		readCtx, readCancel := context.WithCancel(context.Background())
		ctx, cancel := context.WithCancelCause(readCtx)

		tr := &socketTransport{
			ctx:     ctx,
			cancel:  cancel,
			conn:    c,
			inCh:    make(chan []byte, opts.InMessageBuffer),
			limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst+1), // +1 for hello
		}

		context.AfterFunc(ctx, func() {
			err := context.Cause(ctx)

			closeErr := websocket.CloseError{Code: websocket.StatusNormalClosure}
			if errors.As(err, &closeErr) {
				// pass through
			} else if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("closing socket %s due to error: %v", r.URL.Path, err)
				closeErr = websocket.CloseError{Code: websocket.StatusInternalError}
			}

			c.Close(closeErr.Code, closeErr.Reason)
			readCancel()
		})

		if opts.PingEvery > 0 {
			go tr.runPing(opts.PingEvery)
		}
		go func() {
			cancel(tr.runRead(readCtx))
		}()

		cancel(tr.run(opts, handler))
	})
}

type socketTransport struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	conn    *websocket.Conn
	inCh    chan []byte
	limiter *rate.Limiter
}

func (t *socketTransport) run(opts SocketOpts, handler Handler) error {
	var hello Hello
	if err := t.ReadJSON(&hello); err != nil {
		return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "failed to read hello"}
	}
	if hello.Type != "hello" || hello.Version != Version {
		return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "invalid hello or version"}
	}

	resp := HandshakeResponse{
		Ok:            true,
		MaxPacketSize: opts.MaxPacketSize,
		RateLimit:     opts.RateLimit,
		RateBurst:     opts.RateBurst,
	}
	if err := t.WriteJSON(resp); err != nil {
		return err
	}
	return handler(t)
}

func (t *socketTransport) runPing(every time.Duration) {
	for {
		// ping ~75% - 125% of requested time
		d := time.Duration((0.5*rand.Float64() + 0.75) * float64(every))
		select {
		case <-t.ctx.Done():
			return
		case <-time.After(d):
		}
		t.conn.Ping(t.ctx)
	}
}

func (t *socketTransport) runRead(ctx context.Context) error {
	for {
		typ, b, err := t.conn.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			return websocket.CloseError{Code: websocket.StatusUnsupportedData, Reason: "unexpected message type"}
		}
		if !t.limiter.Allow() {
			return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "rate limit exceeded"}
		}

		select {
		case t.inCh <- b:
		default:
			return websocket.CloseError{Code: websocket.StatusPolicyViolation, Reason: "input buffer full"}
		}
	}
}

func (t *socketTransport) Context() context.Context {
	return t.ctx
}

func (t *socketTransport) ReadJSON(v any) error {
	select {
	case b := <-t.inCh:
		err := json.Unmarshal(b, v)
		if err != nil {
			t.cancel(err)
		}
		return err
	case <-t.ctx.Done():
		return context.Cause(t.ctx)
	}
}

func (t *socketTransport) WriteJSON(v any) error {
	err := wsjson.Write(t.ctx, t.conn, v)
	if err != nil {
		t.cancel(err)
	}
	return err
}
