// Command otserver hosts shared text documents over WebSocket.
//
// Clients connect to /ws, send a hello and then a Join naming their document.
// The current text of a document can be read from /doc/{name}.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/samthor/otext/server"
	"github.com/samthor/otext/transport"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	flagAddr      = flag.String("addr", "", "address to listen on (default localhost:$PORT, or :8080)")
	flagAll       = flag.Bool("all", false, "listen on all interfaces if -addr is unset")
	flagRate      = flag.Int("rate", transport.DefaultRateLimit, "packets per second allowed per client")
	flagBurst     = flag.Int("burst", transport.DefaultRateBurst, "burst of packets allowed per client")
	flagMaxPacket = flag.Int("max-packet", transport.DefaultMaxPacketSize, "maximum packet size in bytes")
	flagPing      = flag.Duration("ping", 20*time.Second, "ping clients this often, zero to disable")
)

func main() {
	flag.Parse()

	reg := &server.Registry{}

	mux := http.NewServeMux()
	mux.Handle("/ws", transport.NewWebSocketHandler(transport.SocketOpts{
		MaxPacketSize: *flagMaxPacket,
		RateLimit:     *flagRate,
		RateBurst:     *flagBurst,
		PingEvery:     *flagPing,
	}, func(tr transport.Transport) error {
		return server.Serve(tr, reg)
	}))
	mux.Handle("GET /doc/{name}", docHandler(reg))

	addr := listenAddr()
	log.Printf("serving on %s", addr)

	s := http.Server{Addr: addr, Handler: h2c.NewHandler(mux, &http2.Server{})}
	log.Fatalf("shutdown: %v", s.ListenAndServe())
}

// docHandler serves the current text of existing documents as JSON.
// It never creates a document.
func docHandler(reg *server.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := reg.Lookup(r.PathValue("name"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		text, id := doc.Text()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docResponse{ID: id, Text: text})
	})
}

type docResponse struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// listenAddr decides on the address from flags or the PORT env var.
func listenAddr() string {
	if *flagAddr != "" {
		return *flagAddr
	}

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port <= 0 {
		port = 8080
	}
	host := "localhost"
	if *flagAll {
		host = ""
	}
	return host + ":" + strconv.Itoa(port)
}
