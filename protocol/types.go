// Package protocol holds the messages exchanged between clients and a server hosting a document.
package protocol

import (
	"github.com/samthor/otext/ot"
)

// Join is sent from client to server after the transport handshake.
type Join struct {
	Doc string `json:"doc"`
}

// Snapshot is sent from server to client in response to Join.
type Snapshot struct {
	ClientID int    `json:"client"`  // id for this client
	Session  string `json:"session"` // server instance of this document
	Base     int    `json:"base"`    // change ID that Text is at
	Text     string `json:"text"`
}

// Update is sent from client to server with a local edit.
type Update struct {
	Base int    `json:"base"` // change ID against which Ops was performed
	Ops  ot.Ops `json:"ops"`
}

// Change is sent from server to all clients, including the one that created it.
type Change struct {
	ID          int    `json:"id"`
	ClientID    int    `json:"client"` // client that created this change
	Ops         ot.Ops `json:"ops"`
	Fingerprint uint64 `json:"fp,string"` // of the server text after this change
}
