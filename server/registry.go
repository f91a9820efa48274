// Package server hosts shared documents for clients.
package server

import (
	"math/rand/v2"
	"sync"

	"github.com/taylorza/go-lfsr"
)

// Registry holds named documents, creating them on first use.
type Registry struct {
	// Initial optionally provides the starting text of a new document.
	Initial func(name string) string

	lock sync.Mutex
	docs map[string]*Doc
	next func() (uint32, bool)
}

// Get returns the named document, creating it if needed.
func (r *Registry) Get(name string) *Doc {
	r.lock.Lock()
	defer r.lock.Unlock()

	if d, ok := r.docs[name]; ok {
		return d
	}
	if r.docs == nil {
		r.docs = map[string]*Doc{}
	}

	var text string
	if r.Initial != nil {
		text = r.Initial(name)
	}
	d := NewDoc(text)
	r.docs[name] = d
	return d
}

// Lookup returns the named document if it already exists.
func (r *Registry) Lookup(name string) (*Doc, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	d, ok := r.docs[name]
	return d, ok
}

// NextClientID returns a new client ID in the range (0,2^31).
// IDs don't repeat for the life of the Registry.
func (r *Registry) NextClientID() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.next == nil {
		gen := lfsr.NewLfsr32(rand.Uint32() | 1)
		r.next = gen.Next
	}
	for {
		id, restarted := r.next()
		if restarted {
			panic("generated ~32 bits of client IDs")
		}
		if id == 0 || id&0x80000000 == 0x80000000 {
			continue // don't allow zero or anything with top bit
		}
		return int(id)
	}
}
