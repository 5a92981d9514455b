package payload

import "github.com/google/uuid"

// Registry is an in-memory Store. Handles look like object URLs and can be
// resolved back to their payload until revoked.
type Registry struct {
	live    map[Handle]Payload
	revoked map[Handle]bool
	created int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		live:    make(map[Handle]Payload),
		revoked: make(map[Handle]bool),
	}
}

// Create implements Store
func (r *Registry) Create(p Payload) (Handle, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	h := Handle("blob:graphscope/" + id.String())
	r.live[h] = p
	r.created++
	return h, nil
}

// Revoke implements Store. Revoking twice is a no-op.
func (r *Registry) Revoke(h Handle) {
	if _, ok := r.live[h]; !ok {
		return
	}
	delete(r.live, h)
	r.revoked[h] = true
}

// Resolve returns the payload behind h
func (r *Registry) Resolve(h Handle) (Payload, error) {
	if p, ok := r.live[h]; ok {
		return p, nil
	}
	if r.revoked[h] {
		return Payload{}, ErrRevoked
	}
	return Payload{}, ErrUnknownHandle
}

// Live returns the number of unrevoked handles
func (r *Registry) Live() int { return len(r.live) }

// Created returns the number of handles ever created
func (r *Registry) Created() int { return r.created }
