package answers

import "context"

// Answer is one domain response: prose plus, when the result set is long, the
// full materialized line set the paging layer continues from.
type Answer struct {
	Text  string
	Title string
	Lines []string // complete result set; empty when Text stands alone
}

// Handler formats a domain answer for one resolved entity id. Handlers never
// participate in resolution; they receive an exact identifier as if the user
// had typed it.
type Handler interface {
	Collection() string
	Answer(ctx context.Context, id string) (*Answer, error)
}

// Registry routes a resolved identifier to its collection's handler.
type Registry struct {
	byCollection map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{byCollection: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.byCollection[h.Collection()] = h
	}
	return r
}

func (r *Registry) For(collection string) (Handler, bool) {
	h, ok := r.byCollection[collection]
	return h, ok
}

func (r *Registry) Collections() []string {
	out := make([]string, 0, len(r.byCollection))
	for c := range r.byCollection {
		out = append(out, c)
	}
	return out
}
