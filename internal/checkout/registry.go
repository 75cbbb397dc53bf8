package checkout

import "sync"

// Registry hands out one Calculator per checkout session. Sessions are
// in-memory and evicted only by Drop; the HTTP adapter keys them off the
// caller-supplied session id.
type Registry struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Calculator
}

// NewRegistry builds a session registry. The options seed every calculator
// it creates.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Calculator),
	}
}

// Session returns the calculator for the given id, creating it on first use.
func (r *Registry) Session(id string) (*Calculator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if calc, ok := r.sessions[id]; ok {
		return calc, nil
	}
	calc, err := NewCalculator(r.opts)
	if err != nil {
		return nil, err
	}
	r.sessions[id] = calc
	return calc, nil
}

// Drop forgets a session, typically after a placed order.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
