package mapview

import "sync"

// Registry binds mounted controllers to DOM target ids. At most one
// controller is bound to a target; mounting again on the same id first
// clears the previous binding.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*Controller
	slots map[string]*slot
}

// slot serializes mounts on one target.
type slot struct {
	sync.Mutex
	refs int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		views: make(map[string]*Controller),
		slots: make(map[string]*slot),
	}
}

// Mount unmounts any controller still bound to target, then mounts c there.
// Concurrent mounts on one target run one after another, so the last one
// wins and every earlier one is unmounted.
func (r *Registry) Mount(target string, c *Controller) error {
	release := r.acquire(target)
	defer release()

	r.mu.Lock()
	stale := r.views[target]
	delete(r.views, target)
	r.mu.Unlock()

	if stale != nil {
		stale.Unmount()
	}

	if err := c.Mount(target); err != nil {
		return err
	}

	r.mu.Lock()
	r.views[target] = c
	r.mu.Unlock()
	return nil
}

func (r *Registry) acquire(target string) func() {
	r.mu.Lock()
	s := r.slots[target]
	if s == nil {
		s = &slot{}
		r.slots[target] = s
	}
	s.refs++
	r.mu.Unlock()

	s.Lock()
	return func() {
		s.Unlock()
		r.mu.Lock()
		if s.refs--; s.refs == 0 {
			delete(r.slots, target)
		}
		r.mu.Unlock()
	}
}

// Unmount unmounts c and removes its binding if target is still bound to it.
// It reports whether the binding was removed.
func (r *Registry) Unmount(target string, c *Controller) bool {
	r.mu.Lock()
	bound := r.views[target] == c
	if bound {
		delete(r.views, target)
	}
	r.mu.Unlock()

	c.Unmount()
	return bound
}

// Get returns the controller bound to target.
func (r *Registry) Get(target string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.views[target]
	return c, ok
}

// Len returns the number of bound targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Close unmounts every bound controller.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*Controller)
	r.mu.Unlock()

	for _, c := range views {
		c.Unmount()
	}
}
