package ws

import "sync"

type room struct {
	mu      sync.RWMutex
	screens map[*screen]struct{}
}

func newRoom() *room { return &room{screens: map[*screen]struct{}{}} }

func (r *room) add(s *screen) {
	r.mu.Lock()
	r.screens[s] = struct{}{}
	r.mu.Unlock()
}

// remove reports whether s was present and how many screens remain.
func (r *room) remove(s *screen) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.screens[s]
	delete(r.screens, s)
	return ok, len(r.screens)
}

func (r *room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.screens)
}

// broadcast writes msg to every screen outside the lock and returns the
// screens whose write failed.
func (r *room) broadcast(msg []byte) []*screen {
	r.mu.RLock()
	targets := make([]*screen, 0, len(r.screens))
	for s := range r.screens {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	var failed []*screen
	for _, s := range targets {
		if err := s.send(msg); err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}
