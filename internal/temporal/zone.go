package temporal

import (
	"sync"
	"time"
)

// Resolver turns zone names into locations. Lookups that hit the zoneinfo
// database are memoized; Flush drops the memo.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]*time.Location
	load  func(string) (*time.Location, error)
}

// NewResolver returns a Resolver backed by time.LoadLocation.
func NewResolver() *Resolver {
	return &Resolver{
		cache: make(map[string]*time.Location),
		load:  time.LoadLocation,
	}
}

// Resolve maps name to a location. "UTC" never touches the database. Empty
// names and "Local" are rejected even though time.LoadLocation accepts them:
// neither is an IANA identifier.
func (r *Resolver) Resolve(name string) (*time.Location, error) {
	switch name {
	case "UTC":
		return time.UTC, nil
	case "", "Local":
		return nil, newToolError(ResolutionFailure, name, "Invalid timezone: %s", name)
	}

	r.mu.RLock()
	loc, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := r.load(name)
	if err != nil {
		return nil, newToolError(ResolutionFailure, name, "Invalid timezone: %s", name)
	}

	r.mu.Lock()
	r.cache[name] = loc
	r.mu.Unlock()
	return loc, nil
}

// Flush forgets every cached location and returns how many were dropped.
func (r *Resolver) Flush() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.cache)
	r.cache = make(map[string]*time.Location)
	return n
}

// Len reports the number of cached locations.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
