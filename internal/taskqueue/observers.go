package taskqueue

import "sync"

// StatusObserverFunc is invoked after a status mutation, outside the
// status and primary locks. Per spec.md §5, observers must never call
// back into the Queue.
type StatusObserverFunc func(Status)

// observerRegistry is the "something changed" signal spec.md §1 scopes
// out of the core. Registration is by opaque token (spec.md §9) rather
// than pointer identity, since Go func values are not comparable.
type observerRegistry struct {
	mu        sync.Mutex
	next      ObserverToken
	observers map[ObserverToken]StatusObserverFunc
}

func newObserverRegistry() *observerRegistry {
	return &observerRegistry{
		next:      noToken + 1,
		observers: make(map[ObserverToken]StatusObserverFunc),
	}
}

func (r *observerRegistry) add(fn StatusObserverFunc) ObserverToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	token := r.next
	r.next++
	r.observers[token] = fn
	return token
}

// remove deletes the registration for token. Removing an unregistered
// token is a silent no-op per spec.md §7.
func (r *observerRegistry) remove(token ObserverToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, token)
}

// notify calls every registered observer with s. Callers must not hold
// the primary or status lock when invoking this.
func (r *observerRegistry) notify(s Status) {
	r.mu.Lock()
	fns := make([]StatusObserverFunc, 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
