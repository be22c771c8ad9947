package events

import (
	"reflect"
	"sort"
	"sync"
)

// Listener processes events fired on the bus.
type Listener interface {
	HandleEvent(ev Event) error
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(ev Event) error

// HandleEvent implements Listener.
func (f ListenerFunc) HandleEvent(ev Event) error { return f(ev) }

// Registry holds listeners keyed by event name and priority. Within one
// bucket, listeners keep their registration order.
type Registry struct {
	mu      sync.RWMutex
	buckets map[string]map[Priority][]Listener
}

// NewRegistry creates an empty listener registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[string]map[Priority][]Listener)}
}

// Add appends l to the (eventName, priority) bucket. Adding the same
// listener twice makes it run twice.
func (r *Registry) Add(l Listener, eventName string, priority Priority) error {
	if err := checkPriority(priority); err != nil {
		return err
	}
	if l == nil {
		return ErrNilListener
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byPriority, ok := r.buckets[eventName]
	if !ok {
		byPriority = make(map[Priority][]Listener)
		r.buckets[eventName] = byPriority
	}
	byPriority[priority] = append(byPriority[priority], l)
	return nil
}

// Remove drops the first listener equal to l from the (eventName, priority)
// bucket. A missing bucket or listener is not an error. Emptied buckets are
// left in place.
func (r *Registry) Remove(l Listener, eventName string, priority Priority) error {
	if err := checkPriority(priority); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byPriority, ok := r.buckets[eventName]
	if !ok {
		return nil
	}
	bucket, ok := byPriority[priority]
	if !ok {
		return nil
	}
	for i, candidate := range bucket {
		if !sameListener(candidate, l) {
			continue
		}
		// Copy instead of shifting in place: a firing may hold a snapshot
		// that shares the old backing array.
		next := make([]Listener, 0, len(bucket)-1)
		next = append(next, bucket[:i]...)
		next = append(next, bucket[i+1:]...)
		byPriority[priority] = next
		return nil
	}
	return nil
}

// Listeners returns a copy of the (eventName, priority) bucket.
func (r *Registry) Listeners(eventName string, priority Priority) []Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.buckets[eventName][priority]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]Listener, len(bucket))
	copy(out, bucket)
	return out
}

// Count returns the number of listeners registered for an event across all priorities.
func (r *Registry) Count(eventName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, bucket := range r.buckets[eventName] {
		total += len(bucket)
	}
	return total
}

// Total returns the number of listeners across all events.
func (r *Registry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, byPriority := range r.buckets {
		for _, bucket := range byPriority {
			total += len(bucket)
		}
	}
	return total
}

// Events returns the sorted names of events that have ever had a listener.
func (r *Registry) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.buckets))
	for name := range r.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sameListener compares listeners structurally. Function listeners compare
// by code pointer, so two closures created from the same literal are equal.
func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return equalListeners(a, b)
}

// equalListeners compares with ==, which still panics when a comparable
// struct holds an interface field whose dynamic value is a slice, map or
// func. Such listeners are treated as different.
func equalListeners(a, b Listener) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}
