package state

import (
	"sort"
	"sync"
)

// Listener receives the new value of a key
type Listener func(value interface{})

// Unsubscribe removes a listener; calling it again is a no-op
type Unsubscribe func()

type subscription struct {
	id       uint64
	listener Listener
}

// Store is the per-session component state: key-keyed values plus
// per-key observers.
//
// Notification is synchronous on the goroutine calling Set. Each Set
// notifies the listeners registered for the key when the pass starts, in
// registration order. Listeners must not block.
//
// The mutex only protects the maps; it is never held while listeners run,
// so a listener may call back into the store. Concurrent writers to one
// key are last-write-wins.
type Store struct {
	mu        sync.RWMutex
	values    map[string]interface{}
	listeners map[string][]subscription
	nextID    uint64
	onChange  func(keys int)
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		values:    make(map[string]interface{}),
		listeners: make(map[string][]subscription),
	}
}

// OnChange registers a hook told the key count after every mutation.
// Used for metrics; survives Clear.
func (s *Store) OnChange(fn func(keys int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Get returns the stored value or def if absent
func (s *Store) Get(key string, def interface{}) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Lookup returns the stored value and whether the key exists
func (s *Store) Lookup(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// Set overwrites key and notifies its current listeners with value
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	s.values[key] = value
	subs := append([]subscription(nil), s.listeners[key]...)
	n, hook := len(s.values), s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	for _, sub := range subs {
		sub.listener(value)
	}
}

// Delete removes a key and notifies its listeners with nil
func (s *Store) Delete(key string) {
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	subs := append([]subscription(nil), s.listeners[key]...)
	n, hook := len(s.values), s.onChange
	s.mu.Unlock()

	if !existed {
		return
	}
	if hook != nil {
		hook(n)
	}
	for _, sub := range subs {
		sub.listener(nil)
	}
}

// Subscribe registers a listener for key
func (s *Store) Subscribe(key string, listener Listener) Unsubscribe {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[key] = append(s.listeners[key], subscription{id: id, listener: listener})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(key, id) })
	}
}

// remove is keyed by subscription id; ids are never reused, so a stale
// unsubscribe after Clear finds nothing to remove.
func (s *Store) remove(key string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.listeners[key]
	for i, sub := range subs {
		if sub.id == id {
			s.listeners[key] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(s.listeners[key]) == 0 {
		delete(s.listeners, key)
	}
}

// Clear removes all keys and all listeners
func (s *Store) Clear() {
	s.mu.Lock()
	s.values = make(map[string]interface{})
	s.listeners = make(map[string][]subscription)
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook(0)
	}
}

// Keys returns all keys in sorted order
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Listeners returns the number of listeners registered for key
func (s *Store) Listeners(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners[key])
}

// Snapshot returns a shallow copy of all entries
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
