package kv

import "sync"

// Listeners is a key-indexed listener registry shared by the backends.
type Listeners struct {
	mu     sync.RWMutex
	nextID int
	byKey  map[string]map[int]Listener
}

func NewListeners() *Listeners {
	return &Listeners{byKey: make(map[string]map[int]Listener)}
}

// Add registers l on keys and returns the matching removal func.
func (ls *Listeners) Add(l Listener, keys ...string) func() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.nextID++
	id := ls.nextID
	for _, k := range keys {
		if ls.byKey[k] == nil {
			ls.byKey[k] = make(map[int]Listener)
		}
		ls.byKey[k][id] = l
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ls.mu.Lock()
			defer ls.mu.Unlock()
			for _, k := range keys {
				delete(ls.byKey[k], id)
				if len(ls.byKey[k]) == 0 {
					delete(ls.byKey, k)
				}
			}
		})
	}
}

// Notify calls every listener registered on key.
func (ls *Listeners) Notify(key string) {
	ls.mu.RLock()
	targets := make([]Listener, 0, len(ls.byKey[key]))
	for _, l := range ls.byKey[key] {
		targets = append(targets, l)
	}
	ls.mu.RUnlock()

	for _, l := range targets {
		l(key)
	}
}

// Watching reports whether any listener is registered on key.
func (ls *Listeners) Watching(key string) bool {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.byKey[key]) > 0
}
