package tracking

import (
	"slices"
	"strings"

	"livemap.onebusaway.org/internal/geo"
)

// Observer receives the change set of every reconciliation pass.
type Observer interface {
	OnChange(ChangeSet)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ChangeSet)

func (f ObserverFunc) OnChange(cs ChangeSet) { f(cs) }

// PositionStore is the keyed table of rendered vehicles for one session. It is
// written only by the Reconciler and is not safe for concurrent use on its own; the
// owning Session serializes access.
type PositionStore struct {
	vehicles map[string]RenderedVehicle
	// raw pre-projection positions from the previous pass, used for bearings
	lastRaw map[string]geo.Point

	observers    map[int]Observer
	nextObserver int
}

// NewPositionStore returns an empty store with no observers.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		vehicles:  make(map[string]RenderedVehicle),
		lastRaw:   make(map[string]geo.Point),
		observers: make(map[int]Observer),
	}
}

// Get returns a copy of the entry for id.
func (s *PositionStore) Get(id string) (RenderedVehicle, bool) {
	v, ok := s.vehicles[id]
	return v, ok
}

// Len is the number of tracked vehicles.
func (s *PositionStore) Len() int {
	return len(s.vehicles)
}

// Vehicles returns every entry sorted by id.
func (s *PositionStore) Vehicles() []RenderedVehicle {
	out := make([]RenderedVehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b RenderedVehicle) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// IDs returns the ids currently held, sorted.
func (s *PositionStore) IDs() []string {
	ids := make([]string, 0, len(s.vehicles))
	for id := range s.vehicles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LastRaw returns the raw position recorded for id on the previous pass.
func (s *PositionStore) LastRaw(id string) (geo.Point, bool) {
	p, ok := s.lastRaw[id]
	return p, ok
}

// Subscribe registers o for change sets and returns a function that removes it.
func (s *PositionStore) Subscribe(o Observer) (unsubscribe func()) {
	key := s.nextObserver
	s.nextObserver++
	s.observers[key] = o
	return func() {
		delete(s.observers, key)
	}
}

func (s *PositionStore) put(v RenderedVehicle, raw geo.Point) {
	s.vehicles[v.ID] = v
	s.lastRaw[v.ID] = raw
}

func (s *PositionStore) update(id string, fn func(*RenderedVehicle)) {
	v, ok := s.vehicles[id]
	if !ok {
		return
	}
	fn(&v)
	s.vehicles[id] = v
}

func (s *PositionStore) remove(id string) {
	delete(s.vehicles, id)
	delete(s.lastRaw, id)
}

func (s *PositionStore) clear() {
	clear(s.vehicles)
	clear(s.lastRaw)
}

func (s *PositionStore) publish(cs ChangeSet) {
	keys := make([]int, 0, len(s.observers))
	for k := range s.observers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		s.observers[k].OnChange(cs)
	}
}
