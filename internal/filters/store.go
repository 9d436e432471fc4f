package filters

import "sync"

// Fields is a set of filter groups. Views declare which ones they depend on.
type Fields uint8

const (
	FieldDateRange Fields = 1 << iota
	FieldAmountRange
	FieldHourRange

	FieldsNone Fields = 0
	FieldsAll         = FieldDateRange | FieldAmountRange | FieldHourRange
)

// Intersects reports whether f and other share any field.
func (f Fields) Intersects(other Fields) bool {
	return f&other != 0
}

// Names lists the fields in f, for logging.
func (f Fields) Names() []string {
	names := make([]string, 0, 3)
	if f&FieldDateRange != 0 {
		names = append(names, "date_range")
	}
	if f&FieldAmountRange != 0 {
		names = append(names, "amount_range")
	}
	if f&FieldHourRange != 0 {
		names = append(names, "hour_range")
	}
	return names
}

// Diff returns the fields that differ between prev and next.
func Diff(prev, next State) Fields {
	var changed Fields
	if prev.DateRange != next.DateRange {
		changed |= FieldDateRange
	}
	if prev.AmountRange != next.AmountRange {
		changed |= FieldAmountRange
	}
	if prev.HourRange != next.HourRange {
		changed |= FieldHourRange
	}
	return changed
}

type subscription struct {
	deps Fields
	fn   func(State)
}

// Store holds the single filter State and fans changes out to subscribers.
//
// Writes are serialised together with their notifications, so subscribers observe
// changes in the order they were made. Subscribers must not write back to the
// store from inside the callback.
type Store struct {
	writeMu sync.Mutex

	mu     sync.RWMutex
	state  State
	subs   map[int]subscription
	nextID int
}

// NewStore returns a store seeded with initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]subscription),
	}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the whole state and returns the fields that changed.
func (s *Store) Set(next State) Fields {
	return s.Update(func(st *State) { *st = next })
}

// Update applies fn to a copy of the state and commits it.
func (s *Store) Update(fn func(*State)) Fields {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := prev
	fn(&next)
	changed := Diff(prev, next)
	if changed == FieldsNone {
		s.mu.Unlock()
		return FieldsNone
	}
	s.state = next
	targets := make([]subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.deps.Intersects(changed) {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		sub.fn(next)
	}
	return changed
}

// ClearHours resets the hour range to unset.
func (s *Store) ClearHours() Fields {
	return s.Update(func(st *State) { st.HourRange = HourRange{} })
}

// Subscribe registers fn for changes touching deps. A FieldsNone subscriber is never called.
func (s *Store) Subscribe(deps Fields, fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscription{deps: deps, fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
