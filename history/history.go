// Package history holds the machine's append-only execution log: one entry
// per state entry, each with a per-visit result and message slot.
package history

import "time"

// Entry records a single state entry. Result and Message start empty and are
// filled in by actions while the visit is live; EnteredAt is stamped by the
// machine's clock when the entry is pushed.
type Entry struct {
	State     string
	Result    any
	Message   string
	EnteredAt time.Time
}

// Stack is the ordered log of every state entry plus a per-state index into
// it, so all visits of one state can be replayed in order.
type Stack struct {
	entries []*Entry
	byState map[string][]int
}

func New() *Stack {
	return &Stack{byState: map[string][]int{}}
}

// Push appends a fresh entry for state and records its index.
func (s *Stack) Push(state string, at time.Time) *Entry {
	entry := &Entry{State: state, EnteredAt: at}
	s.byState[state] = append(s.byState[state], len(s.entries))
	s.entries = append(s.entries, entry)
	return entry
}

func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns the log oldest to newest. The slice is a copy; the entries
// are shared so live slots stay writable through them.
func (s *Stack) Entries() []*Entry {
	entries := make([]*Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Names returns the visited state names oldest to newest.
func (s *Stack) Names() []string {
	names := make([]string, len(s.entries))
	for i, entry := range s.entries {
		names[i] = entry.State
	}
	return names
}

// Latest returns the newest entry, or nil when the log is empty.
func (s *Stack) Latest() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// Previous returns the entry pushed immediately before the newest one, or nil
// when fewer than two entries exist.
func (s *Stack) Previous() *Entry {
	if len(s.entries) < 2 {
		return nil
	}
	return s.entries[len(s.entries)-2]
}

// LatestFor returns the newest entry for state, or nil when state was never
// entered.
func (s *Stack) LatestFor(state string) *Entry {
	indices := s.byState[state]
	if len(indices) == 0 {
		return nil
	}
	return s.entries[indices[len(indices)-1]]
}

// AllFor returns every entry for state, oldest to newest.
func (s *Stack) AllFor(state string) []*Entry {
	indices := s.byState[state]
	entries := make([]*Entry, len(indices))
	for i, index := range indices {
		entries[i] = s.entries[index]
	}
	return entries
}

// Reset empties the log and every per-state index.
func (s *Stack) Reset() {
	s.entries = nil
	s.byState = map[string][]int{}
}
