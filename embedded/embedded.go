// Package embedded declares the read-only views of a machine's static table.
// Renderers and other collaborators consume these interfaces so they never
// depend on, or mutate, the engine itself.
package embedded

type Element interface {
	Kind() uint64
	Name() string
}

type Machine interface {
	Element
	Id() string
	// Snapshot returns the machine's states in declaration order. The slice
	// and everything reachable from it reflect only the static table, never
	// runtime state.
	Snapshot() []State
}

type State interface {
	Element
	Rules() []Rule
}

type Rule interface {
	Element
	Label() string
	Target() string
}
