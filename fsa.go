// Package fsa is a table-driven finite state machine runtime. A machine is
// declared once as an ordered table of named states, each carrying entry, do
// and exit action lists plus an ordered list of transition rules, and is then
// driven through successive transitions until a done predicate holds.
//
//	def, err := fsa.Define("ping-pong",
//		fsa.State("ping",
//			fsa.Do(func(s *fsa.State) { s.Machine().SetNote("next", "pong") }),
//			fsa.Rule("pong", fsa.When(func(s *fsa.State, args ...any) bool {
//				return s.Machine().Note("next") == "pong"
//			})),
//		),
//		fsa.State("pong",
//			fsa.Do(func(s *fsa.State) { s.Machine().SetNote("next", "ping") }),
//			fsa.Rule("ping", fsa.Always()),
//		),
//	)
//
// The first declared state is the start state. Rules are evaluated in
// declaration order; by default the first rule whose predicate holds fires,
// in strict mode every rule is evaluated and exactly one may hold.
package fsa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stateforward/go-fsa/clock"
	"github.com/stateforward/go-fsa/embedded"
	"github.com/stateforward/go-fsa/history"
	"github.com/stateforward/go-fsa/kinds"
)

/******* Element *******/

type element struct {
	kind uint64
	name string
}

func (element *element) Kind() uint64 {
	if element == nil {
		return 0
	}
	return element.kind
}

func (element *element) Name() string {
	if element == nil {
		return ""
	}
	return element.name
}

/******* Behaviors *******/

// behavior wraps one hook callable so tracing sees it as a named element.
type behavior struct {
	element
	action func(state *State)
}

type effect struct {
	element
	action func(from, to *State)
}

/******* Definition *******/

// Decl is a partial declaration applied while a table definition is being
// assembled. The stack carries the enclosing elements so a declaration can
// locate its owner.
type Decl func(def *Def, stack []embedded.Element) embedded.Element

// Def is a validated machine table. It is immutable once Define returns and
// may be shared: every Machine built from it owns an independent runtime.
type Def struct {
	element
	states    []*stateSpec
	table     map[string]*stateSpec
	strict    bool
	done      any
	autostart bool
	errs      []error
}

type stateSpec struct {
	element
	entry []func(state *State)
	body  []func(state *State)
	exit  []func(state *State)
	rules []*ruleSpec
}

type ruleSpec struct {
	element
	target  string
	label   string
	expr    func(state *State, args ...any) bool
	effects []func(from, to *State)
}

func apply(def *Def, stack []embedded.Element, decls ...Decl) {
	for _, decl := range decls {
		decl(def, stack)
	}
}

func find(stack []embedded.Element, maybeKinds ...uint64) embedded.Element {
	for i := len(stack) - 1; i >= 0; i-- {
		if kinds.IsKind(stack[i].Kind(), maybeKinds...) {
			return stack[i]
		}
	}
	return nil
}

// Define assembles and validates a machine table. States register in
// declaration order on a first pass; a second pass resolves every rule target
// against the completed table, so forward references, self references and
// mutual cycles are all legal. Duplicate state names, unresolved targets and
// rules without a predicate are reported together in the returned error.
func Define[T interface{ Decl | string }](nameOrDecl T, decls ...Decl) (*Def, error) {
	name := "fsa"
	switch v := any(nameOrDecl).(type) {
	case string:
		name = v
	case Decl:
		decls = append([]Decl{v}, decls...)
	}
	def := &Def{
		element: element{kind: kinds.Machine, name: name},
		table:   map[string]*stateSpec{},
	}
	apply(def, []embedded.Element{def}, decls...)
	if len(def.states) == 0 {
		def.errs = append(def.errs, fmt.Errorf("fsa: table %q declares no states", name))
	}
	for _, state := range def.states {
		for _, rule := range state.rules {
			if _, ok := def.table[rule.target]; !ok {
				def.errs = append(def.errs, &UnknownStateError{State: rule.target, Referrer: state.name})
			}
		}
	}
	if len(def.errs) > 0 {
		return nil, errors.Join(def.errs...)
	}
	return def, nil
}

// State declares a named state. The first state declared in a table is the
// machine's start state.
func State(name string, decls ...Decl) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		owner := find(stack, kinds.Machine)
		if owner == nil {
			slog.Error("State must be declared at the top level of a table", "state", name)
			panic(fmt.Errorf("fsa: State %q must be declared at the top level of a table", name))
		}
		spec := &stateSpec{element: element{kind: kinds.State, name: name}}
		if _, ok := def.table[name]; ok {
			def.errs = append(def.errs, &DuplicateStateError{State: name})
			return spec
		}
		def.table[name] = spec
		def.states = append(def.states, spec)
		apply(def, append(stack, spec), decls...)
		return spec
	}
}

// Entry appends actions run when the state is entered, after any rule
// effects.
func Entry(actions ...func(state *State)) Decl {
	return hook("Entry", func(spec *stateSpec, fns []func(state *State)) {
		spec.entry = append(spec.entry, fns...)
	}, actions)
}

// Do appends the state's body actions, run after its entry actions.
func Do(actions ...func(state *State)) Decl {
	return hook("Do", func(spec *stateSpec, fns []func(state *State)) {
		spec.body = append(spec.body, fns...)
	}, actions)
}

// Exit appends actions run when the state is left, before any rule effects.
func Exit(actions ...func(state *State)) Decl {
	return hook("Exit", func(spec *stateSpec, fns []func(state *State)) {
		spec.exit = append(spec.exit, fns...)
	}, actions)
}

func hook(name string, attach func(*stateSpec, []func(state *State)), actions []func(state *State)) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		owner := find(stack, kinds.State)
		if owner == nil {
			slog.Error("hook must be declared within a State", "hook", name)
			panic(fmt.Errorf("fsa: %s must be declared within a State", name))
		}
		spec := owner.(*stateSpec)
		attach(spec, actions)
		return spec
	}
}

// Rule declares a transition candidate targeting the named state. Rules are
// evaluated in declaration order. Every rule needs exactly one predicate
// declaration, either When or Const.
func Rule(target string, decls ...Decl) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		owner := find(stack, kinds.State)
		if owner == nil {
			slog.Error("Rule must be declared within a State", "target", target)
			panic(fmt.Errorf("fsa: Rule targeting %q must be declared within a State", target))
		}
		spec := owner.(*stateSpec)
		rule := &ruleSpec{
			element: element{kind: kinds.Rule, name: fmt.Sprintf("%s.rules[%d]", spec.name, len(spec.rules))},
			target:  target,
		}
		spec.rules = append(spec.rules, rule)
		apply(def, append(stack, rule), decls...)
		if rule.expr == nil {
			def.errs = append(def.errs, fmt.Errorf("fsa: rule %q of state %q has no predicate", target, spec.name))
		}
		return rule
	}
}

// When attaches a callable predicate to the enclosing rule. The predicate
// receives the current state plus whatever extra arguments the switch call
// forwarded.
func When(expr func(state *State, args ...any) bool) Decl {
	return predicate(kinds.Guarded, expr)
}

// Const attaches a constant predicate to the enclosing rule.
func Const(value bool) Decl {
	return predicate(kinds.Const, func(*State, ...any) bool { return value })
}

// Always is shorthand for Const(true): an unconditional rule.
func Always() Decl {
	return Const(true)
}

func predicate(kind uint64, expr func(state *State, args ...any) bool) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		owner := find(stack, kinds.Rule)
		if owner == nil {
			panic(fmt.Errorf("fsa: a predicate must be declared within a Rule"))
		}
		rule := owner.(*ruleSpec)
		if rule.expr != nil {
			def.errs = append(def.errs, fmt.Errorf("fsa: rule %q already has a predicate", rule.name))
			return rule
		}
		rule.kind = kind
		rule.expr = expr
		return rule
	}
}

// Label attaches a diagnostic label to the enclosing rule. Labels only show
// up in diagrams and error output, never in evaluation.
func Label(text string) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		owner := find(stack, kinds.Rule)
		if owner == nil {
			panic(fmt.Errorf("fsa: Label must be declared within a Rule"))
		}
		rule := owner.(*ruleSpec)
		rule.label = text
		return rule
	}
}

// Effect appends actions run only when the enclosing rule fires, between the
// source state's exit actions and the target state's entry actions. Each
// receives the source and target states.
func Effect(actions ...func(from, to *State)) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		owner := find(stack, kinds.Rule)
		if owner == nil {
			panic(fmt.Errorf("fsa: Effect must be declared within a Rule"))
		}
		rule := owner.(*ruleSpec)
		rule.effects = append(rule.effects, actions...)
		return rule
	}
}

// Strict sets the machine's initial transition-selection discipline.
func Strict(v bool) Decl {
	return config(func(def *Def) { def.strict = v })
}

// Done sets the machine's initial done predicate, either a constant or a
// callable over the machine.
func Done[T interface{ bool | func(*Machine) bool }](v T) Decl {
	return config(func(def *Def) { def.done = v })
}

// Start makes New start the machine as soon as it is built.
func Start() Decl {
	return config(func(def *Def) { def.autostart = true })
}

func config(fn func(*Def)) Decl {
	return func(def *Def, stack []embedded.Element) embedded.Element {
		if find(stack, kinds.State, kinds.Rule) != nil {
			panic(fmt.Errorf("fsa: machine configuration must be declared at the top level of a table"))
		}
		fn(def)
		return def
	}
}

/******* State *******/

// State is a named node of one machine. Its action lists and rules are fixed
// at construction; only the history entries recorded against it accumulate.
type State struct {
	element
	machine *Machine
	entry   []*behavior
	body    []*behavior
	exit    []*behavior
	rules   []*rule
}

// Machine returns the owning machine.
func (state *State) Machine() *Machine {
	if state == nil {
		return nil
	}
	return state.machine
}

// Rules returns read-only views of the state's rules in declaration order.
func (state *State) Rules() []embedded.Rule {
	rules := make([]embedded.Rule, len(state.rules))
	for i, rule := range state.rules {
		rules[i] = rule
	}
	return rules
}

// Result returns the result recorded during the state's most recent visit,
// or nil if the state was never entered.
func (state *State) Result() any {
	if entry := state.machine.history.LatestFor(state.name); entry != nil {
		return entry.Result
	}
	return nil
}

// SetResult records v against the state's most recent visit. It is a no-op
// when the state was never entered.
func (state *State) SetResult(v any) {
	if entry := state.machine.history.LatestFor(state.name); entry != nil {
		entry.Result = v
	}
}

// Results returns every result recorded for the state, oldest visit first.
func (state *State) Results() []any {
	entries := state.machine.history.AllFor(state.name)
	results := make([]any, len(entries))
	for i, entry := range entries {
		results[i] = entry.Result
	}
	return results
}

// Message returns the message recorded during the state's most recent visit.
func (state *State) Message() string {
	if entry := state.machine.history.LatestFor(state.name); entry != nil {
		return entry.Message
	}
	return ""
}

// SetMessage records a message against the state's most recent visit.
func (state *State) SetMessage(text string) {
	if entry := state.machine.history.LatestFor(state.name); entry != nil {
		entry.Message = text
	}
}

// Messages returns every message recorded for the state, oldest visit first.
func (state *State) Messages() []string {
	entries := state.machine.history.AllFor(state.name)
	messages := make([]string, len(entries))
	for i, entry := range entries {
		messages[i] = entry.Message
	}
	return messages
}

/******* Rule *******/

type rule struct {
	element
	label      string
	targetName string
	target     *State
	expr       func(state *State, args ...any) bool
	effects    []*effect
}

func (rule *rule) Label() string {
	if rule == nil {
		return ""
	}
	return rule.label
}

func (rule *rule) Target() string {
	if rule == nil {
		return ""
	}
	return rule.targetName
}

/******* Machine *******/

// Trace observes lifecycle steps. It is called when a step begins and the
// returned function is called when the step ends, mirroring how spans nest.
type Trace func(step string, elements ...embedded.Element) func(...any)

// Machine is one runtime instance of a table. A machine is not safe for
// concurrent use; independent machines built from the same Def share nothing
// and may run in parallel.
type Machine struct {
	element
	id      string
	states  []*State
	table   map[string]*State
	current *State
	history *history.Stack
	notes   map[string]any
	done    func(*Machine) bool
	strict  bool
	clock   clock.Clock
	logger  *slog.Logger
	trace   Trace
}

// Option configures a machine at construction.
type Option func(*Machine)

// WithClock substitutes the clock stamping history entries.
func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithLogger substitutes the machine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// WithTrace installs a trace hook observing every lifecycle step.
func WithTrace(trace Trace) Option {
	return func(m *Machine) { m.trace = trace }
}

// New builds a machine from a validated table. No action or predicate runs
// during construction unless the table carried Start().
func New(def *Def, options ...Option) *Machine {
	m := &Machine{
		element: element{kind: kinds.Machine, name: def.name},
		id:      uuid.NewString(),
		table:   map[string]*State{},
		history: history.New(),
		notes:   map[string]any{},
		strict:  def.strict,
		done:    normalizeDone(def.done),
		clock:   clock.System(),
		logger:  slog.Default(),
	}
	for _, spec := range def.states {
		state := &State{
			element: element{kind: kinds.State, name: spec.name},
			machine: m,
			entry:   behaviors(kinds.Entry, spec.name, "entry", spec.entry),
			body:    behaviors(kinds.Body, spec.name, "do", spec.body),
			exit:    behaviors(kinds.Exit, spec.name, "exit", spec.exit),
		}
		m.states = append(m.states, state)
		m.table[spec.name] = state
	}
	for i, spec := range def.states {
		state := m.states[i]
		for _, rs := range spec.rules {
			r := &rule{
				element:    element{kind: rs.kind, name: rs.name},
				label:      rs.label,
				targetName: rs.target,
				target:     m.table[rs.target],
				expr:       rs.expr,
			}
			for j, fn := range rs.effects {
				r.effects = append(r.effects, &effect{
					element: element{kind: kinds.Effect, name: fmt.Sprintf("%s.effect[%d]", rs.name, j)},
					action:  fn,
				})
			}
			state.rules = append(state.rules, r)
		}
	}
	for _, option := range options {
		option(m)
	}
	if def.autostart {
		m.Start()
	}
	return m
}

func behaviors(kind uint64, state, hook string, actions []func(state *State)) []*behavior {
	wrapped := make([]*behavior, len(actions))
	for i, fn := range actions {
		wrapped[i] = &behavior{
			element: element{kind: kind, name: fmt.Sprintf("%s.%s[%d]", state, hook, i)},
			action:  fn,
		}
	}
	return wrapped
}

func normalizeDone(v any) func(*Machine) bool {
	switch done := v.(type) {
	case bool:
		return func(*Machine) bool { return done }
	case func(*Machine) bool:
		return done
	}
	return nil
}

// Id returns the machine instance id.
func (m *Machine) Id() string {
	if m == nil {
		return ""
	}
	return m.id
}

// Snapshot returns the static table as read-only views, in declaration
// order.
func (m *Machine) Snapshot() []embedded.State {
	states := make([]embedded.State, len(m.states))
	for i, state := range m.states {
		states[i] = state
	}
	return states
}

// States returns the machine's states in declaration order.
func (m *Machine) States() []*State {
	states := make([]*State, len(m.states))
	copy(states, m.states)
	return states
}

// State returns the named state, or nil if the table does not declare it.
func (m *Machine) State(name string) *State {
	return m.table[name]
}

// Current returns the active state, or nil before Start.
func (m *Machine) Current() *State {
	return m.current
}

// Previous returns the state entered immediately before the current one, or
// nil when fewer than two entries exist.
func (m *Machine) Previous() *State {
	if entry := m.history.Previous(); entry != nil {
		return m.table[entry.State]
	}
	return nil
}

// Start enters the first declared state and returns it. Starting an already
// running machine re-enters the start state through the normal lifecycle.
func (m *Machine) Start() *State {
	if m.trace != nil {
		defer m.trace("start", m)()
	}
	m.logger.Debug("starting machine", "machine", m.name, "state", m.states[0].name)
	return m.enter(m.states[0], nil)
}

// SetState jumps directly to the named state, bypassing rule evaluation. The
// normal exit/entry/do lifecycle runs but no rule effects do, since no rule
// fired. Unknown names fail before any action runs.
func (m *Machine) SetState(name string) (*State, error) {
	next, ok := m.table[name]
	if !ok {
		return nil, &UnknownStateError{State: name}
	}
	if m.trace != nil {
		defer m.trace("set_state", m, next)()
	}
	return m.enter(next, nil), nil
}

// enter drives the state-entry lifecycle: exit actions of the current state,
// the firing rule's effects, then a fresh history entry before the new
// state's entry and do actions run.
func (m *Machine) enter(next *State, fired *rule) *State {
	if m.trace != nil {
		defer m.trace("enter", next)()
	}
	prev := m.current
	if prev != nil {
		for _, b := range prev.exit {
			m.execute(b, prev)
		}
	}
	if fired != nil {
		for _, e := range fired.effects {
			m.effect(e, prev, next)
		}
	}
	m.history.Push(next.name, m.clock.Now())
	m.current = next
	for _, b := range next.entry {
		m.execute(b, next)
	}
	for _, b := range next.body {
		m.execute(b, next)
	}
	return next
}

func (m *Machine) execute(b *behavior, state *State) {
	if m.trace != nil {
		defer m.trace("execute", b)()
	}
	b.action(state)
}

func (m *Machine) effect(e *effect, from, to *State) {
	if m.trace != nil {
		defer m.trace("execute", e)()
	}
	e.action(from, to)
}

func (m *Machine) evaluate(r *rule, args ...any) bool {
	if m.trace != nil {
		defer m.trace("evaluate", r)()
	}
	return r.expr(m.current, args...)
}

// TrySwitch evaluates the current state's rules in declaration order,
// forwarding args to every predicate it evaluates. In the default mode the
// first rule whose predicate holds fires and later rules are never
// evaluated. In strict mode every rule is evaluated first: exactly one may
// hold, more than one is an AmbiguousTransitionError naming every candidate
// target, and in either case a failed call leaves the machine untouched.
// When no rule fires TrySwitch returns (nil, nil).
func (m *Machine) TrySwitch(args ...any) (*State, error) {
	if m.trace != nil {
		defer m.trace("switch", m)()
	}
	if m.current == nil {
		return nil, &NotStartedError{Machine: m.name}
	}
	var fired *rule
	if m.strict {
		var candidates []*rule
		for _, r := range m.current.rules {
			if m.evaluate(r, args...) {
				candidates = append(candidates, r)
			}
		}
		if len(candidates) > 1 {
			targets := make([]string, len(candidates))
			for i, r := range candidates {
				targets[i] = r.targetName
			}
			return nil, &AmbiguousTransitionError{State: m.current.name, Targets: targets}
		}
		if len(candidates) == 1 {
			fired = candidates[0]
		}
	} else {
		for _, r := range m.current.rules {
			if m.evaluate(r, args...) {
				fired = r
				break
			}
		}
	}
	if fired == nil {
		return nil, nil
	}
	m.logger.Debug("switching state", "machine", m.name, "from", m.current.name, "to", fired.targetName, "rule", fired.name)
	return m.enter(fired.target, fired), nil
}

// Switch is the fatal variant of TrySwitch: finding no applicable rule is a
// NoTransitionError.
func (m *Machine) Switch(args ...any) (*State, error) {
	next, err := m.TrySwitch(args...)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, &NoTransitionError{State: m.current.name}
	}
	return next, nil
}

// Run starts the machine if needed, then calls Switch until the done
// predicate holds. The context is only consulted between iterations; the
// machine enforces no step limit, so termination is the table's
// responsibility.
func (m *Machine) Run(ctx context.Context) error {
	if m.trace != nil {
		defer m.trace("run", m)()
	}
	if m.current == nil {
		m.Start()
	}
	for !m.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := m.Switch(); err != nil {
			return err
		}
	}
	return nil
}

// Done evaluates the machine's done predicate. The default is false.
func (m *Machine) Done() bool {
	if m.done == nil {
		return false
	}
	return m.done(m)
}

// SetDone replaces the done predicate with a constant.
func (m *Machine) SetDone(v bool) {
	m.done = func(*Machine) bool { return v }
}

// SetDoneFunc replaces the done predicate with a callable over the machine.
func (m *Machine) SetDoneFunc(fn func(*Machine) bool) {
	m.done = fn
}

// Strict reports the transition-selection discipline.
func (m *Machine) Strict() bool {
	return m.strict
}

// SetStrict switches between first-match and exactly-one-match selection.
func (m *Machine) SetStrict(v bool) {
	m.strict = v
}

// Notes returns the machine's note store. The map is live; it persists
// across transitions and is replaced only by Reset.
func (m *Machine) Notes() map[string]any {
	return m.notes
}

// Note returns the note stored under key, or nil.
func (m *Machine) Note(key string) any {
	return m.notes[key]
}

// SetNote stores a value shared across states of this machine.
func (m *Machine) SetNote(key string, value any) {
	m.notes[key] = value
}

// Stack returns the names of every state entered so far, oldest first.
func (m *Machine) Stack() []string {
	return m.history.Names()
}

// History returns the raw execution history, one entry per state entry,
// oldest first.
func (m *Machine) History() []*history.Entry {
	return m.history.Entries()
}

// Reset clears the current state, history and notes. The table, done
// predicate and strictness survive, so the machine can run again as if
// freshly built.
func (m *Machine) Reset() {
	if m.trace != nil {
		defer m.trace("reset", m)()
	}
	m.current = nil
	m.history.Reset()
	m.notes = map[string]any{}
	m.logger.Debug("machine reset", "machine", m.name)
}
