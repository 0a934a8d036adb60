// Package yamldef loads machine tables from YAML. Callables cannot live in a
// document, so a table names its predicates, actions and effects and a
// Registry resolves those names to Go functions at load time:
//
//	name: ping-pong
//	strict: false
//	states:
//	  - name: ping
//	    do: [serve]
//	    rules:
//	      - target: pong
//	        when: returned
//	        label: rally
//	  - name: pong
//	    do: [serve]
//	    rules:
//	      - target: ping
//	        when: true
//
// States and rules keep their document order, so the first state in the
// sequence is the start state and rules are evaluated top to bottom.
package yamldef

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	fsa "github.com/stateforward/go-fsa"
)

// Registry maps the names a table uses to the functions they stand for. A
// lenient registry substitutes no-op actions and always-false predicates for
// unresolved names, which is what the lint and graph tooling wants.
type Registry struct {
	lenient    bool
	actions    map[string]func(state *fsa.State)
	predicates map[string]func(state *fsa.State, args ...any) bool
	effects    map[string]func(from, to *fsa.State)
}

type RegistryOption func(*Registry)

// Lenient makes unresolved names load as stubs instead of failing.
func Lenient() RegistryOption {
	return func(r *Registry) { r.lenient = true }
}

func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		actions:    map[string]func(state *fsa.State){},
		predicates: map[string]func(state *fsa.State, args ...any) bool{},
		effects:    map[string]func(from, to *fsa.State){},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Action registers a named entry/do/exit action.
func (r *Registry) Action(name string, fn func(state *fsa.State)) *Registry {
	r.actions[name] = fn
	return r
}

// Predicate registers a named rule predicate.
func (r *Registry) Predicate(name string, fn func(state *fsa.State, args ...any) bool) *Registry {
	r.predicates[name] = fn
	return r
}

// Effect registers a named transition effect.
func (r *Registry) Effect(name string, fn func(from, to *fsa.State)) *Registry {
	r.effects[name] = fn
	return r
}

type table struct {
	Name   string     `yaml:"name"`
	Strict bool       `yaml:"strict"`
	Done   *bool      `yaml:"done"`
	Start  bool       `yaml:"start"`
	States []stateDef `yaml:"states"`
}

type stateDef struct {
	Name  string    `yaml:"name"`
	Entry []string  `yaml:"entry"`
	Do    []string  `yaml:"do"`
	Exit  []string  `yaml:"exit"`
	Rules []ruleDef `yaml:"rules"`
}

type ruleDef struct {
	Target  string    `yaml:"target"`
	When    yaml.Node `yaml:"when"`
	Label   string    `yaml:"label"`
	Effects []string  `yaml:"effects"`
}

// Define parses a YAML table and assembles it into a validated fsa.Def using
// registry to resolve names. Resolution failures and table validation
// failures are reported together.
func Define(data []byte, registry *Registry) (*fsa.Def, error) {
	var doc table
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamldef: parsing table: %w", err)
	}
	name := doc.Name
	if name == "" {
		name = "fsa"
	}
	loader := &loader{registry: registry}
	decls := []fsa.Decl{fsa.Strict(doc.Strict)}
	if doc.Done != nil {
		decls = append(decls, fsa.Done(*doc.Done))
	}
	if doc.Start {
		decls = append(decls, fsa.Start())
	}
	for _, state := range doc.States {
		decls = append(decls, loader.state(state))
	}
	def, err := fsa.Define(name, decls...)
	if err != nil {
		loader.errs = append(loader.errs, err)
	}
	if len(loader.errs) > 0 {
		return nil, errors.Join(loader.errs...)
	}
	return def, nil
}

type loader struct {
	registry *Registry
	errs     []error
}

func (l *loader) state(def stateDef) fsa.Decl {
	decls := []fsa.Decl{
		fsa.Entry(l.actions(def.Name, "entry", def.Entry)...),
		fsa.Do(l.actions(def.Name, "do", def.Do)...),
		fsa.Exit(l.actions(def.Name, "exit", def.Exit)...),
	}
	for _, rule := range def.Rules {
		decls = append(decls, l.rule(def.Name, rule))
	}
	return fsa.State(def.Name, decls...)
}

func (l *loader) rule(state string, def ruleDef) fsa.Decl {
	decls := []fsa.Decl{}
	if predicate := l.predicate(state, def); predicate != nil {
		decls = append(decls, predicate)
	}
	if def.Label != "" {
		decls = append(decls, fsa.Label(def.Label))
	}
	if len(def.Effects) > 0 {
		decls = append(decls, fsa.Effect(l.ruleEffects(state, def)...))
	}
	return fsa.Rule(def.Target, decls...)
}

// predicate resolves the rule's when field: a YAML boolean becomes a
// constant rule, a string names a registered predicate, absence is left for
// table validation to report.
func (l *loader) predicate(state string, def ruleDef) fsa.Decl {
	if def.When.IsZero() {
		return nil
	}
	var constant bool
	if err := def.When.Decode(&constant); err == nil {
		return fsa.Const(constant)
	}
	var name string
	if err := def.When.Decode(&name); err != nil {
		l.errs = append(l.errs, fmt.Errorf("yamldef: rule %q of state %q: when must be a boolean or a predicate name", def.Target, state))
		return nil
	}
	if fn, ok := l.registry.predicates[name]; ok {
		return fsa.When(fn)
	}
	if l.registry.lenient {
		return fsa.Const(false)
	}
	l.errs = append(l.errs, fmt.Errorf("yamldef: rule %q of state %q: predicate %q is not registered", def.Target, state, name))
	return fsa.Const(false)
}

func (l *loader) actions(state, hook string, names []string) []func(state *fsa.State) {
	actions := make([]func(state *fsa.State), 0, len(names))
	for _, name := range names {
		if fn, ok := l.registry.actions[name]; ok {
			actions = append(actions, fn)
			continue
		}
		if l.registry.lenient {
			actions = append(actions, func(*fsa.State) {})
			continue
		}
		l.errs = append(l.errs, fmt.Errorf("yamldef: %s action %q of state %q is not registered", hook, name, state))
	}
	return actions
}

func (l *loader) ruleEffects(state string, def ruleDef) []func(from, to *fsa.State) {
	effects := make([]func(from, to *fsa.State), 0, len(def.Effects))
	for _, name := range def.Effects {
		if fn, ok := l.registry.effects[name]; ok {
			effects = append(effects, fn)
			continue
		}
		if l.registry.lenient {
			effects = append(effects, func(*fsa.State, *fsa.State) {})
			continue
		}
		l.errs = append(l.errs, fmt.Errorf("yamldef: effect %q on rule %q of state %q is not registered", name, def.Target, state))
	}
	return effects
}
