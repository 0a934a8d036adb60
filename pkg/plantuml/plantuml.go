// Package plantuml renders a machine's static table as a PlantUML state
// diagram. Rendering consumes only the read-only snapshot, so the output is
// re-derivable at any time and never reflects runtime state.
package plantuml

import (
	"fmt"
	"io"
	"strings"

	"github.com/stateforward/go-fsa/embedded"
	"github.com/stateforward/go-fsa/kinds"
	"github.com/stateforward/go-fsa/pkg/set"
)

func id(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "-", "_"), " ", "_")
}

func edgeLabel(rule embedded.Rule) string {
	if label := rule.Label(); label != "" {
		return fmt.Sprintf(" : %s", label)
	}
	if kinds.IsKind(rule.Kind(), kinds.Const) {
		return " : always"
	}
	return ""
}

// Generate writes the diagram for machine. States are declared in table
// order and every rule becomes one edge, labeled with the rule's label when
// it has one.
func Generate(writer io.Writer, machine embedded.Machine) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "@startuml %s\n", machine.Id())
	snapshot := machine.Snapshot()
	declared := set.New[string]()
	for _, state := range snapshot {
		declared.Add(state.Name())
		fmt.Fprintf(&builder, "state %s\n", id(state.Name()))
	}
	if len(snapshot) > 0 {
		fmt.Fprintf(&builder, "[*] --> %s\n", id(snapshot[0].Name()))
	}
	for _, state := range snapshot {
		for _, rule := range state.Rules() {
			// a target outside the snapshot means the view is partial; skip
			// the edge rather than invent a node
			if !declared.Contains(rule.Target()) {
				continue
			}
			fmt.Fprintf(&builder, "%s --> %s%s\n", id(state.Name()), id(rule.Target()), edgeLabel(rule))
		}
	}
	fmt.Fprintln(&builder, "@enduml")
	_, err := writer.Write([]byte(builder.String()))
	return err
}
