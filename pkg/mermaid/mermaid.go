// Package mermaid renders a machine's static table as a Mermaid
// stateDiagram-v2 block, for embedding in Markdown. Like the PlantUML
// renderer it consumes only the read-only snapshot.
package mermaid

import (
	"bytes"
	"io"

	"github.com/stateforward/go-fsa/embedded"
	"github.com/stateforward/go-fsa/kinds"
	"github.com/stateforward/go-fsa/pkg/set"
)

// Generate writes the stateDiagram-v2 for machine. Edge label format is the
// rule label when present, "always" for constant rules, nothing otherwise.
func Generate(writer io.Writer, machine embedded.Machine) error {
	var buf bytes.Buffer
	buf.WriteString("stateDiagram-v2\n")
	snapshot := machine.Snapshot()
	declared := set.New[string]()
	for _, state := range snapshot {
		declared.Add(state.Name())
		buf.WriteString("\tstate ")
		buf.WriteString(state.Name())
		buf.WriteByte('\n')
	}
	if len(snapshot) > 0 {
		buf.WriteString("\t[*] --> ")
		buf.WriteString(snapshot[0].Name())
		buf.WriteByte('\n')
	}
	for _, state := range snapshot {
		for _, rule := range state.Rules() {
			if !declared.Contains(rule.Target()) {
				continue
			}
			buf.WriteByte('\t')
			buf.WriteString(state.Name())
			buf.WriteString(" --> ")
			buf.WriteString(rule.Target())
			if label := rule.Label(); label != "" {
				buf.WriteString(" : ")
				buf.WriteString(label)
			} else if kinds.IsKind(rule.Kind(), kinds.Const) {
				buf.WriteString(" : always")
			}
			buf.WriteByte('\n')
		}
	}
	_, err := writer.Write(buf.Bytes())
	return err
}
