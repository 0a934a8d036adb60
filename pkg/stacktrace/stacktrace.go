// Package stacktrace renders a machine's raw execution history for humans:
// one labeled block per state entry, oldest first. Formatting has no effect
// on the machine; it only reads the entries it is given.
package stacktrace

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stateforward/go-fsa/history"
)

// Format writes one block per entry:
//
//	[2] pong @ 2024-06-01T12:00:02Z
//	    result:  1
//	    message: served
//
// The result and message lines are omitted while their slots are empty.
func Format(writer io.Writer, entries []*history.Entry) error {
	var builder strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&builder, "[%d] %s @ %s\n", i, entry.State, entry.EnteredAt.Format(time.RFC3339))
		if entry.Result != nil {
			fmt.Fprintf(&builder, "    result:  %v\n", entry.Result)
		}
		if entry.Message != "" {
			fmt.Fprintf(&builder, "    message: %s\n", entry.Message)
		}
	}
	_, err := writer.Write([]byte(builder.String()))
	return err
}
