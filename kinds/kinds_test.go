package kinds_test

import (
	"testing"

	"github.com/stateforward/go-fsa/kinds"
)

func TestKinds(t *testing.T) {
	if !kinds.IsKind(kinds.Guarded, kinds.Rule) {
		t.Errorf("Guarded should be a Rule")
	}
	if !kinds.IsKind(kinds.Const, kinds.Rule) {
		t.Errorf("Const should be a Rule")
	}
	if kinds.IsKind(kinds.Const, kinds.Behavior) {
		t.Errorf("Const should not be a Behavior")
	}
	if !kinds.IsKind(kinds.Entry, kinds.Behavior) {
		t.Errorf("Entry should be a Behavior")
	}
	if !kinds.IsKind(kinds.Effect, kinds.Element) {
		t.Errorf("Effect should be an Element")
	}
	if kinds.IsKind(kinds.State, kinds.Rule) {
		t.Errorf("State should not be a Rule")
	}
	if !kinds.IsKind(kinds.Machine, kinds.Element) {
		t.Errorf("Machine should be an Element")
	}
	if kinds.IsKind(kinds.Null, kinds.Rule) {
		t.Errorf("Null should match nothing")
	}
}
