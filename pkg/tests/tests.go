// Package tests holds helpers for driving machines through scenarios in
// tests.
package tests

import (
	"slices"
	"testing"

	fsa "github.com/stateforward/go-fsa"
)

// Switches performs count fatal switches, failing the test on any error.
func Switches(t *testing.T, m *fsa.Machine, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		if _, err := m.Switch(); err != nil {
			t.Fatalf("switch %d failed: %v", i+1, err)
		}
	}
}

// AssertStack fails the test unless the machine's visited-state stack is
// exactly want.
func AssertStack(t *testing.T, m *fsa.Machine, want ...string) {
	t.Helper()
	if got := m.Stack(); !slices.Equal(got, want) {
		t.Fatalf("stack is %v, want %v", got, want)
	}
}
