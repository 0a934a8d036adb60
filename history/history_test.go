package history_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stateforward/go-fsa/history"
)

func TestStack(t *testing.T) {
	stack := history.New()
	if stack.Len() != 0 || stack.Latest() != nil || stack.Previous() != nil {
		t.Fatal("new stack should be empty")
	}

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stack.Push("a", at)
	stack.Push("b", at.Add(time.Second))
	stack.Push("b", at.Add(2*time.Second))
	stack.Push("a", at.Add(3*time.Second))

	if !slices.Equal(stack.Names(), []string{"a", "b", "b", "a"}) {
		t.Fatalf("stack names are not in entry order: %v", stack.Names())
	}
	if stack.Latest().State != "a" || stack.Previous().State != "b" {
		t.Fatalf("latest/previous are wrong: %s/%s", stack.Latest().State, stack.Previous().State)
	}

	visits := stack.AllFor("b")
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits of b, got %d", len(visits))
	}
	visits[0].Result = 1
	visits[1].Result = 2
	if stack.LatestFor("b").Result != 2 {
		t.Fatalf("latest b entry should carry the second result, got %v", stack.LatestFor("b").Result)
	}
	if !visits[1].EnteredAt.After(visits[0].EnteredAt) {
		t.Fatal("visits should be ordered by entry time")
	}

	if stack.LatestFor("missing") != nil || len(stack.AllFor("missing")) != 0 {
		t.Fatal("unvisited state should have no entries")
	}

	stack.Reset()
	if stack.Len() != 0 || stack.LatestFor("a") != nil {
		t.Fatal("reset should clear entries and per-state indices")
	}
}

func TestEntriesIsACopy(t *testing.T) {
	stack := history.New()
	stack.Push("a", time.Now())
	entries := stack.Entries()
	entries[0] = nil
	if stack.Latest() == nil {
		t.Fatal("mutating the returned slice must not affect the stack")
	}
}
