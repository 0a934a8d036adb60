package plantuml_test

import (
	"strings"
	"testing"

	fsa "github.com/stateforward/go-fsa"
	"github.com/stateforward/go-fsa/pkg/plantuml"
)

func machine(t *testing.T) *fsa.Machine {
	t.Helper()
	def, err := fsa.Define("traffic light",
		fsa.State("green", fsa.Rule("yellow", fsa.Always())),
		fsa.State("yellow", fsa.Rule("red", fsa.Always(), fsa.Label("timer"))),
		fsa.State("red", fsa.Rule("green", fsa.When(func(*fsa.State, ...any) bool { return true }))),
	)
	if err != nil {
		t.Fatal(err)
	}
	return fsa.New(def)
}

func TestGenerate(t *testing.T) {
	m := machine(t)
	var out strings.Builder
	if err := plantuml.Generate(&out, m); err != nil {
		t.Fatal(err)
	}
	want := "@startuml " + m.Id() + "\n" +
		"state green\n" +
		"state yellow\n" +
		"state red\n" +
		"[*] --> green\n" +
		"green --> yellow : always\n" +
		"yellow --> red : timer\n" +
		"red --> green\n" +
		"@enduml\n"
	if out.String() != want {
		t.Fatalf("diagram is\n%s\nwant\n%s", out.String(), want)
	}
}

func TestGenerateEscapesNames(t *testing.T) {
	def, err := fsa.Define(
		fsa.State("warm up", fsa.Rule("cool-down", fsa.Always())),
		fsa.State("cool-down"),
	)
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	if err := plantuml.Generate(&out, fsa.New(def)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "warm_up --> cool_down : always\n") {
		t.Fatalf("names with spaces or dashes should render as identifiers:\n%s", out.String())
	}
}
