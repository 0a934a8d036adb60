package fsa_test

import (
	"context"
	"fmt"

	fsa "github.com/stateforward/go-fsa"
)

func Example() {
	def, err := fsa.Define("traffic-light",
		fsa.Done(func(m *fsa.Machine) bool { return len(m.Stack()) == 4 }),
		fsa.State("green",
			fsa.Do(func(s *fsa.State) { fmt.Println("go") }),
			fsa.Rule("yellow", fsa.Always()),
		),
		fsa.State("yellow",
			fsa.Do(func(s *fsa.State) { fmt.Println("slow down") }),
			fsa.Rule("red", fsa.Always()),
		),
		fsa.State("red",
			fsa.Do(func(s *fsa.State) { fmt.Println("stop") }),
			fsa.Rule("green", fsa.Always()),
		),
	)
	if err != nil {
		panic(err)
	}
	m := fsa.New(def)
	if err := m.Run(context.Background()); err != nil {
		panic(err)
	}
	fmt.Println(m.Stack())
	// Output:
	// go
	// slow down
	// stop
	// go
	// [green yellow red green]
}
