package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cs-au-dk/monotone/analysis/dataflow"
	L "github.com/cs-au-dk/monotone/analysis/lattice"

	"golang.org/x/tools/go/expect"
)

// Matcher encodes the expectation attached to a single state note.
type Matcher[E any] struct {
	desc      string
	wantFound bool
	ok        func(E) bool
}

// Is constructs a matcher accepting states for which ok holds.
func Is[E any](desc string, ok func(E) bool) Matcher[E] {
	return Matcher[E]{desc: desc, wantFound: true, ok: ok}
}

// Unanalyzed expects the annotated point to carry no recorded state at
// all, i.e. the annotation sits in code the analysis never reached. This
// is not the same as expecting ⊥ in reachable code.
func Unanalyzed[E any]() Matcher[E] {
	return Matcher[E]{desc: "unanalyzed"}
}

func (m Matcher[E]) String() string {
	return m.desc
}

// CheckDataflow runs the analysis over the named function of the snippet
// and checks the state recorded at every `//@ state(name)` note against
// the matcher registered under that name. Note names and expectation keys
// must correspond exactly, both ways; distinct notes resolving to the same
// program point abort the test. Returns the result for further inspection.
func CheckDataflow[E L.Element[E]](
	t *testing.T,
	src string, fun string,
	makeAnalysis func(lr LoadResult) dataflow.Analysis[E],
	expectations map[string]Matcher[E],
	options ...dataflow.Option,
) *dataflow.Result[E] {
	t.Helper()

	loadRes := LoadFunction(t, src, fun)
	an := makeAnalysis(loadRes)
	res, err := dataflow.RunForward(loadRes.Cfg, an, options...)
	if err != nil {
		t.Fatal(err)
	}
	if err := dataflow.CheckInvariants(loadRes.Cfg, an, res); err != nil {
		t.Error(err)
	}

	nm := MakeNotesManager(t, loadRes)

	for name := range expectations {
		if _, found := nm.NoteNamed(name); !found {
			t.Errorf("expectation %q has no matching note in the source", name)
		}
	}
	for _, name := range nm.Names() {
		if _, found := expectations[name]; !found {
			t.Errorf("note %q has no registered expectation", name)
		}
	}

	for node, names := range GroupByPoint(nm, res) {
		if len(names) > 1 {
			t.Fatalf("notes %v all resolve to the program point at %v",
				names, loadRes.Fset.Position(node.Pos()))
		}
	}

	nm.ForEachNote(func(name string, note *expect.Note) {
		m, registered := expectations[name]
		if !registered {
			return
		}

		state, found := res.StateAt(note.Pos)
		switch {
		case found != m.wantFound:
			t.Errorf("at %s: found state = %v, expected %s", name, found, m)
		case found && !m.ok(state):
			t.Errorf("at %s: state %s does not match %s", name, state, m)
		}
	})

	return res
}

// FormatStates renders the state at every note as one line per note, in
// name order. Used by golden tests.
func FormatStates[E L.Element[E]](
	n NotesManager,
	res *dataflow.Result[E],
) string {
	var b strings.Builder
	n.ForEachNote(func(name string, note *expect.Note) {
		state, found := res.StateAt(note.Pos)
		if found {
			fmt.Fprintf(&b, "%s: %s\n", name, state)
		} else {
			fmt.Fprintf(&b, "%s: <unanalyzed>\n", name)
		}
	})
	return b.String()
}
