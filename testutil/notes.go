package testutil

import (
	"go/ast"
	"sort"
	"testing"

	"github.com/cs-au-dk/monotone/analysis/dataflow"
	L "github.com/cs-au-dk/monotone/analysis/lattice"

	uf "github.com/spakin/disjoint"
	"golang.org/x/tools/go/expect"
)

// stateNote is the note name program-point annotations must use:
//
//	x := 1 //@ state(p1)
const stateNote = "state"

// Convert expect.Identifier to string.
func idToStr(x interface{}) string {
	return string(x.(expect.Identifier))
}

// NotesManager indexes the `//@ state(name)` notes of a loaded snippet by
// their (unique) names.
type NotesManager struct {
	loadRes LoadResult
	notes   map[string]*expect.Note
}

// MakeNotesManager extracts the state notes from the snippet's source.
// A malformed note or a duplicated name aborts the test: both are
// snippet-authoring errors, not analysis failures.
func MakeNotesManager(t *testing.T, loadRes LoadResult) (n NotesManager) {
	t.Helper()
	n.loadRes = loadRes
	n.notes = make(map[string]*expect.Note)

	notes, err := expect.ExtractGo(loadRes.Fset, loadRes.File)
	if err != nil {
		t.Fatal(err)
	}

	for _, note := range notes {
		if note.Name != stateNote {
			continue
		}
		if len(note.Args) != 1 {
			t.Fatalf("state note at %v must carry exactly one name",
				loadRes.Fset.Position(note.Pos))
		}

		name := idToStr(note.Args[0])
		if _, found := n.notes[name]; found {
			t.Fatalf("duplicated state note name %q", name)
		}
		n.notes[name] = note
	}

	return
}

// Names returns the note names in sorted order.
func (n NotesManager) Names() (names []string) {
	for name := range n.notes {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// NoteNamed retrieves a note by name.
func (n NotesManager) NoteNamed(name string) (*expect.Note, bool) {
	note, found := n.notes[name]
	return note, found
}

func (n NotesManager) ForEachNote(do func(name string, note *expect.Note)) {
	for _, name := range n.Names() {
		do(name, n.notes[name])
	}
}

// GroupByPoint computes which notes resolve to the same program point,
// using union-find over note names. Distinctly named notes landing on one
// point would silently receive the same state, so callers treat groups of
// size > 1 as snippet-authoring errors.
func GroupByPoint[E L.Element[E]](
	n NotesManager,
	res *dataflow.Result[E],
) map[ast.Node][]string {
	els := make(map[string]*uf.Element)
	byNode := make(map[ast.Node]*uf.Element)
	nodes := make(map[string]ast.Node)

	for _, name := range n.Names() {
		el := uf.NewElement()
		el.Data = name
		els[name] = el

		node, found := res.NodeAt(n.notes[name].Pos)
		if !found {
			continue
		}
		nodes[name] = node

		if first, ok := byNode[node]; ok {
			uf.Union(first, el)
		} else {
			byNode[node] = el
		}
	}

	sets := make(map[*uf.Element][]string)
	for _, name := range n.Names() {
		if _, found := nodes[name]; !found {
			continue
		}
		rep := els[name].Find()
		sets[rep] = append(sets[rep], name)
	}

	groups := make(map[ast.Node][]string)
	for _, names := range sets {
		groups[nodes[names[0]]] = names
	}
	return groups
}
