package lattice

import (
	"fmt"

	"github.com/cs-au-dk/monotone/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	Lattice func(...interface{}) string
	Element func(...interface{}) string
}{
	Lattice: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
}

// flatKind tags the three strata of a flat lattice.
type flatKind uint8

const (
	flatBot flatKind = iota
	flatValue
	flatTop
)

// Flat is a member of the flat lattice over T:
//
//	    ⊤
//	  / | \
//	 t₁ t₂ ... (all values of T, mutually incomparable)
//	  \ | /
//	    ⊥
//
// The three strata are explicit; ⊥ and ⊤ are never encoded as reserved
// values of T.
type Flat[T comparable] struct {
	kind  flatKind
	value T
}

// FlatBot is the ⊥ member of the flat lattice over T.
func FlatBot[T comparable]() Flat[T] {
	return Flat[T]{kind: flatBot}
}

// FlatTop is the ⊤ member of the flat lattice over T.
func FlatTop[T comparable]() Flat[T] {
	return Flat[T]{kind: flatTop}
}

// FlatValue constructs the flat lattice member representing the value v.
func FlatValue[T comparable](v T) Flat[T] {
	return Flat[T]{kind: flatValue, value: v}
}

// IsBot checks whether the flat lattice member is ⊥.
func (e Flat[T]) IsBot() bool {
	return e.kind == flatBot
}

// IsTop checks whether the flat lattice member is ⊤.
func (e Flat[T]) IsTop() bool {
	return e.kind == flatTop
}

// Value will panic, unless invoked on a valued flat lattice member.
func (e Flat[T]) Value() T {
	if e.kind != flatValue {
		panic("Called Value() on a flat ⊥/⊤ element")
	}
	return e.value
}

// Is checks whether the flat element represents the given value.
func (e Flat[T]) Is(v T) bool {
	return e.kind == flatValue && e.value == v
}

// Eq computes e = o.
func (e Flat[T]) Eq(o Flat[T]) bool {
	return e == o
}

// Leq computes e ⊑ o.
func (e Flat[T]) Leq(o Flat[T]) bool {
	switch {
	case e.kind == flatBot:
		return true
	case o.kind == flatTop:
		return true
	default:
		return e == o
	}
}

// Join computes e ⊔ o and reports whether the result differs from e.
func (e Flat[T]) Join(o Flat[T]) (Flat[T], Effect) {
	switch {
	case e == o, o.kind == flatBot, e.kind == flatTop:
		return e, Unchanged
	case e.kind == flatBot:
		return o, Changed
	default:
		// Two distinct values, or ⊤ on the right.
		return FlatTop[T](), Changed
	}
}

// Height is 0 for ⊥, 1 for values and 2 for ⊤.
func (e Flat[T]) Height() int {
	return int(e.kind)
}

func (e Flat[T]) String() string {
	switch e.kind {
	case flatBot:
		return colorize.Element("⊥")
	case flatTop:
		return colorize.Element("T")
	default:
		return fmt.Sprint(e.value)
	}
}

// FlatLattice is the lattice of Flat[T] members.
type FlatLattice[T comparable] struct{}

func (FlatLattice[T]) Bot() Flat[T] {
	return FlatBot[T]()
}

func (FlatLattice[T]) Top() Flat[T] {
	return FlatTop[T]()
}

func (FlatLattice[T]) String() string {
	return colorize.Lattice("⊥") + " < " +
		colorize.Lattice("{...}") + " < " +
		colorize.Lattice("T")
}

var (
	_ Element[Flat[int]] = Flat[int]{}
	_ Lattice[Flat[int]] = FlatLattice[int]{}
)
