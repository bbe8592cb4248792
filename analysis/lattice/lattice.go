package lattice

import "fmt"

// Effect signals whether a join changed the receiver operand. Fixpoint
// engines use it to decide whether dependents must be revisited.
type Effect bool

const (
	Unchanged Effect = false
	Changed   Effect = true
)

func (e Effect) String() string {
	if e == Changed {
		return "changed"
	}
	return "unchanged"
}

// Monotone combines two effects; the result is Changed if either is.
func (e Effect) Monotone(o Effect) Effect {
	return e || o
}

// Element is the constraint every lattice member type must satisfy.
//
// Join must be commutative, associative and idempotent, and the returned
// element is always at least as high in the lattice as both operands.
// The effect is Changed exactly when the result differs from the receiver;
// joining ⊥ into a concrete receiver is Unchanged, while a ⊥ receiver
// absorbing a concrete operand is a Changed transition that must propagate.
//
// Non-monotone Join implementations are not detected; they surface as
// non-termination or nonsensical results, which is a bug in the element
// implementation, not in the engine.
type Element[E any] interface {
	// Eq is a total equality relation on lattice members.
	Eq(E) bool
	// Leq is the partial order of the lattice: e.Leq(o) holds iff o carries
	// at least as much uncertainty as e.
	Leq(E) bool
	// Join computes the least upper bound of the receiver and the operand.
	Join(E) (E, Effect)
	// Height encodes the distance from the bottom of the lattice
	// to the element that calls this method.
	Height() int

	fmt.Stringer
}

// Lattice describes a value domain by its distinguished members.
// ⊤ is optional for analyses in general, but every lattice constructed in
// this package defines one.
type Lattice[E Element[E]] interface {
	Bot() E
	Top() E

	fmt.Stringer
}
