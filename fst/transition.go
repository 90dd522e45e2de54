// Package fst is the in-memory finite-state transducer representation:
// a dense transition array partitioned into per-state blocks, the
// interned alphabet, and the compiled flag-diacritic engine, built once
// by fst/loader or snapshot and read-only for the lifetime of the model.
package fst

import (
	"math"

	"github.com/hlt-bme-hu/attol-go/symbol"
)

// Final marks a Transition's To field as a final (accepting) edge: the
// row had no target state, only a `from` and an optional weight.
const Final uint32 = math.MaxUint32

// Transition is one edge of the transducer. For flag edges InputSym
// equals OutputSym equals the flag's global symbol ID; the operator
// itself lives in the Model's flag engine, indexed by InputSym-FlagBase.
type Transition struct {
	From      uint32    // source state ID (informational; the block already groups by it)
	To        uint32    // target state ID, Final, or Model.NumStates (dangling)
	InputSym  symbol.ID
	OutputSym symbol.ID
	Weight    float64
}

// IsFinal reports whether t is a final transition (accepts with no
// further descent).
func (t Transition) IsFinal() bool { return t.To == Final }
