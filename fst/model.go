package fst

import (
	"github.com/hlt-bme-hu/attol-go/flagdiacritic"
	"github.com/hlt-bme-hu/attol-go/symbol"
)

// Width is the configured ID/float precision of a Model: 32 or 64 bits.
// It governs FlagState width and the snapshot codec's
// on-disk word size; in memory, IDs are always represented as uint32
// (see internal/conv) and weights as float64 regardless of Width.
type Width int

const (
	Width32 Width = 32
	Width64 Width = 64
)

// Model is the compiled, read-only transducer. Transitions is a single
// dense array partitioned into contiguous per-state blocks; StartIndex[s]
// is the offset of state s's block, with the conventional trailing
// sentinel StartIndex[NumStates] == len(Transitions). A to_state value
// of NumStates (one past the last real state) denotes the dangling
// target of an edge whose destination state never appeared in the
// source, rewritten to a dangling offset.
type Model struct {
	Width Width

	Transitions []Transition
	StartIndex  []uint32 // len == NumStates+1

	Symbols *symbol.Table
	Flags   *flagdiacritic.Engine

	Unknown  symbol.ID
	Identity symbol.ID
	Empty    symbol.ID // epsilon, always 0
	FlagBase symbol.ID
}

// NumStates returns the number of real states (excluding the dangling
// pseudo-state NumStates()).
func (m *Model) NumStates() uint32 {
	return uint32(len(m.StartIndex) - 1)
}

// Block returns the transition-array range [start, end) belonging to
// state. For the dangling pseudo-state (state == NumStates()) the range
// is always empty, so a walk through a dangling edge terminates with no
// further transitions.
func (m *Model) Block(state uint32) (start, end uint32) {
	start = m.StartIndex[state]
	if int(state)+1 < len(m.StartIndex) {
		end = m.StartIndex[state+1]
	} else {
		end = uint32(len(m.Transitions))
	}
	return start, end
}

// Dangling returns the pseudo-state ID used for unresolved edge targets.
func (m *Model) Dangling() uint32 {
	return m.NumStates()
}
