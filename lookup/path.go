package lookup

import (
	"github.com/hlt-bme-hu/attol-go/flagdiacritic"
	"github.com/hlt-bme-hu/attol-go/symbol"
)

// PathValue is one frame of a traversed path: the input/output
// symbols carried by the transition, its index in the
// model's transition array, the state it left from, its weight, and
// the FlagState snapshot after the transition was taken.
type PathValue struct {
	Input, Output   symbol.ID
	TransitionIndex uint32
	FromState       uint32
	Weight          float64
	Flag            flagdiacritic.State
}

// Path is an ordered sequence of PathValue from the start state to a
// final transition. It is a reusable buffer owned by the walking
// engine's call stack: a Sink must read it synchronously and must not
// retain the slice past the call, since the next push/pop mutates it
// in place.
type Path []PathValue

// Weight sums the weight of every frame in p.
func (p Path) Weight() float64 {
	var total float64
	for _, v := range p {
		total += v.Weight
	}
	return total
}

// Sink receives each accepted Path synchronously during the walk. It
// must not retain p beyond the call.
type Sink func(p Path)
