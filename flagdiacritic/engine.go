package flagdiacritic

import (
	"fmt"
	"math/bits"
)

// Engine parses and compiles flag diacritics observed while loading an
// AT&T file, then applies the six operators against a State during
// lookup. A single Engine instance belongs to one Model; it is built
// once (Observe* calls during loading, then Compile) and read-only
// thereafter, matching the rest of the transducer's read-only-during-lookup
// contract.
type Engine struct {
	width int // 32 or 64: the configured FlagState width

	featureOrder []string       // 1-based: featureOrder[i-1] is feature i
	featureIndex map[string]int // feature name -> 1-based index
	valueOrder   [][]string     // per feature (1-based outer), value names in 1-based order
	valueIndex   []map[string]int

	pending []pendingOp // tokens observed but not yet compiled, in first-seen order
	ops     []FlagOp    // ops[i] is the FlagOp for flag ID (flagBase + i), set by Compile
	offsets []uint8     // offsets[k-1], offsets[k] bound feature k's bit field; len = len(featureOrder)+1

	compiled bool
}

type pendingOp struct {
	token   string
	op      Op
	feature string
	value   string
}

// NewEngine creates an Engine that will validate its compiled FlagState
// against the given width (32 or 64 bits).
func NewEngine(width int) *Engine {
	if width != 32 && width != 64 {
		panic("flagdiacritic: width must be 32 or 64")
	}
	return &Engine{
		width:        width,
		featureIndex: make(map[string]int),
	}
}

// Width returns the configured FlagState width.
func (e *Engine) Width() int { return e.width }

// Observe registers one flag-diacritic token (`@X.Feat.Val@` or
// `@X.Feat@`), assigning feature/value indices in first-seen order if new.
// It must be called once per *unique* token string, in the order those
// tokens were first encountered while scanning the AT&T file, and before
// Compile. Observe does not detect repeated tokens: a second call with
// the same token records a second op (the loader dedupes before calling).
func (e *Engine) Observe(token string, op Op, feature, value string) error {
	if e.compiled {
		return fmt.Errorf("flagdiacritic: Observe called after Compile")
	}
	if !op.IsValid() {
		return &ParseError{Token: token, Msg: "unknown operator"}
	}
	if feature == "" {
		return &ParseError{Token: token, Msg: "empty feature name"}
	}
	fidx, ok := e.featureIndex[feature]
	if !ok {
		e.featureOrder = append(e.featureOrder, feature)
		e.valueOrder = append(e.valueOrder, nil)
		e.valueIndex = append(e.valueIndex, make(map[string]int))
		fidx = len(e.featureOrder)
		e.featureIndex[feature] = fidx
	}
	if value != "" {
		vi := fidx - 1
		if _, ok := e.valueIndex[vi][value]; !ok {
			e.valueOrder[vi] = append(e.valueOrder[vi], value)
			e.valueIndex[vi][value] = len(e.valueOrder[vi])
		}
	}
	e.pending = append(e.pending, pendingOp{token: token, op: op, feature: feature, value: value})
	return nil
}

// Compile computes each feature's bit width, the prefix-sum offsets table,
// and the per-flag-ID FlagOp array, in the order tokens were Observed
// (i.e. ops[i] corresponds to flag ID flagBase+i). It fails with
// OverflowError if the total bit width required exceeds the configured
// Width.
func (e *Engine) Compile() error {
	if e.compiled {
		return fmt.Errorf("flagdiacritic: Compile called twice")
	}
	offsets := make([]uint8, len(e.featureOrder)+1)
	var total int
	for i, values := range e.valueOrder {
		// field width per feature k = ceil(log2(2*(|values(k)|+1))).
		n := 2 * (len(values) + 1)
		w := bits.Len(uint(n - 1))
		offsets[i] = uint8(total)
		total += w
	}
	offsets[len(e.featureOrder)] = uint8(total)
	if total > e.width {
		return &OverflowError{Bits: total, Width: e.width}
	}
	e.offsets = offsets

	ops := make([]FlagOp, len(e.pending))
	for i, p := range e.pending {
		fidx := e.featureIndex[p.feature]
		var vidx int
		if p.value != "" {
			vidx = e.valueIndex[fidx-1][p.value]
		}
		ops[i] = FlagOp{Op: p.op, Feature: uint16(fidx), Value: uint16(vidx)}
	}
	e.ops = ops
	e.compiled = true
	return nil
}

// OverflowError reports that the bit-packed FlagState cannot hold every
// observed feature within the configured width.
type OverflowError struct {
	Bits  int
	Width int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("flag diacritics require %d bits, but FlagState is only %d bits wide", e.Bits, e.Width)
}

// NumOps returns the number of compiled flag operations (== number of
// distinct flag tokens observed).
func (e *Engine) NumOps() int {
	return len(e.ops)
}

// Op returns the compiled FlagOp at local index i (i.e. for global flag ID
// flagBase+i). Panics if Compile hasn't run or i is out of range.
func (e *Engine) Op(i int) FlagOp {
	return e.ops[i]
}

// Offsets returns the prefix-sum bit-offset table: feature k (1-based)
// occupies bits [Offsets()[k-1], Offsets()[k]).
func (e *Engine) Offsets() []uint8 {
	return e.offsets
}

// NumFeatures returns the number of distinct features observed.
func (e *Engine) NumFeatures() int {
	return len(e.featureOrder)
}

// FromCompiled reconstructs an already-compiled Engine directly from its
// offsets/ops tables, bypassing Observe/Compile bookkeeping. Used by the
// snapshot codec, which persists only the compiled form (base flag ID,
// offsets array, operations array) and has no feature/value name strings
// to replay.
func FromCompiled(width int, offsets []uint8, ops []FlagOp) *Engine {
	return &Engine{
		width:        width,
		offsets:      offsets,
		ops:          ops,
		featureOrder: make([]string, len(offsets)-1),
		compiled:     true,
	}
}
