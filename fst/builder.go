package fst

import (
	"fmt"
	"sort"

	"github.com/hlt-bme-hu/attol-go/flagdiacritic"
	"github.com/hlt-bme-hu/attol-go/internal/conv"
	"github.com/hlt-bme-hu/attol-go/symbol"
)

// Builder assembles a Model from rows in source-text order. It owns
// state-token interning (the first `from`
// token seen becomes state 0) and the final per-block sort and
// to-state resolution; it knows nothing about AT&T syntax or symbol
// interning, which are fst/loader's job.
type Builder struct {
	flagBase symbol.ID
	identity symbol.ID
	unknown  symbol.ID

	order  []string          // from-token per state ID, in first-seen order
	index  map[string]uint32 // from-token -> state ID
	blocks []rawBlock        // blocks[i] holds state i's rows, unsorted

	curTok string
	hasCur bool
}

type rawRow struct {
	final  bool
	toTok  string
	input  symbol.ID
	output symbol.ID
	weight float64
}

type rawBlock struct {
	rows []rawRow
}

// NewBuilder creates a Builder. identity and unknown are the interned
// wildcard symbol IDs; flagBase is the cardinality of the non-flag
// alphabet, i.e. the first flag symbol ID.
func NewBuilder(flagBase, identity, unknown symbol.ID) *Builder {
	return &Builder{
		flagBase: flagBase,
		identity: identity,
		unknown:  unknown,
		index:    make(map[string]uint32),
	}
}

// AddFinal records a final-transition row: `fromTok` becomes final with
// the given weight.
func (b *Builder) AddFinal(fromTok string, weight float64) error {
	s, err := b.openBlock(fromTok)
	if err != nil {
		return err
	}
	b.blocks[s].rows = append(b.blocks[s].rows, rawRow{final: true, weight: weight})
	return nil
}

// AddTransition records an ordinary/epsilon/flag transition row.
// toTok is resolved against the from-token
// interning table at Finish; an unresolved toTok becomes the dangling
// target.
func (b *Builder) AddTransition(fromTok, toTok string, input, output symbol.ID, weight float64) error {
	s, err := b.openBlock(fromTok)
	if err != nil {
		return err
	}
	b.blocks[s].rows = append(b.blocks[s].rows, rawRow{toTok: toTok, input: input, output: output, weight: weight})
	return nil
}

// openBlock returns the state ID for fromTok, opening a new block the
// first time fromTok is seen and erroring if fromTok's block was
// already closed by an intervening different from-token (a
// non-contiguous state, fst.LoadOrder).
func (b *Builder) openBlock(fromTok string) (uint32, error) {
	if b.hasCur && b.curTok == fromTok {
		return b.index[fromTok], nil
	}
	if _, ok := b.index[fromTok]; ok {
		return 0, &Error{Kind: LoadOrder, Err: fmt.Errorf("state %q revisited after its block was closed", fromTok)}
	}
	s := uint32(len(b.order))
	b.order = append(b.order, fromTok)
	b.index[fromTok] = s
	b.blocks = append(b.blocks, rawBlock{})
	b.curTok = fromTok
	b.hasCur = true
	return s, nil
}

const (
	groupFinal = iota
	groupEpsilon
	groupFlag
	groupOrdinary
	groupWildcard
)

func (b *Builder) group(r rawRow) int {
	switch {
	case r.final:
		return groupFinal
	case r.input == symbol.Epsilon:
		return groupEpsilon
	case r.input >= b.flagBase:
		return groupFlag
	case r.input == b.identity || r.input == b.unknown:
		return groupWildcard
	default:
		return groupOrdinary
	}
}

// Finish sorts every block into FINAL / epsilon / flag / ordinary
// (ascending input) / wildcard order, resolves to-tokens to state IDs
// (or the dangling pseudo-state), and flattens everything into a Model.
func (b *Builder) Finish(width Width, symbols *symbol.Table, flags *flagdiacritic.Engine) (*Model, error) {
	numStates, ok := conv.CheckedIntToUint32(len(b.order))
	if !ok {
		return nil, &Error{Kind: LoadOverflow, Err: fmt.Errorf("state count %d exceeds ID range", len(b.order))}
	}

	transitions := make([]Transition, 0, len(b.order)*2)
	startIndex := make([]uint32, numStates+1)

	for s, blk := range b.blocks {
		rows := blk.rows
		sort.SliceStable(rows, func(i, j int) bool {
			gi, gj := b.group(rows[i]), b.group(rows[j])
			if gi != gj {
				return gi < gj
			}
			if gi == groupOrdinary {
				return rows[i].input < rows[j].input
			}
			return false
		})

		start, ok := conv.CheckedIntToUint32(len(transitions))
		if !ok {
			return nil, &Error{Kind: LoadOverflow, Err: fmt.Errorf("transition count exceeds ID range")}
		}
		startIndex[s] = start

		for _, r := range rows {
			to := numStates // dangling by default
			if !r.final {
				if id, ok := b.index[r.toTok]; ok {
					to = id
				}
			} else {
				to = Final
			}
			transitions = append(transitions, Transition{
				From:      uint32(s),
				To:        to,
				InputSym:  r.input,
				OutputSym: r.output,
				Weight:    r.weight,
			})
		}
	}
	end, ok := conv.CheckedIntToUint32(len(transitions))
	if !ok {
		return nil, &Error{Kind: LoadOverflow, Err: fmt.Errorf("transition count exceeds ID range")}
	}
	startIndex[numStates] = end

	return &Model{
		Width:       width,
		Transitions: transitions,
		StartIndex:  startIndex,
		Symbols:     symbols,
		Flags:       flags,
		Unknown:     b.unknown,
		Identity:    b.identity,
		Empty:       symbol.Epsilon,
		FlagBase:    b.flagBase,
	}, nil
}
