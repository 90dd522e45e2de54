package lookup

import (
	"time"

	"github.com/hlt-bme-hu/attol-go/flagdiacritic"
	"github.com/hlt-bme-hu/attol-go/fst"
	"github.com/hlt-bme-hu/attol-go/symbol"
)

// Engine walks a single fst.Model. It is not reentrant and not safe for
// concurrent use: callers needing concurrent lookups should use one
// Engine per goroutine against the same, read-only Model.
type Engine struct {
	model *fst.Model

	tape     []symbol.ID
	tapeText []string // raw consumed substring per tape position, for IDENTITY resolution
	pos      int

	path    Path
	sink    Sink
	opts    Options
	results int
	start   time.Time

	flagFailed bool
}

// NewEngine creates an Engine over model. model is read-only for the
// Engine's lifetime.
func NewEngine(model *fst.Model) *Engine {
	return &Engine{model: model}
}

// Lookup segments word per opts.Encoding and walks model from its start
// state, invoking sink synchronously for every accepted path. It
// resets all per-call state first, so repeated calls with identical
// arguments are idempotent.
func (e *Engine) Lookup(word []byte, opts Options, sink Sink) {
	e.opts = opts
	e.sink = sink
	e.path = e.path[:0]
	e.results = 0
	e.flagFailed = false
	e.start = time.Now()
	e.tape, e.tapeText = e.model.Symbols.Segment(opts.Encoding, word, e.model.Unknown)
	e.pos = 0
	e.walk(0, 0)
}

func (e *Engine) bounded() bool {
	o := e.opts
	if o.MaxResults > 0 && e.results >= o.MaxResults {
		return true
	}
	if o.MaxDepth > 0 && len(e.path) >= o.MaxDepth {
		return true
	}
	if o.TimeLimit > 0 && time.Since(e.start) >= o.TimeLimit {
		return true
	}
	return false
}

func (e *Engine) push(v PathValue) {
	e.path = append(e.path, v)
}

func (e *Engine) pop() {
	e.path = e.path[:len(e.path)-1]
}

// walk recursively descends from the current state, in the fixed
// dispatch order FINAL / epsilon / flag / ordinary / wildcard dictated
// by the loader's intra-block sort.
func (e *Engine) walk(state uint32, flagState flagdiacritic.State) {
	if e.bounded() {
		return
	}
	m := e.model
	start, end := m.Block(state)
	i := start

	// FINAL group.
	for ; i < end && m.Transitions[i].IsFinal(); i++ {
		if e.pos != len(e.tape) {
			continue
		}
		if e.opts.Strategy == NEGATIVE && !e.flagFailed {
			continue
		}
		tr := m.Transitions[i]
		e.push(PathValue{Input: m.Empty, Output: m.Empty, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: flagState})
		e.results++
		e.sink(e.path)
		e.pop()
	}

	// Epsilon group.
	for ; i < end && m.Transitions[i].InputSym == m.Empty; i++ {
		tr := m.Transitions[i]
		e.push(PathValue{Input: m.Empty, Output: tr.OutputSym, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: flagState})
		e.walk(tr.To, flagState)
		e.pop()
	}

	// Flag group.
	for ; i < end && m.Transitions[i].InputSym >= m.FlagBase; i++ {
		tr := m.Transitions[i]
		localIdx := int(tr.InputSym - m.FlagBase)

		switch e.opts.Strategy {
		case IGNORE:
			e.push(PathValue{Input: tr.InputSym, Output: tr.OutputSym, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: flagState})
			e.walk(tr.To, flagState)
			e.pop()

		case OBEY:
			ok, newState := m.Flags.Apply(localIdx, flagState)
			if !ok {
				continue
			}
			e.push(PathValue{Input: tr.InputSym, Output: tr.OutputSym, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: newState})
			e.walk(tr.To, newState)
			e.pop()

		case NEGATIVE:
			ok, attempted := m.Flags.AttemptedResult(localIdx, flagState)
			e.push(PathValue{Input: tr.InputSym, Output: tr.OutputSym, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: attempted})
			if ok {
				e.walk(tr.To, attempted)
			} else {
				saved := e.flagFailed
				e.flagFailed = true
				e.walk(tr.To, attempted)
				e.flagFailed = saved
			}
			e.pop()
		}
	}

	if e.pos >= len(e.tape) {
		return
	}
	consumedID := e.tape[e.pos]

	// Ordinary group, sorted ascending by input ID: stop scanning once
	// input exceeds the tape symbol, since no later entry can match.
	for ; i < end; i++ {
		tr := m.Transitions[i]
		if tr.InputSym == m.Identity || tr.InputSym == m.Unknown {
			break
		}
		if tr.InputSym > consumedID {
			break
		}
		if tr.InputSym != consumedID {
			continue
		}
		e.push(PathValue{Input: tr.InputSym, Output: tr.OutputSym, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: flagState})
		e.pos++
		e.walk(tr.To, flagState)
		e.pos--
		e.pop()
	}
	for ; i < end; i++ {
		if m.Transitions[i].InputSym != m.Identity && m.Transitions[i].InputSym != m.Unknown {
			continue
		}
		tr := m.Transitions[i]
		out := tr.OutputSym
		if out == m.Identity {
			out = m.Symbols.InternRuntime(e.tapeText[e.pos])
		}
		e.push(PathValue{Input: tr.InputSym, Output: out, TransitionIndex: i, FromState: state, Weight: tr.Weight, Flag: flagState})
		e.pos++
		e.walk(tr.To, flagState)
		e.pos--
		e.pop()
	}
}
