// Package symbol implements the transducer's alphabet: interning of
// input/output symbol strings to compact integer IDs, reverse lookup back
// to the raw string, and recognition of the AT&T format's reserved tokens
// and flag-diacritic syntax.
package symbol

import "github.com/coregx/ahocorasick"

// ID identifies an interned symbol. Epsilon is always 0; ordinary symbols
// are assigned densely starting at 1 in first-seen order; flag symbols
// (assigned during Freeze) start at FlagBase.
type ID uint32

// Epsilon is the reserved ID for the empty string, collapsing both `@0@`
// and `@_EPSILON_SYMBOL_@`.
const Epsilon ID = 0

// Table interns symbol strings to IDs and back. It is built up during
// loading (unordered, one Intern call per column) and frozen once the
// loader has consumed the whole AT&T file, at which point FlagBase is
// fixed and the alphabet no longer changes.
type Table struct {
	byString map[string]ID
	strings  []string // ID -> string, index 0 is always ""
	frozen   bool
	flagBase ID

	automaton    *ahocorasick.Automaton // built by buildSegmenter at Freeze time
	maxSymbolLen int                    // longest ordinary symbol string, in bytes
}

// NewTable creates an empty table with epsilon already interned as ID 0.
func NewTable() *Table {
	t := &Table{
		byString: make(map[string]ID, 64),
		strings:  make([]string, 1, 64),
	}
	t.byString[""] = Epsilon
	return t
}

// Intern returns the ID for s, assigning a new one if s hasn't been seen.
// Interning is idempotent: repeated calls with the same string return the
// same ID. After Freeze, an already-interned string still returns its ID,
// but interning a new string panics — it is a programming error, not
// a load error, since the loader must not intern new ordinary symbols once
// flag compilation has fixed FlagBase.
func (t *Table) Intern(s string) ID {
	if id, ok := t.byString[s]; ok {
		return id
	}
	if t.frozen {
		panic("symbol: Intern called on a frozen table")
	}
	id := ID(len(t.strings))
	t.strings = append(t.strings, s)
	t.byString[s] = id
	return id
}

// IDOf performs a pure lookup, never interning.
func (t *Table) IDOf(s string) (ID, bool) {
	id, ok := t.byString[s]
	return id, ok
}

// TextOf returns the string for id, or "" if id is out of range. The
// returned string is stable for the table's lifetime.
func (t *Table) TextOf(id ID) string {
	if int(id) >= len(t.strings) {
		return ""
	}
	return t.strings[id]
}

// Len returns the number of interned symbols, including epsilon and any
// flag symbols appended by Freeze.
func (t *Table) Len() int {
	return len(t.strings)
}

// FlagBase returns the cardinality of the non-flag alphabet at the moment
// Freeze was called; flag symbol IDs are FlagBase, FlagBase+1, ....
func (t *Table) FlagBase() ID {
	return t.flagBase
}

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool {
	return t.frozen
}

// Freeze fixes FlagBase to the table's current size and interns each flag
// token string in flagTokens (each becomes flag_symbol_base, +1, +2, ...
// in the order given), then builds the segmentation automaton. It is a
// programming error to call Freeze twice.
func (t *Table) Freeze(flagTokens []string) {
	if t.frozen {
		panic("symbol: Freeze called twice")
	}
	t.flagBase = ID(len(t.strings))
	for _, tok := range flagTokens {
		t.strings = append(t.strings, tok)
		t.byString[tok] = ID(len(t.strings) - 1)
	}
	t.frozen = true
	t.buildSegmenter()
}

// IsFlagID reports whether id was assigned during Freeze, i.e. is a flag
// diacritic symbol rather than an ordinary (or special) one.
func (t *Table) IsFlagID(id ID) bool {
	return t.frozen && id >= t.flagBase
}

// InternRuntime interns s for display purposes only, after Freeze —
// used by the lookup engine to give a symbol.ID to an IDENTITY-resolved
// output substring that was never part of the loaded alphabet (an
// IDENTITY output symbol is replaced by the character consumed from
// input). The resulting ID is never compared against FlagBase by
// a walk (it only ever appears in a finished PathValue, not as a
// Transition.InputSym), so it is safe for it to fall numerically above
// the flag range.
func (t *Table) InternRuntime(s string) ID {
	if id, ok := t.byString[s]; ok {
		return id
	}
	id := ID(len(t.strings))
	t.strings = append(t.strings, s)
	t.byString[s] = id
	return id
}
