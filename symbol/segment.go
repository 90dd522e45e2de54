package symbol

import (
	"github.com/coregx/ahocorasick"

	"github.com/hlt-bme-hu/attol-go/encoding"
)

// buildSegmenter constructs an Aho-Corasick automaton over every ordinary
// (ID in [1, FlagBase)) symbol string, for use by Segment. Real AT&T
// alphabets are not always single-character: morphological transducers
// routinely use multi-byte tag symbols (e.g. "+Pl", "+Gen") as well as
// multi-byte digraphs as ordinary input symbols, so a single automaton
// covering every known symbol lets segmentation prefer the longest
// alphabet symbol available at each offset instead of always stepping one
// character at a time.
//
// Building costs one pass over the alphabet and runs once, at Freeze time;
// lookups reuse the same automaton for the lifetime of the model.
func (t *Table) buildSegmenter() {
	for id := ID(1); id < t.flagBase; id++ {
		if n := len(t.strings[id]); n > t.maxSymbolLen {
			t.maxSymbolLen = n
		}
	}
	if t.flagBase <= 1 {
		t.automaton = nil
		return
	}
	builder := ahocorasick.NewBuilder()
	for id := ID(1); id < t.flagBase; id++ {
		builder.AddPattern([]byte(t.strings[id]))
	}
	auto, err := builder.Build()
	if err != nil {
		// A degenerate alphabet (e.g. duplicate/empty patterns the builder
		// rejects) disables the automaton fast-reject; matchAt falls back
		// to scanPrefix, which gets the same symbols by linear PrefixMatch
		// scan instead.
		t.automaton = nil
		return
	}
	t.automaton = auto
}

// Segment carves word (encoded as enc) into a tape of symbol IDs. At
// each offset it first asks matchAt for the longest alphabet symbol
// anchored exactly at that offset; if one exists, its ID is emitted and
// the offset advances by the matched byte length. Otherwise, the
// encoding stepper advances exactly one character, which becomes the
// unknownID tape unit — matchAt having already failed means
// that stepped character cannot itself be a registered symbol.
// Segment returns both the tape of symbol IDs and, in parallel, the raw
// byte substring each tape position consumed. The text slice lets
// callers resolve an IDENTITY output back to the literal character that
// was consumed, even when that character was never part of the loaded
// alphabet.
func (t *Table) Segment(enc encoding.Kind, word []byte, unknownID ID) (tape []ID, text []string) {
	tape = make([]ID, 0, len(word))
	text = make([]string, 0, len(word))
	pos := 0
	for pos < len(word) {
		if id, n, ok := t.matchAt(word, pos); ok {
			tape = append(tape, id)
			text = append(text, string(word[pos:pos+n]))
			pos += n
			continue
		}
		next := encoding.StepNext(enc, word, pos)
		if next <= pos {
			next = pos + 1
		}
		text = append(text, string(word[pos:next]))
		tape = append(tape, unknownID)
		pos = next
	}
	return tape, text
}

// matchAt reports the longest alphabet symbol that is a prefix of
// word[pos:], e.g. preferring "+Nom" over "+N" when both are interned.
// The automaton, when available, is used only as a fast reject: if no
// pattern occurs anywhere in word[pos:], none can occur right at pos
// either. The match itself — including which of several
// overlapping-prefix symbols wins — is always resolved directly
// against the intern table, since Find's single returned match is not
// documented to be the longest one anchored at a given offset.
func (t *Table) matchAt(word []byte, pos int) (ID, int, bool) {
	tail := word[pos:]
	if t.automaton == nil {
		return t.scanPrefix(tail)
	}
	if t.automaton.Find(tail, 0) == nil {
		return 0, 0, false
	}
	return t.longestByLength(tail)
}

// longestByLength probes the intern table for every candidate length
// from the longest known symbol down to 1, returning the first (i.e.
// longest) hit. Called once automaton.Find has confirmed some symbol
// occurs in tail, to pick the true longest prefix at offset 0 instead of
// whichever single match Find happened to report.
func (t *Table) longestByLength(tail []byte) (ID, int, bool) {
	limit := t.maxSymbolLen
	if len(tail) < limit {
		limit = len(tail)
	}
	for n := limit; n > 0; n-- {
		if id, ok := t.byString[string(tail[:n])]; ok {
			return id, n, true
		}
	}
	return 0, 0, false
}

// scanPrefix linearly checks every ordinary symbol against tail with
// PrefixMatch, for the rare case buildSegmenter could not build an
// automaton at all (a degenerate alphabet: duplicate or empty patterns).
// Ties are broken by ID order: IDs are scanned ascending and only a
// strictly longer match replaces the current best.
func (t *Table) scanPrefix(tail []byte) (ID, int, bool) {
	var bestID ID
	bestLen := 0
	for id := ID(1); id < t.flagBase; id++ {
		if n, ok := encoding.PrefixMatch(tail, []byte(t.strings[id])); ok && n > bestLen {
			bestID, bestLen = id, n
		}
	}
	if bestLen == 0 {
		return 0, 0, false
	}
	return bestID, bestLen, true
}
