// Package loader parses AT&T-format transducer text into a fst.Model:
// row grammar, state/symbol interning, flag-token deferral, and the
// final call into fst.Builder.
package loader

import "github.com/hlt-bme-hu/attol-go/fst"

// Options configures AT&T text parsing (encoding/strategy live in
// lookup.Options; these are the loader's share).
type Options struct {
	// Separator is the single byte separating AT&T columns. Must be a
	// single code unit of the chosen encoding; default tab.
	Separator byte
	// Width selects the ID/float precision of the resulting Model and
	// the FlagState width validated against during flag compilation.
	Width fst.Width
}

// DefaultOptions returns tab-separated, 32-bit-width options.
func DefaultOptions() Options {
	return Options{Separator: '\t', Width: fst.Width32}
}
