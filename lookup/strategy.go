// Package lookup implements the recursive-descent traversal of a
// fst.Model over an encoded input word: bounds checking, the three
// flag-diacritic strategies, and a synchronous result sink.
package lookup

import "fmt"

// Strategy selects how flag-diacritic transitions are enforced during a
// walk.
type Strategy int

const (
	// OBEY rejects a branch whose flag operation fails.
	OBEY Strategy = iota
	// IGNORE treats every flag transition as a free pass-through,
	// ignoring its operator entirely.
	IGNORE
	// NEGATIVE descends even through a rejected flag operation, marking
	// the branch as having a failed constraint (flag_failed) so that
	// FINAL transitions downstream become reachable only because of that
	// failure.
	NEGATIVE
)

func (s Strategy) String() string {
	switch s {
	case OBEY:
		return "OBEY"
	case IGNORE:
		return "IGNORE"
	case NEGATIVE:
		return "NEGATIVE"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}
