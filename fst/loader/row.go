package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hlt-bme-hu/attol-go/fst"
)

// row is one parsed-but-not-yet-resolved AT&T line. Ordinary and
// epsilon columns are resolved to symbol IDs as
// soon as they're parsed; flag columns are left as raw tokens until the
// alphabet is frozen.
type row struct {
	line int

	final  bool
	weight float64

	fromTok, toTok string

	inputIsFlag, outputIsFlag bool
	inputTok, outputTok       string // flag token text, only meaningful if *IsFlag
	inputID, outputID         uint32 // resolved symbol.ID, only meaningful if !*IsFlag
}

// parseRow splits one line by sep and classifies it by its column
// count (1/2 columns is a final row, 4/5 is a transition). It does not
// resolve tokens to symbol IDs.
func parseRow(line int, text string, sep byte) (cols []string, final bool, err error) {
	cols = strings.Split(text, string(sep))
	switch len(cols) {
	case 1, 2:
		return cols, true, nil
	case 4, 5:
		return cols, false, nil
	default:
		return nil, false, &fst.Error{Kind: fst.LoadParse, Line: line,
			Err: fmt.Errorf("row has %d columns, expected 1, 2, 4, or 5", len(cols))}
	}
}

func parseWeight(line int, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &fst.Error{Kind: fst.LoadParse, Line: line, Err: fmt.Errorf("invalid weight %q: %w", s, err)}
	}
	return w, nil
}
