package loader

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hlt-bme-hu/attol-go/flagdiacritic"
	"github.com/hlt-bme-hu/attol-go/fst"
	"github.com/hlt-bme-hu/attol-go/symbol"
)

// Load reads an AT&T text transducer from r and builds a fst.Model:
// row parsing, state/symbol interning, deferred flag-token resolution,
// alphabet freeze, flag-engine compile, and fst.Builder assembly.
func Load(r io.Reader, opts Options) (*fst.Model, error) {
	table := symbol.NewTable()
	identity := table.Intern(symbol.TokenIdentity)
	unknown := table.Intern(symbol.TokenUnknown)

	width := int(opts.Width)
	if width != 32 && width != 64 {
		width = 32
	}
	engine := flagdiacritic.NewEngine(width)

	var flagOrder []string
	seenFlag := make(map[string]bool)

	// resolveColumn interns an ordinary/epsilon token immediately and
	// returns its ID, or recognizes a flag token and defers it.
	resolveColumn := func(line int, tok string) (id uint32, isFlag bool, err error) {
		if symbol.IsEpsilonToken(tok) {
			return uint32(symbol.Epsilon), false, nil
		}
		if symbol.IsFlagToken(tok) {
			if !seenFlag[tok] {
				op, feature, value, ok := symbol.ParseFlagToken(tok)
				if !ok {
					return 0, false, &fst.Error{Kind: fst.LoadParse, Line: line, Err: fmt.Errorf("malformed flag token %q", tok)}
				}
				if err := engine.Observe(tok, flagdiacritic.Op(op), feature, value); err != nil {
					return 0, false, &fst.Error{Kind: fst.LoadParse, Line: line, Err: err}
				}
				seenFlag[tok] = true
				flagOrder = append(flagOrder, tok)
			}
			return 0, true, nil
		}
		return uint32(table.Intern(tok)), false, nil
	}

	var rows []row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if text == "" {
			continue
		}
		cols, final, err := parseRow(lineNum, text, opts.Separator)
		if err != nil {
			return nil, err
		}
		if final {
			weight, err := parseWeight(lineNum, getCol(cols, 1))
			if err != nil {
				return nil, err
			}
			rows = append(rows, row{line: lineNum, final: true, weight: weight, fromTok: cols[0]})
			continue
		}

		from, to, inTok, outTok := cols[0], cols[1], cols[2], cols[3]
		weight, err := parseWeight(lineNum, getCol(cols, 4))
		if err != nil {
			return nil, err
		}
		inID, inFlag, err := resolveColumn(lineNum, inTok)
		if err != nil {
			return nil, err
		}
		outID, outFlag, err := resolveColumn(lineNum, outTok)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{
			line: lineNum, weight: weight, fromTok: from, toTok: to,
			inputIsFlag: inFlag, outputIsFlag: outFlag,
			inputTok: inTok, outputTok: outTok,
			inputID: inID, outputID: outID,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}

	if err := engine.Compile(); err != nil {
		return nil, &fst.Error{Kind: fst.LoadOverflow, Err: err}
	}
	table.Freeze(flagOrder)
	flagBase := table.FlagBase()

	builder := fst.NewBuilder(flagBase, identity, unknown)
	for _, r := range rows {
		if r.final {
			if err := builder.AddFinal(r.fromTok, r.weight); err != nil {
				return nil, err
			}
			continue
		}
		inID := r.inputID
		outID := r.outputID
		if r.inputIsFlag {
			inID = uint32(mustID(table, r.inputTok))
		}
		if r.outputIsFlag {
			outID = uint32(mustID(table, r.outputTok))
		}
		if err := builder.AddTransition(r.fromTok, r.toTok, symbol.ID(inID), symbol.ID(outID), r.weight); err != nil {
			return nil, err
		}
	}

	return builder.Finish(opts.Width, table, engine)
}

func getCol(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

func mustID(table *symbol.Table, tok string) symbol.ID {
	id, ok := table.IDOf(tok)
	if !ok {
		panic("loader: flag token not interned after Freeze: " + tok)
	}
	return id
}
