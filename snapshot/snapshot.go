package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/axiomhq/fsst"

	"github.com/hlt-bme-hu/attol-go/encoding"
	"github.com/hlt-bme-hu/attol-go/flagdiacritic"
	"github.com/hlt-bme-hu/attol-go/fst"
	"github.com/hlt-bme-hu/attol-go/internal/conv"
	"github.com/hlt-bme-hu/attol-go/symbol"
)

// Write serializes m to w as a BOM for enc, a width tag, the
// FSST-compressed symbol arena, the compiled flag engine, the four
// special IDs, and finally the transition array.
func Write(w io.Writer, m *fst.Model, enc encoding.Kind) error {
	if _, err := w.Write(encoding.BOM(enc)); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	if err := writeFixed32(w, uint32(m.Width)); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	c := codec{width: m.Width}

	numSymbols := m.Symbols.Len()
	if err := c.writeUint(w, uint64(numSymbols)); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	var arena bytes.Buffer
	offsets := make([]uint64, numSymbols)
	for i := 0; i < numSymbols; i++ {
		offsets[i] = uint64(arena.Len())
		arena.WriteString(m.Symbols.TextOf(symbol.ID(i)))
		arena.WriteByte(0)
	}
	// The arena is exactly the kind of repetitive structured text FSST
	// targets (morpheme tags like "+Nom"/"+Pl" recur across the
	// alphabet), so it is stored FSST-compressed rather than raw: a
	// trained table plus the compressed blob, both length-prefixed.
	arenaBytes := arena.Bytes()
	symTable := fsst.Train([][]byte{arenaBytes})
	tableBytes, err := symTable.MarshalBinary()
	if err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	compressed := symTable.EncodeAll(arenaBytes)
	if err := c.writeUint(w, uint64(len(tableBytes))); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	if _, err := w.Write(tableBytes); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	if err := c.writeUint(w, uint64(len(compressed))); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	if _, err := w.Write(compressed); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	for _, off := range offsets {
		if err := c.writeUint(w, off); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
	}

	// Flag engine dump: base-ID, offsets array, operations array.
	if err := writeFixed32(w, uint32(m.FlagBase)); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	fOffsets := m.Flags.Offsets()
	if err := writeFixed32(w, uint32(len(fOffsets))); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	for _, o := range fOffsets {
		if err := writeByte(w, o); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
	}
	if err := writeFixed32(w, uint32(m.Flags.NumOps())); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	for i := 0; i < m.Flags.NumOps(); i++ {
		op := m.Flags.Op(i)
		if err := writeByte(w, byte(op.Op)); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
		if err := writeFixed16(w, op.Feature); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
		if err := writeFixed16(w, op.Value); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
	}

	// The four special symbol IDs.
	for _, id := range []symbol.ID{m.Unknown, m.Identity, m.Empty, m.FlagBase} {
		if err := c.writeUint(w, uint64(id)); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
	}

	// Transition array: state count, then each transition.
	if err := c.writeUint(w, uint64(m.NumStates())); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	if err := c.writeUint(w, uint64(len(m.Transitions))); err != nil {
		return &fst.Error{Kind: fst.IO, Err: err}
	}
	for _, tr := range m.Transitions {
		if err := c.writeUint(w, uint64(tr.From)); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
		if err := c.writeUint(w, toDiskTarget(tr.To)); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
		if err := c.writeUint(w, uint64(tr.InputSym)); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
		if err := c.writeUint(w, uint64(tr.OutputSym)); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
		if err := c.writeFloat(w, tr.Weight); err != nil {
			return &fst.Error{Kind: fst.IO, Err: err}
		}
	}
	return nil
}

// toDiskTarget widens fst.Final (math.MaxUint32) to the full-width
// all-ones sentinel so it survives width-64 round trips distinctly from
// any real state ID.
func toDiskTarget(to uint32) uint64 {
	if to == fst.Final {
		return ^uint64(0)
	}
	return uint64(to)
}

func fromDiskTarget(v uint64) (uint32, bool) {
	if v == ^uint64(0) {
		return fst.Final, true
	}
	return conv.CheckedUint64ToUint32(v)
}

// Read deserializes a Model from r, validating the BOM and width tag
// against enc/wantWidth and failing on any mismatch.
func Read(r io.Reader, enc encoding.Kind, wantWidth fst.Width) (*fst.Model, error) {
	bom := encoding.BOM(enc)
	if len(bom) > 0 {
		got := make([]byte, len(bom))
		if _, err := io.ReadFull(r, got); err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		if !bytes.Equal(got, bom) {
			return nil, &fst.Error{Kind: fst.SnapshotMismatch, Err: fmt.Errorf("BOM mismatch for encoding %s", enc)}
		}
	}
	width, err := readFixed32(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	if fst.Width(width) != wantWidth {
		return nil, &fst.Error{Kind: fst.SnapshotMismatch, Err: fmt.Errorf("width tag %d does not match expected %d", width, wantWidth)}
	}
	c := codec{width: wantWidth}

	numSymbolsU, err := c.readUint(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	numSymbols := int(numSymbolsU)

	tableLen, err := c.readUint(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	tableBytes := make([]byte, tableLen)
	if _, err := io.ReadFull(r, tableBytes); err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	var symTable fsst.Table
	if err := symTable.UnmarshalBinary(tableBytes); err != nil {
		return nil, &fst.Error{Kind: fst.SnapshotMismatch, Err: fmt.Errorf("symbol arena table: %w", err)}
	}
	compressedLen, err := c.readUint(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	arena := symTable.DecodeAll(compressed)
	offsets := make([]uint64, numSymbols)
	for i := range offsets {
		offsets[i], err = c.readUint(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
	}

	strs := make([]string, numSymbols)
	for i, off := range offsets {
		end := off
		for end < uint64(len(arena)) && arena[end] != 0 {
			end++
		}
		strs[i] = string(arena[off:end])
	}

	flagBaseU, err := readFixed32(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	flagBase := symbol.ID(flagBaseU)

	numFeatOffsets, err := readFixed32(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	fOffsets := make([]uint8, numFeatOffsets)
	for i := range fOffsets {
		fOffsets[i], err = readByte(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
	}
	numOps, err := readFixed32(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	ops := make([]flagdiacritic.FlagOp, numOps)
	for i := range ops {
		opByte, err := readByte(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		feat, err := readFixed16(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		val, err := readFixed16(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		ops[i] = flagdiacritic.FlagOp{Op: flagdiacritic.Op(opByte), Feature: feat, Value: val}
	}
	flags := flagdiacritic.FromCompiled(int(wantWidth), fOffsets, ops)

	// Reconstruct the symbol table by replaying ordinary Intern calls in
	// ID order, then Freeze with the flag-token substrings: this
	// reproduces the exact table the loader built (see symbol.Table).
	table := symbol.NewTable()
	for i := 1; i < int(flagBase); i++ {
		table.Intern(strs[i])
	}
	table.Freeze(strs[flagBase:])

	var unknownU, identityU, emptyU, flagBaseCheckU uint64
	for _, dst := range []*uint64{&unknownU, &identityU, &emptyU, &flagBaseCheckU} {
		*dst, err = c.readUint(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
	}

	numStatesU, err := c.readUint(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	numTransitionsU, err := c.readUint(r)
	if err != nil {
		return nil, &fst.Error{Kind: fst.IO, Err: err}
	}
	numStates, ok := conv.CheckedUint64ToUint32(numStatesU)
	if !ok {
		return nil, &fst.Error{Kind: fst.LoadOverflow, Err: fmt.Errorf("state count %d exceeds ID range", numStatesU)}
	}
	transitions := make([]fst.Transition, numTransitionsU)
	startIndex := make([]uint32, numStates+1)
	prevFrom := int64(-1)
	for i := range transitions {
		fromU, err := c.readUint(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		toU, err := c.readUint(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		inU, err := c.readUint(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		outU, err := c.readUint(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		weight, err := c.readFloat(r)
		if err != nil {
			return nil, &fst.Error{Kind: fst.IO, Err: err}
		}
		from, ok := conv.CheckedUint64ToUint32(fromU)
		if !ok {
			return nil, &fst.Error{Kind: fst.LoadOverflow, Err: fmt.Errorf("from-state %d exceeds ID range", fromU)}
		}
		to, ok := fromDiskTarget(toU)
		if !ok {
			return nil, &fst.Error{Kind: fst.LoadOverflow, Err: fmt.Errorf("to-state %d exceeds ID range", toU)}
		}
		in, ok := conv.CheckedUint64ToUint32(inU)
		if !ok {
			return nil, &fst.Error{Kind: fst.LoadOverflow, Err: fmt.Errorf("input symbol %d exceeds ID range", inU)}
		}
		out, ok := conv.CheckedUint64ToUint32(outU)
		if !ok {
			return nil, &fst.Error{Kind: fst.LoadOverflow, Err: fmt.Errorf("output symbol %d exceeds ID range", outU)}
		}
		transitions[i] = fst.Transition{From: from, To: to, InputSym: symbol.ID(in), OutputSym: symbol.ID(out), Weight: weight}
		if int64(from) != prevFrom {
			startIndex[from] = uint32(i)
			prevFrom = int64(from)
		}
	}
	startIndex[numStates] = uint32(len(transitions))

	return &fst.Model{
		Width:       wantWidth,
		Transitions: transitions,
		StartIndex:  startIndex,
		Symbols:     table,
		Flags:       flags,
		Unknown:     symbol.ID(unknownU),
		Identity:    symbol.ID(identityU),
		Empty:       symbol.ID(emptyU),
		FlagBase:    symbol.ID(flagBaseCheckU),
	}, nil
}
