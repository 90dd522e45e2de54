// Package snapshot implements a binary on-disk model codec: a
// byte-order mark, a width tag, a packed symbol arena, the compiled
// flag engine, the four special symbol IDs, and the transition array.
package snapshot

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/hlt-bme-hu/attol-go/fst"
)

// codec reads/writes width-dependent integers and floats: 32-bit
// models use uint32/float32 on disk, 64-bit models use uint64/float64.
type codec struct {
	width fst.Width
}

func (c codec) writeUint(w io.Writer, v uint64) error {
	if c.width == fst.Width64 {
		var buf [8]byte
		binary.NativeEndian.PutUint64(buf[:], v)
		_, err := w.Write(buf[:])
		return err
	}
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func (c codec) readUint(r io.Reader) (uint64, error) {
	if c.width == fst.Width64 {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.NativeEndian.Uint64(buf[:]), nil
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint64(binary.NativeEndian.Uint32(buf[:])), nil
}

func (c codec) writeFloat(w io.Writer, v float64) error {
	if c.width == fst.Width64 {
		return c.writeUint(w, math.Float64bits(v))
	}
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
	_, err := w.Write(buf[:])
	return err
}

func (c codec) readFloat(r io.Reader) (float64, error) {
	if c.width == fst.Width64 {
		bits, err := c.readUint(r)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(bits), nil
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(binary.NativeEndian.Uint32(buf[:]))), nil
}

// The fixed32/fixed16 and byte helpers are width-independent: small fixed
// fields (feature counts, bit offsets, FlagOp fields) never need 64-bit
// precision regardless of model Width.

func writeFixed32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readFixed32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(buf[:]), nil
}

func writeFixed16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readFixed16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint16(buf[:]), nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
