package encoding

import "unsafe"

// hostLittleEndian detects native byte order the same way attol's original
// C++ core does (a union over a 4-byte sentinel), since UTF-16/UTF-32 code
// units and the binary snapshot (§4.5) are read and written in host order.
var hostLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()
