package encoding

// BOM returns the byte-order-mark sequence written/expected at the start
// of a stream for k. Single-byte encodings carry no BOM.
func BOM(k Kind) []byte {
	switch k {
	case UTF8:
		return []byte{0xEF, 0xBB, 0xBF}
	case UCS2, UTF16:
		return []byte{0xFF, 0xFE} // little-endian BOM
	case UTF32:
		return []byte{0xFF, 0xFE, 0x00, 0x00}
	default:
		return nil
	}
}
