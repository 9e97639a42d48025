package ident

import "xdao.co/idpack/codec"

// NameSize is the width of the name field in current identifiers.
const NameSize = 10

// StringToBytes10OrHash encodes name into a 10-byte field. Names of at most
// 10 UTF-8 bytes are zero-right-padded; longer names become the first 10
// bytes of their keccak-256 digest and cannot be decoded back.
func StringToBytes10OrHash(name string) [NameSize]byte {
	var out [NameSize]byte
	if len(name) <= NameSize {
		copy(out[:], name)
		return out
	}
	sum := codec.Keccak256([]byte(name))
	copy(out[:], sum[:NameSize])
	return out
}
