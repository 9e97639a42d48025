// Package cidutil derives content identifiers for encoded idpack records.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawKeccak256 returns a CIDv1 string using the "raw" multicodec and a
// keccak-256 multihash, so the embedded digest equals the EVM hash of data.
func CIDv1RawKeccak256(data []byte) string {
	id, err := CIDv1RawKeccak256CID(data)
	if err != nil {
		// multihash.Sum only errors for unknown codes or bad lengths; with
		// KECCAK_256 and -1 this should be unreachable.
		return ""
	}
	return id.String()
}

// CIDv1RawKeccak256CID returns a CIDv1 (raw + keccak-256) derived from data.
func CIDv1RawKeccak256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.KECCAK_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Digest extracts the raw keccak-256 digest from a CID produced by this
// package.
func Digest(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, fmt.Errorf("cidutil: undefined cid")
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return nil, err
	}
	if dec.Code != multihash.KECCAK_256 {
		return nil, fmt.Errorf("cidutil: unexpected multihash code 0x%x", dec.Code)
	}
	return dec.Digest, nil
}

// Verify reports whether id was derived from data.
func Verify(id cid.Cid, data []byte) bool {
	want, err := CIDv1RawKeccak256CID(data)
	if err != nil {
		return false
	}
	return id.Equals(want)
}
