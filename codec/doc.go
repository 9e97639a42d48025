// Package codec implements the byte-level primitives shared by the idpack
// identifier, payload and role-hash encodings.
//
// Every helper here must stay bit-compatible with the companion Solidity
// contracts: fixed-width fields are left-aligned and zero-right-padded,
// integers are big-endian, and packing uses the tight abi.encodePacked layout.
// All functions are pure and safe for concurrent use.
package codec
