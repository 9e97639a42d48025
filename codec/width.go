package codec

import (
	"bytes"
	"math/big"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// FingerprintSize is the width of an address fingerprint field.
	FingerprintSize = 10
	// WordSize is the width of an EVM word and of every composite identifier.
	WordSize = 32
)

// Fingerprint is the first FingerprintSize bytes of a longer value.
// It cannot be reversed to the value it was taken from.
type Fingerprint [FingerprintSize]byte

func (f Fingerprint) Bytes() []byte { return f[:] }

// Hex returns the 0x-prefixed lowercase hex form.
func (f Fingerprint) Hex() string { return hexutil.Encode(f[:]) }

func (f Fingerprint) String() string { return f.Hex() }

var stringArgs = abi.Arguments{{Type: mustType("string")}}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// TruncateOrPadToWidth encodes input into exactly width bytes.
//
// Inputs whose UTF-8 length is at most width are zero-right-padded, the same
// bytes a bytes32 string cell yields when sliced. Longer inputs are encoded as
// an ABI dynamic string value (length word followed by data) and the first
// width bytes of that encoding are returned. The two paths disagree for
// over-length inputs: every name longer than 10 bytes maps to ten zero bytes,
// and a 32-byte key longer than 32 bytes maps to its length word.
func TruncateOrPadToWidth(input string, width int) ([]byte, error) {
	if width <= 0 {
		return nil, Errorf(KindWidth, "IDP-WIDTH-001", "width must be positive, got %d", width)
	}
	raw := []byte(input)
	if len(raw) <= width {
		out := make([]byte, width)
		copy(out, raw)
		return out, nil
	}
	enc, err := DynamicString(input)
	if err != nil {
		return nil, err
	}
	out := make([]byte, width)
	copy(out, enc)
	return out, nil
}

// DynamicString returns the ABI encoding of s as a dynamic value: a 32-byte
// big-endian length followed by the data padded to a word boundary.
func DynamicString(s string) ([]byte, error) {
	enc, err := stringArgs.Pack(s)
	if err != nil {
		return nil, WrapError(KindABI, "IDP-ABI-001", "encode dynamic string", err)
	}
	// Drop the tuple head (the offset word).
	return enc[WordSize:], nil
}

// First10 returns the first 10 bytes of b.
func First10(b []byte) (Fingerprint, error) {
	var f Fingerprint
	if len(b) < FingerprintSize {
		return f, Errorf(KindWidth, "IDP-WIDTH-002", "need at least %d bytes, got %d", FingerprintSize, len(b))
	}
	copy(f[:], b[:FingerprintSize])
	return f, nil
}

// FingerprintOf returns the first 10 bytes of an address, in address order.
func FingerprintOf(addr common.Address) Fingerprint {
	var f Fingerprint
	copy(f[:], addr[:FingerprintSize])
	return f
}

// First10Big returns the first 10 significant bytes of a numeric value.
// Leading zero bytes carry no information in a number and are skipped.
func First10Big(v *big.Int) (Fingerprint, error) {
	if v == nil || v.Sign() < 0 {
		return Fingerprint{}, NewError(KindRange, "IDP-RANGE-003", "value must be a non-negative integer")
	}
	return First10(v.Bytes())
}

// Last10 returns bytes 22..32 of b after zero-left-padding it to 32 bytes.
func Last10(b []byte) (Fingerprint, error) {
	var f Fingerprint
	if len(b) > WordSize {
		return f, Errorf(KindWidth, "IDP-WIDTH-003", "value wider than %d bytes: %d", WordSize, len(b))
	}
	padded := common.LeftPadBytes(b, WordSize)
	copy(f[:], padded[WordSize-FingerprintSize:])
	return f, nil
}

// HexToString decodes a fixed-width name field. Trailing zero bytes are
// padding and are removed; a field that is not valid UTF-8 is returned as
// 0x-prefixed hex of the untrimmed bytes.
func HexToString(b []byte) string {
	trimmed := bytes.TrimRight(b, "\x00")
	if !utf8.Valid(trimmed) {
		return hexutil.Encode(b)
	}
	return string(trimmed)
}
