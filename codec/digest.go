package codec

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// DigestInput is a value with an explicit interpretation for hashing.
// Use HexBytes, Text or Raw at the call site instead of relying on
// DigestString's pattern sniffing.
type DigestInput interface {
	digestBytes() ([]byte, error)
}

// HexBytes is a hex literal ("0x…", optionally signed) hashed as the bytes it
// encodes.
type HexBytes string

// Text is hashed as its UTF-8 bytes, whatever it looks like.
type Text string

// Raw is hashed as-is.
type Raw []byte

var hexLiteral = regexp.MustCompile(`^[+-]?0[xX][0-9a-fA-F]+$`)

// LooksLikeHex reports whether s would be treated as a hex literal by
// DigestString.
func LooksLikeHex(s string) bool {
	return hexLiteral.MatchString(s)
}

func (h HexBytes) digestBytes() ([]byte, error) {
	s := string(h)
	if !hexLiteral.MatchString(s) {
		return nil, Errorf(KindHex, "IDP-HEX-001", "not a hex literal: %q", s)
	}
	// The sign carries no byte content; only the magnitude is hashed.
	// FromHex left-pads odd-length digits with a zero nibble.
	return common.FromHex(strings.TrimLeft(s, "+-")), nil
}

func (t Text) digestBytes() ([]byte, error) { return []byte(t), nil }

func (r Raw) digestBytes() ([]byte, error) { return r, nil }

// Keccak256 returns the legacy (pre-NIST) Keccak-256 digest of the
// concatenated inputs, the hash used by the EVM.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Digest hashes an explicitly tagged input.
func Digest(in DigestInput) ([32]byte, error) {
	if in == nil {
		return [32]byte{}, NewError(KindSchema, "IDP-SCHEMA-001", "nil digest input")
	}
	b, err := in.digestBytes()
	if err != nil {
		return [32]byte{}, err
	}
	return Keccak256(b), nil
}

// DigestString hashes s, treating it as a hex literal when it matches
// ^[+-]?0x[0-9a-f]+$ (case-insensitive) and as UTF-8 text otherwise.
// Text that happens to look like hex is therefore hashed as bytes; callers
// that know the interpretation should use Digest.
func DigestString(s string) ([32]byte, error) {
	if LooksLikeHex(s) {
		return Digest(HexBytes(s))
	}
	return Digest(Text(s))
}
