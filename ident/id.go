package ident

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"xdao.co/idpack/codec"
)

// ID is a 32-byte composite identifier.
type ID [codec.WordSize]byte

var maxID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Big interprets the identifier as a big-endian unsigned integer.
func (id ID) Big() *big.Int { return new(big.Int).SetBytes(id[:]) }

func (id ID) Bytes() []byte { return id[:] }

// Hex returns the full 32-byte 0x-prefixed form, leading zeros included.
func (id ID) Hex() string { return hexutil.Encode(id[:]) }

func (id ID) String() string { return id.Hex() }

// IDFromBig zero-left-pads v to 32 bytes. Leading zero bytes are not
// significant to the integer but are to the field boundaries.
func IDFromBig(v *big.Int) (ID, error) {
	var id ID
	if v == nil || v.Sign() < 0 || v.Cmp(maxID) > 0 {
		return id, codec.Errorf(codec.KindRange, "IDP-RANGE-002", "identifier %v outside [0, 2^256-1]", v)
	}
	v.FillBytes(id[:])
	return id, nil
}

// ParseID parses an identifier given as 0x-hex or as a decimal integer.
func ParseID(s string) (ID, error) {
	v := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = v.SetString(s[2:], 16)
	} else {
		_, ok = v.SetString(s, 10)
	}
	if !ok {
		return ID{}, codec.Errorf(codec.KindHex, "IDP-HEX-003", "invalid identifier %q", s)
	}
	return IDFromBig(v)
}

// Decoded is the field tuple recovered from an identifier.
type Decoded struct {
	Name    string
	Index   uint16
	Token   codec.Fingerprint
	Product codec.Fingerprint
}

// Fields are the inputs of an identifier.
type Fields struct {
	Name    string
	Index   int
	Token   string
	Product string
}

// GetID packs name, index and the token/product fingerprints into an
// identifier and returns it as an unsigned integer.
func GetID(name string, index int, token, product string) (*big.Int, error) {
	id, err := ProfileIndexed.Encode(Fields{Name: name, Index: index, Token: token, Product: product})
	if err != nil {
		return nil, err
	}
	return id.Big(), nil
}

// DecodeID splits an identifier produced by GetID back into its fields.
func DecodeID(v *big.Int) (Decoded, error) {
	id, err := IDFromBig(v)
	if err != nil {
		return Decoded{}, err
	}
	return ProfileIndexed.Decode(id), nil
}

func parseToken(s string) (common.Address, error) {
	addr, err := codec.ParseAddress(s)
	if err != nil {
		return addr, codec.WrapError(codec.KindAddress, "IDP-ADDR-101", "invalid token address", err)
	}
	return addr, nil
}

func parseProduct(s string) (common.Address, error) {
	addr, err := codec.ParseAddress(s)
	if err != nil {
		return addr, codec.WrapError(codec.KindAddress, "IDP-ADDR-102", "invalid product address", err)
	}
	return addr, nil
}
