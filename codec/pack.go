package codec

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Type tags a packed field.
type Type uint8

const (
	TypeBytes Type = iota + 1
	TypeUint16
	TypeAddress
	TypeBool
	TypeString
)

// Field is one entry of a packing schema.
// Width is the encoded byte width; it is 0 for the dynamic String type.
type Field struct {
	Type  Type
	Width int
}

var (
	Uint16  = Field{Type: TypeUint16, Width: 2}
	Address = Field{Type: TypeAddress, Width: common.AddressLength}
	Bool    = Field{Type: TypeBool, Width: 1}
	String  = Field{Type: TypeString}
)

// Bytes returns a fixed-width bytesN field.
func Bytes(width int) Field { return Field{Type: TypeBytes, Width: width} }

func (f Field) String() string {
	switch f.Type {
	case TypeBytes:
		return fmt.Sprintf("bytes%d", f.Width)
	case TypeUint16:
		return "uint16"
	case TypeAddress:
		return "address"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	default:
		return fmt.Sprintf("unknown(%d)", f.Type)
	}
}

// Pack concatenates values per schema with no padding or delimiters, the
// layout of Solidity's abi.encodePacked for these types.
//
// Byte-string values must match the declared width exactly. Integers are
// big-endian. Nothing is returned unless every field encodes.
func Pack(schema []Field, values ...any) ([]byte, error) {
	if len(schema) != len(values) {
		return nil, Errorf(KindSchema, "IDP-SCHEMA-002", "schema has %d fields, got %d values", len(schema), len(values))
	}
	size := 0
	for _, f := range schema {
		size += f.Width
	}
	out := make([]byte, 0, size)
	for i, f := range schema {
		enc, err := packOne(f, values[i])
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i, f, err)
		}
		out = append(out, enc...)
	}
	return out, nil
}

func packOne(f Field, v any) ([]byte, error) {
	switch f.Type {
	case TypeBytes:
		if f.Width < 1 || f.Width > WordSize {
			return nil, Errorf(KindSchema, "IDP-SCHEMA-003", "unsupported byte width %d", f.Width)
		}
		b, err := asBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) != f.Width {
			return nil, Errorf(KindWidth, "IDP-WIDTH-004", "expected %d bytes, got %d", f.Width, len(b))
		}
		return append([]byte(nil), b...), nil
	case TypeUint16:
		n, err := asUint16(v)
		if err != nil {
			return nil, err
		}
		return []byte{byte(n >> 8), byte(n)}, nil
	case TypeAddress:
		switch a := v.(type) {
		case common.Address:
			return a.Bytes(), nil
		case string:
			addr, err := ParseAddress(a)
			if err != nil {
				return nil, err
			}
			return addr.Bytes(), nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			if b {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	default:
		return nil, Errorf(KindSchema, "IDP-SCHEMA-003", "unsupported field type %d", f.Type)
	}
	return nil, Errorf(KindSchema, "IDP-SCHEMA-004", "cannot pack %T as %s", v, f)
}

func asBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case Fingerprint:
		return b[:], nil
	case [10]byte:
		return b[:], nil
	case [12]byte:
		return b[:], nil
	case [32]byte:
		return b[:], nil
	case common.Hash:
		return b[:], nil
	default:
		return nil, Errorf(KindSchema, "IDP-SCHEMA-004", "cannot pack %T as bytes", v)
	}
}

func asUint16(v any) (uint16, error) {
	var n int64
	switch x := v.(type) {
	case uint16:
		return x, nil
	case uint8:
		return uint16(x), nil
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		if uint64(x) > math.MaxUint16 {
			return 0, rangeError(new(big.Int).SetUint64(uint64(x)))
		}
		return uint16(x), nil
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxUint16 {
			return 0, rangeError(new(big.Int).SetUint64(x))
		}
		return uint16(x), nil
	case *big.Int:
		if x == nil || !x.IsInt64() {
			return 0, rangeError(x)
		}
		n = x.Int64()
	default:
		return 0, Errorf(KindSchema, "IDP-SCHEMA-004", "cannot pack %T as uint16", v)
	}
	if n < 0 || n > math.MaxUint16 {
		return 0, rangeError(big.NewInt(n))
	}
	return uint16(n), nil
}

func rangeError(v *big.Int) error {
	return Errorf(KindRange, "IDP-RANGE-001", "value %v out of uint16 range [0, 65535]", v)
}

// CheckUint16 validates that index fits an unsigned 16-bit field.
func CheckUint16(index int) (uint16, error) {
	return asUint16(index)
}
