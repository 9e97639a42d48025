// Package rolehash derives access-control role identifiers and the 32-byte
// key/value words of the name-indexed registry.
package rolehash

import (
	"github.com/ethereum/go-ethereum/common"

	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
)

// Entry is a registry value split back into its fields.
type Entry struct {
	Name  string
	Index uint16
	// Address is in EIP-55 checksum form.
	Address string
}

var valueSchema = []codec.Field{codec.Bytes(ident.NameSize), codec.Uint16, codec.Address}

// ToRoleHash returns keccak256(abi.encodePacked(address, name)).
func ToRoleHash(address, name string) ([32]byte, error) {
	addr, err := codec.ParseAddress(address)
	if err != nil {
		return [32]byte{}, err
	}
	packed, err := codec.Pack([]codec.Field{codec.Address, codec.String}, addr, name)
	if err != nil {
		return [32]byte{}, err
	}
	return codec.Keccak256(packed), nil
}

// ToBytes32Key encodes a registry key string into one word.
func ToBytes32Key(key string) ([32]byte, error) {
	var out [32]byte
	b, err := codec.TruncateOrPadToWidth(key, codec.WordSize)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ToBytes32Value packs name, index and address into a registry value word.
func ToBytes32Value(name string, index int, address string) ([32]byte, error) {
	var out [32]byte
	packed, err := codec.Pack(valueSchema, ident.StringToBytes10OrHash(name), index, address)
	if err != nil {
		return out, err
	}
	copy(out[:], packed)
	return out, nil
}

// RecoverOriginalValues splits a registry value word. Names longer than ten
// bytes were hashed on the way in and come back as hex.
func RecoverOriginalValues(value [32]byte) Entry {
	return Entry{
		Name:    codec.HexToString(value[:ident.NameSize]),
		Index:   uint16(value[10])<<8 | uint16(value[11]),
		Address: common.BytesToAddress(value[12:]).Hex(),
	}
}
