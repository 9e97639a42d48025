// Package payload wraps composite identifiers and addresses into the fixed
// ABI tuples passed between contracts.
package payload

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
)

// Size is the encoded length of every payload: four EVM words.
const Size = 4 * codec.WordSize

var (
	bytes32T = mustType("bytes32")
	addressT = mustType("address")
	boolT    = mustType("bool")

	cryptoArgs = abi.Arguments{
		{Name: "id", Type: bytes32T},
		{Name: "token", Type: addressT},
		{Name: "product", Type: addressT},
		{Name: "autoswap", Type: boolT},
	}
	bankArgs = abi.Arguments{
		{Name: "id", Type: bytes32T},
		{Name: "token", Type: addressT},
		{Name: "product", Type: addressT},
		{Name: "account", Type: addressT},
	}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// Crypto is a decoded (bytes32 id, address token, address product, bool
// autoswap) payload. ID is the decoded identifier; RawID the word it came from.
type Crypto struct {
	ID       ident.Decoded
	RawID    ident.ID
	Token    common.Address
	Product  common.Address
	Autoswap bool
}

// Bank is a decoded (bytes32 id, address token, address product, address
// account) payload.
type Bank struct {
	ID      ident.Decoded
	RawID   ident.ID
	Token   common.Address
	Product common.Address
	Account common.Address
}

type encoded struct {
	id      ident.ID
	token   common.Address
	product common.Address
}

func encodeID(name string, index int, token, product string) (encoded, error) {
	id, t, p, err := ident.ProfileIndexed.EncodeAddresses(ident.Fields{Name: name, Index: index, Token: token, Product: product})
	if err != nil {
		return encoded{}, err
	}
	return encoded{id: id, token: t, product: p}, nil
}

// EncodeCrypto ABI-encodes a crypto payload.
func EncodeCrypto(name string, index int, token, product string, autoswap bool) ([]byte, error) {
	e, err := encodeID(name, index, token, product)
	if err != nil {
		return nil, err
	}
	out, err := cryptoArgs.Pack([32]byte(e.id), e.token, e.product, autoswap)
	if err != nil {
		return nil, codec.WrapError(codec.KindABI, "IDP-ABI-010", "encode crypto payload", err)
	}
	return out, nil
}

// DecodeCrypto decodes a crypto payload and the identifier it carries.
func DecodeCrypto(data []byte) (Crypto, error) {
	vals, err := unpack(cryptoArgs, data)
	if err != nil {
		return Crypto{}, err
	}
	raw := ident.ID(vals[0].([32]byte))
	return Crypto{
		ID:       ident.ProfileIndexed.Decode(raw),
		RawID:    raw,
		Token:    vals[1].(common.Address),
		Product:  vals[2].(common.Address),
		Autoswap: vals[3].(bool),
	}, nil
}

// EncodeBank ABI-encodes a bank payload.
func EncodeBank(name string, index int, token, product, account string) ([]byte, error) {
	e, err := encodeID(name, index, token, product)
	if err != nil {
		return nil, err
	}
	acct, err := codec.ParseAddress(account)
	if err != nil {
		return nil, codec.WrapError(codec.KindAddress, "IDP-ADDR-103", "invalid account address", err)
	}
	out, err := bankArgs.Pack([32]byte(e.id), e.token, e.product, acct)
	if err != nil {
		return nil, codec.WrapError(codec.KindABI, "IDP-ABI-011", "encode bank payload", err)
	}
	return out, nil
}

// DecodeBank decodes a bank payload and the identifier it carries.
func DecodeBank(data []byte) (Bank, error) {
	vals, err := unpack(bankArgs, data)
	if err != nil {
		return Bank{}, err
	}
	raw := ident.ID(vals[0].([32]byte))
	return Bank{
		ID:      ident.ProfileIndexed.Decode(raw),
		RawID:   raw,
		Token:   vals[1].(common.Address),
		Product: vals[2].(common.Address),
		Account: vals[3].(common.Address),
	}, nil
}

func unpack(args abi.Arguments, data []byte) ([]interface{}, error) {
	if len(data) != Size {
		return nil, codec.Errorf(codec.KindWidth, "IDP-WIDTH-010", "payload must be %d bytes, got %d", Size, len(data))
	}
	// The abi decoder does not check address padding.
	for w, arg := range args {
		if arg.Type.T != abi.AddressTy {
			continue
		}
		if err := checkAddressWord(data[w*codec.WordSize : (w+1)*codec.WordSize]); err != nil {
			return nil, err
		}
	}
	vals, err := args.Unpack(data)
	if err != nil {
		return nil, codec.WrapError(codec.KindABI, "IDP-ABI-012", "decode payload", err)
	}
	return vals, nil
}

func checkAddressWord(word []byte) error {
	for _, b := range word[:codec.WordSize-common.AddressLength] {
		if b != 0 {
			return codec.NewError(codec.KindDecode, "IDP-DECODE-001", "address word has non-zero padding")
		}
	}
	return nil
}
