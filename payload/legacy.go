package payload

import (
	"github.com/ethereum/go-ethereum/common"

	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
)

// EncodeLegacy writes id, token, product and account as four left-padded
// words with no tuple framing. It exists to read and write payloads produced
// before the ABI tuple formats; new callers should use EncodeBank.
func EncodeLegacy(name string, index int, token, product, account string) ([]byte, error) {
	e, err := encodeID(name, index, token, product)
	if err != nil {
		return nil, err
	}
	acct, err := codec.ParseAddress(account)
	if err != nil {
		return nil, codec.WrapError(codec.KindAddress, "IDP-ADDR-103", "invalid account address", err)
	}
	out := make([]byte, 0, Size)
	out = append(out, e.id[:]...)
	out = append(out, common.LeftPadBytes(e.token.Bytes(), codec.WordSize)...)
	out = append(out, common.LeftPadBytes(e.product.Bytes(), codec.WordSize)...)
	out = append(out, common.LeftPadBytes(acct.Bytes(), codec.WordSize)...)
	return out, nil
}

// DecodeLegacy reads a payload written by EncodeLegacy.
func DecodeLegacy(data []byte) (Bank, error) {
	if len(data) != Size {
		return Bank{}, codec.Errorf(codec.KindWidth, "IDP-WIDTH-010", "payload must be %d bytes, got %d", Size, len(data))
	}
	words := make([][]byte, 4)
	for i := range words {
		words[i] = data[i*codec.WordSize : (i+1)*codec.WordSize]
	}
	for _, w := range words[1:] {
		if err := checkAddressWord(w); err != nil {
			return Bank{}, err
		}
	}
	var raw ident.ID
	copy(raw[:], words[0])
	return Bank{
		ID:      ident.ProfileIndexed.Decode(raw),
		RawID:   raw,
		Token:   common.BytesToAddress(words[1]),
		Product: common.BytesToAddress(words[2]),
		Account: common.BytesToAddress(words[3]),
	}, nil
}
