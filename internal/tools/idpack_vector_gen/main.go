// Command idpack_vector_gen regenerates testdata/conformance/idpack-1/vectors.json
// from the library. Run it from the repository root and diff the output
// against the checked-in file.
package main

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
	"xdao.co/idpack/payload"
	"xdao.co/idpack/rolehash"
)

const (
	token1   = "0xabcdef0123456789abcdef0123456789abcdef01"
	product1 = "0x0123456789abcdef0123456789abcdef01234567"
	addr1    = "0x1111111111111111111111111111111111111111"
	addr2    = "0x2222222222222222222222222222222222222222"
	account  = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

type idVector struct {
	Name    string `json:"name"`
	Index   int    `json:"index"`
	Token   string `json:"token"`
	Product string `json:"product"`
	ID      string `json:"id"`
	Decimal string `json:"decimal"`
}

type productIDVector struct {
	Name    string `json:"name"`
	Token   string `json:"token"`
	Product string `json:"product"`
	ID      string `json:"id"`
}

type cryptoVector struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Token    string `json:"token"`
	Product  string `json:"product"`
	Autoswap bool   `json:"autoswap"`
	Payload  string `json:"payload"`
}

type bankVector struct {
	Name    string `json:"name"`
	Index   int    `json:"index"`
	Token   string `json:"token"`
	Product string `json:"product"`
	Account string `json:"account"`
	Payload string `json:"payload"`
}

type roleValueVector struct {
	Name    string `json:"name"`
	Index   int    `json:"index"`
	Address string `json:"address"`
	Value   string `json:"value"`
}

type keyVector struct {
	Key  string `json:"key"`
	Word string `json:"word"`
}

type widthVector struct {
	Input  string `json:"input"`
	Width  int    `json:"width"`
	Output string `json:"output"`
}

type vectors struct {
	Version        string            `json:"version"`
	IDs            []idVector        `json:"ids"`
	ProductIDs     []productIDVector `json:"productIds"`
	CryptoPayloads []cryptoVector    `json:"cryptoPayloads"`
	BankPayloads   []bankVector      `json:"bankPayloads"`
	RoleValues     []roleValueVector `json:"roleValues"`
	RegistryKeys   []keyVector       `json:"registryKeys"`
	TruncateOrPad  []widthVector     `json:"truncateOrPad"`
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	out := vectors{Version: "idpack-1"}

	for _, v := range []idVector{
		{Name: "JohnDoe", Index: 42, Token: token1, Product: product1},
		{Name: "AliceSmith", Index: 10, Token: product1, Product: token1},
		{Name: "", Index: 0, Token: addr1, Product: addr2},
		{Name: "a", Index: 65535, Token: addr1, Product: product1},
		{Name: "Widget", Index: 256, Token: token1, Product: addr2},
	} {
		n := must(ident.GetID(v.Name, v.Index, v.Token, v.Product))
		v.ID = must(ident.IDFromBig(n)).Hex()
		v.Decimal = n.String()
		out.IDs = append(out.IDs, v)
	}

	for _, v := range []productIDVector{
		{Name: "JohnDoe", Token: token1, Product: product1},
		{Name: "AliceSmith", Token: addr1, Product: addr2},
		{Name: "X", Token: token1, Product: addr2},
	} {
		v.ID = must(ident.GetProductID(v.Name, v.Token, v.Product)).Hex()
		out.ProductIDs = append(out.ProductIDs, v)
	}

	for _, v := range []cryptoVector{
		{Name: "JohnDoe", Index: 42, Token: token1, Product: product1},
		{Name: "AliceSmith", Index: 10, Token: product1, Product: token1, Autoswap: true},
		{Name: "Widget", Index: 1, Token: addr1, Product: addr2, Autoswap: true},
	} {
		v.Payload = hexutil.Encode(must(payload.EncodeCrypto(v.Name, v.Index, v.Token, v.Product, v.Autoswap)))
		out.CryptoPayloads = append(out.CryptoPayloads, v)
	}

	for _, v := range []bankVector{
		{Name: "JohnDoe", Index: 7, Token: token1, Product: product1, Account: account},
		{Name: "Vault", Index: 0, Token: addr1, Product: addr2, Account: token1},
	} {
		v.Payload = hexutil.Encode(must(payload.EncodeBank(v.Name, v.Index, v.Token, v.Product, v.Account)))
		out.BankPayloads = append(out.BankPayloads, v)
	}

	for _, v := range []roleValueVector{
		{Name: "Vault", Index: 7, Address: account},
		{Name: "MINTER", Index: 65535, Address: addr1},
		{Name: "", Index: 0, Address: token1},
	} {
		w := must(rolehash.ToBytes32Value(v.Name, v.Index, v.Address))
		v.Value = hexutil.Encode(w[:])
		out.RoleValues = append(out.RoleValues, v)
	}

	for _, k := range []string{"treasury", "", "ADMIN_ROLE"} {
		w := must(rolehash.ToBytes32Key(k))
		out.RegistryKeys = append(out.RegistryKeys, keyVector{Key: k, Word: hexutil.Encode(w[:])})
	}

	for _, v := range []widthVector{
		{Input: "JohnDoe", Width: 10},
		{Input: "AliceSmith", Width: 10},
		{Input: "", Width: 4},
		{Input: "abc", Width: 3},
		{Input: "ProductAlpha", Width: 12},
	} {
		v.Output = hexutil.Encode(must(codec.TruncateOrPadToWidth(v.Input, v.Width)))
		out.TruncateOrPad = append(out.TruncateOrPad, v)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}
