package ident

import (
	"bytes"
	"unicode/utf8"

	"xdao.co/idpack/codec"
)

// GetProductID builds an identifier with index 0 and returns the raw bytes.
// Long names are hashed so the result stays verifiable by VerifyProductID.
func GetProductID(name, token, product string) (ID, error) {
	return ProfileIndexedHashed.Encode(Fields{Name: name, Token: token, Product: product})
}

// VerifyProductID reports whether id was built from name, token and product.
//
// Malformed addresses are errors (rule IDP-ADDR-101 for token, IDP-ADDR-102
// for product). Any field mismatch is reported as (false, nil).
func VerifyProductID(id ID, name, token, product string) (bool, error) {
	tokenAddr, err := parseToken(token)
	if err != nil {
		return false, err
	}
	productAddr, err := parseProduct(product)
	if err != nil {
		return false, err
	}

	if !nameMatches(id[:NameSize], name) {
		return false, nil
	}
	d := ProfileIndexed.Decode(id)
	if d.Token != codec.FingerprintOf(tokenAddr) {
		return false, nil
	}
	if d.Product != codec.FingerprintOf(productAddr) {
		return false, nil
	}
	return true, nil
}

// nameMatches accepts either a literal (padded) name field or the digest
// prefix of name.
func nameMatches(field []byte, name string) bool {
	trimmed := bytes.TrimRight(field, "\x00")
	if utf8.Valid(trimmed) && string(trimmed) == name {
		return true
	}
	sum := codec.Keccak256([]byte(name))
	return bytes.Equal(field, sum[:NameSize])
}
