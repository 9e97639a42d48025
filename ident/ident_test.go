package ident

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"xdao.co/idpack/codec"
)

const (
	testToken   = "0xabcdef0123456789abcdef0123456789abcdef01"
	testProduct = "0x0123456789abcdef0123456789abcdef01234567"
	otherAddr   = "0x1111111111111111111111111111111111111111"
)

func mustBig(t *testing.T, hex string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(hex[2:], 16)
	if !ok {
		t.Fatalf("bad hex %q", hex)
	}
	return v
}

func TestGetID_Vector(t *testing.T) {
	got, err := GetID("JohnDoe", 42, testToken, testProduct)
	if err != nil {
		t.Fatalf("GetID: %v", err)
	}
	want := mustBig(t, "0x4a6f686e446f65000000002aabcdef0123456789abcd0123456789abcdef0123")
	if got.Cmp(want) != 0 {
		t.Fatalf("GetID = %x, want %x", got, want)
	}
}

func TestDecodeID_Vector(t *testing.T) {
	d, err := DecodeID(mustBig(t, "0x4a6f686e446f65000000002aabcdef0123456789abcd0123456789abcdef0123"))
	if err != nil {
		t.Fatalf("DecodeID: %v", err)
	}
	if d.Name != "JohnDoe" || d.Index != 42 {
		t.Fatalf("DecodeID name/index = %q/%d", d.Name, d.Index)
	}
	if d.Token.Hex() != "0xabcdef0123456789abcd" {
		t.Fatalf("token = %s", d.Token)
	}
	if d.Product.Hex() != "0x0123456789abcdef0123" {
		t.Fatalf("product = %s", d.Product)
	}
}

func TestGetID_DecodeID_RoundTrip(t *testing.T) {
	names := []string{"", "a", "JohnDoe", "AliceSmith", "héllo", "日本語"}
	indexes := []int{0, 1, 42, 255, 256, 65535}
	for _, name := range names {
		for _, index := range indexes {
			v, err := GetID(name, index, testToken, testProduct)
			if err != nil {
				t.Fatalf("GetID(%q, %d): %v", name, index, err)
			}
			d, err := DecodeID(v)
			if err != nil {
				t.Fatalf("DecodeID: %v", err)
			}
			if d.Name != name || int(d.Index) != index {
				t.Fatalf("round trip (%q, %d) -> (%q, %d)", name, index, d.Name, d.Index)
			}
			if d.Token.Hex() != testToken[:22] || d.Product.Hex() != testProduct[:22] {
				t.Fatalf("fingerprints %s %s", d.Token, d.Product)
			}
		}
	}
}

func TestDecodeID_LeadingZeroBytesKeepFieldBoundaries(t *testing.T) {
	v, err := GetID("", 42, testToken, testProduct)
	if err != nil {
		t.Fatalf("GetID: %v", err)
	}
	if len(v.Bytes()) == 32 {
		t.Fatalf("expected an integer shorter than 32 bytes")
	}
	d, err := DecodeID(v)
	if err != nil {
		t.Fatalf("DecodeID: %v", err)
	}
	if d.Name != "" || d.Index != 42 || d.Token.Hex() != "0xabcdef0123456789abcd" {
		t.Fatalf("DecodeID = %+v", d)
	}
}

func TestDecodeID_OneLevelRoundTrip(t *testing.T) {
	v, err := GetID("Bob", 7, testToken, testProduct)
	if err != nil {
		t.Fatalf("GetID: %v", err)
	}
	d, err := DecodeID(v)
	if err != nil {
		t.Fatalf("DecodeID: %v", err)
	}
	// Fingerprints are lossy: widen them back to addresses with zero tails.
	const tail = "00000000000000000000"
	again, err := GetID(d.Name, int(d.Index), d.Token.Hex()+tail, d.Product.Hex()+tail)
	if err != nil {
		t.Fatalf("GetID(decoded): %v", err)
	}
	if again.Cmp(v) != 0 {
		t.Fatalf("one-level round trip changed id: %x vs %x", again, v)
	}
}

func TestDecodeID_InvalidUTF8NameFallsBackToHex(t *testing.T) {
	var id ID
	id[0], id[1] = 0xff, 0xfe
	d, err := DecodeID(id.Big())
	if err != nil {
		t.Fatalf("DecodeID: %v", err)
	}
	if d.Name != "0xfffe0000000000000000" {
		t.Fatalf("name = %q", d.Name)
	}
}

func TestGetID_Errors(t *testing.T) {
	if _, err := GetID("x", 65536, testToken, testProduct); !codec.IsKind(err, codec.KindRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if _, err := GetID("x", -1, testToken, testProduct); !codec.IsKind(err, codec.KindRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if _, err := GetID("x", 1, "0xnope", testProduct); codec.RuleID(err) != "IDP-ADDR-101" {
		t.Fatalf("expected IDP-ADDR-101, got %v", err)
	}
	if _, err := GetID("x", 1, testToken, "0x12"); codec.RuleID(err) != "IDP-ADDR-102" {
		t.Fatalf("expected IDP-ADDR-102, got %v", err)
	}
}

func TestEncodeAddresses(t *testing.T) {
	f := Fields{Name: "JohnDoe", Index: 42, Token: testToken, Product: testProduct}
	id, token, product, err := ProfileIndexed.EncodeAddresses(f)
	if err != nil {
		t.Fatalf("EncodeAddresses: %v", err)
	}
	want, _ := ProfileIndexed.Encode(f)
	if id != want {
		t.Fatalf("id = %s, want %s", id.Hex(), want.Hex())
	}
	if token != common.HexToAddress(testToken) || product != common.HexToAddress(testProduct) {
		t.Fatalf("addresses = %s, %s", token.Hex(), product.Hex())
	}
	f.Product = "0x12"
	if _, _, _, err := ProfileIndexed.EncodeAddresses(f); codec.RuleID(err) != "IDP-ADDR-102" {
		t.Fatalf("expected IDP-ADDR-102, got %v", err)
	}
}

func TestDecodeID_RangeErrors(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := DecodeID(tooBig); !codec.IsKind(err, codec.KindRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if _, err := DecodeID(big.NewInt(-1)); !codec.IsKind(err, codec.KindRange) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	want := "0x4a6f686e446f65000000002aabcdef0123456789abcd0123456789abcdef0123"
	id, err := ParseID(want)
	if err != nil {
		t.Fatalf("ParseID(hex): %v", err)
	}
	if id.Hex() != want {
		t.Fatalf("ParseID = %s", id.Hex())
	}
	dec, err := ParseID(id.Big().String())
	if err != nil {
		t.Fatalf("ParseID(decimal): %v", err)
	}
	if dec != id {
		t.Fatalf("decimal and hex forms disagree")
	}
	short, err := ParseID("0x2a")
	if err != nil {
		t.Fatalf("ParseID(short): %v", err)
	}
	if short[31] != 0x2a || short.Hex()[:4] != "0x00" {
		t.Fatalf("ParseID(short) = %s", short.Hex())
	}
	if _, err := ParseID("0xzz"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStringToBytes10OrHash_Bifurcation(t *testing.T) {
	short := StringToBytes10OrHash("JohnDoe")
	if !bytes.Equal(short[:], []byte("JohnDoe\x00\x00\x00")) {
		t.Fatalf("short name = %x", short)
	}
	exact := StringToBytes10OrHash("AliceSmith")
	if string(exact[:]) != "AliceSmith" {
		t.Fatalf("10-byte name = %x", exact)
	}

	long := "AliceSmithJones"
	got := StringToBytes10OrHash(long)
	sum, err := codec.Digest(codec.Text(long))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !bytes.Equal(got[:], sum[:10]) {
		t.Fatalf("long name = %x, want digest prefix %x", got, sum[:10])
	}
	if bytes.Equal(got[:], []byte(long[:10])) {
		t.Fatalf("long name must not be plain truncation")
	}
	padded, _ := codec.TruncateOrPadToWidth(long, 10)
	if bytes.Equal(got[:], padded) {
		t.Fatalf("long name must differ from the width-truncated encoding")
	}
}

func TestGetProductID_Vector(t *testing.T) {
	id, err := GetProductID("JohnDoe", testToken, testProduct)
	if err != nil {
		t.Fatalf("GetProductID: %v", err)
	}
	want := "0x4a6f686e446f650000000000abcdef0123456789abcd0123456789abcdef0123"
	if id.Hex() != want {
		t.Fatalf("GetProductID = %s, want %s", id.Hex(), want)
	}
}

func TestVerifyProductID(t *testing.T) {
	for _, name := range []string{"JohnDoe", "AliceSmith", "a product name longer than ten bytes"} {
		id, err := GetProductID(name, testToken, testProduct)
		if err != nil {
			t.Fatalf("GetProductID(%q): %v", name, err)
		}
		ok, err := VerifyProductID(id, name, testToken, testProduct)
		if err != nil || !ok {
			t.Fatalf("VerifyProductID(%q) = %v, %v", name, ok, err)
		}

		cases := []struct {
			label, name, token, product string
		}{
			{"name", name + "x", testToken, testProduct},
			{"token", name, otherAddr, testProduct},
			{"product", name, testToken, otherAddr},
		}
		for _, tc := range cases {
			ok, err := VerifyProductID(id, tc.name, tc.token, tc.product)
			if err != nil {
				t.Fatalf("%s altered: unexpected error %v", tc.label, err)
			}
			if ok {
				t.Fatalf("%s altered: expected false for %q", tc.label, name)
			}
		}
	}
}

func TestVerifyProductID_AcceptsLiteralIndexedIDs(t *testing.T) {
	id, err := ProfileIndexed.Encode(Fields{Name: "Widget", Token: testToken, Product: testProduct})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	ok, err := VerifyProductID(id, "Widget", testToken, testProduct)
	if err != nil || !ok {
		t.Fatalf("VerifyProductID = %v, %v", ok, err)
	}
}

func TestVerifyProductID_MalformedAddressesAreErrors(t *testing.T) {
	id, err := GetProductID("JohnDoe", testToken, testProduct)
	if err != nil {
		t.Fatalf("GetProductID: %v", err)
	}
	_, err = VerifyProductID(id, "wrong name", "0xdeadbeef", testProduct)
	if codec.RuleID(err) != "IDP-ADDR-101" {
		t.Fatalf("expected IDP-ADDR-101, got %v", err)
	}
	_, err = VerifyProductID(id, "JohnDoe", testToken, "not-an-address")
	if codec.RuleID(err) != "IDP-ADDR-102" {
		t.Fatalf("expected IDP-ADDR-102, got %v", err)
	}
	if !codec.IsKind(err, codec.KindAddress) {
		t.Fatalf("expected KindAddress")
	}
}

func TestProfiles(t *testing.T) {
	want := []string{"indexed-hashed-v3", "indexed-v2", "legacy-v1"}
	got := Profiles()
	if len(got) != len(want) {
		t.Fatalf("Profiles = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Profiles = %v, want %v", got, want)
		}
		p, err := ProfileByName(want[i])
		if err != nil || p.Name != want[i] {
			t.Fatalf("ProfileByName(%q) = %+v, %v", want[i], p, err)
		}
	}
	if _, err := ProfileByName("v0"); codec.RuleID(err) != "IDP-SCHEMA-010" {
		t.Fatalf("expected IDP-SCHEMA-010, got %v", err)
	}
}

func TestProfileLegacyNoIndex(t *testing.T) {
	id, err := ProfileLegacyNoIndex.Encode(Fields{Name: "ProductAlpha", Token: testToken, Product: testProduct})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "0x50726f64756374416c706861" + "abcdef0123456789abcd" + "0123456789abcdef0123"
	if id.Hex() != want {
		t.Fatalf("legacy id = %s, want %s", id.Hex(), want)
	}
	d := ProfileLegacyNoIndex.Decode(id)
	if d.Name != "ProductAlpha" || d.Index != 0 || d.Token.Hex() != "0xabcdef0123456789abcd" {
		t.Fatalf("legacy decode = %+v", d)
	}

	if _, err := ProfileLegacyNoIndex.Encode(Fields{Name: "x", Index: 3, Token: testToken, Product: testProduct}); codec.RuleID(err) != "IDP-SCHEMA-011" {
		t.Fatalf("expected IDP-SCHEMA-011, got %v", err)
	}
}

func TestProfiles_DisagreeOnLongNames(t *testing.T) {
	f := Fields{Name: "AliceSmithJones", Index: 1, Token: testToken, Product: testProduct}
	plain, err := ProfileIndexed.Encode(f)
	if err != nil {
		t.Fatalf("ProfileIndexed: %v", err)
	}
	hashed, err := ProfileIndexedHashed.Encode(f)
	if err != nil {
		t.Fatalf("ProfileIndexedHashed: %v", err)
	}
	if plain == hashed {
		t.Fatalf("profiles must differ for long names")
	}
	if !bytes.Equal(plain[12:], hashed[12:]) {
		t.Fatalf("only the name field may differ")
	}
}
