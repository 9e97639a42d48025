package rolehash

import (
	"bytes"
	"encoding/hex"
	"testing"

	"xdao.co/idpack/codec"
)

const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestToRoleHash_MatchesPackedKeccak(t *testing.T) {
	got, err := ToRoleHash("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "MINTER")
	if err != nil {
		t.Fatalf("ToRoleHash: %v", err)
	}
	addr, _ := hex.DecodeString("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	want := codec.Keccak256(addr, []byte("MINTER"))
	if got != want {
		t.Fatalf("ToRoleHash = %x, want %x", got, want)
	}
}

func TestToRoleHash_DeterministicAndCaseInsensitive(t *testing.T) {
	a, err := ToRoleHash(checksummed, "ADMIN")
	if err != nil {
		t.Fatalf("ToRoleHash: %v", err)
	}
	b, err := ToRoleHash("0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", "ADMIN")
	if err != nil {
		t.Fatalf("ToRoleHash(upper): %v", err)
	}
	if a != b {
		t.Fatalf("canonicalized address must hash identically")
	}
	c, _ := ToRoleHash(checksummed, "ADMIN")
	if a != c {
		t.Fatalf("repeated calls must agree")
	}
	d, _ := ToRoleHash(checksummed, "ADMIN2")
	if a == d {
		t.Fatalf("different names must hash differently")
	}
}

func TestToRoleHash_InvalidAddress(t *testing.T) {
	if _, err := ToRoleHash("0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "ADMIN"); !codec.IsKind(err, codec.KindAddress) {
		t.Fatalf("expected address error for bad checksum, got %v", err)
	}
	if _, err := ToRoleHash("nope", "ADMIN"); !codec.IsKind(err, codec.KindAddress) {
		t.Fatalf("expected address error, got %v", err)
	}
}

func TestToBytes32Key(t *testing.T) {
	got, err := ToBytes32Key("treasury")
	if err != nil {
		t.Fatalf("ToBytes32Key: %v", err)
	}
	want := make([]byte, 32)
	copy(want, "treasury")
	if !bytes.Equal(got[:], want) {
		t.Fatalf("ToBytes32Key = %x", got)
	}
}

func TestToBytes32Value_Recover_RoundTrip(t *testing.T) {
	v, err := ToBytes32Value("JohnDoe", 42, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	if err != nil {
		t.Fatalf("ToBytes32Value: %v", err)
	}
	wantHex := "4a6f686e446f65000000" + "002a" + "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	if hex.EncodeToString(v[:]) != wantHex {
		t.Fatalf("ToBytes32Value = %x, want %s", v, wantHex)
	}
	e := RecoverOriginalValues(v)
	if e.Name != "JohnDoe" || e.Index != 42 || e.Address != checksummed {
		t.Fatalf("RecoverOriginalValues = %+v", e)
	}
}

func TestToBytes32Value_LongNameIsHashed(t *testing.T) {
	long := "Treasury Operations"
	v, err := ToBytes32Value(long, 1, checksummed)
	if err != nil {
		t.Fatalf("ToBytes32Value: %v", err)
	}
	sum := codec.Keccak256([]byte(long))
	if !bytes.Equal(v[:10], sum[:10]) {
		t.Fatalf("name field = %x, want digest prefix %x", v[:10], sum[:10])
	}
}

func TestToBytes32Value_Errors(t *testing.T) {
	if _, err := ToBytes32Value("x", 65536, checksummed); !codec.IsKind(err, codec.KindRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if _, err := ToBytes32Value("x", 1, "0x01"); !codec.IsKind(err, codec.KindAddress) {
		t.Fatalf("expected address error, got %v", err)
	}
}
