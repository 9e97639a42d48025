package ident

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"xdao.co/idpack/codec"
)

// Profile names one identifier layout. Every layout fills exactly 32 bytes:
// the name field absorbs the two bytes an index would otherwise use.
type Profile struct {
	Name      string
	NameWidth int
	Indexed   bool
	// HashLongNames selects StringToBytes10OrHash for the name field instead
	// of TruncateOrPadToWidth.
	HashLongNames bool
}

var (
	// ProfileLegacyNoIndex is the first layout: 12-byte name, no index.
	ProfileLegacyNoIndex = Profile{Name: "legacy-v1", NameWidth: 12}
	// ProfileIndexed is the default layout used by GetID and DecodeID.
	ProfileIndexed = Profile{Name: "indexed-v2", NameWidth: NameSize, Indexed: true}
	// ProfileIndexedHashed shares the indexed layout but hashes names longer
	// than the name field. GetProductID uses it.
	ProfileIndexedHashed = Profile{Name: "indexed-hashed-v3", NameWidth: NameSize, Indexed: true, HashLongNames: true}
)

var profiles = map[string]Profile{
	ProfileLegacyNoIndex.Name: ProfileLegacyNoIndex,
	ProfileIndexed.Name:       ProfileIndexed,
	ProfileIndexedHashed.Name: ProfileIndexedHashed,
}

// ProfileByName returns a registered profile.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, codec.Errorf(codec.KindSchema, "IDP-SCHEMA-010", "unknown identifier profile %q", name)
	}
	return p, nil
}

// Profiles lists the registered profile names in sorted order.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p Profile) schema() []codec.Field {
	if p.Indexed {
		return []codec.Field{codec.Bytes(p.NameWidth), codec.Uint16, codec.Bytes(codec.FingerprintSize), codec.Bytes(codec.FingerprintSize)}
	}
	return []codec.Field{codec.Bytes(p.NameWidth), codec.Bytes(codec.FingerprintSize), codec.Bytes(codec.FingerprintSize)}
}

func (p Profile) nameField(name string) ([]byte, error) {
	if p.HashLongNames {
		f := StringToBytes10OrHash(name)
		return f[:], nil
	}
	return codec.TruncateOrPadToWidth(name, p.NameWidth)
}

// Encode packs f under this profile.
func (p Profile) Encode(f Fields) (ID, error) {
	id, _, _, err := p.EncodeAddresses(f)
	return id, err
}

// EncodeAddresses is Encode that also returns the token and product
// addresses parsed from f.
func (p Profile) EncodeAddresses(f Fields) (id ID, token, product common.Address, err error) {
	if !p.Indexed && f.Index != 0 {
		return id, token, product, codec.Errorf(codec.KindSchema, "IDP-SCHEMA-011", "profile %s has no index field", p.Name)
	}
	index, err := codec.CheckUint16(f.Index)
	if err != nil {
		return id, token, product, err
	}
	name, err := p.nameField(f.Name)
	if err != nil {
		return id, token, product, err
	}
	if token, err = parseToken(f.Token); err != nil {
		return id, token, product, err
	}
	if product, err = parseProduct(f.Product); err != nil {
		return id, token, product, err
	}

	values := []any{name}
	if p.Indexed {
		values = append(values, index)
	}
	values = append(values, codec.FingerprintOf(token), codec.FingerprintOf(product))
	packed, err := codec.Pack(p.schema(), values...)
	if err != nil {
		return id, token, product, err
	}
	copy(id[:], packed)
	return id, token, product, nil
}

// Decode slices id per this profile. It never fails: a name field that is
// not UTF-8 is reported as hex.
func (p Profile) Decode(id ID) Decoded {
	var d Decoded
	off := p.NameWidth
	d.Name = codec.HexToString(id[:off])
	if p.Indexed {
		d.Index = uint16(id[off])<<8 | uint16(id[off+1])
		off += 2
	}
	copy(d.Token[:], id[off:off+codec.FingerprintSize])
	off += codec.FingerprintSize
	copy(d.Product[:], id[off:off+codec.FingerprintSize])
	return d
}
