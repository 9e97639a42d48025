package rpc

import (
	"context"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/idpack/chain"
	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
	"xdao.co/idpack/payload"
	"xdao.co/idpack/registry"
	"xdao.co/idpack/rolehash"
)

// Payload kinds accepted by EncodePayload and DecodePayload.
const (
	KindCrypto = "crypto"
	KindBank   = "bank"
	KindLegacy = "legacy"
)

// Server exposes the identifier codec, an optional registry and an optional
// chain reader over the Codec gRPC service.
type Server struct {
	UnimplementedCodecServer

	// Profile is the identifier layout used by GetID and DecodeID when the
	// request does not name one. The zero value means ident.ProfileIndexed.
	Profile ident.Profile
	// Registry backs PutEntry and GetEntry. Nil disables them.
	Registry registry.Store
	// Chain backs Implementation. Nil disables it.
	Chain chain.StorageReader
}

func (s *Server) profile(name string) (ident.Profile, error) {
	if name != "" {
		return ident.ProfileByName(name)
	}
	if s.Profile.Name == "" {
		return ident.ProfileIndexed, nil
	}
	return s.Profile, nil
}

// GetID reads name, index, token, product and an optional profile.
func (s *Server) GetID(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	r := &request{in: in}
	f := ident.Fields{Name: r.str("name"), Index: r.num("index"), Token: r.str("token"), Product: r.str("product")}
	name := r.str("profile")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	p, err := s.profile(name)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	id, err := p.Encode(f)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return wrapperspb.String(id.Hex()), nil
}

// DecodeID accepts a hex or decimal identifier.
func (s *Server) DecodeID(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	p, err := s.profile("")
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	id, err := ident.ParseID(in.GetValue())
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return newStruct(ctx, decodedFields(p, p.Decode(id)))
}

// GetProductID reads name, token and product.
func (s *Server) GetProductID(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	r := &request{in: in}
	name, token, product := r.str("name"), r.str("token"), r.str("product")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	id, err := ident.GetProductID(name, token, product)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return wrapperspb.String(id.Hex()), nil
}

// VerifyProductID reads id, name, token and product.
func (s *Server) VerifyProductID(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	r := &request{in: in}
	raw, name, token, product := r.str("id"), r.str("name"), r.str("token"), r.str("product")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	id, err := ident.ParseID(raw)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	ok, err := ident.VerifyProductID(id, name, token, product)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return wrapperspb.Bool(ok), nil
}

// EncodePayload reads kind, name, index, token, product and either autoswap
// (crypto) or account (bank, legacy).
func (s *Server) EncodePayload(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	r := &request{in: in}
	name, index, token, product := r.str("name"), r.num("index"), r.str("token"), r.str("product")
	kind := r.str("kind")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	var (
		b   []byte
		err error
	)
	switch kind {
	case KindCrypto, "":
		autoswap := r.boolean("autoswap")
		if r.err != nil {
			return nil, mapErr(ctx, r.err)
		}
		b, err = payload.EncodeCrypto(name, index, token, product, autoswap)
	case KindBank, KindLegacy:
		encode := payload.EncodeBank
		if kind == KindLegacy {
			encode = payload.EncodeLegacy
		}
		account := r.str("account")
		if r.err != nil {
			return nil, mapErr(ctx, r.err)
		}
		b, err = encode(name, index, token, product, account)
	default:
		err = codec.Errorf(codec.KindSchema, "IDP-SCHEMA-020", "unknown payload kind %q", kind)
	}
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return wrapperspb.Bytes(b), nil
}

// DecodePayload reads kind and data (hex).
func (s *Server) DecodePayload(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	r := &request{in: in}
	raw, kind := r.str("data"), r.str("kind")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, mapErr(ctx, codec.WrapError(codec.KindHex, "IDP-HEX-010", "payload is not 0x-prefixed hex", err))
	}
	var fields map[string]interface{}
	switch kind {
	case KindCrypto, "":
		c, err := payload.DecodeCrypto(data)
		if err != nil {
			return nil, mapErr(ctx, err)
		}
		fields = decodedFields(ident.ProfileIndexed, c.ID)
		fields["id"] = c.RawID.Hex()
		fields["tokenAddress"] = c.Token.Hex()
		fields["productAddress"] = c.Product.Hex()
		fields["autoswap"] = c.Autoswap
	case KindBank, KindLegacy:
		decode := payload.DecodeBank
		if kind == KindLegacy {
			decode = payload.DecodeLegacy
		}
		b, err := decode(data)
		if err != nil {
			return nil, mapErr(ctx, err)
		}
		fields = decodedFields(ident.ProfileIndexed, b.ID)
		fields["id"] = b.RawID.Hex()
		fields["tokenAddress"] = b.Token.Hex()
		fields["productAddress"] = b.Product.Hex()
		fields["account"] = b.Account.Hex()
	default:
		return nil, mapErr(ctx, codec.Errorf(codec.KindSchema, "IDP-SCHEMA-020", "unknown payload kind %q", kind))
	}
	return newStruct(ctx, fields)
}

// RoleHash reads address and name.
func (s *Server) RoleHash(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	r := &request{in: in}
	address, name := r.str("address"), r.str("name")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	h, err := rolehash.ToRoleHash(address, name)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return wrapperspb.String(hexutil.Encode(h[:])), nil
}

// PutEntry reads key, name, index and address and returns the encoded key.
func (s *Server) PutEntry(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	if s.Registry == nil {
		return nil, status.Error(codes.FailedPrecondition, "registry disabled")
	}
	r := &request{in: in}
	key, name, index, address := r.str("key"), r.str("name"), r.num("index"), r.str("address")
	if r.err != nil {
		return nil, mapErr(ctx, r.err)
	}
	k, err := registry.Register(s.Registry, key, name, index, address)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return wrapperspb.String(hexutil.Encode(k[:])), nil
}

// GetEntry looks up a registry key string.
func (s *Server) GetEntry(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s.Registry == nil {
		return nil, status.Error(codes.FailedPrecondition, "registry disabled")
	}
	e, err := registry.Lookup(s.Registry, in.GetValue())
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return newStruct(ctx, map[string]interface{}{
		"name":    e.Name,
		"index":   float64(e.Index),
		"address": e.Address,
	})
}

// Implementation reads the implementation address behind a proxy.
func (s *Server) Implementation(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "chain rpc disabled")
	}
	proxy, err := codec.ParseAddress(in.GetValue())
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	impl, err := chain.GetImplementationAddress(ctx, s.Chain, proxy)
	if err != nil {
		if codec.IsKind(err, codec.KindABI) {
			return nil, mapErr(ctx, err)
		}
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return wrapperspb.String(impl.Hex()), nil
}

func decodedFields(p ident.Profile, d ident.Decoded) map[string]interface{} {
	m := map[string]interface{}{
		"profile": p.Name,
		"name":    d.Name,
		"token":   d.Token.Hex(),
		"product": d.Product.Hex(),
	}
	if p.Indexed {
		m["index"] = float64(d.Index)
	}
	return m
}

func newStruct(ctx context.Context, m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	return out, nil
}

// request reads typed fields out of a Struct. Absent fields read as zero
// values. The first field of the wrong kind is kept in err and later reads
// return zero values.
type request struct {
	in  *structpb.Struct
	err error
}

func (r *request) value(key string) *structpb.Value {
	if r.err != nil {
		return nil
	}
	return r.in.GetFields()[key]
}

func (r *request) str(key string) string {
	v := r.value(key)
	if v == nil {
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		r.err = codec.Errorf(codec.KindSchema, "IDP-SCHEMA-022", "%s must be a string, got %s", key, kindOf(v))
		return ""
	}
	return s.StringValue
}

func (r *request) num(key string) int {
	v := r.value(key)
	if v == nil {
		return 0
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		r.err = codec.Errorf(codec.KindSchema, "IDP-SCHEMA-021", "%s must be an integer, got %s", key, kindOf(v))
		return 0
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		r.err = codec.Errorf(codec.KindSchema, "IDP-SCHEMA-021", "%s must be an integer, got %v", key, f)
		return 0
	}
	return int(f)
}

func (r *request) boolean(key string) bool {
	v := r.value(key)
	if v == nil {
		return false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		r.err = codec.Errorf(codec.KindSchema, "IDP-SCHEMA-023", "%s must be a bool, got %s", key, kindOf(v))
		return false
	}
	return b.BoolValue
}

func kindOf(v *structpb.Value) string {
	switch v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "null"
	case *structpb.Value_NumberValue:
		return "number"
	case *structpb.Value_StringValue:
		return "string"
	case *structpb.Value_BoolValue:
		return "bool"
	case *structpb.Value_StructValue:
		return "object"
	case *structpb.Value_ListValue:
		return "list"
	}
	return "empty"
}
