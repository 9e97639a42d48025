package rpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/idpack/codec"
	"xdao.co/idpack/ident"
	"xdao.co/idpack/payload"
	"xdao.co/idpack/rolehash"
)

// Client calls a remote Codec service and returns the same values and
// errors as the local packages.
type Client struct {
	cc     *grpc.ClientConn
	client CodecClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration
}

func Dial(target string, opts DialOptions) (*Client, error) {
	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	cc, err := grpc.DialContext(ctx, target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return NewClient(cc), nil
}

// NewClient wraps an existing connection. Close closes it.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewCodecClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// GetID encodes f under the named profile; an empty profile uses the
// server's default.
func (c *Client) GetID(profile string, f ident.Fields) (ident.ID, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"profile": profile,
		"name":    f.Name,
		"index":   float64(f.Index),
		"token":   f.Token,
		"product": f.Product,
	})
	if err != nil {
		return ident.ID{}, err
	}
	var reply *wrapperspb.StringValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.GetID(ctx, in, opts...)
		return err
	}); err != nil {
		return ident.ID{}, err
	}
	return ident.ParseID(reply.GetValue())
}

// DecodeID decodes id with the server's default profile.
func (c *Client) DecodeID(id ident.ID) (ident.Decoded, error) {
	var reply *structpb.Struct
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.DecodeID(ctx, wrapperspb.String(id.Hex()), opts...)
		return err
	}); err != nil {
		return ident.Decoded{}, err
	}
	return decoded(reply)
}

func (c *Client) GetProductID(name, token, product string) (ident.ID, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"name": name, "token": token, "product": product})
	if err != nil {
		return ident.ID{}, err
	}
	var reply *wrapperspb.StringValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.GetProductID(ctx, in, opts...)
		return err
	}); err != nil {
		return ident.ID{}, err
	}
	return ident.ParseID(reply.GetValue())
}

func (c *Client) VerifyProductID(id ident.ID, name, token, product string) (bool, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"id": id.Hex(), "name": name, "token": token, "product": product})
	if err != nil {
		return false, err
	}
	var reply *wrapperspb.BoolValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.VerifyProductID(ctx, in, opts...)
		return err
	}); err != nil {
		return false, err
	}
	return reply.GetValue(), nil
}

// EncodeCrypto returns the 128-byte crypto payload.
func (c *Client) EncodeCrypto(name string, index int, token, product string, autoswap bool) ([]byte, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"kind":     KindCrypto,
		"name":     name,
		"index":    float64(index),
		"token":    token,
		"product":  product,
		"autoswap": autoswap,
	})
	if err != nil {
		return nil, err
	}
	var reply *wrapperspb.BytesValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.EncodePayload(ctx, in, opts...)
		return err
	}); err != nil {
		return nil, err
	}
	return reply.GetValue(), nil
}

// EncodeBank returns the 128-byte bank payload.
func (c *Client) EncodeBank(name string, index int, token, product, account string) ([]byte, error) {
	return c.encodeAccount(KindBank, name, index, token, product, account)
}

// EncodeLegacy returns the 128-byte legacy payload.
func (c *Client) EncodeLegacy(name string, index int, token, product, account string) ([]byte, error) {
	return c.encodeAccount(KindLegacy, name, index, token, product, account)
}

func (c *Client) encodeAccount(kind, name string, index int, token, product, account string) ([]byte, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"kind":    kind,
		"name":    name,
		"index":   float64(index),
		"token":   token,
		"product": product,
		"account": account,
	})
	if err != nil {
		return nil, err
	}
	var reply *wrapperspb.BytesValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.EncodePayload(ctx, in, opts...)
		return err
	}); err != nil {
		return nil, err
	}
	return reply.GetValue(), nil
}

func (c *Client) DecodeCrypto(data []byte) (payload.Crypto, error) {
	reply, err := c.decodePayload(KindCrypto, data)
	if err != nil {
		return payload.Crypto{}, err
	}
	out := payload.Crypto{
		Token:    common.HexToAddress(replyString(reply, "tokenAddress")),
		Product:  common.HexToAddress(replyString(reply, "productAddress")),
		Autoswap: reply.GetFields()["autoswap"].GetBoolValue(),
	}
	if out.ID, err = decoded(reply); err != nil {
		return out, err
	}
	out.RawID, err = ident.ParseID(replyString(reply, "id"))
	return out, err
}

func (c *Client) DecodeBank(data []byte) (payload.Bank, error) {
	return c.decodeAccount(KindBank, data)
}

func (c *Client) DecodeLegacy(data []byte) (payload.Bank, error) {
	return c.decodeAccount(KindLegacy, data)
}

func (c *Client) decodeAccount(kind string, data []byte) (payload.Bank, error) {
	reply, err := c.decodePayload(kind, data)
	if err != nil {
		return payload.Bank{}, err
	}
	out := payload.Bank{
		Token:   common.HexToAddress(replyString(reply, "tokenAddress")),
		Product: common.HexToAddress(replyString(reply, "productAddress")),
		Account: common.HexToAddress(replyString(reply, "account")),
	}
	if out.ID, err = decoded(reply); err != nil {
		return out, err
	}
	out.RawID, err = ident.ParseID(replyString(reply, "id"))
	return out, err
}

func (c *Client) decodePayload(kind string, data []byte) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"kind": kind, "data": hexutil.Encode(data)})
	if err != nil {
		return nil, err
	}
	var reply *structpb.Struct
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.DecodePayload(ctx, in, opts...)
		return err
	}); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) RoleHash(address, name string) ([32]byte, error) {
	var out [32]byte
	in, err := structpb.NewStruct(map[string]interface{}{"address": address, "name": name})
	if err != nil {
		return out, err
	}
	var reply *wrapperspb.StringValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.RoleHash(ctx, in, opts...)
		return err
	}); err != nil {
		return out, err
	}
	return common.HexToHash(reply.GetValue()), nil
}

// PutEntry stores a registry entry and returns its encoded key.
func (c *Client) PutEntry(key, name string, index int, address string) ([32]byte, error) {
	var out [32]byte
	in, err := structpb.NewStruct(map[string]interface{}{
		"key":     key,
		"name":    name,
		"index":   float64(index),
		"address": address,
	})
	if err != nil {
		return out, err
	}
	var reply *wrapperspb.StringValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.PutEntry(ctx, in, opts...)
		return err
	}); err != nil {
		return out, err
	}
	return common.HexToHash(reply.GetValue()), nil
}

func (c *Client) GetEntry(key string) (rolehash.Entry, error) {
	var reply *structpb.Struct
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.GetEntry(ctx, wrapperspb.String(key), opts...)
		return err
	}); err != nil {
		return rolehash.Entry{}, err
	}
	return rolehash.Entry{
		Name:    replyString(reply, "name"),
		Index:   uint16(reply.GetFields()["index"].GetNumberValue()),
		Address: replyString(reply, "address"),
	}, nil
}

// Implementation returns the implementation address behind proxy as read by
// the server's chain backend.
func (c *Client) Implementation(proxy common.Address) (common.Address, error) {
	var reply *wrapperspb.StringValue
	if err := c.call(func(ctx context.Context, opts ...grpc.CallOption) (err error) {
		reply, err = c.client.Implementation(ctx, wrapperspb.String(proxy.Hex()), opts...)
		return err
	}); err != nil {
		return common.Address{}, err
	}
	return codec.ParseAddress(reply.GetValue())
}

// call runs one RPC with the client timeout and maps its status back.
func (c *Client) call(fn func(ctx context.Context, opts ...grpc.CallOption) error) error {
	ctx, cancel := c.ctx()
	defer cancel()
	var trailer metadata.MD
	// The trailer is only filled in once fn returns.
	err := fn(ctx, grpc.Trailer(&trailer))
	return mapRPC(err, trailer)
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

func replyString(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// decoded reads the identifier fields shared by DecodeID and DecodePayload
// replies.
func decoded(reply *structpb.Struct) (ident.Decoded, error) {
	d := ident.Decoded{
		Name:  replyString(reply, "name"),
		Index: uint16(reply.GetFields()["index"].GetNumberValue()),
	}
	if err := fingerprint(&d.Token, replyString(reply, "token")); err != nil {
		return d, err
	}
	if err := fingerprint(&d.Product, replyString(reply, "product")); err != nil {
		return d, err
	}
	return d, nil
}

func fingerprint(dst *codec.Fingerprint, s string) error {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != codec.FingerprintSize {
		return codec.Errorf(codec.KindDecode, "IDP-DECODE-020", "malformed fingerprint %q in reply", s)
	}
	copy(dst[:], b)
	return nil
}
