package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "xdao.idpack.rpc.v1.Codec"

// CodecServer is the server API for the Codec gRPC service.
//
// Requests and replies use protobuf well-known types so this package does not
// require a protoc/codegen toolchain. Struct requests carry named fields; see
// the Server methods for the keys each call reads.
type CodecServer interface {
	GetID(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	DecodeID(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetProductID(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	VerifyProductID(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	EncodePayload(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	DecodePayload(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RoleHash(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	PutEntry(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	GetEntry(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Implementation(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedCodecServer can be embedded to have forward compatible implementations.
type UnimplementedCodecServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedCodecServer) GetID(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, unimplemented("GetID")
}
func (UnimplementedCodecServer) DecodeID(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, unimplemented("DecodeID")
}
func (UnimplementedCodecServer) GetProductID(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, unimplemented("GetProductID")
}
func (UnimplementedCodecServer) VerifyProductID(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error) {
	return nil, unimplemented("VerifyProductID")
}
func (UnimplementedCodecServer) EncodePayload(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return nil, unimplemented("EncodePayload")
}
func (UnimplementedCodecServer) DecodePayload(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("DecodePayload")
}
func (UnimplementedCodecServer) RoleHash(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, unimplemented("RoleHash")
}
func (UnimplementedCodecServer) PutEntry(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, unimplemented("PutEntry")
}
func (UnimplementedCodecServer) GetEntry(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, unimplemented("GetEntry")
}
func (UnimplementedCodecServer) Implementation(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, unimplemented("Implementation")
}

// RegisterCodecServer registers the Codec service on a gRPC server.
func RegisterCodecServer(s grpc.ServiceRegistrar, srv CodecServer) {
	s.RegisterService(&Codec_ServiceDesc, srv)
}

// CodecClient is the client API for the Codec gRPC service.
type CodecClient interface {
	GetID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	DecodeID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetProductID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	VerifyProductID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	EncodePayload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	DecodePayload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RoleHash(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	PutEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetEntry(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Implementation(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type codecClient struct{ cc grpc.ClientConnInterface }

func NewCodecClient(cc grpc.ClientConnInterface) CodecClient { return &codecClient{cc: cc} }

func invoke[T any, PT interface {
	*T
	proto.Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts []grpc.CallOption) (PT, error) {
	out := PT(new(T))
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *codecClient) GetID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "GetID", in, opts)
}
func (c *codecClient) DecodeID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "DecodeID", in, opts)
}
func (c *codecClient) GetProductID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "GetProductID", in, opts)
}
func (c *codecClient) VerifyProductID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return invoke[wrapperspb.BoolValue](ctx, c.cc, "VerifyProductID", in, opts)
}
func (c *codecClient) EncodePayload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return invoke[wrapperspb.BytesValue](ctx, c.cc, "EncodePayload", in, opts)
}
func (c *codecClient) DecodePayload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "DecodePayload", in, opts)
}
func (c *codecClient) RoleHash(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "RoleHash", in, opts)
}
func (c *codecClient) PutEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "PutEntry", in, opts)
}
func (c *codecClient) GetEntry(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetEntry", in, opts)
}
func (c *codecClient) Implementation(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "Implementation", in, opts)
}

func method[T any, PT interface {
	*T
	proto.Message
}](name string, call func(CodecServer, context.Context, PT) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := PT(new(T))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CodecServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CodecServer), ctx, req.(PT))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Codec_ServiceDesc is the grpc.ServiceDesc for the Codec service.
var Codec_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CodecServer)(nil),
	Methods: []grpc.MethodDesc{
		method[structpb.Struct]("GetID", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.GetID(ctx, in)
		}),
		method[wrapperspb.StringValue]("DecodeID", func(s CodecServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
			return s.DecodeID(ctx, in)
		}),
		method[structpb.Struct]("GetProductID", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.GetProductID(ctx, in)
		}),
		method[structpb.Struct]("VerifyProductID", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.VerifyProductID(ctx, in)
		}),
		method[structpb.Struct]("EncodePayload", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.EncodePayload(ctx, in)
		}),
		method[structpb.Struct]("DecodePayload", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.DecodePayload(ctx, in)
		}),
		method[structpb.Struct]("RoleHash", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.RoleHash(ctx, in)
		}),
		method[structpb.Struct]("PutEntry", func(s CodecServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
			return s.PutEntry(ctx, in)
		}),
		method[wrapperspb.StringValue]("GetEntry", func(s CodecServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
			return s.GetEntry(ctx, in)
		}),
		method[wrapperspb.StringValue]("Implementation", func(s CodecServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
			return s.Implementation(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codec.proto",
}
