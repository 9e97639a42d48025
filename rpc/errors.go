package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"xdao.co/idpack/codec"
	"xdao.co/idpack/registry"
)

// Trailer keys carrying a codec error's Kind and RuleID across the wire.
const (
	trailerKind = "idpack-error-kind"
	trailerRule = "idpack-error-rule"
)

// mapErr converts a handler error into a gRPC status. Codec errors keep their
// Kind and RuleID in the response trailer.
func mapErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var ce *codec.Error
	switch {
	case errors.As(err, &ce):
		_ = grpc.SetTrailer(ctx, metadata.Pairs(trailerKind, string(ce.Kind), trailerRule, ce.RuleID))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, registry.ErrImmutable):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, registry.ErrCorrupt):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// mapRPC converts a status error back into the error the local call would
// have returned.
func mapRPC(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		kind := first(trailer, trailerKind)
		if kind == "" {
			return err
		}
		return &codec.Error{Kind: codec.Kind(kind), RuleID: first(trailer, trailerRule), Message: st.Message()}
	case codes.NotFound:
		return registry.ErrNotFound
	case codes.AlreadyExists:
		return registry.ErrImmutable
	case codes.DataLoss:
		return registry.ErrCorrupt
	default:
		return err
	}
}

func first(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
