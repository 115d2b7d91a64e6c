package grpcstream

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/wfledger/protocol"
)

// Handler answers one validator request.
type Handler interface {
	Handle(ctx context.Context, req *protocol.Message) (*protocol.Message, error)
}

// Server exposes a Handler over the Validator gRPC service.
type Server struct {
	UnimplementedValidatorServer
	Handler Handler
	Log     zerolog.Logger
}

func (s *Server) Exchange(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Handler == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing handler")
	}
	req, err := protocol.UnmarshalMessage(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	reply, err := s.Handler.Handle(ctx, req)
	if err != nil {
		s.Log.Error().Err(err).Str("type", req.Type.String()).Msg("handler failed")
		return nil, mapErr(err)
	}
	if reply == nil {
		s.Log.Error().Str("type", req.Type.String()).Msg("handler returned no reply")
		return nil, status.Error(codes.Internal, "handler returned no reply")
	}
	if reply.CorrelationID == "" {
		reply.CorrelationID = req.CorrelationID
	}
	return wrapperspb.Bytes(reply.Marshal()), nil
}
