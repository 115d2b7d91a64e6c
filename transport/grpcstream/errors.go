package grpcstream

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/wfledger/fault"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fault.Wrap(fault.KindTransport, "WFL-NET-020", "validator call failed", err)
	}

	switch st.Code() {
	case codes.Unavailable:
		return fault.Wrap(fault.KindTransport, "WFL-NET-021", "validator unavailable", err)
	case codes.DeadlineExceeded, codes.Canceled:
		return fault.Wrap(fault.KindTransport, "WFL-NET-022", "validator call interrupted", err)
	case codes.InvalidArgument:
		// Server uses InvalidArgument for undecodable request messages.
		return fault.Wrap(fault.KindTransport, "WFL-NET-023", "validator could not decode request", err)
	default:
		return fault.Wrap(fault.KindTransport, "WFL-NET-020", "validator call failed", err)
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case fault.IsKind(err, fault.KindWireDecode):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
