// Package grpcstream carries validator messages over gRPC.
//
// Each client exchange is one unary RPC whose request and reply are encoded
// protocol.Message values. The client implements client.Transport; the
// server adapts any Handler, such as the development validator.
//
// Only endpoints serving this gRPC service can be reached. A stock validator's
// tcp:// endpoint speaks ZMQ and will not answer; run wfledger-devnet, or a
// bridge exposing the Validator service, and point the client at it.
package grpcstream

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/protocol"
)

// Client implements client.Transport over the Validator gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client ValidatorClient

	// Timeout applies per RPC when non-zero, on top of the caller's context.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra options, e.g. a context dialer in tests.
	Extra []grpc.DialOption
}

// Target converts a validator URL to a gRPC target. The tcp:// scheme used by
// validator endpoint URLs is dropped.
func Target(url string) string {
	url = strings.TrimSpace(url)
	return strings.TrimPrefix(url, "tcp://")
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, Target(target), dialOpts...)
	if err != nil {
		return nil, fault.Wrap(fault.KindTransport, "WFL-NET-010", "dial validator "+target, err)
	}
	return NewClient(cc), nil
}

// NewClient wraps an existing connection.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewValidatorClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Exchange(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	if c == nil || c.client == nil {
		return nil, fault.New(fault.KindTransport, "WFL-NET-011", "grpc client not connected")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	reply, err := c.client.Exchange(ctx, wrapperspb.Bytes(req.Marshal()))
	if err != nil {
		return nil, mapRPC(err)
	}
	msg, err := protocol.UnmarshalMessage(reply.GetValue())
	if err != nil {
		return nil, fault.Wrap(fault.KindTransport, "WFL-NET-012", "undecodable reply from validator", err)
	}
	return msg, nil
}
