package grpcstream

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/protocol"
)

type handlerFunc func(ctx context.Context, req *protocol.Message) (*protocol.Message, error)

func (f handlerFunc) Handle(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	return f(ctx, req)
}

func serve(t *testing.T, h Handler) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterValidatorServer(srv, &Server{Handler: h, Log: zerolog.Nop()})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	c, err := Dial("bufnet", DialOptions{Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	c.Timeout = 2 * time.Second
	return c
}

func TestExchangeRoundTrip(t *testing.T) {
	c := serve(t, handlerFunc(func(_ context.Context, req *protocol.Message) (*protocol.Message, error) {
		resp := &protocol.ClientBatchSubmitResponse{Status: protocol.SubmitStatusOK}
		return &protocol.Message{Type: req.Type.ResponseType(), Content: resp.Marshal()}, nil
	}))

	req := &protocol.Message{Type: protocol.SubmitBatchList, CorrelationID: "abc", Content: []byte{0x0a, 0x00}}
	reply, err := c.Exchange(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeClientBatchSubmitResponse, reply.Type)
	assert.Equal(t, "abc", reply.CorrelationID, "server fills in the request's correlation id")

	resp, err := protocol.UnmarshalClientBatchSubmitResponse(reply.Content)
	require.NoError(t, err)
	assert.Equal(t, protocol.SubmitStatusOK, resp.Status)
}

func TestHandlerErrorsBecomeTransportFaults(t *testing.T) {
	c := serve(t, handlerFunc(func(context.Context, *protocol.Message) (*protocol.Message, error) {
		return nil, errors.New("boom")
	}))
	_, err := c.Exchange(context.Background(), &protocol.Message{Type: protocol.QueryState, CorrelationID: "x"})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindTransport))
	assert.Equal(t, "WFL-NET-020", fault.CodeOf(err))
}

func TestMissingReplyIsInternal(t *testing.T) {
	c := serve(t, handlerFunc(func(context.Context, *protocol.Message) (*protocol.Message, error) {
		return nil, nil
	}))
	_, err := c.Exchange(context.Background(), &protocol.Message{Type: protocol.QueryState, CorrelationID: "x"})
	require.Error(t, err)
	assert.Equal(t, "WFL-NET-020", fault.CodeOf(err))
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestDeadlineMapsToInterrupted(t *testing.T) {
	c := serve(t, handlerFunc(func(ctx context.Context, _ *protocol.Message) (*protocol.Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	c.Timeout = 50 * time.Millisecond
	_, err := c.Exchange(context.Background(), &protocol.Message{Type: protocol.QueryState, CorrelationID: "x"})
	assert.Equal(t, "WFL-NET-022", fault.CodeOf(err))
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.Exchange(context.Background(), &protocol.Message{})
	assert.Equal(t, "WFL-NET-011", fault.CodeOf(err))
	assert.NoError(t, c.Close())
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "sawtooth-0:4004", Target("tcp://sawtooth-0:4004"))
	assert.Equal(t, "localhost:4004", Target(" localhost:4004 "))
}
