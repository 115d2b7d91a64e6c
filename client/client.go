// Package client performs the two synchronous exchanges with the validator:
// submitting a batch list and reading state at an address.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/metrics"
	"xdao.co/wfledger/protocol"
)

// Transport carries one request message to the validator and returns its
// reply. Connection management, encryption and retry belong to the transport.
type Transport interface {
	Exchange(ctx context.Context, req *protocol.Message) (*protocol.Message, error)
}

type Options struct {
	// RequestTimeout bounds each exchange when non-zero.
	RequestTimeout time.Duration

	// Metrics defaults to a no-op collector.
	Metrics metrics.Collector

	// NewCorrelationID defaults to random UUIDs.
	NewCorrelationID func() string
}

// Client issues one request per call and waits for its reply. It holds no
// per-request state and is safe for concurrent use if the transport is.
type Client struct {
	transport Transport
	log       zerolog.Logger
	metrics   metrics.Collector
	timeout   time.Duration
	newID     func() string
}

func New(t Transport, log zerolog.Logger, opts Options) *Client {
	c := &Client{
		transport: t,
		log:       log.With().Str("component", "client").Logger(),
		metrics:   opts.Metrics,
		timeout:   opts.RequestTimeout,
		newID:     opts.NewCorrelationID,
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNoopCollector()
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.New().String() }
	}
	return c
}

// Submit sends an encoded batch list and returns the raw submit response
// content, still undecoded.
func (c *Client) Submit(ctx context.Context, batchList []byte) ([]byte, error) {
	return c.exchange(ctx, protocol.SubmitBatchList, batchList)
}

// Query reads the state stored at address and returns the raw state get
// response content.
func (c *Client) Query(ctx context.Context, address string) ([]byte, error) {
	req := &protocol.ClientStateGetRequest{Address: address}
	return c.exchange(ctx, protocol.QueryState, req.Marshal())
}

func (c *Client) exchange(ctx context.Context, typ protocol.MessageType, content []byte) ([]byte, error) {
	if c.transport == nil {
		return nil, fault.New(fault.KindTransport, "WFL-NET-001", "no transport configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := &protocol.Message{Type: typ, CorrelationID: c.newID(), Content: content}
	log := c.log.With().Str("type", typ.String()).Str("correlation_id", req.CorrelationID).Logger()
	log.Debug().Int("content_bytes", len(content)).Msg("sending request")

	start := time.Now()
	reply, err := c.transport.Exchange(ctx, req)
	if err == nil {
		err = checkReply(req, reply)
	}
	c.metrics.ExchangeCompleted(typ.String(), time.Since(start), err != nil)
	if err != nil {
		log.Error().Err(err).Msg("exchange failed")
		if fault.KindOf(err) == "" {
			err = fault.Wrap(fault.KindTransport, "WFL-NET-002", "exchange with validator failed", err)
		}
		return nil, err
	}
	log.Debug().Int("content_bytes", len(reply.Content)).Msg("received reply")
	return reply.Content, nil
}

func checkReply(req, reply *protocol.Message) error {
	if reply == nil {
		return fault.New(fault.KindTransport, "WFL-NET-003", "transport returned no reply")
	}
	if reply.CorrelationID != req.CorrelationID {
		return fault.New(fault.KindTransport, "WFL-NET-004",
			fmt.Sprintf("reply correlation id %q does not match request %q", reply.CorrelationID, req.CorrelationID))
	}
	if want := req.Type.ResponseType(); reply.Type != want {
		return fault.New(fault.KindTransport, "WFL-NET-005",
			fmt.Sprintf("expected %s reply, got %s", want, reply.Type))
	}
	return nil
}
