// Package devnet is an in-process development validator. It answers the same
// client messages as a real validator for a single transaction family, so the
// client pipeline can be exercised end to end without a network.
package devnet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"xdao.co/wfledger/address"
	"xdao.co/wfledger/envelope"
	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/metrics"
	"xdao.co/wfledger/payload"
	"xdao.co/wfledger/protocol"
	"xdao.co/wfledger/storage"
)

type Options struct {
	// FamilyName and FamilyVersion select the transactions this validator
	// executes. Both are required.
	FamilyName    string
	FamilyVersion string

	// Metrics defaults to a no-op collector.
	Metrics metrics.Collector
}

// Validator executes workflow transactions against a storage.State.
// Submissions are serialized; each accepted submission is applied whole.
type Validator struct {
	mu        sync.Mutex
	state     storage.State
	family    string
	version   string
	namespace string
	log       zerolog.Logger
	metrics   metrics.Collector
}

func New(state storage.State, log zerolog.Logger, opts Options) (*Validator, error) {
	if state == nil {
		return nil, errors.New("devnet: state is required")
	}
	if opts.FamilyName == "" || opts.FamilyVersion == "" {
		return nil, errors.New("devnet: family name and version are required")
	}
	v := &Validator{
		state:     state,
		family:    opts.FamilyName,
		version:   opts.FamilyVersion,
		namespace: address.Namespace(opts.FamilyName),
		log:       log.With().Str("component", "devnet").Logger(),
		metrics:   opts.Metrics,
	}
	if v.metrics == nil {
		v.metrics = metrics.NewNoopCollector()
	}
	return v, nil
}

// Handle answers one client request. Replies echo the request's correlation id.
func (v *Validator) Handle(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var content []byte
	switch req.Type {
	case protocol.TypeClientBatchSubmitRequest:
		status := v.submit(req.Content)
		v.metrics.BatchApplied(status.String())
		content = (&protocol.ClientBatchSubmitResponse{Status: status}).Marshal()
	case protocol.TypeClientStateGetRequest:
		resp, err := v.query(req.Content)
		if err != nil {
			return nil, err
		}
		content = resp.Marshal()
	default:
		return nil, fault.New(fault.KindWireDecode, "WFL-DEV-001", fmt.Sprintf("unsupported message type %s", req.Type))
	}
	return &protocol.Message{
		Type:          req.Type.ResponseType(),
		CorrelationID: req.CorrelationID,
		Content:       content,
	}, nil
}

func (v *Validator) submit(content []byte) protocol.SubmitStatus {
	req, err := protocol.UnmarshalClientBatchSubmitRequest(content)
	if err != nil {
		v.log.Info().Err(err).Msg("rejecting undecodable batch list")
		return protocol.SubmitStatusInvalidBatch
	}
	if len(req.Batches) == 0 {
		v.log.Info().Msg("rejecting empty batch list")
		return protocol.SubmitStatusInvalidBatch
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	writes := map[string][]byte{}
	for _, b := range req.Batches {
		if err := v.stage(b, writes); err != nil {
			v.log.Info().Err(err).Str("batch", b.ID()).Msg("rejecting batch")
			return protocol.SubmitStatusInvalidBatch
		}
	}
	if err := v.apply(writes); err != nil {
		v.log.Error().Err(err).Msg("state write failed")
		return protocol.SubmitStatusInternalError
	}
	v.log.Info().Int("batches", len(req.Batches)).Int("writes", len(writes)).Msg("submission applied")
	return protocol.SubmitStatusOK
}

// apply writes every staged value in address order. If a write fails, the
// addresses written so far are deleted again; all of them were empty before.
func (v *Validator) apply(writes map[string][]byte) error {
	addrs := make([]string, 0, len(writes))
	for addr := range writes {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	for i, addr := range addrs {
		if err := v.state.Put(addr, writes[addr]); err != nil {
			for _, done := range addrs[:i] {
				if derr := v.state.Delete(done); derr != nil {
					v.log.Error().Err(derr).Str("address", done).Msg("rollback failed")
				}
			}
			return fmt.Errorf("put %s: %w", addr, err)
		}
	}
	return nil
}

// stage validates one batch and records the writes it would make. Writes
// staged by earlier batches of the same submission count as existing state.
func (v *Validator) stage(b *envelope.Batch, writes map[string][]byte) error {
	_, headers, err := envelope.VerifyBatch(b)
	if err != nil {
		return err
	}
	for i, txn := range b.Transactions() {
		h := headers[i]
		if h.FamilyName != v.family || h.FamilyVersion != v.version {
			return fmt.Errorf("transaction %d: unsupported family %s %s", i, h.FamilyName, h.FamilyVersion)
		}
		for _, out := range h.Outputs {
			if !address.InNamespace(out, v.namespace) {
				return fmt.Errorf("transaction %d: output %s outside namespace %s", i, out, v.namespace)
			}
		}

		raw := txn.Payload()
		req, err := payload.Decode(raw)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		create, ok := req.(payload.Create)
		if !ok {
			continue
		}
		addr := address.StateAddress(v.family, create.WorkflowID)
		if !writable(addr, h.Outputs) {
			return fmt.Errorf("transaction %d: address %s not declared as output", i, addr)
		}
		if _, staged := writes[addr]; staged || v.state.Has(addr) {
			return fmt.Errorf("transaction %d: workflow %s already exists", i, create.WorkflowID)
		}
		writes[addr] = raw
	}
	return nil
}

func writable(addr string, outputs []string) bool {
	for _, out := range outputs {
		if address.InNamespace(addr, out) {
			return true
		}
	}
	return false
}

func (v *Validator) query(content []byte) (*protocol.ClientStateGetResponse, error) {
	req, err := protocol.UnmarshalClientStateGetRequest(content)
	if err != nil {
		return nil, err
	}
	if req.StateRoot != "" {
		return &protocol.ClientStateGetResponse{Status: protocol.StateStatusNoRoot}, nil
	}
	if !address.Valid(req.Address) {
		return &protocol.ClientStateGetResponse{Status: protocol.StateStatusInvalidAddress}, nil
	}
	value, err := v.state.Get(req.Address)
	switch {
	case storage.IsNotFound(err):
		return &protocol.ClientStateGetResponse{Status: protocol.StateStatusNoResource}, nil
	case err != nil:
		v.log.Error().Err(err).Str("address", req.Address).Msg("state read failed")
		return &protocol.ClientStateGetResponse{Status: protocol.StateStatusInternalError}, nil
	}
	return &protocol.ClientStateGetResponse{Status: protocol.StateStatusOK, Value: value}, nil
}
