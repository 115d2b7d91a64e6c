// Package workflow ties the pipeline together for the workflow-dependency
// transaction family: payload encoding, envelope signing, the validator
// exchange and reply interpretation.
package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"xdao.co/wfledger/address"
	"xdao.co/wfledger/envelope"
	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/interpret"
	"xdao.co/wfledger/keys"
	"xdao.co/wfledger/metrics"
	"xdao.co/wfledger/payload"
)

const (
	FamilyName      = "workflow-dependency"
	FamilyVersion   = "1.0"
	ImageFamilyName = "docker-image"
)

// Family is the envelope family for workflow transactions. They may read the
// workflow and image namespaces and write only the workflow namespace.
func Family() envelope.Family {
	ns := address.Namespace(FamilyName)
	return envelope.Family{
		Name:    FamilyName,
		Version: FamilyVersion,
		Inputs:  []string{ns, address.Namespace(ImageFamilyName)},
		Outputs: []string{ns},
	}
}

// Address is the state address holding a workflow.
func Address(workflowID string) string {
	return address.StateAddress(FamilyName, workflowID)
}

// Ledger is the validator exchange the service drives; *client.Client
// implements it.
type Ledger interface {
	Submit(ctx context.Context, batchList []byte) ([]byte, error)
	Query(ctx context.Context, addr string) ([]byte, error)
}

type Options struct {
	// Metrics defaults to a no-op collector.
	Metrics metrics.Collector

	// NewWorkflowID defaults to random UUIDs.
	NewWorkflowID func() string
}

type Service struct {
	signer  keys.Signer
	ledger  Ledger
	builder *envelope.TransactionBuilder
	log     zerolog.Logger
	metrics metrics.Collector
	newID   func() string
}

func New(signer keys.Signer, ledger Ledger, log zerolog.Logger, opts Options) *Service {
	log = log.With().Str("component", "workflow").Logger()
	s := &Service{
		signer:  signer,
		ledger:  ledger,
		builder: envelope.NewTransactionBuilder(Family(), log),
		log:     log,
		metrics: opts.Metrics,
		newID:   opts.NewWorkflowID,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoopCollector()
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	return s
}

// BuildCreate encodes a Create request for id and wraps it in a signed
// single-transaction batch list, ready to submit.
func (s *Service) BuildCreate(id string, graph any) (*envelope.BatchList, error) {
	return s.build(payload.Create{WorkflowID: id, Graph: graph})
}

func (s *Service) build(req payload.Request) (*envelope.BatchList, error) {
	raw, err := payload.Encode(req)
	if err != nil {
		return nil, err
	}
	txn, err := s.builder.Build(raw, s.signer)
	if err != nil {
		return nil, err
	}
	batch, err := envelope.BuildBatch([]*envelope.Transaction{txn}, s.signer, s.log)
	if err != nil {
		return nil, err
	}
	return envelope.NewBatchList(batch), nil
}

// Create registers graph under a fresh workflow id and returns the id with
// the interpreted submit reply. The id is returned even when submission
// fails so callers can report it.
func (s *Service) Create(ctx context.Context, graph any) (string, interpret.Result) {
	id := s.newID()
	log := s.log.With().Str("workflow_id", id).Logger()

	list, err := s.BuildCreate(id, graph)
	if err != nil {
		return id, s.record(log, interpret.Failure(err))
	}
	reply, err := s.ledger.Submit(ctx, list.Marshal())
	if err != nil {
		return id, s.record(log, interpret.Failure(err))
	}
	return id, s.record(log, interpret.Submit(reply))
}

// Get reads the workflow's state address and interprets the reply.
func (s *Service) Get(ctx context.Context, workflowID string) interpret.Result {
	log := s.log.With().Str("workflow_id", workflowID).Logger()
	if workflowID == "" {
		return s.record(log, interpret.Failure(fault.New(fault.KindPayloadEncode, "WFL-PAY-002", "workflow id is required")))
	}
	reply, err := s.ledger.Query(ctx, Address(workflowID))
	if err != nil {
		return s.record(log, interpret.Failure(err))
	}
	return s.record(log, interpret.Query(reply))
}

func (s *Service) record(log zerolog.Logger, r interpret.Result) interpret.Result {
	s.metrics.ResultInterpreted(string(r.Outcome))
	ev := log.Info()
	if r.Outcome == interpret.Failed {
		ev = log.Error().Err(r.Err)
	}
	ev.Str("outcome", string(r.Outcome)).Str("status", r.Status).Msg(r.Message)
	return r
}
