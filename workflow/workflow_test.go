package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/wfledger/address"
	"xdao.co/wfledger/envelope"
	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/interpret"
	"xdao.co/wfledger/keys"
	"xdao.co/wfledger/payload"
	"xdao.co/wfledger/protocol"
)

type fakeLedger struct {
	submitted [][]byte
	queried   []string
	reply     []byte
	err       error
}

func (f *fakeLedger) Submit(_ context.Context, batchList []byte) ([]byte, error) {
	f.submitted = append(f.submitted, batchList)
	return f.reply, f.err
}

func (f *fakeLedger) Query(_ context.Context, addr string) ([]byte, error) {
	f.queried = append(f.queried, addr)
	return f.reply, f.err
}

func testSigner(t *testing.T) keys.Signer {
	t.Helper()
	s, err := keys.ParsePrivateKey(strings.Repeat("2a", 32))
	require.NoError(t, err)
	return s
}

func TestFamily(t *testing.T) {
	f := Family()
	assert.Equal(t, "workflow-dependency", f.Name)
	assert.Equal(t, "1.0", f.Version)
	assert.Equal(t, []string{address.Namespace("workflow-dependency"), address.Namespace("docker-image")}, f.Inputs)
	assert.Equal(t, []string{address.Namespace("workflow-dependency")}, f.Outputs)
	assert.Len(t, Address("wf"), address.Len)
}

func TestBuildCreate(t *testing.T) {
	signer := testSigner(t)
	s := New(signer, &fakeLedger{}, zerolog.Nop(), Options{})
	graph := map[string]any{"build": []any{"checkout"}, "test": []any{"build"}}

	list, err := s.BuildCreate("wf-1", graph)
	require.NoError(t, err)
	require.Len(t, list.Batches, 1)

	bh, txnHeaders, err := envelope.VerifyBatch(list.Batches[0])
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKeyHex(), bh.SignerPublicKey)
	require.Len(t, txnHeaders, 1)

	h := txnHeaders[0]
	assert.Equal(t, FamilyName, h.FamilyName)
	assert.Equal(t, Family().Inputs, h.Inputs)
	assert.Equal(t, Family().Outputs, h.Outputs)

	req, err := payload.Decode(list.Batches[0].Transactions()[0].Payload())
	require.NoError(t, err)
	assert.Equal(t, payload.Create{WorkflowID: "wf-1", Graph: graph}, req)
}

func TestCreateSubmitsAndInterprets(t *testing.T) {
	ledger := &fakeLedger{reply: (&protocol.ClientBatchSubmitResponse{Status: protocol.SubmitStatusOK}).Marshal()}
	s := New(testSigner(t), ledger, zerolog.Nop(), Options{NewWorkflowID: func() string { return "fixed-id" }})

	id, r := s.Create(context.Background(), map[string]any{"a": "b"})
	assert.Equal(t, "fixed-id", id)
	assert.Equal(t, interpret.Submitted, r.Outcome)
	assert.Equal(t, "Transaction submitted successfully", r.Message)

	require.Len(t, ledger.submitted, 1)
	list, err := envelope.UnmarshalBatchList(ledger.submitted[0])
	require.NoError(t, err)
	req, err := payload.Decode(list.Batches[0].Transactions()[0].Payload())
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", req.ID())
}

func TestCreateRejected(t *testing.T) {
	ledger := &fakeLedger{reply: (&protocol.ClientBatchSubmitResponse{Status: protocol.SubmitStatusQueueFull}).Marshal()}
	_, r := New(testSigner(t), ledger, zerolog.Nop(), Options{}).Create(context.Background(), nil)
	assert.Equal(t, interpret.Rejected, r.Outcome)
	assert.Equal(t, "Error submitting transaction: QUEUE_FULL", r.Message)
}

func TestCreateTransportFailure(t *testing.T) {
	ledger := &fakeLedger{err: fault.New(fault.KindTransport, "WFL-NET-021", "validator unavailable")}
	id, r := New(testSigner(t), ledger, zerolog.Nop(), Options{}).Create(context.Background(), nil)
	assert.NotEmpty(t, id)
	assert.Equal(t, interpret.Failed, r.Outcome)
	assert.True(t, fault.IsKind(r.Err, fault.KindTransport))
}

func TestCreateUnencodableGraph(t *testing.T) {
	ledger := &fakeLedger{}
	_, r := New(testSigner(t), ledger, zerolog.Nop(), Options{}).Create(context.Background(), map[string]any{"f": func() {}})
	assert.Equal(t, interpret.Failed, r.Outcome)
	assert.True(t, fault.IsKind(r.Err, fault.KindPayloadEncode))
	assert.Empty(t, ledger.submitted, "nothing is sent when the payload cannot be built")
}

func TestGetQueriesWorkflowAddress(t *testing.T) {
	ledger := &fakeLedger{reply: (&protocol.ClientStateGetResponse{Status: protocol.StateStatusOK}).Marshal()}
	s := New(testSigner(t), ledger, zerolog.Nop(), Options{})

	r := s.Get(context.Background(), "wf-9")
	assert.Equal(t, interpret.NotFound, r.Outcome)
	assert.Equal(t, []string{Address("wf-9")}, ledger.queried)
	assert.Empty(t, ledger.submitted, "reads do not submit transactions")
}

func TestGetFailures(t *testing.T) {
	s := New(testSigner(t), &fakeLedger{err: errors.New("down")}, zerolog.Nop(), Options{})
	assert.Equal(t, interpret.Failed, s.Get(context.Background(), "wf").Outcome)

	r := s.Get(context.Background(), "")
	assert.Equal(t, interpret.Failed, r.Outcome)
	assert.True(t, fault.IsKind(r.Err, fault.KindPayloadEncode))
}
