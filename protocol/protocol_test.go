package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"pgregory.net/rapid"

	"xdao.co/wfledger/fault"
)

func TestMessageTypeNames(t *testing.T) {
	assert.Equal(t, "CLIENT_BATCH_SUBMIT_REQUEST", SubmitBatchList.String())
	assert.Equal(t, "CLIENT_STATE_GET_REQUEST", QueryState.String())
	assert.Equal(t, TypeClientBatchSubmitResponse, SubmitBatchList.ResponseType())
	assert.Equal(t, TypeClientStateGetResponse, QueryState.ResponseType())
	assert.Equal(t, TypeDefault, TypeClientStateGetResponse.ResponseType())
	assert.Equal(t, "MessageType(42)", MessageType(42).String())
}

func TestMessageEncoding(t *testing.T) {
	m := &Message{Type: TypeClientStateGetRequest, CorrelationID: "c1", Content: []byte{0x1a, 0x01, 'a'}}
	want := []byte{0x08, 106, 0x12, 2, 'c', '1', 0x1a, 3, 0x1a, 0x01, 'a'}
	assert.Equal(t, want, m.Marshal())

	got, err := UnmarshalMessage(want)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMessageRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := &Message{
			Type:          rapid.SampledFrom([]MessageType{TypeClientBatchSubmitRequest, TypeClientBatchSubmitResponse, TypeClientStateGetRequest, TypeClientStateGetResponse}).Draw(t, "type"),
			CorrelationID: rapid.StringMatching(`[0-9a-f-]{0,36}`).Draw(t, "cid"),
			Content:       rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "content"),
		}
		got, err := UnmarshalMessage(m.Marshal())
		require.NoError(t, err)
		require.Equal(t, m, got)
	})
}

func TestUnmarshalMessageMalformed(t *testing.T) {
	_, err := UnmarshalMessage([]byte{0x12, 0x05, 'a'})
	assert.True(t, fault.IsKind(err, fault.KindWireDecode))

	_, err = UnmarshalMessage([]byte{0x0a, 0x00})
	assert.True(t, fault.IsKind(err, fault.KindWireDecode))
}

func TestSubmitResponse(t *testing.T) {
	for _, s := range []SubmitStatus{SubmitStatusUnset, SubmitStatusOK, SubmitStatusInternalError, SubmitStatusInvalidBatch, SubmitStatusQueueFull} {
		got, err := UnmarshalClientBatchSubmitResponse((&ClientBatchSubmitResponse{Status: s}).Marshal())
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
	assert.Equal(t, "INVALID_BATCH", SubmitStatusInvalidBatch.String())
	assert.Equal(t, "QUEUE_FULL", SubmitStatusQueueFull.String())

	// Empty content is the unset status.
	got, err := UnmarshalClientBatchSubmitResponse(nil)
	require.NoError(t, err)
	assert.Equal(t, SubmitStatusUnset, got.Status)
}

func TestSubmitResponseRejectsUnknownStatus(t *testing.T) {
	raw := protowire.AppendTag(nil, 1, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 9)
	_, err := UnmarshalClientBatchSubmitResponse(raw)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindResponseParse))
	assert.Equal(t, "WFL-RSP-002", fault.CodeOf(err))

	_, err = UnmarshalClientBatchSubmitResponse([]byte{0xff, 0xff})
	assert.True(t, fault.IsKind(err, fault.KindResponseParse))
}

func TestStateGetRequestEncoding(t *testing.T) {
	r := &ClientStateGetRequest{Address: "abc"}
	assert.Equal(t, []byte{0x1a, 3, 'a', 'b', 'c'}, r.Marshal())

	r.StateRoot = "root"
	got, err := UnmarshalClientStateGetRequest(r.Marshal())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestStateGetResponse(t *testing.T) {
	in := &ClientStateGetResponse{Status: StateStatusOK, Value: []byte(`{"a":1}`)}
	got, err := UnmarshalClientStateGetResponse(in.Marshal())
	require.NoError(t, err)
	assert.Equal(t, in, got)

	got, err = UnmarshalClientStateGetResponse((&ClientStateGetResponse{Status: StateStatusOK}).Marshal())
	require.NoError(t, err)
	assert.Nil(t, got.Value)

	assert.Equal(t, "NO_RESOURCE", StateStatusNoResource.String())
	assert.Equal(t, "INVALID_ROOT", StateStatusInvalidRoot.String())
	assert.Equal(t, "StateStatus(8)", StateStatus(8).String())
}

func TestStateGetResponseRejectsUnknownStatus(t *testing.T) {
	raw := protowire.AppendTag(nil, 1, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 8)
	_, err := UnmarshalClientStateGetResponse(raw)
	assert.Equal(t, "WFL-RSP-012", fault.CodeOf(err))

	_, err = UnmarshalClientStateGetResponse([]byte{0x10, 0x01})
	assert.True(t, fault.IsKind(err, fault.KindResponseParse))
}
