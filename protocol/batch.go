package protocol

import (
	"fmt"

	"xdao.co/wfledger/envelope"
	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/internal/wire"
)

// SubmitStatus is the validator's verdict on a batch submission.
type SubmitStatus int32

const (
	SubmitStatusUnset         SubmitStatus = 0
	SubmitStatusOK            SubmitStatus = 1
	SubmitStatusInternalError SubmitStatus = 2
	SubmitStatusInvalidBatch  SubmitStatus = 3
	SubmitStatusQueueFull     SubmitStatus = 4
)

var submitStatusNames = []string{"STATUS_UNSET", "OK", "INTERNAL_ERROR", "INVALID_BATCH", "QUEUE_FULL"}

func (s SubmitStatus) String() string {
	if s.Known() {
		return submitStatusNames[s]
	}
	return fmt.Sprintf("SubmitStatus(%d)", int32(s))
}

// Known reports whether s is one of the enumerated statuses.
func (s SubmitStatus) Known() bool {
	return s >= 0 && int(s) < len(submitStatusNames)
}

// ClientBatchSubmitRequest carries batches to the validator. Its encoding is
// identical to a BatchList.
type ClientBatchSubmitRequest struct {
	Batches []*envelope.Batch
}

func (r *ClientBatchSubmitRequest) Marshal() []byte {
	return envelope.NewBatchList(r.Batches...).Marshal()
}

func UnmarshalClientBatchSubmitRequest(data []byte) (*ClientBatchSubmitRequest, error) {
	l, err := envelope.UnmarshalBatchList(data)
	if err != nil {
		return nil, err
	}
	return &ClientBatchSubmitRequest{Batches: l.Batches}, nil
}

type ClientBatchSubmitResponse struct {
	Status SubmitStatus
}

func (r *ClientBatchSubmitResponse) Marshal() []byte {
	return wire.AppendEnum(nil, 1, int32(r.Status))
}

// UnmarshalClientBatchSubmitResponse decodes a submit response. A status
// outside the enumeration is a parse failure.
func UnmarshalClientBatchSubmitResponse(data []byte) (*ClientBatchSubmitResponse, error) {
	r := &ClientBatchSubmitResponse{}
	err := wire.Walk(data, func(f wire.Field) error {
		if f.Num != 1 {
			return nil
		}
		if !f.IsVarint() {
			return wire.WrongType(f)
		}
		r.Status = SubmitStatus(wire.Enum(f))
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindResponseParse, "WFL-RSP-001", "malformed batch submit response", err)
	}
	if !r.Status.Known() {
		return nil, fault.New(fault.KindResponseParse, "WFL-RSP-002", fmt.Sprintf("unknown submit status %d", int32(r.Status)))
	}
	return r, nil
}
