// Package interpret turns raw validator replies into Results.
//
// Nothing here returns an error or panics outward: malformed replies, unknown
// statuses and stored values that are not JSON all become Failed results.
package interpret

import (
	"fmt"

	"xdao.co/wfledger/payload"
	"xdao.co/wfledger/protocol"
)

// Outcome classifies a Result. Values are stable and used as metric labels.
type Outcome string

const (
	Submitted Outcome = "submitted"
	Rejected  Outcome = "rejected"
	Found     Outcome = "found"
	NotFound  Outcome = "not_found"
	Failed    Outcome = "failed"
)

const (
	MsgSubmitted = "Transaction submitted successfully"
	MsgNotFound  = "Workflow not found"
	MsgFound     = "Workflow retrieved"
)

// Result is the caller-facing value of one exchange.
type Result struct {
	Outcome Outcome

	// Status is the validator status name, empty when no reply was parsed.
	Status string

	// Value and Data are set for Found: the stored bytes and their decoded
	// JSON. Workflow is also set when the value is a request this client
	// encodes; other writers may store other shapes.
	Workflow payload.Request
	Value    []byte
	Data     any

	Message string

	// Err is set for Failed.
	Err error
}

// OK reports whether the exchange did what the caller asked.
func (r Result) OK() bool {
	return r.Outcome == Submitted || r.Outcome == Found
}

func (r Result) String() string { return r.Message }

// Submit interprets the content of a batch submit response.
func Submit(raw []byte) Result {
	resp, err := protocol.UnmarshalClientBatchSubmitResponse(raw)
	if err != nil {
		return Failure(err)
	}
	status := resp.Status.String()
	if resp.Status != protocol.SubmitStatusOK {
		return Result{
			Outcome: Rejected,
			Status:  status,
			Message: fmt.Sprintf("Error submitting transaction: %s", status),
		}
	}
	return Result{Outcome: Submitted, Status: status, Message: MsgSubmitted}
}

// Query interprets the content of a state get response. An OK reply without
// a value means nothing is stored at the address.
func Query(raw []byte) Result {
	resp, err := protocol.UnmarshalClientStateGetResponse(raw)
	if err != nil {
		return Failure(err)
	}
	status := resp.Status.String()
	if resp.Status != protocol.StateStatusOK {
		return Result{
			Outcome: Rejected,
			Status:  status,
			Message: fmt.Sprintf("Error retrieving workflow: %s", status),
		}
	}
	if len(resp.Value) == 0 {
		return Result{Outcome: NotFound, Status: status, Message: MsgNotFound}
	}
	data, err := payload.DecodeValue(resp.Value)
	if err != nil {
		r := Failure(err)
		r.Status = status
		return r
	}
	r := Result{
		Outcome: Found,
		Status:  status,
		Value:   resp.Value,
		Data:    data,
		Message: MsgFound,
	}
	if req, err := payload.Decode(resp.Value); err == nil {
		r.Workflow = req
	}
	return r
}

// Failure wraps an error raised anywhere in the pipeline as a Failed result.
func Failure(err error) Result {
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	return Result{
		Outcome: Failed,
		Message: fmt.Sprintf("Error processing response: %v", err),
		Err:     err,
	}
}
