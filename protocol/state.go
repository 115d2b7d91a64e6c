package protocol

import (
	"fmt"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/internal/wire"
)

// StateStatus is the validator's answer to a state read.
type StateStatus int32

const (
	StateStatusUnset          StateStatus = 0
	StateStatusOK             StateStatus = 1
	StateStatusInternalError  StateStatus = 2
	StateStatusNotReady       StateStatus = 3
	StateStatusNoRoot         StateStatus = 4
	StateStatusNoResource     StateStatus = 5
	StateStatusInvalidAddress StateStatus = 6
	StateStatusInvalidRoot    StateStatus = 7
)

var stateStatusNames = []string{
	"STATUS_UNSET", "OK", "INTERNAL_ERROR", "NOT_READY",
	"NO_ROOT", "NO_RESOURCE", "INVALID_ADDRESS", "INVALID_ROOT",
}

func (s StateStatus) String() string {
	if s.Known() {
		return stateStatusNames[s]
	}
	return fmt.Sprintf("StateStatus(%d)", int32(s))
}

func (s StateStatus) Known() bool {
	return s >= 0 && int(s) < len(stateStatusNames)
}

// ClientStateGetRequest reads one address. An empty StateRoot means the
// current chain head.
type ClientStateGetRequest struct {
	StateRoot string
	Address   string
}

func (r *ClientStateGetRequest) Marshal() []byte {
	var b []byte
	b = wire.AppendString(b, 2, r.StateRoot)
	b = wire.AppendString(b, 3, r.Address)
	return b
}

func UnmarshalClientStateGetRequest(data []byte) (*ClientStateGetRequest, error) {
	r := &ClientStateGetRequest{}
	err := wire.Walk(data, func(f wire.Field) error {
		if f.Num != 2 && f.Num != 3 {
			return nil
		}
		if !f.IsBytes() {
			return wire.WrongType(f)
		}
		if f.Num == 2 {
			r.StateRoot = string(f.Bytes)
		} else {
			r.Address = string(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindWireDecode, "WFL-WIRE-011", "malformed state get request", err)
	}
	return r, nil
}

// ClientStateGetResponse carries the value stored at the requested address.
// Value is nil when the validator sent none.
type ClientStateGetResponse struct {
	Status StateStatus
	Value  []byte
}

func (r *ClientStateGetResponse) Marshal() []byte {
	var b []byte
	b = wire.AppendEnum(b, 1, int32(r.Status))
	b = wire.AppendBytes(b, 2, r.Value)
	return b
}

// UnmarshalClientStateGetResponse decodes a state response. A status outside
// the enumeration is a parse failure.
func UnmarshalClientStateGetResponse(data []byte) (*ClientStateGetResponse, error) {
	r := &ClientStateGetResponse{}
	err := wire.Walk(data, func(f wire.Field) error {
		switch f.Num {
		case 1:
			if !f.IsVarint() {
				return wire.WrongType(f)
			}
			r.Status = StateStatus(wire.Enum(f))
		case 2:
			if !f.IsBytes() {
				return wire.WrongType(f)
			}
			r.Value = append([]byte(nil), f.Bytes...)
		}
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindResponseParse, "WFL-RSP-011", "malformed state get response", err)
	}
	if !r.Status.Known() {
		return nil, fault.New(fault.KindResponseParse, "WFL-RSP-012", fmt.Sprintf("unknown state status %d", int32(r.Status)))
	}
	return r, nil
}
