// Package protocol encodes the validator's client messages: the outer
// Message envelope plus the batch-submit and state-get exchanges.
package protocol

import (
	"fmt"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/internal/wire"
)

// MessageType identifies the content of a Message.
type MessageType int32

const (
	TypeDefault                   MessageType = 0
	TypeClientBatchSubmitRequest  MessageType = 100
	TypeClientBatchSubmitResponse MessageType = 101
	TypeClientStateGetRequest     MessageType = 106
	TypeClientStateGetResponse    MessageType = 107
)

// Logical names for the two request kinds a client issues.
const (
	SubmitBatchList = TypeClientBatchSubmitRequest
	QueryState      = TypeClientStateGetRequest
)

var messageTypeNames = map[MessageType]string{
	TypeDefault:                   "DEFAULT",
	TypeClientBatchSubmitRequest:  "CLIENT_BATCH_SUBMIT_REQUEST",
	TypeClientBatchSubmitResponse: "CLIENT_BATCH_SUBMIT_RESPONSE",
	TypeClientStateGetRequest:     "CLIENT_STATE_GET_REQUEST",
	TypeClientStateGetResponse:    "CLIENT_STATE_GET_RESPONSE",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MessageType(%d)", int32(t))
}

// ResponseType returns the reply type expected for a request type, or
// TypeDefault when t is not a request this package knows.
func (t MessageType) ResponseType() MessageType {
	switch t {
	case TypeClientBatchSubmitRequest:
		return TypeClientBatchSubmitResponse
	case TypeClientStateGetRequest:
		return TypeClientStateGetResponse
	default:
		return TypeDefault
	}
}

// Message is the validator's outer envelope. CorrelationID pairs a reply
// with its request.
type Message struct {
	Type          MessageType
	CorrelationID string
	Content       []byte
}

func (m *Message) Marshal() []byte {
	var b []byte
	b = wire.AppendEnum(b, 1, int32(m.Type))
	b = wire.AppendString(b, 2, m.CorrelationID)
	b = wire.AppendBytes(b, 3, m.Content)
	return b
}

func UnmarshalMessage(data []byte) (*Message, error) {
	m := &Message{}
	err := wire.Walk(data, func(f wire.Field) error {
		switch f.Num {
		case 1:
			if !f.IsVarint() {
				return wire.WrongType(f)
			}
			m.Type = MessageType(wire.Enum(f))
		case 2, 3:
			if !f.IsBytes() {
				return wire.WrongType(f)
			}
			if f.Num == 2 {
				m.CorrelationID = string(f.Bytes)
			} else {
				m.Content = append([]byte(nil), f.Bytes...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindWireDecode, "WFL-WIRE-010", "malformed message", err)
	}
	return m, nil
}
