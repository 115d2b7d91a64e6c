// Package envelope builds, encodes and verifies the signed envelopes the
// validator accepts: transactions grouped into batches grouped into a batch
// list.
//
// Header bytes are produced once, signed, and then only ever handed out as
// copies. Re-signing means building a new envelope.
package envelope

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/internal/wire"
)

// PayloadDigest is the hex SHA-512 of the exact payload bytes.
func PayloadDigest(payload []byte) string {
	sum := sha512.Sum512(payload)
	return hex.EncodeToString(sum[:])
}

// TransactionHeader declares who signed a transaction, which family handles
// it, the state it may touch, and the digest of its payload.
type TransactionHeader struct {
	BatcherPublicKey string
	Dependencies     []string
	FamilyName       string
	FamilyVersion    string
	Inputs           []string
	Nonce            string
	Outputs          []string
	PayloadSHA512    string
	SignerPublicKey  string
}

// Marshal returns the canonical header bytes.
func (h *TransactionHeader) Marshal() []byte {
	var b []byte
	b = wire.AppendString(b, 1, h.BatcherPublicKey)
	b = wire.AppendRepeatedString(b, 2, h.Dependencies)
	b = wire.AppendString(b, 3, h.FamilyName)
	b = wire.AppendString(b, 4, h.FamilyVersion)
	b = wire.AppendRepeatedString(b, 5, h.Inputs)
	b = wire.AppendString(b, 6, h.Nonce)
	b = wire.AppendRepeatedString(b, 7, h.Outputs)
	b = wire.AppendString(b, 9, h.PayloadSHA512)
	b = wire.AppendString(b, 10, h.SignerPublicKey)
	return b
}

// UnmarshalTransactionHeader decodes header bytes.
func UnmarshalTransactionHeader(b []byte) (*TransactionHeader, error) {
	h := &TransactionHeader{}
	err := wire.Walk(b, func(f wire.Field) error {
		if f.Num > 10 || f.Num == 8 {
			return nil
		}
		if !f.IsBytes() {
			return wire.WrongType(f)
		}
		s := string(f.Bytes)
		switch f.Num {
		case 1:
			h.BatcherPublicKey = s
		case 2:
			h.Dependencies = append(h.Dependencies, s)
		case 3:
			h.FamilyName = s
		case 4:
			h.FamilyVersion = s
		case 5:
			h.Inputs = append(h.Inputs, s)
		case 6:
			h.Nonce = s
		case 7:
			h.Outputs = append(h.Outputs, s)
		case 9:
			h.PayloadSHA512 = s
		case 10:
			h.SignerPublicKey = s
		}
		return nil
	})
	if err != nil {
		return nil, decodeError("transaction header", err)
	}
	return h, nil
}

// Transaction is a signed header plus the payload it digests.
type Transaction struct {
	header          []byte
	headerSignature string
	payload         []byte
}

// Header returns a copy of the signed header bytes.
func (t *Transaction) Header() []byte { return clone(t.header) }

// HeaderSignature is the hex signature over Header; it is also the
// transaction id.
func (t *Transaction) HeaderSignature() string { return t.headerSignature }

// ID is an alias for HeaderSignature.
func (t *Transaction) ID() string { return t.headerSignature }

// Payload returns a copy of the payload bytes.
func (t *Transaction) Payload() []byte { return clone(t.payload) }

// DecodeHeader parses the signed header bytes.
func (t *Transaction) DecodeHeader() (*TransactionHeader, error) {
	return UnmarshalTransactionHeader(t.header)
}

func (t *Transaction) Marshal() []byte {
	var b []byte
	b = wire.AppendBytes(b, 1, t.header)
	b = wire.AppendString(b, 2, t.headerSignature)
	b = wire.AppendBytes(b, 3, t.payload)
	return b
}

func UnmarshalTransaction(b []byte) (*Transaction, error) {
	t := &Transaction{}
	err := wire.Walk(b, func(f wire.Field) error {
		if f.Num > 3 {
			return nil
		}
		if !f.IsBytes() {
			return wire.WrongType(f)
		}
		switch f.Num {
		case 1:
			t.header = clone(f.Bytes)
		case 2:
			t.headerSignature = string(f.Bytes)
		case 3:
			t.payload = clone(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, decodeError("transaction", err)
	}
	return t, nil
}

// BatchHeader lists the ids of the batch's transactions in execution order.
type BatchHeader struct {
	SignerPublicKey string
	TransactionIDs  []string
}

func (h *BatchHeader) Marshal() []byte {
	var b []byte
	b = wire.AppendString(b, 1, h.SignerPublicKey)
	b = wire.AppendRepeatedString(b, 2, h.TransactionIDs)
	return b
}

func UnmarshalBatchHeader(b []byte) (*BatchHeader, error) {
	h := &BatchHeader{}
	err := wire.Walk(b, func(f wire.Field) error {
		if f.Num > 2 {
			return nil
		}
		if !f.IsBytes() {
			return wire.WrongType(f)
		}
		switch f.Num {
		case 1:
			h.SignerPublicKey = string(f.Bytes)
		case 2:
			h.TransactionIDs = append(h.TransactionIDs, string(f.Bytes))
		}
		return nil
	})
	if err != nil {
		return nil, decodeError("batch header", err)
	}
	return h, nil
}

// Batch is an atomically applied, ordered group of transactions.
type Batch struct {
	header          []byte
	headerSignature string
	transactions    []*Transaction
	trace           bool
}

func (b *Batch) Header() []byte { return clone(b.header) }

// HeaderSignature is the hex signature over Header; it is also the batch id.
func (b *Batch) HeaderSignature() string { return b.headerSignature }

func (b *Batch) ID() string { return b.headerSignature }

// Transactions returns the batch's transactions in execution order.
func (b *Batch) Transactions() []*Transaction {
	out := make([]*Transaction, len(b.transactions))
	copy(out, b.transactions)
	return out
}

// Trace reports whether the validator was asked to trace this batch.
func (b *Batch) Trace() bool { return b.trace }

func (b *Batch) DecodeHeader() (*BatchHeader, error) {
	return UnmarshalBatchHeader(b.header)
}

func (b *Batch) Marshal() []byte {
	var out []byte
	out = wire.AppendBytes(out, 1, b.header)
	out = wire.AppendString(out, 2, b.headerSignature)
	for _, t := range b.transactions {
		out = wire.AppendMessage(out, 3, t.Marshal())
	}
	out = wire.AppendBool(out, 4, b.trace)
	return out
}

func UnmarshalBatch(data []byte) (*Batch, error) {
	b := &Batch{}
	err := wire.Walk(data, func(f wire.Field) error {
		switch f.Num {
		case 1, 2, 3:
			if !f.IsBytes() {
				return wire.WrongType(f)
			}
		case 4:
			if !f.IsVarint() {
				return wire.WrongType(f)
			}
		default:
			return nil
		}
		switch f.Num {
		case 1:
			b.header = clone(f.Bytes)
		case 2:
			b.headerSignature = string(f.Bytes)
		case 3:
			t, err := UnmarshalTransaction(f.Bytes)
			if err != nil {
				return err
			}
			b.transactions = append(b.transactions, t)
		case 4:
			b.trace = f.Varint != 0
		}
		return nil
	})
	if err != nil {
		return nil, decodeError("batch", err)
	}
	return b, nil
}

// BatchList is the top-level submission envelope.
type BatchList struct {
	Batches []*Batch
}

// NewBatchList wraps batches in submission order.
func NewBatchList(batches ...*Batch) *BatchList {
	return &BatchList{Batches: batches}
}

func (l *BatchList) Marshal() []byte {
	var out []byte
	for _, b := range l.Batches {
		out = wire.AppendMessage(out, 1, b.Marshal())
	}
	return out
}

func UnmarshalBatchList(data []byte) (*BatchList, error) {
	l := &BatchList{}
	err := wire.Walk(data, func(f wire.Field) error {
		if f.Num != 1 {
			return nil
		}
		if !f.IsBytes() {
			return wire.WrongType(f)
		}
		b, err := UnmarshalBatch(f.Bytes)
		if err != nil {
			return err
		}
		l.Batches = append(l.Batches, b)
		return nil
	})
	if err != nil {
		return nil, decodeError("batch list", err)
	}
	return l, nil
}

func decodeError(what string, cause error) error {
	if fault.KindOf(cause) != "" {
		return cause
	}
	return fault.Wrap(fault.KindWireDecode, "WFL-WIRE-001", fmt.Sprintf("malformed %s", what), cause)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
