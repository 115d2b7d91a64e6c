package envelope

import (
	"encoding/hex"
	"fmt"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/keys"
)

// VerifyTransaction checks the header signature against the declared signer
// and the payload digest against the payload bytes.
func VerifyTransaction(t *Transaction) (*TransactionHeader, error) {
	if t == nil {
		return nil, fault.New(fault.KindVerification, "WFL-VER-101", "nil transaction")
	}
	h, err := t.DecodeHeader()
	if err != nil {
		return nil, err
	}
	if err := verifyHeaderSignature(h.SignerPublicKey, t.header, t.headerSignature); err != nil {
		return nil, err
	}
	if got := PayloadDigest(t.payload); got != h.PayloadSHA512 {
		return nil, fault.New(fault.KindVerification, "WFL-VER-102", "payload digest does not match header")
	}
	return h, nil
}

// VerifyBatch checks the batch signature, that the header lists exactly the
// batch's transactions in order, and every transaction. Each transaction must
// name the batch signer as its batcher.
func VerifyBatch(b *Batch) (*BatchHeader, []*TransactionHeader, error) {
	if b == nil {
		return nil, nil, fault.New(fault.KindVerification, "WFL-VER-110", "nil batch")
	}
	h, err := b.DecodeHeader()
	if err != nil {
		return nil, nil, err
	}
	if err := verifyHeaderSignature(h.SignerPublicKey, b.header, b.headerSignature); err != nil {
		return nil, nil, err
	}
	if len(b.transactions) == 0 {
		return nil, nil, fault.New(fault.KindEmptyBatch, "WFL-ENV-201", "batch has no transactions")
	}
	if len(h.TransactionIDs) != len(b.transactions) {
		return nil, nil, fault.New(fault.KindVerification, "WFL-VER-111",
			fmt.Sprintf("batch header lists %d transactions, batch carries %d", len(h.TransactionIDs), len(b.transactions)))
	}
	txnHeaders := make([]*TransactionHeader, len(b.transactions))
	for i, t := range b.transactions {
		if h.TransactionIDs[i] != t.headerSignature {
			return nil, nil, fault.New(fault.KindVerification, "WFL-VER-112",
				fmt.Sprintf("transaction %d does not match batch header order", i))
		}
		th, err := VerifyTransaction(t)
		if err != nil {
			return nil, nil, err
		}
		if th.BatcherPublicKey != h.SignerPublicKey {
			return nil, nil, fault.New(fault.KindVerification, "WFL-VER-113",
				fmt.Sprintf("transaction %d names a different batcher", i))
		}
		txnHeaders[i] = th
	}
	return h, txnHeaders, nil
}

func verifyHeaderSignature(pubHex string, header []byte, sigHex string) error {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fault.Wrap(fault.KindVerification, "WFL-VER-103", "header signature is not hex", err)
	}
	return keys.VerifyPublicKey(pubHex, header, sig)
}
