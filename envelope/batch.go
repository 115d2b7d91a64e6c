package envelope

import (
	"encoding/hex"

	"github.com/rs/zerolog"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/keys"
)

// BuildBatch signs a batch over txns. The order of txns is the execution
// order the validator enforces, and it is recorded in the signed header.
// An empty list is rejected before anything is signed.
func BuildBatch(txns []*Transaction, signer keys.Signer, log zerolog.Logger) (*Batch, error) {
	if len(txns) == 0 {
		return nil, fault.New(fault.KindEmptyBatch, "WFL-ENV-201", "batch has no transactions")
	}
	if signer == nil {
		return nil, fault.New(fault.KindSigning, "WFL-SIG-001", "missing signer")
	}
	ids := make([]string, len(txns))
	for i, t := range txns {
		if t == nil {
			return nil, fault.New(fault.KindEmptyBatch, "WFL-ENV-202", "batch contains a nil transaction")
		}
		ids[i] = t.headerSignature
	}
	header := &BatchHeader{
		SignerPublicKey: signer.PublicKeyHex(),
		TransactionIDs:  ids,
	}
	headerBytes := header.Marshal()

	sig, err := signer.Sign(headerBytes)
	if err != nil {
		if fault.KindOf(err) == "" {
			err = fault.Wrap(fault.KindSigning, "WFL-SIG-011", "sign batch header", err)
		}
		return nil, err
	}
	batch := &Batch{
		header:          headerBytes,
		headerSignature: hex.EncodeToString(sig),
		transactions:    append([]*Transaction(nil), txns...),
	}
	log.Debug().
		Str("component", "batch_builder").
		Int("transactions", len(txns)).
		Str("header_signature", batch.headerSignature).
		Msg("batch header signed")
	return batch, nil
}
