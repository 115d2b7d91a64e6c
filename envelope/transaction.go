package envelope

import (
	"encoding/hex"

	"github.com/rs/zerolog"

	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/keys"
)

// Family is the transaction family identity stamped on every header, with
// the state namespaces its transactions read and write.
type Family struct {
	Name    string
	Version string
	Inputs  []string
	Outputs []string
}

// TransactionBuilder assembles signed transactions for one family.
type TransactionBuilder struct {
	family Family
	log    zerolog.Logger
}

func NewTransactionBuilder(family Family, log zerolog.Logger) *TransactionBuilder {
	return &TransactionBuilder{
		family: family,
		log:    log.With().Str("component", "transaction_builder").Str("family", family.Name).Logger(),
	}
}

// Family returns the identity the builder stamps on headers.
func (b *TransactionBuilder) Family() Family {
	f := b.family
	f.Inputs = append([]string(nil), f.Inputs...)
	f.Outputs = append([]string(nil), f.Outputs...)
	return f
}

// Build signs a transaction carrying payload. The signer is both the
// transaction signer and the declared batcher. The transaction declares no
// dependencies on other transactions.
func (b *TransactionBuilder) Build(payload []byte, signer keys.Signer) (*Transaction, error) {
	if signer == nil {
		return nil, fault.New(fault.KindSigning, "WFL-SIG-001", "missing signer")
	}
	pub := signer.PublicKeyHex()
	header := &TransactionHeader{
		BatcherPublicKey: pub,
		Dependencies:     []string{},
		FamilyName:       b.family.Name,
		FamilyVersion:    b.family.Version,
		Inputs:           append([]string(nil), b.family.Inputs...),
		Outputs:          append([]string(nil), b.family.Outputs...),
		PayloadSHA512:    PayloadDigest(payload),
		SignerPublicKey:  pub,
	}
	headerBytes := header.Marshal()

	sig, err := signer.Sign(headerBytes)
	if err != nil {
		if fault.KindOf(err) == "" {
			err = fault.Wrap(fault.KindSigning, "WFL-SIG-010", "sign transaction header", err)
		}
		return nil, err
	}
	txn := &Transaction{
		header:          headerBytes,
		headerSignature: hex.EncodeToString(sig),
		payload:         clone(payload),
	}
	b.log.Debug().
		Str("payload_sha512", header.PayloadSHA512).
		Str("header_signature", txn.headerSignature).
		Msg("transaction header signed")
	return txn, nil
}
