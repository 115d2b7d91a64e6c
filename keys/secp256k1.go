package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"xdao.co/wfledger/fault"
)

const (
	Secp256k1PrivateKeySize = 32
	Secp256k1SignatureSize  = 64
)

// Secp256k1Signer signs SHA-256(message) with RFC6979 nonces and returns the
// 64-byte compact r||s form with low S, as the validator expects.
type Secp256k1Signer struct {
	priv   *btcec.PrivateKey
	pubHex string
}

var _ Signer = (*Secp256k1Signer)(nil)

// NewSecp256k1Signer parses a 32-byte big-endian private scalar.
func NewSecp256k1Signer(raw []byte) (*Secp256k1Signer, error) {
	if err := checkSecp256k1Scalar(raw); err != nil {
		return nil, err
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	return &Secp256k1Signer{
		priv:   priv,
		pubHex: hex.EncodeToString(pub.SerializeCompressed()),
	}, nil
}

func checkSecp256k1Scalar(raw []byte) error {
	if l := len(raw); l != Secp256k1PrivateKeySize {
		return fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-102",
			fmt.Sprintf("secp256k1 private key must be %d bytes, got %d", Secp256k1PrivateKeySize, l))
	}
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(raw); overflow || s.IsZero() {
		return fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-103", "secp256k1 private key out of range")
	}
	return nil
}

func (s *Secp256k1Signer) Algorithm() Algorithm { return Secp256k1 }

func (s *Secp256k1Signer) PublicKeyHex() string { return s.pubHex }

func (s *Secp256k1Signer) Sign(message []byte) ([]byte, error) {
	if s == nil || s.priv == nil {
		return nil, fault.New(fault.KindSigning, "WFL-SIG-001", "missing private key")
	}
	digest := sha256.Sum256(message)
	compact, err := ecdsa.SignCompact(s.priv, digest[:], true)
	if err != nil {
		return nil, fault.Wrap(fault.KindSigning, "WFL-SIG-002", "secp256k1 signing failed", err)
	}
	// compact is recovery code || r || s.
	if len(compact) != Secp256k1SignatureSize+1 {
		return nil, fault.New(fault.KindSigning, "WFL-SIG-003", "unexpected compact signature length")
	}
	return compact[1:], nil
}

func verifySecp256k1(pubHex string, message, sig []byte) error {
	pubBytes, err := hex.DecodeString(pubHex)
	if err != nil {
		return fault.Wrap(fault.KindVerification, "WFL-VER-001", "invalid public key hex", err)
	}
	pub, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return fault.Wrap(fault.KindVerification, "WFL-VER-002", "invalid secp256k1 public key", err)
	}
	if len(sig) != Secp256k1SignatureSize {
		return fault.New(fault.KindVerification, "WFL-VER-003", "invalid secp256k1 signature length")
	}
	var r, sc btcec.ModNScalar
	if r.SetByteSlice(sig[:32]) || sc.SetByteSlice(sig[32:]) || r.IsZero() || sc.IsZero() {
		return fault.New(fault.KindVerification, "WFL-VER-004", "secp256k1 signature scalar out of range")
	}
	digest := sha256.Sum256(message)
	if !ecdsa.NewSignature(&r, &sc).Verify(digest[:], pub) {
		return fault.New(fault.KindVerification, "WFL-VER-401", "signature invalid")
	}
	return nil
}
