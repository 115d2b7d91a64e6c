package keys

import (
	"fmt"

	"xdao.co/wfledger/fault"
)

// Algorithm names a signature scheme.
type Algorithm string

const (
	Secp256k1 Algorithm = "secp256k1"
	Ed25519   Algorithm = "ed25519"
	Ed448     Algorithm = "ed448"
)

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case Secp256k1, Ed25519, Ed448:
		return a, nil
	default:
		return "", fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-110", fmt.Sprintf("unsupported key algorithm %q", s))
	}
}

// Signer wraps a private key. Implementations are read-only after
// construction and safe for concurrent use.
type Signer interface {
	Algorithm() Algorithm
	// PublicKeyHex is the lowercase hex public key that identifies the signer
	// in transaction and batch headers.
	PublicKeyHex() string
	// Sign returns the raw signature over message.
	Sign(message []byte) ([]byte, error)
}

// NewSigner builds a signer of the given algorithm from raw private key bytes.
func NewSigner(alg Algorithm, raw []byte) (Signer, error) {
	switch alg {
	case Secp256k1:
		return NewSecp256k1Signer(raw)
	case Ed25519:
		return NewEd25519Signer(raw)
	case Ed448:
		return NewEd448Signer(raw)
	default:
		return nil, fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-110", fmt.Sprintf("unsupported key algorithm %q", alg))
	}
}
