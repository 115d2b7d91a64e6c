package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"

	"xdao.co/wfledger/fault"
)

// Ed25519Signer signs the message directly (PureEdDSA).
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

var _ Signer = (*Ed25519Signer)(nil)

// NewEd25519Signer builds a signer from a 32-byte seed.
func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if l := len(seed); l != ed25519.SeedSize {
		return nil, fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-104",
			fmt.Sprintf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, l))
	}
	return &Ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Algorithm() Algorithm { return Ed25519 }

func (s *Ed25519Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.priv.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	if s == nil || len(s.priv) != ed25519.PrivateKeySize {
		return nil, fault.New(fault.KindSigning, "WFL-SIG-001", "missing private key")
	}
	return ed25519.Sign(s.priv, message), nil
}

// Ed448Signer signs with Ed448 and an empty context string.
type Ed448Signer struct {
	priv ed448.PrivateKey
}

var _ Signer = (*Ed448Signer)(nil)

// NewEd448Signer builds a signer from a 57-byte seed.
func NewEd448Signer(seed []byte) (*Ed448Signer, error) {
	if l := len(seed); l != ed448.SeedSize {
		return nil, fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-105",
			fmt.Sprintf("ed448 seed must be %d bytes, got %d", ed448.SeedSize, l))
	}
	return &Ed448Signer{priv: ed448.NewKeyFromSeed(seed)}, nil
}

func (s *Ed448Signer) Algorithm() Algorithm { return Ed448 }

func (s *Ed448Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.priv.Public().(ed448.PublicKey))
}

func (s *Ed448Signer) Sign(message []byte) ([]byte, error) {
	if s == nil || len(s.priv) != ed448.PrivateKeySize {
		return nil, fault.New(fault.KindSigning, "WFL-SIG-001", "missing private key")
	}
	return ed448.Sign(s.priv, message, ""), nil
}

func verifyEd25519(pubHex string, message, sig []byte) error {
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return fault.Wrap(fault.KindVerification, "WFL-VER-001", "invalid public key hex", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return fault.New(fault.KindVerification, "WFL-VER-002", "invalid ed25519 public key length")
	}
	if len(sig) != ed25519.SignatureSize {
		return fault.New(fault.KindVerification, "WFL-VER-003", "invalid ed25519 signature length")
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), message, sig) {
		return fault.New(fault.KindVerification, "WFL-VER-401", "signature invalid")
	}
	return nil
}

func verifyEd448(pubHex string, message, sig []byte) error {
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return fault.Wrap(fault.KindVerification, "WFL-VER-001", "invalid public key hex", err)
	}
	if len(pub) != ed448.PublicKeySize {
		return fault.New(fault.KindVerification, "WFL-VER-002", "invalid ed448 public key length")
	}
	if len(sig) != ed448.SignatureSize {
		return fault.New(fault.KindVerification, "WFL-VER-003", "invalid ed448 signature length")
	}
	if !ed448.Verify(ed448.PublicKey(pub), message, sig, "") {
		return fault.New(fault.KindVerification, "WFL-VER-401", "signature invalid")
	}
	return nil
}
