package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const deriveSalt = "xdao-wfledger-keys-v1"

// maxScalarAttempts bounds the rejection sampling for a valid secp256k1
// scalar; the chance of needing more than one draw is about 2^-128.
const maxScalarAttempts = 16

// GenerateSecp256k1 draws a fresh secp256k1 private key from rand.
func GenerateSecp256k1(rand io.Reader) ([]byte, error) {
	return drawScalar(rand)
}

// DeriveRoleKey deterministically derives a role-specific secp256k1 private
// key from a root key using HKDF-SHA256.
func DeriveRoleKey(root []byte, role string) ([]byte, error) {
	if len(root) != Secp256k1PrivateKeySize {
		return nil, fmt.Errorf("root key must be %d bytes", Secp256k1PrivateKeySize)
	}
	if err := CheckName(role); err != nil {
		return nil, err
	}
	r := hkdf.New(sha256.New, root, []byte(deriveSalt), []byte("role:"+role))
	return drawScalar(r)
}

func drawScalar(r io.Reader) ([]byte, error) {
	out := make([]byte, Secp256k1PrivateKeySize)
	for i := 0; i < maxScalarAttempts; i++ {
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, err
		}
		if checkSecp256k1Scalar(out) == nil {
			return out, nil
		}
	}
	return nil, errors.New("could not draw a valid secp256k1 scalar")
}
