package keys

import (
	"fmt"

	"xdao.co/wfledger/fault"
)

// Verify checks sig over message against the hex public key of the given scheme.
func Verify(alg Algorithm, pubHex string, message, sig []byte) error {
	switch alg {
	case Secp256k1:
		return verifySecp256k1(pubHex, message, sig)
	case Ed25519:
		return verifyEd25519(pubHex, message, sig)
	case Ed448:
		return verifyEd448(pubHex, message, sig)
	default:
		return fault.New(fault.KindVerification, "WFL-VER-301", fmt.Sprintf("unsupported signature algorithm %q", alg))
	}
}

// AlgorithmForPublicKey infers the scheme of a hex public key from its size:
// 33 bytes is compressed secp256k1, 32 is ed25519, 57 is ed448.
func AlgorithmForPublicKey(pubHex string) (Algorithm, error) {
	switch len(pubHex) {
	case 66:
		return Secp256k1, nil
	case 64:
		return Ed25519, nil
	case 114:
		return Ed448, nil
	default:
		return "", fault.New(fault.KindVerification, "WFL-VER-302", fmt.Sprintf("cannot infer key algorithm from %d hex chars", len(pubHex)))
	}
}

// VerifyPublicKey checks sig using the scheme inferred from pubHex.
func VerifyPublicKey(pubHex string, message, sig []byte) error {
	alg, err := AlgorithmForPublicKey(pubHex)
	if err != nil {
		return err
	}
	return Verify(alg, pubHex, message, sig)
}
