package keys

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"xdao.co/wfledger/fault"
)

// ParsePrivateKey parses key text.
//
// Bare hex is a secp256k1 key; "ed25519:<hex seed>" and "ed448:<hex seed>"
// select the other schemes. Surrounding whitespace and a 0x prefix on the
// hex part are tolerated.
func ParsePrivateKey(text string) (Signer, error) {
	alg, raw, err := decodeKeyText(text)
	if err != nil {
		return nil, err
	}
	return NewSigner(alg, raw)
}

// FormatPrivateKey renders raw key bytes in the text form ParsePrivateKey reads.
func FormatPrivateKey(alg Algorithm, raw []byte) string {
	if alg == Secp256k1 {
		return hex.EncodeToString(raw)
	}
	return string(alg) + ":" + hex.EncodeToString(raw)
}

// LoadSignerFile reads a private key file.
//
// An unreadable file is a KeyLoad fault (fatal to the process); readable but
// unparsable contents are an InvalidKeyMaterial fault.
func LoadSignerFile(path string) (Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(fault.KindKeyLoad, "WFL-KEY-001",
			fmt.Sprintf("failed to load private key from %s", path), err)
	}
	return ParsePrivateKey(string(b))
}

func decodeKeyText(text string) (Algorithm, []byte, error) {
	text = strings.TrimSpace(text)
	alg := Secp256k1
	if prefix, rest, ok := strings.Cut(text, ":"); ok {
		a, err := ParseAlgorithm(strings.ToLower(prefix))
		if err != nil {
			return "", nil, err
		}
		alg = a
		text = rest
	}
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	if text == "" {
		return "", nil, fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-100", "empty private key")
	}
	raw, err := hex.DecodeString(text)
	if err != nil {
		return "", nil, fault.Wrap(fault.KindInvalidKeyMaterial, "WFL-KEY-101", "private key is not valid hex", err)
	}
	return alg, raw, nil
}
