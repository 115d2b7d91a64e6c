package keys

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xdao.co/wfledger/fault"
)

// KeyStore is a directory of named key pairs laid out the way the validator
// tooling expects: <name>.priv holds the private key text and <name>.pub the
// hex public key.
type KeyStore struct {
	Directory string
}

// DefaultDirectory returns ~/.sawtooth/keys.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".sawtooth", "keys"), nil
}

// OpenKeyStore returns a store rooted at directory, or at DefaultDirectory
// when directory is empty. The directory is created lazily on first write.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

// CheckName validates a key or role name.
func CheckName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in name", char)
	}
	return nil
}

// PrivatePath returns the private key file path for name.
func (ks *KeyStore) PrivatePath(name string) string {
	return filepath.Join(ks.Directory, name+".priv")
}

// PublicPath returns the public key file path for name.
func (ks *KeyStore) PublicPath(name string) string {
	return filepath.Join(ks.Directory, name+".pub")
}

// Generate creates a new secp256k1 key pair named name.
func (ks *KeyStore) Generate(name string, rand io.Reader, overwrite bool) (Signer, error) {
	raw, err := GenerateSecp256k1(rand)
	if err != nil {
		return nil, err
	}
	return ks.Import(name, FormatPrivateKey(Secp256k1, raw), overwrite)
}

// Import stores existing key text under name.
func (ks *KeyStore) Import(name, keyText string, overwrite bool) (Signer, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	alg, raw, err := decodeKeyText(keyText)
	if err != nil {
		return nil, err
	}
	signer, err := NewSigner(alg, raw)
	if err != nil {
		return nil, err
	}
	if err := writeKeyFile(ks.PrivatePath(name), FormatPrivateKey(alg, raw), 0o600, overwrite); err != nil {
		return nil, err
	}
	if err := writeKeyFile(ks.PublicPath(name), signer.PublicKeyHex(), 0o644, overwrite); err != nil {
		return nil, err
	}
	return signer, nil
}

// Load reads the signer stored under name.
func (ks *KeyStore) Load(name string) (Signer, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	return LoadSignerFile(ks.PrivatePath(name))
}

// Derive stores the role key derived from the secp256k1 key named from as
// "<from>-<role>" and returns its signer.
func (ks *KeyStore) Derive(from, role string, overwrite bool) (Signer, error) {
	if err := CheckName(from); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(ks.PrivatePath(from))
	if err != nil {
		return nil, fault.Wrap(fault.KindKeyLoad, "WFL-KEY-001",
			fmt.Sprintf("failed to load private key from %s", ks.PrivatePath(from)), err)
	}
	alg, root, err := decodeKeyText(string(b))
	if err != nil {
		return nil, err
	}
	if alg != Secp256k1 {
		return nil, fault.New(fault.KindInvalidKeyMaterial, "WFL-KEY-120", "role keys derive from secp256k1 keys only")
	}
	raw, err := DeriveRoleKey(root, role)
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidKeyMaterial, "WFL-KEY-121", "derive role key", err)
	}
	return ks.Import(from+"-"+role, FormatPrivateKey(Secp256k1, raw), overwrite)
}

// List returns the names of stored private keys, sorted.
func (ks *KeyStore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), ".priv")
		if !ok || CheckName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func writeKeyFile(path, text string, perm os.FileMode, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(text + "\n"); err != nil {
		return err
	}
	return file.Close()
}
