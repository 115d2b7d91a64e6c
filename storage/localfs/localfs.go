// Package localfs is a directory-backed storage.State.
//
// Values are stored once as content-addressed blobs keyed by CID; each state
// address holds a small pointer file naming the CID of its current value.
// Reads re-derive the CID from the blob bytes and refuse mismatches.
package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/wfledger/address"
	"xdao.co/wfledger/cidutil"
	"xdao.co/wfledger/storage"
)

type State struct {
	root string
}

var _ storage.State = (*State)(nil)

// New constructs a filesystem state rooted at root. The directory will be
// created if needed.
func New(root string) (*State, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	for _, dir := range []string{root, filepath.Join(root, "blobs"), filepath.Join(root, "state")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &State{root: root}, nil
}

func (s *State) Get(addr string) ([]byte, error) {
	if !address.Valid(addr) {
		return nil, storage.ErrInvalidAddress
	}
	ref, err := os.ReadFile(s.statePath(addr))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	id, err := cidutil.Parse(strings.TrimSpace(string(ref)))
	if err != nil {
		return nil, storage.ErrCIDMismatch
	}
	return s.getBlob(id)
}

// Put writes the value blob first, then swaps the address pointer with a
// rename so readers never see a partial pointer.
func (s *State) Put(addr string, value []byte) error {
	if !address.Valid(addr) {
		return storage.ErrInvalidAddress
	}
	id, err := s.putBlob(value)
	if err != nil {
		return err
	}

	path := s.statePath(addr)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ref-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(id.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Delete removes the address pointer only. Blobs may be shared by other
// addresses and are left in place.
func (s *State) Delete(addr string) error {
	if !address.Valid(addr) {
		return storage.ErrInvalidAddress
	}
	if err := os.Remove(s.statePath(addr)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *State) Has(addr string) bool {
	if !address.Valid(addr) {
		return false
	}
	_, err := os.Stat(s.statePath(addr))
	return err == nil
}

func (s *State) putBlob(value []byte) (cid.Cid, error) {
	id, err := cidutil.Sum(value)
	if err != nil {
		return cid.Undef, err
	}

	path := s.blobPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := s.getBlob(id)
			if rerr != nil || string(existing) != string(value) {
				// An unreadable or corrupted blob is never repaired in place.
				return cid.Undef, storage.ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (s *State) getBlob(id cid.Cid) ([]byte, error) {
	b, err := os.ReadFile(s.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if !cidutil.Matches(id, b) {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (s *State) blobPath(id cid.Cid) string {
	str := id.String()
	return filepath.Join(s.root, "blobs", str[len(str)-2:], str)
}

// statePath shards pointer files by namespace prefix.
func (s *State) statePath(addr string) string {
	return filepath.Join(s.root, "state", addr[:address.NamespaceLen], addr)
}
