// Package cidutil derives the content identifiers used for stored state
// values: CIDv1, raw codec, sha2-256 multihash.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sum returns the CID of data.
func Sum(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Parse decodes a CID string and checks it uses this package's scheme.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if id.Version() != 1 || id.Type() != cid.Raw {
		return cid.Undef, fmt.Errorf("cidutil: %s is not a raw CIDv1", s)
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return cid.Undef, err
	}
	if dec.Code != multihash.SHA2_256 {
		return cid.Undef, fmt.Errorf("cidutil: %s is not sha2-256", s)
	}
	return id, nil
}

// Matches reports whether data hashes to id.
func Matches(id cid.Cid, data []byte) bool {
	got, err := Sum(data)
	return err == nil && got.Equals(id)
}
