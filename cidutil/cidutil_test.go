package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumIsStable(t *testing.T) {
	a, err := Sum([]byte("value"))
	require.NoError(t, err)
	b, err := Sum([]byte("value"))
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
	assert.Equal(t, uint64(1), a.Version())
	assert.Equal(t, uint64(cid.Raw), a.Type())

	c, err := Sum([]byte("other"))
	require.NoError(t, err)
	assert.False(t, a.Equals(c))
}

func TestParse(t *testing.T) {
	id, err := Sum([]byte("value"))
	require.NoError(t, err)

	got, err := Parse(id.String())
	require.NoError(t, err)
	assert.True(t, got.Equals(id))

	_, err = Parse("not-a-cid")
	assert.Error(t, err)

	mh, err := multihash.Sum([]byte("value"), multihash.SHA2_512, -1)
	require.NoError(t, err)
	_, err = Parse(cid.NewCidV1(cid.Raw, mh).String())
	assert.Error(t, err, "sha2-512 CIDs are rejected")

	mh256, err := multihash.Sum([]byte("value"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	_, err = Parse(cid.NewCidV1(cid.DagCBOR, mh256).String())
	assert.Error(t, err, "non-raw codecs are rejected")
}

func TestMatches(t *testing.T) {
	id, err := Sum([]byte("value"))
	require.NoError(t, err)
	assert.True(t, Matches(id, []byte("value")))
	assert.False(t, Matches(id, []byte("valuE")))
}
