package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestAppendMatchesGeneratedCode(t *testing.T) {
	// wrapperspb.StringValue is `string value = 1`.
	want, err := proto.MarshalOptions{Deterministic: true}.Marshal(wrapperspb.String("hello"))
	require.NoError(t, err)
	assert.Equal(t, want, AppendString(nil, 1, "hello"))

	want, err = proto.Marshal(wrapperspb.Bool(true))
	require.NoError(t, err)
	assert.Equal(t, want, AppendBool(nil, 1, true))

	want, err = proto.Marshal(wrapperspb.Bytes([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, want, AppendBytes(nil, 1, []byte{1, 2, 3}))
}

func TestDefaultsOmitted(t *testing.T) {
	assert.Empty(t, AppendString(nil, 1, ""))
	assert.Empty(t, AppendBytes(nil, 1, nil))
	assert.Empty(t, AppendBool(nil, 1, false))
	assert.Empty(t, AppendEnum(nil, 1, 0))
	assert.NotEmpty(t, AppendMessage(nil, 1, nil))
}

func TestWalk(t *testing.T) {
	var b []byte
	b = AppendString(b, 1, "a")
	b = AppendEnum(b, 2, 7)
	b = protowire.AppendTag(b, 3, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 99)
	b = AppendRepeatedString(b, 4, []string{"x", "y"})

	var got []Field
	require.NoError(t, Walk(b, func(f Field) error {
		got = append(got, f)
		return nil
	}))
	require.Len(t, got, 5)
	assert.Equal(t, "a", string(got[0].Bytes))
	assert.True(t, got[0].IsBytes())
	assert.Equal(t, int32(7), Enum(got[1]))
	assert.True(t, got[1].IsVarint())
	assert.Equal(t, protowire.Fixed32Type, got[2].Type)
	assert.Equal(t, "y", string(got[4].Bytes))
}

func TestWalkMalformed(t *testing.T) {
	for _, b := range [][]byte{
		{0xff, 0xff},      // truncated tag varint
		{0x0a, 0x05, 'a'}, // length beyond buffer
		{0x10},            // varint field without value
		{0x00, 0x01},      // field number zero
	} {
		err := Walk(b, func(Field) error { return nil })
		assert.Error(t, err, "input %x", b)
	}
}
