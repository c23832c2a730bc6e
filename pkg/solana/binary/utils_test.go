package binary

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	b := make([]byte, StringSize("https://arweave.net/abc")+1)

	var offset int
	PutString(b, "https://arweave.net/abc", &offset)
	assert.Equal(t, 27, offset)
	assert.Equal(t, []byte{23, 0, 0, 0}, b[:4])

	var actual string
	offset = 0
	require.NoError(t, GetString(b, &actual, &offset))
	assert.Equal(t, "https://arweave.net/abc", actual)
	assert.Equal(t, 27, offset)

	offset = 0
	assert.Equal(t, ErrUnexpectedEOF, GetString(b[:10], &actual, &offset))
	assert.Equal(t, ErrUnexpectedEOF, GetString(b[:3], &actual, &offset))
	assert.Equal(t, 0, offset)

	invalid := make([]byte, StringSize("ipfs://\xff\xfe"))
	PutString(invalid, "ipfs://\xff\xfe", &offset)
	offset = 0
	actual = ""
	assert.Equal(t, ErrInvalidString, GetString(invalid, &actual, &offset))
	assert.Empty(t, actual)
	assert.Equal(t, 0, offset)
}

func TestOption(t *testing.T) {
	var offset int
	var isSome bool

	require.NoError(t, GetOption([]byte{1}, &isSome, &offset))
	assert.True(t, isSome)
	require.NoError(t, GetOption([]byte{0}, &isSome, &offset))
	assert.False(t, isSome)
	assert.Equal(t, 2, offset)

	assert.Equal(t, ErrInvalidOption, GetOption([]byte{2}, &isSome, &offset))
	assert.Equal(t, ErrUnexpectedEOF, GetOption(nil, &isSome, &offset))
	assert.Equal(t, 2, offset)
}

func TestKey32Checked(t *testing.T) {
	b := make([]byte, 33)
	for i := range b {
		b[i] = byte(i)
	}

	var offset int
	var key ed25519.PublicKey
	require.NoError(t, GetKey32Checked(b, &key, &offset))
	assert.EqualValues(t, b[:32], key)
	assert.Equal(t, 32, offset)

	assert.Equal(t, ErrUnexpectedEOF, GetKey32Checked(b[:31], &key, &offset))
	assert.Equal(t, 32, offset)
}

func TestBool(t *testing.T) {
	var offset int
	var v bool

	require.NoError(t, GetBool([]byte{1}, &v, &offset))
	assert.True(t, v)
	require.NoError(t, GetBool([]byte{0}, &v, &offset))
	assert.False(t, v)
	assert.Equal(t, ErrInvalidBool, GetBool([]byte{2}, &v, &offset))
	assert.Equal(t, 2, offset)

	b := make([]byte, 2)
	offset = 0
	PutBool(b, true, &offset)
	PutBool(b[offset:], false, &offset)
	assert.Equal(t, []byte{1, 0}, b)
}

func TestVecLength(t *testing.T) {
	b := []byte{2, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2}

	var offset int
	var size uint32
	require.NoError(t, GetVecLength(b, &size, 8, &offset))
	assert.EqualValues(t, 2, size)
	assert.Equal(t, 4, offset)

	offset = 0
	assert.Equal(t, ErrUnexpectedEOF, GetVecLength(b[:19], &size, 8, &offset))
	assert.Equal(t, ErrUnexpectedEOF, GetVecLength(b, &size, 32, &offset))
}

func TestIntegers(t *testing.T) {
	b := make([]byte, 2+8+8)

	var offset int
	PutUint16(b, 500, &offset)
	PutInt64(b[offset:], -1, &offset)
	PutUint64(b[offset:], 38_333_000_000_000, &offset)
	assert.Equal(t, 18, offset)

	var u16 uint16
	var i64 int64
	var u64 uint64

	offset = 0
	GetUint16(b, &u16, &offset)
	GetInt64(b[offset:], &i64, &offset)
	GetUint64(b[offset:], &u64, &offset)
	assert.EqualValues(t, 500, u16)
	assert.EqualValues(t, -1, i64)
	assert.EqualValues(t, 38_333_000_000_000, u64)
}
