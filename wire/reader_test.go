package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protolens/pbtree/wire"
)

func TestReadVarint(t *testing.T) {
	// 150 encodes as 0x96 0x01 (spec.md S1).
	rng := wire.NewRange([]byte{0x96, 0x01})
	v, n, err := rng.ReadVarint(0)
	require.NoError(t, err)
	require.Equal(t, uint64(150), v)
	require.Equal(t, 2, n)
}

func TestReadVarintTruncated(t *testing.T) {
	rng := wire.NewRange([]byte{0x96})
	_, _, err := rng.ReadVarint(0)
	require.ErrorIs(t, err, wire.ErrTruncated)
}

func TestReadVarintOverflow(t *testing.T) {
	// Ten continuation bytes followed by a byte whose high bit is still set.
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0xFF
	}
	rng := wire.NewRange(buf)
	_, _, err := rng.ReadVarint(0)
	require.ErrorIs(t, err, wire.ErrVarintOverflow)
}

func TestSplitTag(t *testing.T) {
	// 0x08 = field 1, wire type VARINT.
	rng := wire.NewRange([]byte{0x08})
	tag, n, err := rng.SplitTag(0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(1), tag.FieldNumber)
	require.Equal(t, wire.Varint, tag.WireType)
	require.False(t, tag.Malformed())
}

func TestTagMalformed(t *testing.T) {
	require.True(t, wire.Tag{FieldNumber: 0, WireType: wire.Varint}.Malformed())
	require.True(t, wire.Tag{FieldNumber: 1, WireType: wire.StartGroup}.Malformed())
	require.True(t, wire.Tag{FieldNumber: 1, WireType: wire.EndGroup}.Malformed())
	require.False(t, wire.Tag{FieldNumber: 1, WireType: wire.Fixed64}.Malformed())
}

func TestReadFixed32And64(t *testing.T) {
	rng := wire.NewRange([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	v32, err := rng.ReadFixed32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x04030201), v32)

	v64, err := rng.ReadFixed64(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0807060504030201), v64)
}

func TestZigZagRoundTrip(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 2, -2, 2147483647, -2147483648} {
		zz := uint32(n<<1) ^ uint32(n>>31)
		got := wire.DecodeZigZag32(uint64(zz))
		require.Equal(t, n, got)
	}
}

func TestZigZagSpecExamples(t *testing.T) {
	// spec.md S4: bytes 08 01 -> -1, bytes 08 02 -> +1.
	require.Equal(t, int32(-1), wire.DecodeZigZag32(1))
	require.Equal(t, int32(1), wire.DecodeZigZag32(2))
}

func TestReadSliceBounds(t *testing.T) {
	rng := wire.NewRange([]byte{1, 2, 3})
	_, err := rng.ReadSlice(0, 4)
	require.ErrorIs(t, err, wire.ErrTruncated)

	sub, err := rng.ReadSlice(1, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, sub.Bytes())
}
