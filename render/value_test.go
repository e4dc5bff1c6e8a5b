package render_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protolens/pbtree/render"
	"github.com/protolens/pbtree/schema"
)

func TestScalarInt32RoundTrip(t *testing.T) {
	rv, err := render.Scalar(schema.INT32, 150, 2, nil)
	require.NoError(t, err)
	require.Equal(t, int32(150), rv.Value)

	// -1 as INT32 arrives as a 10-byte varint with all 64 bits set; only
	// the low 32 bits are kept.
	rv, err = render.Scalar(schema.INT32, 0xFFFFFFFFFFFFFFFF, 10, nil)
	require.NoError(t, err)
	require.Equal(t, int32(-1), rv.Value)
}

func TestScalarSint32ZigZag(t *testing.T) {
	rv, err := render.Scalar(schema.SINT32, 1, 1, nil)
	require.NoError(t, err)
	require.Equal(t, int32(-1), rv.Value)

	rv, err = render.Scalar(schema.SINT32, 2, 1, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), rv.Value)
}

func TestScalarBoolRejectsMultiByte(t *testing.T) {
	rv, err := render.Scalar(schema.BOOL, 1, 2, nil)
	require.NoError(t, err)
	require.True(t, rv.Rejected)
}

func TestScalarDoubleBitReinterpretation(t *testing.T) {
	bits := math.Float64bits(3.25)
	rv, err := render.Scalar(schema.DOUBLE, bits, 8, nil)
	require.NoError(t, err)
	require.Equal(t, 3.25, rv.Value)
}

func TestScalarEnumResolvesName(t *testing.T) {
	enum := schema.NewEnumDescriptor("pkg.E", schema.NewEnumValueDescriptor("FOO", 1))
	rv, err := render.Scalar(schema.ENUM, 1, 1, enum)
	require.NoError(t, err)
	require.Equal(t, "FOO(1)", rv.Text)
}

func TestLengthDelimitedString(t *testing.T) {
	rv, err := render.LengthDelimited(schema.STRING, []byte("testing"), false)
	require.NoError(t, err)
	require.Equal(t, "testing", rv.Value)
}

func TestLengthDelimitedInvalidUTF8Fallback(t *testing.T) {
	rv, err := render.LengthDelimited(schema.STRING, []byte{0xFF, 0xFE}, false)
	require.NoError(t, err)
	require.NotPanics(t, func() { _ = rv.Text })
}
