package decode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protolens/pbtree/config"
	"github.com/protolens/pbtree/decode"
	"github.com/protolens/pbtree/schema"
	"github.com/protolens/pbtree/tree"
	"github.com/protolens/pbtree/wire"
)

func findChild(n *tree.Node, label string) *tree.Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

func TestDecodeMessage_S1_SingleInt32(t *testing.T) {
	// message M { int32 a = 1; }  bytes: 08 96 01
	md := schema.NewMessageDescriptor("M", schema.NewFieldDescriptor("a", 1, schema.INT32))
	rng := wire.NewRange([]byte{0x08, 0x96, 0x01})
	root := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng.Len()})

	decode.Message(rng, md, schema.NewPool(), config.Default(), root)

	msgNode := root.Children[0]
	require.Equal(t, "M", msgNode.Label)
	require.Len(t, msgNode.Children, 1)
	field := msgNode.Children[0]
	valueNode := findChild(field, "Value")
	require.NotNil(t, valueNode)
	require.NotNil(t, valueNode.Value)
	require.Equal(t, "150", valueNode.Value.Text)
}

func TestDecodeMessage_S2_String(t *testing.T) {
	// message M { string s = 2; }  bytes: 12 07 "testing"
	md := schema.NewMessageDescriptor("M", schema.NewFieldDescriptor("s", 2, schema.STRING))
	buf := append([]byte{0x12, 0x07}, []byte("testing")...)
	rng := wire.NewRange(buf)
	root := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng.Len()})

	decode.Message(rng, md, schema.NewPool(), config.Default(), root)

	field := root.Children[0].Children[0]
	valueNode := findChild(field, "Value")
	require.NotNil(t, valueNode)
	require.Equal(t, `"testing"`, valueNode.Value.Text)
	require.Equal(t, 9, field.Range.Length) // 2 header bytes + 7 value bytes
}

func TestDecodeMessage_S3_Nested(t *testing.T) {
	inner := schema.NewMessageDescriptor("Inner", schema.NewFieldDescriptor("a", 1, schema.INT32))
	outer := schema.NewMessageDescriptor("M", schema.NewFieldDescriptor("m", 3, schema.MESSAGE, schema.OfMessage(inner)))

	buf := []byte{0x1A, 0x03, 0x08, 0x96, 0x01}
	rng := wire.NewRange(buf)
	root := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng.Len()})

	decode.Message(rng, outer, schema.NewPool(), config.Default(), root)

	field := root.Children[0].Children[0]
	valueNode := findChild(field, "Value")
	require.NotNil(t, valueNode)
	nestedMsg := findChild(valueNode, "Inner")
	require.NotNil(t, nestedMsg)
	require.Len(t, nestedMsg.Children, 1)
	innerValue := findChild(nestedMsg.Children[0], "Value")
	require.NotNil(t, innerValue)
	require.Equal(t, "150", innerValue.Value.Text)
}

func TestDecodeMessage_S4_SignedZigZag(t *testing.T) {
	md := schema.NewMessageDescriptor("M", schema.NewFieldDescriptor("a", 1, schema.SINT32))

	rng := wire.NewRange([]byte{0x08, 0x01})
	root := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng.Len()})
	decode.Message(rng, md, schema.NewPool(), config.Default(), root)
	require.Equal(t, "-1", findChild(root.Children[0].Children[0], "Value").Value.Text)

	rng2 := wire.NewRange([]byte{0x08, 0x02})
	root2 := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng2.Len()})
	decode.Message(rng2, md, schema.NewPool(), config.Default(), root2)
	require.Equal(t, "1", findChild(root2.Children[0].Children[0], "Value").Value.Text)
}

func TestDecodeMessage_S7_UnknownFallbackShowAll(t *testing.T) {
	rng := wire.NewRange([]byte{0x08, 0x96, 0x01})
	root := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng.Len()})
	cfg := config.Snapshot{ShowAllPossibleTypes: true}

	decode.Message(rng, nil, schema.NewPool(), cfg, root)

	field := root.Children[0].Children[0]
	valueNode := findChild(field, "Value")
	require.NotNil(t, valueNode)
	var gotTypes []string
	for _, c := range valueNode.Children {
		if c.Value != nil {
			gotTypes = append(gotTypes, c.Label)
		}
	}
	require.ElementsMatch(t, []string{"INT32", "INT64", "UINT32", "UINT64", "SINT32", "SINT64", "BOOL", "ENUM"}, gotTypes)
}

func TestDecodeMessage_S8_MalformedTag(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	rng := wire.NewRange(buf)
	root := tree.NewRoot(tree.ByteRange{Offset: 0, Length: rng.Len()})

	msgNode := decode.Message(rng, nil, schema.NewPool(), config.Default(), root)

	require.Empty(t, msgNode.Children)
	require.NotEmpty(t, msgNode.ExpertInfos)
	require.Equal(t, "failed_parse_tag", string(msgNode.ExpertInfos[0].Kind))
}
