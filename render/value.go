// Package render implements the Value Renderer of spec.md §4.6: given
// wire bytes, a declared field type, and (for scalar wire types) the raw
// 64-bit value, it produces a typed leaf rendering. Bit reinterpretation
// for DOUBLE/FLOAT is done via an explicit well-defined bit copy
// (math.Float64/32frombits), never via pointer aliasing, per the design
// note in spec.md §9.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/protolens/pbtree/schema"
	"github.com/protolens/pbtree/wire"
)

// Rendered is one typed leaf value.
type Rendered struct {
	Type  schema.Type
	Text  string
	Value interface{}
	// Rejected is set for the one case the spec says is silently
	// dropped from typed rendering: a BOOL field whose varint spans
	// more than one byte (spec.md §4.6). The field still gets its raw
	// bytes leaf; it just has no typed Rendered value.
	Rejected bool
}

// Scalar renders a VARINT/FIXED32/FIXED64 raw value per the declared
// type t. rawLen is the number of bytes the raw value occupied; it is
// used only to apply the BOOL multi-byte rule and is ignored for every
// other type.
func Scalar(t schema.Type, raw uint64, rawLen int, enum *schema.EnumDescriptor) (Rendered, error) {
	switch t {
	case schema.DOUBLE:
		v := wire.Float64FromBits(raw)
		return Rendered{Type: t, Value: v, Text: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case schema.FLOAT:
		v := wire.Float32FromBits(raw)
		return Rendered{Type: t, Value: v, Text: strconv.FormatFloat(float64(v), 'g', -1, 32)}, nil
	case schema.INT64, schema.SFIXED64:
		v := int64(raw)
		return Rendered{Type: t, Value: v, Text: strconv.FormatInt(v, 10)}, nil
	case schema.UINT64, schema.FIXED64:
		return Rendered{Type: t, Value: raw, Text: strconv.FormatUint(raw, 10)}, nil
	case schema.INT32:
		// Low 32 bits as two's-complement int32: a negative INT32 is
		// encoded as a 10-byte varint whose upper bits are discarded
		// here, matching the protobuf spec (design note, spec.md §9).
		v := int32(uint32(raw))
		return Rendered{Type: t, Value: v, Text: strconv.FormatInt(int64(v), 10)}, nil
	case schema.SFIXED32:
		v := int32(uint32(raw))
		return Rendered{Type: t, Value: v, Text: strconv.FormatInt(int64(v), 10)}, nil
	case schema.UINT32, schema.FIXED32:
		v := uint32(raw)
		return Rendered{Type: t, Value: v, Text: strconv.FormatUint(uint64(v), 10)}, nil
	case schema.SINT32:
		v := wire.DecodeZigZag32(raw)
		return Rendered{Type: t, Value: v, Text: strconv.FormatInt(int64(v), 10)}, nil
	case schema.SINT64:
		v := wire.DecodeZigZag64(raw)
		return Rendered{Type: t, Value: v, Text: strconv.FormatInt(v, 10)}, nil
	case schema.BOOL:
		if rawLen > 1 {
			return Rendered{Type: t, Rejected: true}, nil
		}
		v := raw != 0
		return Rendered{Type: t, Value: v, Text: strconv.FormatBool(v)}, nil
	case schema.ENUM:
		v := int32(uint32(raw))
		text := strconv.FormatInt(int64(v), 10)
		if enum != nil {
			if ev, ok := enum.ValueByNumber(v); ok {
				text = fmt.Sprintf("%s(%d)", ev.Name(), v)
			}
		}
		return Rendered{Type: t, Value: v, Text: text}, nil
	default:
		return Rendered{}, fmt.Errorf("render: type %s is not a scalar wire value", t)
	}
}

// LengthDelimited renders a LENGTH_DELIMITED value for STRING or BYTES.
// MESSAGE/GROUP are handled by the caller (decode.Message), since they
// recurse rather than produce a single leaf.
func LengthDelimited(t schema.Type, b []byte, dissectBytesAsString bool) (Rendered, error) {
	switch t {
	case schema.STRING:
		if utf8.Valid(b) {
			return Rendered{Type: t, Value: string(b), Text: strconv.Quote(string(b))}, nil
		}
		// Invalid UTF-8 falls back to lossy replacement rather than a
		// fatal error (spec.md §4.6).
		lossy := strings.ToValidUTF8(string(b), "�")
		return Rendered{Type: t, Value: lossy, Text: strconv.Quote(lossy)}, nil
	case schema.BYTES:
		r := Rendered{Type: t, Value: append([]byte(nil), b...), Text: fmt.Sprintf("%x", b)}
		if dissectBytesAsString {
			r.Text += " " + strconv.Quote(strings.ToValidUTF8(string(b), "�"))
		}
		return r, nil
	default:
		return Rendered{}, fmt.Errorf("render: type %s is not a length-delimited scalar", t)
	}
}
