// Package packed implements the Packed-Repeated Expander of spec.md
// §4.5: given the value bytes of a field declared repeated+packed, it
// expands a homogeneous sequence of primitive values into one rendered
// element per value.
package packed

import (
	"fmt"
	"strings"

	"github.com/protolens/pbtree/render"
	"github.com/protolens/pbtree/schema"
	"github.com/protolens/pbtree/wire"
)

// Element is one expanded value plus the byte range it occupied within
// the field's value bytes (absolute offsets).
type Element struct {
	Range    wire.Range
	Rendered render.Rendered
}

// ErrUnsupportedType is returned when the declared type cannot appear in
// a packed-repeated encoding at all (spec.md §4.5: "Any other T").
var ErrUnsupportedType = fmt.Errorf("packed: wire type does not support packed repeated encoding")

// Expand decodes the packed payload covered by valueRange as a sequence
// of elements of declared type t. Per spec.md §4.5 this is strictly
// two-pass for the varint-packable case: a parse failure or overrun
// anywhere in the span aborts the whole expansion with no partial
// elements committed.
func Expand(valueRange wire.Range, t schema.Type, enum *schema.EnumDescriptor) ([]Element, error) {
	switch {
	case t.VarintPackable():
		return expandVarint(valueRange, t, enum)
	case t.Fixed64Packable():
		return expandFixedStride(valueRange, t, enum, 8)
	case t.Fixed32Packable():
		return expandFixedStride(valueRange, t, enum, 4)
	default:
		return nil, ErrUnsupportedType
	}
}

func expandVarint(valueRange wire.Range, t schema.Type, enum *schema.EnumDescriptor) ([]Element, error) {
	type parsed struct {
		at, n int
		v     uint64
	}
	var parsedValues []parsed
	at := valueRange.Start()
	for at < valueRange.End() {
		v, n, err := valueRange.ReadVarint(at)
		if err != nil {
			return nil, err
		}
		if at+n > valueRange.End() {
			return nil, fmt.Errorf("packed: varint element overruns field length")
		}
		parsedValues = append(parsedValues, parsed{at: at, n: n, v: v})
		at += n
	}
	// Pass 2: render each collected element.
	elems := make([]Element, 0, len(parsedValues))
	for _, pv := range parsedValues {
		r, err := render.Scalar(t, pv.v, pv.n, enum)
		if err != nil {
			return nil, err
		}
		sub, _ := valueRange.ReadSlice(pv.at, pv.n)
		elems = append(elems, Element{Range: sub, Rendered: r})
	}
	return elems, nil
}

func expandFixedStride(valueRange wire.Range, t schema.Type, enum *schema.EnumDescriptor, stride int) ([]Element, error) {
	length := valueRange.Len()
	if length == 0 || length%stride != 0 {
		return nil, fmt.Errorf("packed: length %d is not a positive multiple of stride %d", length, stride)
	}
	var elems []Element
	for at := valueRange.Start(); at < valueRange.End(); at += stride {
		var raw uint64
		var err error
		if stride == 4 {
			var v32 uint32
			v32, err = valueRange.ReadFixed32(at)
			raw = uint64(v32)
		} else {
			raw, err = valueRange.ReadFixed64(at)
		}
		if err != nil {
			return nil, err
		}
		r, rerr := render.Scalar(t, raw, stride, enum)
		if rerr != nil {
			return nil, rerr
		}
		sub, _ := valueRange.ReadSlice(at, stride)
		elems = append(elems, Element{Range: sub, Rendered: r})
	}
	return elems, nil
}

// Label joins the rendered elements' text into the " [e1, e2, …]"
// suffix the parent field label accumulates (spec.md §4.5).
func Label(elems []Element) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.Rendered.Text
	}
	return " [" + strings.Join(parts, ",") + "]"
}
