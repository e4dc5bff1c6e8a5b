// Package decode implements the Field Decoder (spec.md §4.4) and
// Message Decoder (spec.md §4.7): the recursive core that drives the
// Wire Reader, Schema View, Value Renderer, and Packed-Repeated
// Expander over a byte range and appends labelled nodes to the output
// tree.
package decode

import (
	"errors"
	"fmt"

	"github.com/protolens/pbtree/config"
	"github.com/protolens/pbtree/expertinfo"
	"github.com/protolens/pbtree/packed"
	"github.com/protolens/pbtree/render"
	"github.com/protolens/pbtree/schema"
	"github.com/protolens/pbtree/tree"
	"github.com/protolens/pbtree/wire"
)

// Field decodes one field occurrence starting at absolute offset off
// within rng, appending the resulting subtree to parent. It returns the
// absolute offset just past the field and whether decoding succeeded;
// on failure the enclosing Message loop halts (spec.md §4.4 step 1/4/5,
// §7).
func Field(rng wire.Range, off int, md *schema.MessageDescriptor, pool *schema.Pool, cfg config.Snapshot, parent *tree.Node) (next int, ok bool) {
	fieldStart := off

	tag, tagLen, err := rng.SplitTag(off)
	if err != nil {
		parent.AddExpertInfo(expertinfo.FailedParseTag, "failed to parse tag at offset %d: %v", off, err)
		return off, false
	}
	off += tagLen

	if tag.Malformed() {
		parent.AddExpertInfo(expertinfo.FailedParseTag, "malformed tag: field %d wire type %d", tag.FieldNumber, tag.WireType)
		return off, false
	}

	var fd *schema.FieldDescriptor
	if md != nil {
		fd, _ = md.FieldByNumber(int32(tag.FieldNumber))
	}

	var valueLen int
	var rawLen int // length of the raw varint/length-prefix itself, used for BOOL rejection
	var raw uint64
	var valueStart int

	switch tag.WireType {
	case wire.Varint:
		v, n, err := rng.ReadVarint(off)
		if err != nil {
			parent.AddExpertInfo(expertinfo.FailedParseField, "failed to parse varint value for field %d: %v", tag.FieldNumber, err)
			return off, false
		}
		raw, valueLen, rawLen = v, n, n
		valueStart = off

	case wire.Fixed64:
		v, err := rng.ReadFixed64(off)
		if err != nil {
			parent.AddExpertInfo(expertinfo.FailedParseField, "failed to parse fixed64 value for field %d: %v", tag.FieldNumber, err)
			return off, false
		}
		raw, valueLen, rawLen = v, 8, 8
		valueStart = off

	case wire.Fixed32:
		v, err := rng.ReadFixed32(off)
		if err != nil {
			parent.AddExpertInfo(expertinfo.FailedParseField, "failed to parse fixed32 value for field %d: %v", tag.FieldNumber, err)
			return off, false
		}
		raw, valueLen, rawLen = uint64(v), 4, 4
		valueStart = off

	case wire.LengthDelimited:
		l, prefixLen, err := rng.ReadVarint(off)
		if err != nil {
			parent.AddExpertInfo(expertinfo.FailedParseLengthDelimitedField, "failed to parse length prefix for field %d: %v", tag.FieldNumber, err)
			return off, false
		}
		valueStart = off + prefixLen
		valueLen = int(l)
		rawLen = prefixLen

	default:
		// StartGroup/EndGroup are already excluded by tag.Malformed
		// above for any tag we'd reach here with, but guard anyway.
		parent.AddExpertInfo(expertinfo.WireTypeInvalid, "unsupported wire type %d for field %d", tag.WireType, tag.FieldNumber)
		return off, false
	}

	valueRange, err := rng.ReadSlice(valueStart, valueLen)
	if err != nil {
		kind := expertinfo.FailedParseField
		if tag.WireType == wire.LengthDelimited {
			kind = expertinfo.FailedParseLengthDelimitedField
		}
		parent.AddExpertInfo(kind, "field %d value runs past end of message (len %d)", tag.FieldNumber, valueLen)
		return valueStart, false
	}

	fieldEnd := valueStart + valueLen
	fieldNode := parent.NewChild("Field", tree.ByteRange{Offset: fieldStart, Length: fieldEnd - fieldStart})
	addFieldPseudoChildren(fieldNode, md, fd, tag)

	// Rendered value content lives under its own "Value" subtree, kept
	// distinct from the field-level pseudo-children above, mirroring the
	// original dissector's ett_protobuf_value nesting under ett_protobuf_field.
	valueNode := fieldNode.NewChild("Value", tree.ByteRange{Offset: valueStart, Length: valueLen})

	switch {
	case fd != nil && fd.IsPacked() && tag.WireType == wire.LengthDelimited:
		renderPacked(fieldNode, valueNode, valueRange, fd)
	case fd != nil:
		renderSchemaGuided(fieldNode, valueNode, rng, valueRange, tag, fd, raw, rawLen, pool, cfg)
	default:
		renderFallback(valueNode, valueRange, tag, raw, rawLen, cfg)
	}

	return fieldEnd, true
}

// addFieldPseudoChildren appends the generated pseudo-children (message
// name, field name, declared field type) spec.md §6 calls for, so the
// host framework can filter by name/type even though these never
// appear on the wire themselves.
func addFieldPseudoChildren(fieldNode *tree.Node, md *schema.MessageDescriptor, fd *schema.FieldDescriptor, tag wire.Tag) {
	if md != nil {
		c := fieldNode.NewChild("message name", fieldNode.Range)
		c.SetValue(tree.Value{Kind: "meta", Text: md.FullName()})
	}
	nameNode := fieldNode.NewChild("field name", fieldNode.Range)
	typeNode := fieldNode.NewChild("field type", fieldNode.Range)
	if fd != nil {
		nameNode.SetValue(tree.Value{Kind: "meta", Text: fd.Name()})
		typeNode.SetValue(tree.Value{Kind: "meta", Text: fd.Type().String()})
		fieldNode.Label = fmt.Sprintf("%s (%d)", fd.Name(), tag.FieldNumber)
	} else {
		nameNode.SetValue(tree.Value{Kind: "meta", Text: fmt.Sprintf("%d", tag.FieldNumber)})
		typeNode.SetValue(tree.Value{Kind: "meta", Text: "NONE"})
		fieldNode.Label = fmt.Sprintf("Field %d", tag.FieldNumber)
	}
}

func renderPacked(fieldNode, valueNode *tree.Node, valueRange wire.Range, fd *schema.FieldDescriptor) {
	elems, err := packed.Expand(valueRange, fd.Type(), fd.EnumType())
	if err != nil {
		kind := expertinfo.FailedParsePackedRepeatedField
		if errors.Is(err, packed.ErrUnsupportedType) {
			kind = expertinfo.WireTypeNotSupportPackedRepeated
		}
		fieldNode.AddExpertInfo(kind, "packed repeated field %s: %v", fd.Name(), err)
		return
	}
	repeated := valueNode.NewChild("Repeated"+packed.Label(elems), tree.ByteRange{
		Offset: valueRange.Start(), Length: valueRange.Len(),
	})
	for _, e := range elems {
		leaf := repeated.NewChild(e.Rendered.Text, tree.ByteRange{Offset: e.Range.Start(), Length: e.Range.Len()})
		leaf.SetValue(tree.Value{Kind: e.Rendered.Type.String(), Text: e.Rendered.Text, Raw: e.Rendered.Value})
	}
}

func renderSchemaGuided(fieldNode, valueNode *tree.Node, rng, valueRange wire.Range, tag wire.Tag, fd *schema.FieldDescriptor, raw uint64, rawLen int, pool *schema.Pool, cfg config.Snapshot) {
	if !compatible(tag.WireType, fd.Type()) {
		fieldNode.AddExpertInfo(expertinfo.WireTypeInvalid, "field %s declared %s but wire type is %d", fd.Name(), fd.Type(), tag.WireType)
	}

	switch tag.WireType {
	case wire.Varint, wire.Fixed32, wire.Fixed64:
		rv, err := render.Scalar(fd.Type(), raw, rawLen, fd.EnumType())
		if err != nil {
			fieldNode.AddExpertInfo(expertinfo.FailedParseField, "%v", err)
			return
		}
		if rv.Rejected {
			// Redesigned per spec.md design note on BOOL multi-byte varints:
			// the source drops this silently, surface it as a diagnostic instead.
			fieldNode.AddExpertInfo(expertinfo.FailedParseField, "field %s: BOOL varint spans %d bytes, expected 1", fd.Name(), rawLen)
			return
		}
		valueNode.SetValue(tree.Value{Kind: rv.Type.String(), Text: rv.Text, Raw: rv.Value})

	case wire.LengthDelimited:
		switch fd.Type() {
		case schema.MESSAGE, schema.GROUP:
			nested := fd.MessageType()
			if nested == nil {
				fieldNode.AddExpertInfo(expertinfo.MessageTypeNotFound, "field %s: no nested message descriptor", fd.Name())
				return
			}
			Message(valueRange, nested, pool, cfg, valueNode)
		default:
			rv, err := render.LengthDelimited(fd.Type(), valueRange.Bytes(), cfg.DissectBytesAsString)
			if err != nil {
				fieldNode.AddExpertInfo(expertinfo.FailedParseLengthDelimitedField, "%v", err)
				return
			}
			valueNode.SetValue(tree.Value{Kind: rv.Type.String(), Text: rv.Text, Raw: rv.Value})
		}
	}
}

// renderFallback implements the unknown-field strategy of spec.md §4.9.
func renderFallback(valueNode *tree.Node, valueRange wire.Range, tag wire.Tag, raw uint64, rawLen int, cfg config.Snapshot) {
	permitted := permittedTypes(tag.WireType)

	if cfg.ShowAllPossibleTypes {
		for _, t := range permitted {
			renderOneFallback(valueNode, valueRange, tag, t, raw, rawLen, cfg)
		}
		return
	}

	var chosen schema.Type
	switch tag.WireType {
	case wire.LengthDelimited:
		if cfg.TryDissectAsString {
			chosen = schema.STRING
		} else {
			return // NONE: raw bytes only, no typed leaf
		}
	default:
		if raw <= 0xFFFFFFFF {
			chosen = schema.UINT32
		} else {
			chosen = schema.UINT64
		}
	}
	renderOneFallback(valueNode, valueRange, tag, chosen, raw, rawLen, cfg)
}

func renderOneFallback(valueNode *tree.Node, valueRange wire.Range, tag wire.Tag, t schema.Type, raw uint64, rawLen int, cfg config.Snapshot) {
	var rv render.Rendered
	var err error
	if tag.WireType == wire.LengthDelimited {
		switch t {
		case schema.STRING, schema.BYTES:
			rv, err = render.LengthDelimited(t, valueRange.Bytes(), cfg.DissectBytesAsString)
		default:
			return
		}
	} else {
		// The multi-byte-varint BOOL rejection is a schema-guided rule
		// (§4.6): a field declared BOOL whose varint is implausibly long
		// gets no typed value and a failed_parse_field diagnostic (see
		// renderSchemaGuided). It does not apply when BOOL is merely
		// one of several guessed interpretations in the §4.9 fallback
		// enumeration (spec.md S7 renders BOOL here regardless), so
		// pass a length of 1 to bypass the rejection in that case.
		guessRawLen := rawLen
		if t == schema.BOOL {
			guessRawLen = 1
		}
		rv, err = render.Scalar(t, raw, guessRawLen, nil)
	}
	if err != nil || rv.Rejected {
		return
	}
	leaf := valueNode.NewChild(t.String(), tree.ByteRange{Offset: valueRange.Start(), Length: valueRange.Len()})
	leaf.SetValue(tree.Value{Kind: rv.Type.String(), Text: rv.Text, Raw: rv.Value})
}

// permittedTypes returns the declared types compatible with a wire type
// per the fixed table in spec.md §4.6.
func permittedTypes(wt wire.Type) []schema.Type {
	switch wt {
	case wire.Varint:
		return []schema.Type{schema.INT32, schema.INT64, schema.UINT32, schema.UINT64, schema.SINT32, schema.SINT64, schema.BOOL, schema.ENUM}
	case wire.Fixed64:
		return []schema.Type{schema.FIXED64, schema.SFIXED64, schema.DOUBLE}
	case wire.LengthDelimited:
		return []schema.Type{schema.STRING, schema.BYTES, schema.MESSAGE, schema.GROUP}
	case wire.Fixed32:
		return []schema.Type{schema.FIXED32, schema.SFIXED32, schema.FLOAT}
	}
	return nil
}

func compatible(wt wire.Type, t schema.Type) bool {
	for _, permitted := range permittedTypes(wt) {
		if permitted == t {
			return true
		}
	}
	return false
}
