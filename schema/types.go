// Package schema is the Schema View capability set of spec.md §4.3: a
// read-only set of lookups over a loaded descriptor pool. Its shape is
// adapted from desc.MessageDescriptor / desc.FieldDescriptor in
// github.com/jhump/protoreflect — trimmed to the lookups the decoder
// core actually needs (no builders, no source info, no options), and
// retargeted from that library's descriptorpb type enum to the closed
// declared-type enumeration of spec.md §3.
package schema

// Type is the closed declared-field-type enumeration of spec.md §3.
// NONE is the "no interpretation" sentinel for unknown fields.
type Type int

const (
	NONE Type = iota
	DOUBLE
	FLOAT
	INT64
	UINT64
	INT32
	FIXED64
	FIXED32
	BOOL
	STRING
	GROUP
	MESSAGE
	BYTES
	UINT32
	ENUM
	SFIXED32
	SFIXED64
	SINT32
	SINT64
)

var typeNames = map[Type]string{
	NONE: "NONE", DOUBLE: "DOUBLE", FLOAT: "FLOAT", INT64: "INT64",
	UINT64: "UINT64", INT32: "INT32", FIXED64: "FIXED64", FIXED32: "FIXED32",
	BOOL: "BOOL", STRING: "STRING", GROUP: "GROUP", MESSAGE: "MESSAGE",
	BYTES: "BYTES", UINT32: "UINT32", ENUM: "ENUM", SFIXED32: "SFIXED32",
	SFIXED64: "SFIXED64", SINT32: "SINT32", SINT64: "SINT64",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "NONE"
}

// VarintPackable reports whether values of t appear as a varint stream
// when packed (spec.md §4.5).
func (t Type) VarintPackable() bool {
	switch t {
	case INT32, INT64, UINT32, UINT64, SINT32, SINT64, BOOL, ENUM:
		return true
	}
	return false
}

// Fixed64Packable reports whether t uses an 8-byte stride when packed.
func (t Type) Fixed64Packable() bool {
	switch t {
	case FIXED64, SFIXED64, DOUBLE:
		return true
	}
	return false
}

// Fixed32Packable reports whether t uses a 4-byte stride when packed.
func (t Type) Fixed32Packable() bool {
	switch t {
	case FIXED32, SFIXED32, FLOAT:
		return true
	}
	return false
}

// MessageDescriptor describes a message type: its fields, indexed by
// number, and its fully-qualified name.
type MessageDescriptor struct {
	fullName string
	fields   map[int32]*FieldDescriptor
	order    []*FieldDescriptor
}

// NewMessageDescriptor constructs a descriptor for a message named
// fullName with the given fields. Field numbers must be unique.
func NewMessageDescriptor(fullName string, fields ...*FieldDescriptor) *MessageDescriptor {
	md := &MessageDescriptor{fullName: fullName, fields: map[int32]*FieldDescriptor{}}
	for _, f := range fields {
		md.fields[f.number] = f
		md.order = append(md.order, f)
	}
	return md
}

func (md *MessageDescriptor) FullName() string { return md.fullName }

// FieldByNumber looks up a field descriptor by its wire field number.
func (md *MessageDescriptor) FieldByNumber(n int32) (*FieldDescriptor, bool) {
	fd, ok := md.fields[n]
	return fd, ok
}

// Fields returns the message's fields in declaration order.
func (md *MessageDescriptor) Fields() []*FieldDescriptor { return md.order }

// FieldDescriptor describes one field of a message.
type FieldDescriptor struct {
	name        string
	number      int32
	typ         Type
	repeated    bool
	packed      bool
	messageType *MessageDescriptor
	enumType    *EnumDescriptor
}

// FieldOption configures an optional FieldDescriptor attribute.
type FieldOption func(*FieldDescriptor)

// Repeated marks the field as repeated and sets its packed flag to
// packed as given, whatever the field's type.
func Repeated(packed bool) FieldOption {
	return func(fd *FieldDescriptor) { fd.repeated = true; fd.packed = packed }
}

// OfMessage attaches the nested message descriptor for a MESSAGE/GROUP field.
func OfMessage(md *MessageDescriptor) FieldOption {
	return func(fd *FieldDescriptor) { fd.messageType = md }
}

// OfEnum attaches the enum descriptor for an ENUM field.
func OfEnum(ed *EnumDescriptor) FieldOption {
	return func(fd *FieldDescriptor) { fd.enumType = ed }
}

// NewFieldDescriptor constructs a field descriptor.
func NewFieldDescriptor(name string, number int32, typ Type, opts ...FieldOption) *FieldDescriptor {
	fd := &FieldDescriptor{name: name, number: number, typ: typ}
	for _, o := range opts {
		o(fd)
	}
	return fd
}

func (fd *FieldDescriptor) Name() string                     { return fd.name }
func (fd *FieldDescriptor) Number() int32                     { return fd.number }
func (fd *FieldDescriptor) Type() Type                        { return fd.typ }
func (fd *FieldDescriptor) IsRepeated() bool                  { return fd.repeated }
func (fd *FieldDescriptor) IsPacked() bool                    { return fd.repeated && fd.packed }
func (fd *FieldDescriptor) MessageType() *MessageDescriptor   { return fd.messageType }
func (fd *FieldDescriptor) EnumType() *EnumDescriptor         { return fd.enumType }

// EnumDescriptor describes an enum type: its values, indexed by number.
type EnumDescriptor struct {
	fullName string
	values   map[int32]*EnumValueDescriptor
}

// NewEnumDescriptor constructs an enum descriptor.
func NewEnumDescriptor(fullName string, values ...*EnumValueDescriptor) *EnumDescriptor {
	ed := &EnumDescriptor{fullName: fullName, values: map[int32]*EnumValueDescriptor{}}
	for _, v := range values {
		ed.values[v.number] = v
	}
	return ed
}

func (ed *EnumDescriptor) FullName() string { return ed.fullName }

// ValueByNumber looks up an enum value by its numeric value.
func (ed *EnumDescriptor) ValueByNumber(n int32) (*EnumValueDescriptor, bool) {
	v, ok := ed.values[n]
	return v, ok
}

// EnumValueDescriptor names one value of an enum.
type EnumValueDescriptor struct {
	name   string
	number int32
}

// NewEnumValueDescriptor constructs an enum value descriptor.
func NewEnumValueDescriptor(name string, number int32) *EnumValueDescriptor {
	return &EnumValueDescriptor{name: name, number: number}
}

func (v *EnumValueDescriptor) Name() string   { return v.name }
func (v *EnumValueDescriptor) Number() int32  { return v.number }

// MethodDescriptor describes one RPC method: its input and output
// message types, used to resolve the gRPC-style hint form of §4.8.
type MethodDescriptor struct {
	fullName string
	input    *MessageDescriptor
	output   *MessageDescriptor
}

// NewMethodDescriptor constructs a method descriptor.
func NewMethodDescriptor(fullName string, input, output *MessageDescriptor) *MethodDescriptor {
	return &MethodDescriptor{fullName: fullName, input: input, output: output}
}

func (md *MethodDescriptor) FullName() string             { return md.fullName }
func (md *MethodDescriptor) InputType() *MessageDescriptor  { return md.input }
func (md *MethodDescriptor) OutputType() *MessageDescriptor { return md.output }
