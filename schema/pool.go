package schema

import (
	"fmt"
	"strings"

	dpb "github.com/golang/protobuf/protoc-gen-go/descriptor"
)

// Pool is the read-only descriptor pool consulted by the decoder at
// every level (spec.md §4.3): a mapping from fully-qualified name to
// message descriptor, and from fully-qualified method name to method
// descriptor. It is populated once (by the Descriptor Set Loader, see
// schemaloader) and never mutated while a decode is in flight.
type Pool struct {
	messages map[string]*MessageDescriptor
	enums    map[string]*EnumDescriptor
	methods  map[string]*MethodDescriptor
}

// NewPool creates an empty pool. Use AddMessage/AddEnum/AddMethod or
// BuildFromFileDescriptorSet to populate it.
func NewPool() *Pool {
	return &Pool{
		messages: map[string]*MessageDescriptor{},
		enums:    map[string]*EnumDescriptor{},
		methods:  map[string]*MethodDescriptor{},
	}
}

func (p *Pool) AddMessage(md *MessageDescriptor) { p.messages[md.FullName()] = md }
func (p *Pool) AddEnum(ed *EnumDescriptor)        { p.enums[ed.FullName()] = ed }
func (p *Pool) AddMethod(md *MethodDescriptor)    { p.methods[md.FullName()] = md }

// FindMessage looks up a message descriptor by its fully-qualified name
// (e.g. "pkg.sub.Msg").
func (p *Pool) FindMessage(fullName string) (*MessageDescriptor, bool) {
	md, ok := p.messages[fullName]
	return md, ok
}

// FindMethod looks up a method descriptor by its fully-qualified name
// (e.g. "pkg.Service.Method").
func (p *Pool) FindMethod(fullName string) (*MethodDescriptor, bool) {
	md, ok := p.methods[fullName]
	return md, ok
}

// FindEnum looks up an enum descriptor by its fully-qualified name.
func (p *Pool) FindEnum(fullName string) (*EnumDescriptor, bool) {
	ed, ok := p.enums[fullName]
	return ed, ok
}

// fieldTypeFromProto maps a FieldDescriptorProto's declared type enum onto
// the closed declared-type enumeration of spec.md §3.
func fieldTypeFromProto(t dpb.FieldDescriptorProto_Type) Type {
	switch t {
	case dpb.FieldDescriptorProto_TYPE_DOUBLE:
		return DOUBLE
	case dpb.FieldDescriptorProto_TYPE_FLOAT:
		return FLOAT
	case dpb.FieldDescriptorProto_TYPE_INT64:
		return INT64
	case dpb.FieldDescriptorProto_TYPE_UINT64:
		return UINT64
	case dpb.FieldDescriptorProto_TYPE_INT32:
		return INT32
	case dpb.FieldDescriptorProto_TYPE_FIXED64:
		return FIXED64
	case dpb.FieldDescriptorProto_TYPE_FIXED32:
		return FIXED32
	case dpb.FieldDescriptorProto_TYPE_BOOL:
		return BOOL
	case dpb.FieldDescriptorProto_TYPE_STRING:
		return STRING
	case dpb.FieldDescriptorProto_TYPE_GROUP:
		return GROUP
	case dpb.FieldDescriptorProto_TYPE_MESSAGE:
		return MESSAGE
	case dpb.FieldDescriptorProto_TYPE_BYTES:
		return BYTES
	case dpb.FieldDescriptorProto_TYPE_UINT32:
		return UINT32
	case dpb.FieldDescriptorProto_TYPE_ENUM:
		return ENUM
	case dpb.FieldDescriptorProto_TYPE_SFIXED32:
		return SFIXED32
	case dpb.FieldDescriptorProto_TYPE_SFIXED64:
		return SFIXED64
	case dpb.FieldDescriptorProto_TYPE_SINT32:
		return SINT32
	case dpb.FieldDescriptorProto_TYPE_SINT64:
		return SINT64
	default:
		return NONE
	}
}

// BuildFromFileDescriptorSet constructs a Pool from a parsed
// FileDescriptorSet (the compiled form of a set of .proto files, as
// produced by protoc or buf and loaded by schemaloader from a
// `.protoset` file). Per-file and per-field problems are collected and
// returned alongside the best-effort pool rather than aborting the
// whole set, matching the "per-file errors reported, not fatal" design
// note in spec.md §9.
func BuildFromFileDescriptorSet(fds *dpb.FileDescriptorSet) (*Pool, []error) {
	p := NewPool()
	var errs []error

	// Pass 1: collect every message's full name and register every enum,
	// so that cross-message/cross-file field references resolve
	// regardless of declaration order.
	type pendingMsg struct {
		proto    *dpb.DescriptorProto
		fullName string
	}
	var pending []pendingMsg

	var walkMessages func(pkg string, msgs []*dpb.DescriptorProto)
	walkMessages = func(pkg string, msgs []*dpb.DescriptorProto) {
		for _, m := range msgs {
			full := joinName(pkg, m.GetName())
			pending = append(pending, pendingMsg{proto: m, fullName: full})
			walkMessages(full, m.GetNestedType())
			for _, e := range m.GetEnumType() {
				registerEnum(p, full, e)
			}
		}
	}

	for _, f := range fds.GetFile() {
		pkg := f.GetPackage()
		walkMessages(pkg, f.GetMessageType())
		for _, e := range f.GetEnumType() {
			registerEnum(p, pkg, e)
		}
	}

	// Pass 2: build MessageDescriptors now that every name is known.
	for _, pm := range pending {
		md := NewMessageDescriptor(pm.fullName)
		p.AddMessage(md)
	}
	for _, pm := range pending {
		md, _ := p.FindMessage(pm.fullName)
		for _, f := range pm.proto.GetField() {
			fd, err := buildField(p, f)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", pm.fullName, f.GetName(), err))
				continue
			}
			md.fields[fd.Number()] = fd
			md.order = append(md.order, fd)
		}
	}

	// Pass 3: services/methods, now that message types are resolvable.
	for _, f := range fds.GetFile() {
		pkg := f.GetPackage()
		for _, svc := range f.GetService() {
			svcFull := joinName(pkg, svc.GetName())
			for _, m := range svc.GetMethod() {
				in, okIn := p.FindMessage(trimLeadingDot(m.GetInputType()))
				out, okOut := p.FindMessage(trimLeadingDot(m.GetOutputType()))
				if !okIn || !okOut {
					errs = append(errs, fmt.Errorf("%s.%s: unresolved input/output type", svcFull, m.GetName()))
					continue
				}
				p.AddMethod(NewMethodDescriptor(joinName(svcFull, m.GetName()), in, out))
			}
		}
	}

	return p, errs
}

func registerEnum(p *Pool, pkg string, e *dpb.EnumDescriptorProto) {
	full := joinName(pkg, e.GetName())
	var vals []*EnumValueDescriptor
	for _, v := range e.GetValue() {
		vals = append(vals, NewEnumValueDescriptor(v.GetName(), v.GetNumber()))
	}
	p.AddEnum(NewEnumDescriptor(full, vals...))
}

func buildField(p *Pool, f *dpb.FieldDescriptorProto) (*FieldDescriptor, error) {
	typ := fieldTypeFromProto(f.GetType())
	var opts []FieldOption
	if f.GetLabel() == dpb.FieldDescriptorProto_LABEL_REPEATED {
		packed := typ.VarintPackable() || typ.Fixed32Packable() || typ.Fixed64Packable()
		if f.GetOptions() != nil && f.GetOptions().Packed != nil {
			packed = f.GetOptions().GetPacked()
		}
		opts = append(opts, Repeated(packed))
	}
	switch typ {
	case MESSAGE, GROUP:
		name := trimLeadingDot(f.GetTypeName())
		md, ok := p.FindMessage(name)
		if !ok {
			return nil, fmt.Errorf("unresolved message type %q", name)
		}
		opts = append(opts, OfMessage(md))
	case ENUM:
		name := trimLeadingDot(f.GetTypeName())
		ed, ok := p.FindEnum(name)
		if !ok {
			return nil, fmt.Errorf("unresolved enum type %q", name)
		}
		opts = append(opts, OfEnum(ed))
	}
	return NewFieldDescriptor(f.GetName(), f.GetNumber(), typ, opts...), nil
}

func joinName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func trimLeadingDot(name string) string {
	return strings.TrimPrefix(name, ".")
}
