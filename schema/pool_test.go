package schema_test

import (
	"testing"

	dpb "github.com/golang/protobuf/protoc-gen-go/descriptor"
	"github.com/stretchr/testify/require"

	"github.com/protolens/pbtree/schema"
)

func strp(s string) *string   { return &s }
func i32p(n int32) *int32     { return &n }

func TestBuildFromFileDescriptorSet_NestedMessageAndMethod(t *testing.T) {
	// Mirrors spec.md S3 (nested message) and S6 (gRPC method lookup).
	inner := &dpb.DescriptorProto{
		Name: strp("Inner"),
		Field: []*dpb.FieldDescriptorProto{
			{Name: strp("a"), Number: i32p(1), Type: dpb.FieldDescriptorProto_TYPE_INT32.Enum()},
		},
	}
	outer := &dpb.DescriptorProto{
		Name: strp("M"),
		Field: []*dpb.FieldDescriptorProto{
			{Name: strp("m"), Number: i32p(3), Type: dpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(), TypeName: strp(".pkg.Inner")},
		},
	}
	req := &dpb.DescriptorProto{Name: strp("HelloRequest")}
	resp := &dpb.DescriptorProto{Name: strp("HelloReply")}
	greeter := &dpb.ServiceDescriptorProto{
		Name: strp("Greeter"),
		Method: []*dpb.MethodDescriptorProto{
			{Name: strp("SayHello"), InputType: strp(".helloworld.HelloRequest"), OutputType: strp(".helloworld.HelloReply")},
		},
	}

	fds := &dpb.FileDescriptorSet{
		File: []*dpb.FileDescriptorProto{
			{Package: strp("pkg"), MessageType: []*dpb.DescriptorProto{inner, outer}},
			{
				Package:     strp("helloworld"),
				MessageType: []*dpb.DescriptorProto{req, resp},
				Service:     []*dpb.ServiceDescriptorProto{greeter},
			},
		},
	}

	pool, errs := schema.BuildFromFileDescriptorSet(fds)
	require.Empty(t, errs)

	m, ok := pool.FindMessage("pkg.M")
	require.True(t, ok)
	require.Equal(t, "pkg.M", m.FullName())

	fd, ok := m.FieldByNumber(3)
	require.True(t, ok)
	require.Equal(t, schema.MESSAGE, fd.Type())
	require.NotNil(t, fd.MessageType())
	require.Equal(t, "pkg.Inner", fd.MessageType().FullName())

	method, ok := pool.FindMethod("helloworld.Greeter.SayHello")
	require.True(t, ok)
	require.Equal(t, "helloworld.HelloRequest", method.InputType().FullName())
	require.Equal(t, "helloworld.HelloReply", method.OutputType().FullName())
}

func TestFieldDescriptorRepeatedPacked(t *testing.T) {
	fd := schema.NewFieldDescriptor("v", 4, schema.INT32, schema.Repeated(true))
	require.True(t, fd.IsRepeated())
	require.True(t, fd.IsPacked())
}
