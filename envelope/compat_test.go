package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// The validator's schema, declared at runtime so the encoders can be checked
// against the reference protobuf marshaler without generated code.
func validatorSchema(t *testing.T) protoreflect.FileDescriptor {
	t.Helper()
	str := descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
	opt := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	rep := descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	field := func(name string, num int32, label *descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(name),
			Number:   proto.Int32(num),
			Label:    label,
			Type:     str,
		}
	}
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("envelope_compat.proto"),
		Package: proto.String("compat"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("TransactionHeader"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("batcher_public_key", 1, opt),
					field("dependencies", 2, rep),
					field("family_name", 3, opt),
					field("family_version", 4, opt),
					field("inputs", 5, rep),
					field("nonce", 6, opt),
					field("outputs", 7, rep),
					field("payload_sha512", 9, opt),
					field("signer_public_key", 10, opt),
				},
			},
			{
				Name: proto.String("BatchHeader"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("signer_public_key", 1, opt),
					field("transaction_ids", 2, rep),
				},
			},
		},
	}
	file, err := protodesc.NewFile(fd, new(protoregistry.Files))
	require.NoError(t, err)
	return file
}

func setString(m *dynamicpb.Message, name, v string) {
	m.Set(m.Descriptor().Fields().ByName(protoreflect.Name(name)), protoreflect.ValueOfString(v))
}

func appendStrings(m *dynamicpb.Message, name string, vs ...string) {
	list := m.Mutable(m.Descriptor().Fields().ByName(protoreflect.Name(name))).List()
	for _, v := range vs {
		list.Append(protoreflect.ValueOfString(v))
	}
}

func TestTransactionHeaderMatchesReferenceMarshaler(t *testing.T) {
	schema := validatorSchema(t)
	m := dynamicpb.NewMessage(schema.Messages().ByName("TransactionHeader"))
	setString(m, "batcher_public_key", "02aa")
	setString(m, "family_name", "workflow-dependency")
	setString(m, "family_version", "1.0")
	appendStrings(m, "inputs", "5f2d3e", "c8d4a1")
	appendStrings(m, "outputs", "5f2d3e")
	setString(m, "payload_sha512", "deadbeef")
	setString(m, "signer_public_key", "02aa")

	want, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	require.NoError(t, err)

	h := &TransactionHeader{
		BatcherPublicKey: "02aa",
		Dependencies:     []string{},
		FamilyName:       "workflow-dependency",
		FamilyVersion:    "1.0",
		Inputs:           []string{"5f2d3e", "c8d4a1"},
		Outputs:          []string{"5f2d3e"},
		PayloadSHA512:    "deadbeef",
		SignerPublicKey:  "02aa",
	}
	assert.Equal(t, want, h.Marshal())

	back, err := UnmarshalTransactionHeader(want)
	require.NoError(t, err)
	assert.Equal(t, h.Inputs, back.Inputs)
	assert.Equal(t, h.PayloadSHA512, back.PayloadSHA512)
}

func TestBatchHeaderMatchesReferenceMarshaler(t *testing.T) {
	schema := validatorSchema(t)
	m := dynamicpb.NewMessage(schema.Messages().ByName("BatchHeader"))
	setString(m, "signer_public_key", "03bb")
	appendStrings(m, "transaction_ids", "sig-2", "sig-1", "sig-3")

	want, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	require.NoError(t, err)

	h := &BatchHeader{SignerPublicKey: "03bb", TransactionIDs: []string{"sig-2", "sig-1", "sig-3"}}
	assert.Equal(t, want, h.Marshal())
}
