// Package wire holds the protobuf wire-format helpers behind the envelope and
// validator message codecs.
//
// Encoders emit fields in ascending field-number order and omit default
// values. That is the canonical proto3 serialization, so bytes produced here
// match what the validator's generated code produces for the same message.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

type Number = protowire.Number

func AppendString(b []byte, num Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func AppendRepeatedString(b []byte, num Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func AppendBytes(b []byte, num Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func AppendBool(b []byte, num Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func AppendEnum(b []byte, num Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// AppendMessage appends an embedded message, even when empty, so repeated
// message fields keep their element count.
func AppendMessage(b []byte, num Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// Field is one decoded top-level field. Bytes is set for length-delimited
// fields and Varint for varint fields; other wire types carry neither.
type Field struct {
	Num    Number
	Type   protowire.Type
	Bytes  []byte
	Varint uint64
}

// IsBytes reports whether f is length-delimited.
func (f Field) IsBytes() bool { return f.Type == protowire.BytesType }

// IsVarint reports whether f is a varint.
func (f Field) IsVarint() bool { return f.Type == protowire.VarintType }

// Walk decodes the top-level fields of a message and hands each to fn in
// order. Unknown fields are passed through so callers can skip them.
func Walk(b []byte, fn func(f Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			f.Bytes = v
			n = m
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			f.Varint = v
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// WrongType reports a known field carrying an unexpected wire type.
func WrongType(f Field) error {
	return fmt.Errorf("field %d has unexpected wire type %d", f.Num, f.Type)
}

// Enum converts a varint field to a proto enum value.
func Enum(f Field) int32 {
	return int32(f.Varint)
}
