package models

import (
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a Value
type ValueKind uint8

const (
	ValueNone   ValueKind = iota // No type information
	ValueUint32                  // Unsigned 32-bit integer
	ValueInt32                   // Signed 32-bit integer
	ValueNumber                  // Any other numeric or boolean primitive
	ValueEnum                    // Enumerant of a specific EnumType
	ValueString                  // Loosely typed string
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueUint32:
		return "uint32"
	case ValueInt32:
		return "int32"
	case ValueNumber:
		return "number"
	case ValueEnum:
		return "enum"
	case ValueString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a convertible scalar. The zero Value carries no type information.
//
// The native field always holds the Go type matching prim: uint8..uint64,
// int8..int64, float32, float64, bool, string, or EnumMember for enums.
type Value struct {
	kind   ValueKind
	prim   PrimitiveKind
	native any
	enum   *EnumType
}

// Uint32Value wraps an unsigned 32-bit integer
func Uint32Value(v uint32) Value {
	return Value{kind: ValueUint32, prim: KindUint32, native: v}
}

// Int32Value wraps a signed 32-bit integer
func Int32Value(v int32) Value {
	return Value{kind: ValueInt32, prim: KindInt32, native: v}
}

// StringValue wraps a string
func StringValue(s string) Value {
	return Value{kind: ValueString, prim: KindString, native: s}
}

// EnumValue wraps an enumerant of e
func EnumValue(e *EnumType, m EnumMember) Value {
	return Value{kind: ValueEnum, prim: KindEnum, native: m, enum: e}
}

// NumberValue wraps a native Go scalar, deriving the variant from its type
func NumberValue(native any) (Value, error) {
	switch v := native.(type) {
	case uint32:
		return Uint32Value(v), nil
	case int32:
		return Int32Value(v), nil
	case string:
		return StringValue(v), nil
	case uint8:
		return Value{kind: ValueNumber, prim: KindUint8, native: v}, nil
	case int8:
		return Value{kind: ValueNumber, prim: KindInt8, native: v}, nil
	case uint16:
		return Value{kind: ValueNumber, prim: KindUint16, native: v}, nil
	case int16:
		return Value{kind: ValueNumber, prim: KindInt16, native: v}, nil
	case uint64:
		return Value{kind: ValueNumber, prim: KindUint64, native: v}, nil
	case int64:
		return Value{kind: ValueNumber, prim: KindInt64, native: v}, nil
	case float32:
		return Value{kind: ValueNumber, prim: KindFloat32, native: v}, nil
	case float64:
		return Value{kind: ValueNumber, prim: KindFloat64, native: v}, nil
	case bool:
		return Value{kind: ValueNumber, prim: KindBool, native: v}, nil
	default:
		return Value{}, fmt.Errorf("unsupported scalar type %T", native)
	}
}

// MustNumberValue is NumberValue for values known to be scalars
func MustNumberValue(native any) Value {
	v, err := NumberValue(native)
	if err != nil {
		panic(err)
	}
	return v
}

// ZeroOf returns the zero value of a target type, usable as an example
func ZeroOf(t TargetType) (Value, error) {
	if t.IsEnum() {
		if len(t.Enum.Members) == 0 {
			return Value{}, fmt.Errorf("enum %s has no members", t.Enum.Name)
		}
		return EnumValue(t.Enum, t.Enum.Members[0]), nil
	}
	switch t.Kind {
	case KindUint8:
		return NumberValue(uint8(0))
	case KindInt8:
		return NumberValue(int8(0))
	case KindUint16:
		return NumberValue(uint16(0))
	case KindInt16:
		return NumberValue(int16(0))
	case KindUint32:
		return Uint32Value(0), nil
	case KindInt32:
		return Int32Value(0), nil
	case KindUint64:
		return NumberValue(uint64(0))
	case KindInt64:
		return NumberValue(int64(0))
	case KindFloat32:
		return NumberValue(float32(0))
	case KindFloat64:
		return NumberValue(float64(0))
	case KindBool:
		return NumberValue(false)
	case KindString:
		return StringValue(""), nil
	}
	return Value{}, fmt.Errorf("no zero value for kind %q", t.Kind)
}

// Kind returns the variant tag
func (v Value) Kind() ValueKind { return v.kind }

// Primitive returns the exact primitive kind of the value
func (v Value) Primitive() PrimitiveKind { return v.prim }

// IsZero reports whether v carries no type information
func (v Value) IsZero() bool { return v.kind == ValueNone }

// Interface returns the native Go value
func (v Value) Interface() any { return v.native }

// Enum returns the enum type and member of an enumerant value
func (v Value) Enum() (*EnumType, EnumMember, bool) {
	m, ok := v.native.(EnumMember)
	if v.kind != ValueEnum || !ok {
		return nil, EnumMember{}, false
	}
	return v.enum, m, true
}

// Uint32 returns the value of a ValueUint32
func (v Value) Uint32() (uint32, bool) {
	u, ok := v.native.(uint32)
	return u, ok && v.kind == ValueUint32
}

// Int32 returns the value of a ValueInt32
func (v Value) Int32() (int32, bool) {
	i, ok := v.native.(int32)
	return i, ok && v.kind == ValueInt32
}

// Equal reports whether two values hold the same variant and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.prim != o.prim {
		return false
	}
	if v.kind == ValueEnum {
		return v.enum == o.enum && v.native == o.native
	}
	return v.native == o.native
}

// String renders the value as it would be written in an override file
func (v Value) String() string {
	switch n := v.native.(type) {
	case nil:
		return "<none>"
	case EnumMember:
		return n.Name
	case string:
		return n
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}
