package models

import "fmt"

// PrimitiveKind is the scalar kind a literal is coerced into
type PrimitiveKind string

const (
	KindUint8   PrimitiveKind = "uint8"
	KindInt8    PrimitiveKind = "int8"
	KindUint16  PrimitiveKind = "uint16"
	KindInt16   PrimitiveKind = "int16"
	KindUint32  PrimitiveKind = "uint32"
	KindInt32   PrimitiveKind = "int32"
	KindUint64  PrimitiveKind = "uint64"
	KindInt64   PrimitiveKind = "int64"
	KindFloat32 PrimitiveKind = "float32"
	KindFloat64 PrimitiveKind = "float64"
	KindBool    PrimitiveKind = "bool"
	KindString  PrimitiveKind = "string"
	KindEnum    PrimitiveKind = "enum" // Target is a specific EnumType
)

// kindAliases maps schema spellings (including the names game-data tools
// traditionally use) to kinds
var kindAliases = map[string]PrimitiveKind{
	"uint8": KindUint8, "byte": KindUint8,
	"int8": KindInt8, "sbyte": KindInt8,
	"uint16": KindUint16, "ushort": KindUint16,
	"int16": KindInt16, "short": KindInt16,
	"uint32": KindUint32, "uint": KindUint32,
	"int32": KindInt32, "int": KindInt32,
	"uint64": KindUint64, "ulong": KindUint64,
	"int64": KindInt64, "long": KindInt64,
	"float32": KindFloat32, "float": KindFloat32, "single": KindFloat32,
	"float64": KindFloat64, "double": KindFloat64,
	"bool": KindBool, "boolean": KindBool,
	"string": KindString,
}

// ParseKind resolves a schema spelling of a primitive kind.
// Enum kinds are never spelled directly; they are named by their EnumType.
func ParseKind(name string) (PrimitiveKind, error) {
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown primitive kind %q", name)
}

// IsInteger reports whether the kind is a fixed-width integer
func (k PrimitiveKind) IsInteger() bool {
	switch k {
	case KindUint8, KindInt8, KindUint16, KindInt16, KindUint32, KindInt32, KindUint64, KindInt64:
		return true
	}
	return false
}

// IsSigned reports whether the kind admits negative values
func (k PrimitiveKind) IsSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindFloat32, KindFloat64:
		return true
	}
	return false
}

// IsFloat reports whether the kind is a floating point kind
func (k PrimitiveKind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// BitSize returns the storage width of numeric kinds, 0 otherwise
func (k PrimitiveKind) BitSize() int {
	switch k {
	case KindUint8, KindInt8:
		return 8
	case KindUint16, KindInt16:
		return 16
	case KindUint32, KindInt32, KindFloat32:
		return 32
	case KindUint64, KindInt64, KindFloat64:
		return 64
	}
	return 0
}

// TargetType is a resolved target primitive type: either a scalar kind or a
// specific enumerant type.
type TargetType struct {
	Kind PrimitiveKind `json:"kind" yaml:"kind"`
	Enum *EnumType     `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// KindTarget returns a non-enum target of the given kind
func KindTarget(kind PrimitiveKind) TargetType {
	return TargetType{Kind: kind}
}

// EnumTarget returns a target selecting members of e
func EnumTarget(e *EnumType) TargetType {
	return TargetType{Kind: KindEnum, Enum: e}
}

// IsEnum reports whether the target selects an enumerant
func (t TargetType) IsEnum() bool {
	return t.Kind == KindEnum && t.Enum != nil
}

func (t TargetType) String() string {
	if t.IsEnum() {
		return "enum " + t.Enum.Name
	}
	return string(t.Kind)
}
