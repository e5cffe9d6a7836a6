package models

import "fmt"

// WrapperType identifies a field's declared container type, e.g. "UInt32"
// or "EnumWrapper<CarClass>". It is an immutable schema-level handle.
type WrapperType string

// Primitive is the mutation capability of a typed field wrapper: it knows its
// declared wrapper type and accepts a coerced scalar.
type Primitive interface {
	WrapperType() WrapperType
	SetValue(v Value) error
}

// Field is the in-memory wrapper holding one typed field of a record
type Field struct {
	Type  WrapperType `json:"type" yaml:"type"`
	Value Value       `json:"-" yaml:"-"`
}

// NewField creates an empty field of the given wrapper type
func NewField(t WrapperType) *Field {
	return &Field{Type: t}
}

// WrapperType implements Primitive
func (f *Field) WrapperType() WrapperType {
	return f.Type
}

// SetValue implements Primitive. Untyped values are rejected.
func (f *Field) SetValue(v Value) error {
	if v.IsZero() {
		return fmt.Errorf("field %s: cannot store a value without type", f.Type)
	}
	f.Value = v
	return nil
}

// IsSet reports whether a value has been stored
func (f *Field) IsSet() bool {
	return !f.Value.IsZero()
}
