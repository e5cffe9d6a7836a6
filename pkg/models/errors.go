package models

import (
	"errors"
	"fmt"
)

// ErrorType categorizes coercion failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeSchema            // Target type cannot be determined from wrapper metadata
	ErrorTypeEnum              // Literal names no enumerant and matches no enumerant value
	ErrorTypeFormat            // Literal is not a valid scalar of the target type
)

// Sentinels for errors.Is classification
var (
	ErrSchema = errors.New("schema error")
	ErrEnum   = errors.New("enum error")
	ErrFormat = errors.New("format error")
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeSchema:
		return "schema"
	case ErrorTypeEnum:
		return "enum"
	case ErrorTypeFormat:
		return "format"
	default:
		return "unknown"
	}
}

func (t ErrorType) sentinel() error {
	switch t {
	case ErrorTypeSchema:
		return ErrSchema
	case ErrorTypeEnum:
		return ErrEnum
	case ErrorTypeFormat:
		return ErrFormat
	}
	return nil
}

// CoercionError wraps a coercion failure with context and categorization
type CoercionError struct {
	Type      ErrorType
	Operation string // "resolve", "coerce", "coerce_by_example"
	Subject   string // Wrapper type or target type
	Literal   string
	Message   string
	Err       error
}

// Error implements error interface
func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Operation, e.Subject, e.Message)
	if e.Type != ErrorTypeSchema {
		msg = fmt.Sprintf("%s %s: %q: %s", e.Operation, e.Subject, e.Literal, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's category
func (e *CoercionError) Is(target error) bool {
	s := e.Type.sentinel()
	return s != nil && target == s
}

// NewSchemaError reports a wrapper type whose target type cannot be determined
func NewSchemaError(wrapper WrapperType, message string) *CoercionError {
	return &CoercionError{
		Type:      ErrorTypeSchema,
		Operation: "resolve",
		Subject:   string(wrapper),
		Message:   message,
	}
}

// NewEnumError reports a literal matching no member of an enum
func NewEnumError(operation string, enum *EnumType, literal, message string) *CoercionError {
	return &CoercionError{
		Type:      ErrorTypeEnum,
		Operation: operation,
		Subject:   "enum " + enum.Name,
		Literal:   literal,
		Message:   message,
	}
}

// NewFormatError reports a literal that does not parse as the target kind
func NewFormatError(operation string, target string, literal, message string, err error) *CoercionError {
	return &CoercionError{
		Type:      ErrorTypeFormat,
		Operation: operation,
		Subject:   target,
		Literal:   literal,
		Message:   message,
		Err:       err,
	}
}

// ErrorTypeOf returns the category of err, or ErrorTypeUnknown
func ErrorTypeOf(err error) ErrorType {
	var ce *CoercionError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrorTypeUnknown
}
