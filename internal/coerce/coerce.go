// Package coerce turns textual field literals into typed values.
//
// Two entry points exist. The attribute-typed path (Coerce, Apply) knows the
// field's declared target type, resolved from wrapper metadata. The
// value-inferred path (CoerceByExample) only has an existing value of the
// desired runtime type to go by.
package coerce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/psantana5/vaultmod/internal/typeresolve"
	"github.com/psantana5/vaultmod/pkg/logging"
	"github.com/psantana5/vaultmod/pkg/models"
	"github.com/psantana5/vaultmod/pkg/vlthash"
)

// Path names used in errors and metrics
const (
	PathAttribute = "coerce"
	PathExample   = "coerce_by_example"
)

// Hasher derives a 32-bit identifier from a symbolic name
type Hasher func(string) uint32

// Recorder receives one notification per coercion attempt
type Recorder interface {
	RecordCoercion(path string, err error)
}

// Coercer binds the type resolver and hash collaborator used by both paths
type Coercer struct {
	resolver *typeresolve.Resolver
	hash     Hasher
	recorder Recorder
	logger   *logging.Logger
}

// Option configures a Coercer
type Option func(*Coercer)

// WithHasher replaces the default identifier hash
func WithHasher(h Hasher) Option {
	return func(c *Coercer) { c.hash = h }
}

// WithRecorder sets the per-coercion recorder
func WithRecorder(rec Recorder) Option {
	return func(c *Coercer) { c.recorder = rec }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Coercer) { c.logger = l }
}

// New creates a Coercer. resolver may be nil when only the value-inferred
// path is used.
func New(resolver *typeresolve.Resolver, opts ...Option) *Coercer {
	c := &Coercer{
		resolver: resolver,
		hash:     vlthash.Hash32,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply resolves the field's wrapper type and coerces literal into it
func (c *Coercer) Apply(field models.Primitive, literal string) (models.Primitive, error) {
	if c.resolver == nil {
		return nil, errors.New("coerce: no type resolver configured")
	}
	target, err := c.resolver.Resolve(field.WrapperType())
	if err != nil {
		c.record(PathAttribute, err)
		return nil, err
	}
	return c.Coerce(field, literal, target)
}

// Coerce parses literal as target and stores the result into field.
// The field is untouched on failure.
func (c *Coercer) Coerce(field models.Primitive, literal string, target models.TargetType) (models.Primitive, error) {
	out, err := Coerce(field, literal, target)
	c.record(PathAttribute, err)
	if err != nil {
		c.logger.Debug("coercion failed", logging.Fields{
			"wrapper": string(field.WrapperType()),
			"literal": literal,
			"error":   err.Error(),
		})
	}
	return out, err
}

// CoerceByExample parses literal as the runtime type of example
func (c *Coercer) CoerceByExample(example models.Value, literal string) (models.Value, error) {
	v, err := CoerceByExample(example, literal, c.hash)
	c.record(PathExample, err)
	return v, err
}

func (c *Coercer) record(path string, err error) {
	if c.recorder != nil {
		c.recorder.RecordCoercion(path, err)
	}
}

// Coerce is the attribute-typed path: parse literal as target and store it
func Coerce(field models.Primitive, literal string, target models.TargetType) (models.Primitive, error) {
	v, err := ParseTarget(literal, target)
	if err != nil {
		return nil, err
	}
	if err := field.SetValue(v); err != nil {
		return nil, err
	}
	return field, nil
}

// ParseTarget parses literal as target without storing it.
//
// A 0x-prefixed literal whose remainder is a valid unsigned 32-bit hex
// number selects by numeric value; any other literal, including one that
// merely starts with 0x, takes the default path for the target.
func ParseTarget(literal string, target models.TargetType) (models.Value, error) {
	hex, hexErr := parseHex32(literal)
	isHex := hexErr == nil

	if target.Kind == models.KindEnum {
		if target.Enum == nil {
			return models.Value{}, errors.New("coerce: enum target without enum type")
		}
		if isHex {
			m, ok := target.Enum.ByValue(int64(hex))
			if !ok {
				return models.Value{}, models.NewEnumError(PathAttribute, target.Enum, literal,
					fmt.Sprintf("no member with value %d", hex))
			}
			return models.EnumValue(target.Enum, m), nil
		}
		m, ok := target.Enum.ByName(literal)
		if !ok {
			return models.Value{}, models.NewEnumError(PathAttribute, target.Enum, literal, "no member with this name")
		}
		return models.EnumValue(target.Enum, m), nil
	}

	var (
		native any
		err    error
	)
	if isHex {
		native, err = convertUint32(hex, target.Kind)
	} else {
		native, err = parseInvariant(literal, target.Kind)
	}
	if err != nil {
		return models.Value{}, formatError(PathAttribute, target.String(), literal, err)
	}
	return models.NumberValue(native)
}

// CoerceByExample is the value-inferred path.
//
// A zero example yields the literal as a string. uint32 and int32 examples
// accept 0x hex literals, decimal literals, and otherwise hash the literal
// as a symbolic identifier. Enum examples select a member by name only.
// Every other example parses the literal as its own kind.
func CoerceByExample(example models.Value, literal string, hash Hasher) (models.Value, error) {
	switch example.Kind() {
	case models.ValueNone:
		return models.StringValue(literal), nil

	case models.ValueUint32:
		if strings.HasPrefix(literal, HexPrefix) {
			v, err := parseHex32(literal)
			if err != nil {
				return models.Value{}, formatError(PathExample, "uint32", literal, err)
			}
			return models.Uint32Value(v), nil
		}
		v, err := parseInteger(literal, models.KindUint32)
		if err != nil {
			return models.Uint32Value(hash(literal)), nil
		}
		return models.Uint32Value(v.(uint32)), nil

	case models.ValueInt32:
		if strings.HasPrefix(literal, HexPrefix) {
			v, err := parseHex32(literal)
			if err != nil {
				return models.Value{}, formatError(PathExample, "int32", literal, err)
			}
			return models.Int32Value(int32(v)), nil
		}
		// The decimal probe is unsigned: negative decimals are hashed too
		if _, err := parseInteger(literal, models.KindUint32); err != nil {
			return models.Int32Value(int32(hash(literal))), nil
		}
		v, err := parseInteger(literal, models.KindInt32)
		if err != nil {
			return models.Value{}, formatError(PathExample, "int32", literal, err)
		}
		return models.Int32Value(v.(int32)), nil

	case models.ValueEnum:
		enum, _, _ := example.Enum()
		m, ok := enum.ByName(literal)
		if !ok {
			return models.Value{}, models.NewEnumError(PathExample, enum, literal, "no member with this name")
		}
		return models.EnumValue(enum, m), nil

	case models.ValueNumber, models.ValueString:
		native, err := parseInvariant(literal, example.Primitive())
		if err != nil {
			return models.Value{}, formatError(PathExample, string(example.Primitive()), literal, err)
		}
		return models.NumberValue(native)
	}
	return models.Value{}, fmt.Errorf("coerce: unknown value kind %s", example.Kind())
}

func formatError(path, target, literal string, err error) error {
	msg := "not a valid " + target + " literal"
	if errors.Is(err, errRange) {
		msg = "out of range for " + target
	}
	return models.NewFormatError(path, target, literal, msg, err)
}

// FormatHex renders v the way hex literals are written in override files
func FormatHex(v uint32) string {
	return HexPrefix + strconv.FormatUint(uint64(v), 16)
}
