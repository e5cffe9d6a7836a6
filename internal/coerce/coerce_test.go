package coerce

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"testing/quick"

	"github.com/psantana5/vaultmod/internal/typeresolve"
	"github.com/psantana5/vaultmod/pkg/models"
	"github.com/psantana5/vaultmod/pkg/vlthash"
)

var abEnum = models.MustEnumType("AB", models.KindInt32,
	models.EnumMember{Name: "A", Value: 1},
	models.EnumMember{Name: "B", Value: 2},
)

type staticTable map[models.WrapperType]models.TargetType

func (s staticTable) PrimitiveInfo(t models.WrapperType) (models.TargetType, bool) {
	target, ok := s[t]
	return target, ok && !target.IsEnum()
}

func (s staticTable) EnumParameter(t models.WrapperType) (*models.EnumType, bool) {
	target, ok := s[t]
	if !ok || !target.IsEnum() {
		return nil, false
	}
	return target.Enum, true
}

func newTestCoercer() *Coercer {
	table := staticTable{
		"UInt32":          models.KindTarget(models.KindUint32),
		"Int8":            models.KindTarget(models.KindInt8),
		"Float":           models.KindTarget(models.KindFloat32),
		"EnumWrapper<AB>": models.EnumTarget(abEnum),
	}
	return New(typeresolve.NewResolver(table))
}

func TestEnumByValue(t *testing.T) {
	target := models.EnumTarget(abEnum)
	tests := []struct {
		literal string
		want    string
	}{
		{"0x1", "A"},
		{"0x2", "B"},
		{"0x00000002", "B"},
	}
	for _, tt := range tests {
		v, err := ParseTarget(tt.literal, target)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", tt.literal, err)
		}
		_, m, ok := v.Enum()
		if !ok || m.Name != tt.want {
			t.Errorf("ParseTarget(%q) = %v, want %s", tt.literal, v, tt.want)
		}
	}

	_, err := ParseTarget("0x3", target)
	if !errors.Is(err, models.ErrEnum) {
		t.Errorf("ParseTarget(0x3) error = %v, want enum error", err)
	}
}

func TestEnumByName(t *testing.T) {
	target := models.EnumTarget(abEnum)

	v, err := ParseTarget("A", target)
	if err != nil {
		t.Fatalf("ParseTarget(A): %v", err)
	}
	if _, m, _ := v.Enum(); m.Value != 1 {
		t.Errorf("got %v, want A", v)
	}

	for _, literal := range []string{"Z", "a", " A", "1", "0xZZ"} {
		if _, err := ParseTarget(literal, target); !errors.Is(err, models.ErrEnum) {
			t.Errorf("ParseTarget(%q) error = %v, want enum error", literal, err)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	target := models.KindTarget(models.KindUint32)
	roundTrip := func(v uint32) bool {
		for _, literal := range []string{FormatHex(v), fmt.Sprintf("0x%X", v), fmt.Sprintf("0x%08x", v)} {
			got, err := ParseTarget(literal, target)
			if err != nil {
				return false
			}
			if u, ok := got.Uint32(); !ok || u != v {
				return false
			}
		}
		return true
	}
	if err := quick.Check(roundTrip, nil); err != nil {
		t.Error(err)
	}
	for _, v := range []uint32{0, 1, math.MaxInt32, math.MaxUint32} {
		if !roundTrip(v) {
			t.Errorf("round trip failed for %#x", v)
		}
	}
}

func TestNumericTargets(t *testing.T) {
	tests := []struct {
		literal string
		kind    models.PrimitiveKind
		want    any
	}{
		{"42", models.KindUint32, uint32(42)},
		{" +42 ", models.KindUint32, uint32(42)},
		{"-0", models.KindUint8, uint8(0)},
		{"-128", models.KindInt8, int8(-128)},
		{"0x7F", models.KindInt8, int8(127)},
		{"0xFFFF", models.KindUint16, uint16(65535)},
		{"0x10", models.KindFloat32, float32(16)},
		{"0xFFFFFFFF", models.KindInt64, int64(4294967295)},
		{"1.5", models.KindFloat32, float32(1.5)},
		{"-2.5e3", models.KindFloat64, float64(-2500)},
		{"1,000.25", models.KindFloat64, float64(1000.25)},
		{".5", models.KindFloat64, float64(0.5)},
		{"-Infinity", models.KindFloat64, math.Inf(-1)},
		{"1e40", models.KindFloat32, float32(math.Inf(1))},
		{"True", models.KindBool, true},
		{"0x0", models.KindBool, false},
		{"0x2", models.KindBool, true},
		{"0x1F", models.KindString, "31"},
		{"hello", models.KindString, "hello"},
		// Starts with 0x but is not hex: falls through to the plain parser
		{"0x", models.KindString, "0x"},
		{"0xvalue", models.KindString, "0xvalue"},
	}
	for _, tt := range tests {
		v, err := ParseTarget(tt.literal, models.KindTarget(tt.kind))
		if err != nil {
			t.Errorf("ParseTarget(%q, %s): %v", tt.literal, tt.kind, err)
			continue
		}
		if v.Interface() != tt.want {
			t.Errorf("ParseTarget(%q, %s) = %#v, want %#v", tt.literal, tt.kind, v.Interface(), tt.want)
		}
	}
}

func TestNumericTargetNaN(t *testing.T) {
	v, err := ParseTarget("NaN", models.KindTarget(models.KindFloat64))
	if err != nil {
		t.Fatalf("ParseTarget(NaN): %v", err)
	}
	if f, _ := v.Interface().(float64); !math.IsNaN(f) {
		t.Errorf("got %v, want NaN", v)
	}
}

func TestNumericTargetFormatErrors(t *testing.T) {
	tests := []struct {
		literal string
		kind    models.PrimitiveKind
	}{
		{"", models.KindUint32},
		{"abc", models.KindUint32},
		{"0xG1", models.KindUint32},
		{"0x1FFFFFFFF", models.KindUint32},
		{"4294967296", models.KindUint32},
		{"-1", models.KindUint32},
		{"0x100", models.KindUint8},
		{"0x80000000", models.KindInt32},
		{"1_000", models.KindInt32},
		{"1.5", models.KindInt32},
		{"1,000", models.KindInt32},
		{"0x1p4", models.KindFloat64},
		{"1e", models.KindFloat64},
		{",5", models.KindFloat64},
		{"∞", models.KindFloat64},
		{"-∞", models.KindFloat32},
		{"yes", models.KindBool},
	}
	for _, tt := range tests {
		_, err := ParseTarget(tt.literal, models.KindTarget(tt.kind))
		if !errors.Is(err, models.ErrFormat) {
			t.Errorf("ParseTarget(%q, %s) error = %v, want format error", tt.literal, tt.kind, err)
		}
	}
}

func TestApplyStoresIntoField(t *testing.T) {
	c := newTestCoercer()

	field := models.NewField("EnumWrapper<AB>")
	out, err := c.Apply(field, "0x2")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != models.Primitive(field) {
		t.Error("Apply should return the same wrapper it mutated")
	}
	if _, m, _ := field.Value.Enum(); m.Name != "B" {
		t.Errorf("field holds %v, want B", field.Value)
	}

	num := models.NewField("Float")
	if _, err := c.Apply(num, "0.25"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if num.Value.Interface() != float32(0.25) {
		t.Errorf("field holds %v", num.Value)
	}
}

func TestApplyFailureLeavesFieldUntouched(t *testing.T) {
	c := newTestCoercer()

	field := models.NewField("Int8")
	if _, err := c.Apply(field, "0x7"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := c.Apply(field, "300"); !errors.Is(err, models.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if field.Value.Interface() != int8(7) {
		t.Errorf("field changed on failure: %v", field.Value)
	}

	unknown := models.NewField("Blob")
	if _, err := c.Apply(unknown, "1"); !errors.Is(err, models.ErrSchema) {
		t.Errorf("expected schema error, got %v", err)
	}
	if unknown.IsSet() {
		t.Error("unknown wrapper field should stay unset")
	}
}

type recorded struct {
	path string
	err  error
}

type sliceRecorder []recorded

func (s *sliceRecorder) RecordCoercion(path string, err error) {
	*s = append(*s, recorded{path, err})
}

func TestCoercerRecordsOutcomes(t *testing.T) {
	rec := &sliceRecorder{}
	table := staticTable{"UInt32": models.KindTarget(models.KindUint32)}
	c := New(typeresolve.NewResolver(table), WithRecorder(rec))

	_, _ = c.Apply(models.NewField("UInt32"), "1")
	_, _ = c.Apply(models.NewField("UInt32"), "x")
	_, _ = c.Apply(models.NewField("Nope"), "1")
	_, _ = c.CoerceByExample(models.Uint32Value(0), "Foo")

	if len(*rec) != 4 {
		t.Fatalf("recorded %d outcomes, want 4", len(*rec))
	}
	got := *rec
	if got[0].err != nil || got[1].err == nil || !errors.Is(got[2].err, models.ErrSchema) {
		t.Errorf("unexpected outcomes %+v", got)
	}
	if got[3].path != PathExample || got[3].err != nil {
		t.Errorf("unexpected example outcome %+v", got[3])
	}
}

func TestApplyWithoutResolver(t *testing.T) {
	c := New(nil)
	if _, err := c.Apply(models.NewField("UInt32"), "1"); err == nil {
		t.Error("expected error without resolver")
	}
}

func TestByExampleNoTypeFallback(t *testing.T) {
	v, err := CoerceByExample(models.Value{}, "hello", vlthash.Hash32)
	if err != nil {
		t.Fatalf("CoerceByExample: %v", err)
	}
	if v.Kind() != models.ValueString || v.Interface() != "hello" {
		t.Errorf("got %v (%s), want string hello", v, v.Kind())
	}
}

func TestByExampleUint32(t *testing.T) {
	example := models.Uint32Value(0)
	tests := []struct {
		literal string
		want    uint32
	}{
		{"42", 42},
		{"0x2A", 42},
		{"4294967295", math.MaxUint32},
		{"Foo", vlthash.Hash32("Foo")},
		{"-1", vlthash.Hash32("-1")},
		{"4294967296", vlthash.Hash32("4294967296")},
		{"", vlthash.Hash32("")},
	}
	for _, tt := range tests {
		v, err := CoerceByExample(example, tt.literal, vlthash.Hash32)
		if err != nil {
			t.Fatalf("CoerceByExample(%q): %v", tt.literal, err)
		}
		if u, ok := v.Uint32(); !ok || u != tt.want {
			t.Errorf("CoerceByExample(%q) = %v, want %d", tt.literal, v, tt.want)
		}
	}
}

func TestByExampleHashDeterminism(t *testing.T) {
	calls := 0
	hash := func(s string) uint32 {
		calls++
		return vlthash.Hash32(s)
	}

	first, err := CoerceByExample(models.Uint32Value(7), "Foo", hash)
	if err != nil {
		t.Fatalf("CoerceByExample: %v", err)
	}
	second, _ := CoerceByExample(models.Uint32Value(7), "Foo", hash)
	if !first.Equal(second) {
		t.Errorf("hash fallback not deterministic: %v vs %v", first, second)
	}
	if u, _ := first.Uint32(); u != vlthash.Hash32("Foo") {
		t.Errorf("got %d, want hash32(Foo)", u)
	}

	// Decimal-parseable literals never reach the hash
	calls = 0
	v, _ := CoerceByExample(models.Uint32Value(7), "42", hash)
	if u, _ := v.Uint32(); u != 42 || calls != 0 {
		t.Errorf("got %d with %d hash calls, want 42 with none", u, calls)
	}
}

func TestByExampleInt32(t *testing.T) {
	example := models.Int32Value(0)
	tests := []struct {
		literal string
		want    int32
	}{
		{"42", 42},
		{"0x2A", 42},
		{"0xFFFFFFFF", -1},
		{"Foo", int32(vlthash.Hash32("Foo"))},
		// Negative decimals fail the unsigned probe and are hashed
		{"-5", int32(vlthash.Hash32("-5"))},
	}
	for _, tt := range tests {
		v, err := CoerceByExample(example, tt.literal, vlthash.Hash32)
		if err != nil {
			t.Fatalf("CoerceByExample(%q): %v", tt.literal, err)
		}
		if i, ok := v.Int32(); !ok || i != tt.want {
			t.Errorf("CoerceByExample(%q) = %v, want %d", tt.literal, v, tt.want)
		}
	}

	if _, err := CoerceByExample(example, "4294967295", vlthash.Hash32); !errors.Is(err, models.ErrFormat) {
		t.Errorf("expected format error for int32 overflow, got %v", err)
	}
}

func TestByExampleHexErrors(t *testing.T) {
	for _, example := range []models.Value{models.Uint32Value(0), models.Int32Value(0)} {
		for _, literal := range []string{"0x", "0xZZ", "0x100000000"} {
			if _, err := CoerceByExample(example, literal, vlthash.Hash32); !errors.Is(err, models.ErrFormat) {
				t.Errorf("CoerceByExample(%s, %q) error = %v, want format error", example.Kind(), literal, err)
			}
		}
	}
}

func TestByExampleEnum(t *testing.T) {
	example := models.EnumValue(abEnum, abEnum.Members[0])

	v, err := CoerceByExample(example, "B", vlthash.Hash32)
	if err != nil {
		t.Fatalf("CoerceByExample(B): %v", err)
	}
	if _, m, _ := v.Enum(); m.Name != "B" {
		t.Errorf("got %v, want B", v)
	}

	// No by-value selection on this path
	if _, err := CoerceByExample(example, "0x1", vlthash.Hash32); !errors.Is(err, models.ErrEnum) {
		t.Errorf("expected enum error for hex literal, got %v", err)
	}
}

func TestByExampleGenericConversion(t *testing.T) {
	tests := []struct {
		example models.Value
		literal string
		want    any
	}{
		{models.MustNumberValue(float32(0)), "2.75", float32(2.75)},
		{models.MustNumberValue(uint16(0)), "65535", uint16(65535)},
		{models.MustNumberValue(int64(0)), "-9000000000", int64(-9000000000)},
		{models.MustNumberValue(false), "false", false},
		{models.StringValue("old"), "new", "new"},
	}
	for _, tt := range tests {
		v, err := CoerceByExample(tt.example, tt.literal, vlthash.Hash32)
		if err != nil {
			t.Fatalf("CoerceByExample(%q): %v", tt.literal, err)
		}
		if v.Interface() != tt.want {
			t.Errorf("CoerceByExample(%q) = %#v, want %#v", tt.literal, v.Interface(), tt.want)
		}
	}

	if _, err := CoerceByExample(models.MustNumberValue(uint8(0)), "256", vlthash.Hash32); !errors.Is(err, models.ErrFormat) {
		t.Errorf("expected format error, got %v", err)
	}
	// Hex is only special for 32-bit integer examples
	if _, err := CoerceByExample(models.MustNumberValue(uint16(0)), "0x10", vlthash.Hash32); !errors.Is(err, models.ErrFormat) {
		t.Errorf("expected format error for hex on uint16 example, got %v", err)
	}
}
