package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/psantana5/vaultmod/internal/typeresolve"
	"github.com/psantana5/vaultmod/pkg/models"
)

const carsSchema = `
enums:
  CarClass:
    underlying: uint32
    members:
      - {name: A, value: 1}
      - {name: B, value: 2}
  Drivetrain:
    members:
      FWD: 0
      RWD: 1
      AWD: 2
wrappers:
  TopSpeed: float
  ClassField: CarClass
  Opaque: ""
`

func TestParseSchema(t *testing.T) {
	reg, err := Parse([]byte(carsSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	e, ok := reg.Enum("Drivetrain")
	if !ok {
		t.Fatal("Drivetrain not declared")
	}
	if e.Underlying != models.KindInt32 {
		t.Errorf("default underlying = %s, want int32", e.Underlying)
	}
	if e.Members[2].Name != "AWD" {
		t.Errorf("mapping order not kept: %+v", e.Members)
	}

	target, ok := reg.PrimitiveInfo("TopSpeed")
	if !ok || target.Kind != models.KindFloat32 {
		t.Errorf("PrimitiveInfo(TopSpeed) = %v, %v", target, ok)
	}
	target, ok = reg.PrimitiveInfo("ClassField")
	if !ok || !target.IsEnum() || target.Enum.Name != "CarClass" {
		t.Errorf("PrimitiveInfo(ClassField) = %v, %v", target, ok)
	}
	if _, ok := reg.PrimitiveInfo("Opaque"); ok {
		t.Error("Opaque carries no declaration")
	}
}

func TestEnumParameter(t *testing.T) {
	reg, err := Parse([]byte(carsSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		wrapper models.WrapperType
		want    string
	}{
		{"EnumWrapper<CarClass>", "CarClass"},
		{"EnumWrapper<Drivetrain>", "Drivetrain"},
		{"EnumWrapper<Unknown>", ""},
		{"EnumWrapper<CarClass,Drivetrain>", ""},
		{"EnumWrapper<>", ""},
		{"Wrapper<CarClass>", ""},
		{"EnumWrapper<CarClass", ""},
	}
	for _, tt := range tests {
		e, ok := reg.EnumParameter(tt.wrapper)
		if tt.want == "" {
			if ok {
				t.Errorf("EnumParameter(%s) matched %s", tt.wrapper, e.Name)
			}
			continue
		}
		if !ok || e.Name != tt.want {
			t.Errorf("EnumParameter(%s) = %v, %v; want %s", tt.wrapper, e, ok, tt.want)
		}
	}
}

func TestCustomEnumGeneric(t *testing.T) {
	reg, err := Parse([]byte("enum_generic: VLTEnum\nenums:\n  E:\n    members: {X: 5}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := reg.EnumParameter("VLTEnum<E>"); !ok {
		t.Error("custom generic name not recognized")
	}
	if reg.EnumWrapper("E") != "VLTEnum<E>" {
		t.Errorf("EnumWrapper = %s", reg.EnumWrapper("E"))
	}
}

func TestParseSchemaErrors(t *testing.T) {
	bad := map[string]string{
		"unknown primitive": "wrappers:\n  X: decimal\n",
		"float enum":        "enums:\n  E:\n    underlying: float\n    members: {A: 1}\n",
		"duplicate member":  "enums:\n  E:\n    members:\n      - {name: A, value: 1}\n      - {name: A, value: 2}\n",
		"scalar members":    "enums:\n  E:\n    members: 3\n",
		"non-int value":     "enums:\n  E:\n    members: {A: one}\n",
		"malformed yaml":    "wrappers: [",
	}
	for name, doc := range bad {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(carsSchema), 0644); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.Enums()) != 2 {
		t.Errorf("got %d enums, want 2", len(reg.Enums()))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultAndMerge(t *testing.T) {
	cars, err := Parse([]byte(carsSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg := Default().Merge(cars)

	if target, ok := reg.PrimitiveInfo("UInt32"); !ok || target.Kind != models.KindUint32 {
		t.Errorf("default UInt32 missing after merge: %v", target)
	}
	if _, ok := reg.PrimitiveInfo("TopSpeed"); !ok {
		t.Error("merged wrapper missing")
	}

	types := reg.WrapperTypes()
	found := false
	for _, wt := range types {
		if wt == "EnumWrapper<CarClass>" {
			found = true
		}
	}
	if !found {
		t.Errorf("WrapperTypes should list generic enum wrappers, got %v", types)
	}
}

func TestRegistryDrivesResolver(t *testing.T) {
	cars, err := Parse([]byte(carsSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := typeresolve.NewResolver(Default().Merge(cars))

	target, err := r.Resolve("EnumWrapper<CarClass>")
	if err != nil || !target.IsEnum() {
		t.Fatalf("Resolve = %v, %v", target, err)
	}
	if _, err := r.Resolve("Opaque"); !errors.Is(err, models.ErrSchema) {
		t.Errorf("expected schema error for undeclared wrapper, got %v", err)
	}
}
