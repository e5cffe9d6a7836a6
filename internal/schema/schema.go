// Package schema loads the type descriptor tables that describe wrapper
// types: which primitive each wrapper declares, and which enums exist for
// generic enum wrappers to refer to.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psantana5/vaultmod/pkg/models"
)

// DefaultEnumGeneric is the generic definition name of enum wrappers,
// as in "EnumWrapper<CarClass>"
const DefaultEnumGeneric = "EnumWrapper"

//go:embed default.yaml
var defaultSchema []byte

// Document is the YAML form of a schema file
type Document struct {
	// EnumGeneric overrides the generic enum wrapper name
	EnumGeneric string `yaml:"enum_generic"`

	Enums map[string]EnumDecl `yaml:"enums"`

	// Wrappers maps a wrapper type name to its declared primitive: a kind
	// spelling, an enum name, or empty when the wrapper carries no
	// declaration.
	Wrappers map[string]string `yaml:"wrappers"`
}

// EnumDecl declares one enum type
type EnumDecl struct {
	Underlying string      `yaml:"underlying"`
	Members    MemberTable `yaml:"members"`
}

// MemberTable accepts either a sequence of {name, value} entries or a
// mapping of name to value; declaration order is kept either way.
type MemberTable []models.EnumMember

// UnmarshalYAML implements yaml.Unmarshaler
func (m *MemberTable) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []models.EnumMember
		if err := node.Decode(&list); err != nil {
			return err
		}
		*m = list
		return nil
	case yaml.MappingNode:
		out := make([]models.EnumMember, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var value int64
			if err := node.Content[i+1].Decode(&value); err != nil {
				return fmt.Errorf("line %d: member %s: %w", node.Content[i+1].Line, node.Content[i].Value, err)
			}
			out = append(out, models.EnumMember{Name: node.Content[i].Value, Value: value})
		}
		*m = out
		return nil
	}
	return fmt.Errorf("line %d: enum members must be a sequence or a mapping", node.Line)
}

// wrapperDecl is a wrapper type's static shape
type wrapperDecl struct {
	target    models.TargetType
	annotated bool
}

// Registry is an immutable table of wrapper and enum declarations.
// It implements typeresolve.Introspector.
type Registry struct {
	enumGeneric string
	enums       map[string]*models.EnumType
	wrappers    map[models.WrapperType]wrapperDecl
}

// Load reads and parses a schema file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return reg, nil
}

// Default returns the built-in schema of the plain primitive wrappers
func Default() *Registry {
	reg, err := Parse(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("embedded schema is invalid: %v", err))
	}
	return reg
}

// Parse builds a registry from YAML
func Parse(data []byte) (*Registry, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return Build(doc)
}

// Build validates a document and builds its registry
func Build(doc Document) (*Registry, error) {
	reg := &Registry{
		enumGeneric: doc.EnumGeneric,
		enums:       make(map[string]*models.EnumType, len(doc.Enums)),
		wrappers:    make(map[models.WrapperType]wrapperDecl, len(doc.Wrappers)),
	}
	if reg.enumGeneric == "" {
		reg.enumGeneric = DefaultEnumGeneric
	}

	for name, decl := range doc.Enums {
		underlying := models.KindInt32
		if decl.Underlying != "" {
			k, err := models.ParseKind(decl.Underlying)
			if err != nil {
				return nil, fmt.Errorf("enum %s: %w", name, err)
			}
			underlying = k
		}
		e, err := models.NewEnumType(name, underlying, decl.Members)
		if err != nil {
			return nil, err
		}
		reg.enums[name] = e
	}

	for name, primitive := range doc.Wrappers {
		decl := wrapperDecl{}
		if primitive != "" {
			target, err := reg.targetFor(primitive)
			if err != nil {
				return nil, fmt.Errorf("wrapper %s: %w", name, err)
			}
			decl = wrapperDecl{target: target, annotated: true}
		}
		reg.wrappers[models.WrapperType(name)] = decl
	}
	return reg, nil
}

// targetFor resolves a declared primitive spelling; enum names win over
// kind aliases
func (r *Registry) targetFor(primitive string) (models.TargetType, error) {
	if e, ok := r.enums[primitive]; ok {
		return models.EnumTarget(e), nil
	}
	k, err := models.ParseKind(primitive)
	if err != nil {
		return models.TargetType{}, fmt.Errorf("%q is neither a primitive kind nor a declared enum", primitive)
	}
	return models.KindTarget(k), nil
}

// PrimitiveInfo returns the explicit declaration of a wrapper type
func (r *Registry) PrimitiveInfo(t models.WrapperType) (models.TargetType, bool) {
	decl, ok := r.wrappers[t]
	if !ok || !decl.annotated {
		return models.TargetType{}, false
	}
	return decl.target, true
}

// EnumParameter recognizes the generic enum wrapper shape Generic<Enum> and
// returns its parameter
func (r *Registry) EnumParameter(t models.WrapperType) (*models.EnumType, bool) {
	param, ok := genericParameter(string(t), r.enumGeneric)
	if !ok {
		return nil, false
	}
	e, ok := r.enums[param]
	return e, ok
}

// genericParameter extracts P from "generic<P>"; only single-parameter
// shapes match
func genericParameter(name, generic string) (string, bool) {
	rest, ok := strings.CutPrefix(name, generic+"<")
	if !ok {
		return "", false
	}
	param, ok := strings.CutSuffix(rest, ">")
	if !ok || param == "" || strings.ContainsAny(param, "<>,") {
		return "", false
	}
	return strings.TrimSpace(param), true
}

// Enum returns a declared enum by name
func (r *Registry) Enum(name string) (*models.EnumType, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Enums returns all declared enums sorted by name
func (r *Registry) Enums() []*models.EnumType {
	out := make([]*models.EnumType, 0, len(r.enums))
	for _, e := range r.enums {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WrapperTypes lists every declared wrapper followed by the generic enum
// wrapper of every enum, sorted by name
func (r *Registry) WrapperTypes() []models.WrapperType {
	seen := make(map[models.WrapperType]bool, len(r.wrappers)+len(r.enums))
	out := make([]models.WrapperType, 0, len(r.wrappers)+len(r.enums))
	for t := range r.wrappers {
		seen[t] = true
		out = append(out, t)
	}
	for name := range r.enums {
		t := r.EnumWrapper(name)
		if !seen[t] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EnumWrapper returns the generic enum wrapper type name for an enum
func (r *Registry) EnumWrapper(enum string) models.WrapperType {
	return models.WrapperType(r.enumGeneric + "<" + enum + ">")
}

// Merge returns a registry holding r's declarations overlaid by other's
func (r *Registry) Merge(other *Registry) *Registry {
	out := &Registry{
		enumGeneric: other.enumGeneric,
		enums:       make(map[string]*models.EnumType, len(r.enums)+len(other.enums)),
		wrappers:    make(map[models.WrapperType]wrapperDecl, len(r.wrappers)+len(other.wrappers)),
	}
	for k, v := range r.enums {
		out.enums[k] = v
	}
	for k, v := range other.enums {
		out.enums[k] = v
	}
	for k, v := range r.wrappers {
		out.wrappers[k] = v
	}
	for k, v := range other.wrappers {
		out.wrappers[k] = v
	}
	return out
}
