package models

import (
	"fmt"
	"sort"
)

// EnumMember is a single named enumerant
type EnumMember struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

// EnumType is an enumerant type: a fixed set of named integer values
// stored with an integer underlying kind.
type EnumType struct {
	Name       string        `json:"name" yaml:"name"`
	Underlying PrimitiveKind `json:"underlying" yaml:"underlying"`
	Members    []EnumMember  `json:"members" yaml:"members"`

	byName  map[string]int
	byValue map[int64]int
}

// NewEnumType builds an enum type and its lookup indexes.
// Duplicate names are rejected; duplicate values keep the first declared name.
func NewEnumType(name string, underlying PrimitiveKind, members []EnumMember) (*EnumType, error) {
	if underlying == "" {
		underlying = KindInt32
	}
	if !underlying.IsInteger() {
		return nil, fmt.Errorf("enum %s: underlying kind %s is not an integer kind", name, underlying)
	}

	e := &EnumType{
		Name:       name,
		Underlying: underlying,
		Members:    append([]EnumMember(nil), members...),
		byName:     make(map[string]int, len(members)),
		byValue:    make(map[int64]int, len(members)),
	}
	for i, m := range e.Members {
		if m.Name == "" {
			return nil, fmt.Errorf("enum %s: member %d has no name", name, i)
		}
		if _, dup := e.byName[m.Name]; dup {
			return nil, fmt.Errorf("enum %s: duplicate member %q", name, m.Name)
		}
		e.byName[m.Name] = i
		if _, seen := e.byValue[m.Value]; !seen {
			e.byValue[m.Value] = i
		}
	}
	return e, nil
}

// MustEnumType is NewEnumType for statically known tables
func MustEnumType(name string, underlying PrimitiveKind, members ...EnumMember) *EnumType {
	e, err := NewEnumType(name, underlying, members)
	if err != nil {
		panic(err)
	}
	return e
}

// ByName looks up a member by exact, case-sensitive name
func (e *EnumType) ByName(name string) (EnumMember, bool) {
	i, ok := e.byName[name]
	if !ok {
		return EnumMember{}, false
	}
	return e.Members[i], true
}

// ByValue looks up the member whose underlying value equals v
func (e *EnumType) ByValue(v int64) (EnumMember, bool) {
	i, ok := e.byValue[v]
	if !ok {
		return EnumMember{}, false
	}
	return e.Members[i], true
}

// Names returns member names sorted by value, for diagnostics
func (e *EnumType) Names() []string {
	sorted := append([]EnumMember(nil), e.Members...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })
	names := make([]string, len(sorted))
	for i, m := range sorted {
		names[i] = m.Name
	}
	return names
}
