package model

import (
	"encoding/json"
	"slices"
)

// Pokemon is one Pokédex entry. Only Name and Types take part in filtering;
// every other attribute from the source document is carried in Attributes and
// written back verbatim.
type Pokemon struct {
	Name       string
	Types      []string
	Attributes map[string]json.RawMessage
}

// HasType reports whether t is one of the entry's types. The comparison is
// exact and case-sensitive.
func (p Pokemon) HasType(t string) bool {
	return slices.Contains(p.Types, t)
}

// PokemonFilter holds the optional query constraints for listing entries.
// An empty field places no constraint.
type PokemonFilter struct {
	Name string
	Type string
}

// IsZero reports whether the filter has no constraints.
func (f PokemonFilter) IsZero() bool {
	return f.Name == "" && f.Type == ""
}
