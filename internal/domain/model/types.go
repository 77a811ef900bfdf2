package model

import "slices"

// validTypes is the fixed type vocabulary in display order.
var validTypes = [...]string{
	"Bug", "Dark", "Dragon", "Electric", "Fairy", "Fighting",
	"Fire", "Flying", "Ghost", "Grass", "Ground", "Ice", "Normal", "Poison",
	"Psychic", "Rock", "Steel", "Water",
}

// ValidTypes returns a fresh copy of the type vocabulary so callers cannot
// mutate the shared list.
func ValidTypes() []string {
	out := make([]string, len(validTypes))
	copy(out, validTypes[:])
	return out
}

// IsValidType reports whether t is part of the type vocabulary.
func IsValidType(t string) bool {
	return slices.Contains(validTypes[:], t)
}
