package application

import (
	"slices"
	"strings"

	"github.com/ericfisherdev/pokedex/internal/domain/model"
)

// PokedexService answers read-only queries over a dataset that is fixed for
// the lifetime of the service. It is safe for concurrent use because nothing
// it holds is ever mutated after construction.
type PokedexService struct {
	pokemon []model.Pokemon
}

// NewPokedexService creates a PokedexService over the given dataset. The slice
// is cloned so later changes by the caller do not leak into query results.
func NewPokedexService(pokemon []model.Pokemon) *PokedexService {
	dataset := make([]model.Pokemon, len(pokemon))
	copy(dataset, pokemon)

	return &PokedexService{pokemon: dataset}
}

// ListTypes returns the type vocabulary in its fixed order.
func (s *PokedexService) ListTypes() []string {
	return model.ValidTypes()
}

// ListPokemon returns the entries matching filter in original dataset order.
// The name constraint is a case-insensitive substring match; the type
// constraint is an exact, case-sensitive membership test. The result is never
// nil.
func (s *PokedexService) ListPokemon(filter model.PokemonFilter) []model.Pokemon {
	if filter.IsZero() {
		return slices.Clone(s.pokemon)
	}

	needle := strings.ToLower(filter.Name)

	result := make([]model.Pokemon, 0, len(s.pokemon))
	for _, p := range s.pokemon {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if filter.Type != "" && !p.HasType(filter.Type) {
			continue
		}
		result = append(result, p)
	}

	return result
}

// Count returns the number of entries in the dataset.
func (s *PokedexService) Count() int {
	return len(s.pokemon)
}
