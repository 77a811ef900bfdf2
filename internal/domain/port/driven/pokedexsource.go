package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/pokedex/internal/domain/model"
)

// ErrInvalidDataset indicates the source document could not be interpreted as
// a Pokédex dataset.
var ErrInvalidDataset = errors.New("invalid pokedex dataset")

// PokedexSource defines the driven port that supplies the dataset. Load is
// called once at startup; the returned slice is treated as immutable.
type PokedexSource interface {
	Load(ctx context.Context) ([]model.Pokemon, error)
}

// PokedexWriter defines the driven port used by offline tooling to replace a
// stored dataset in full. The API server never writes.
type PokedexWriter interface {
	ReplaceAll(ctx context.Context, pokemon []model.Pokemon) error
}
