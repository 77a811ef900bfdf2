package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/pokedex/internal/domain/model"
	"github.com/ericfisherdev/pokedex/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.PokedexSource = (*PokemonRepo)(nil)
	_ driven.PokedexWriter = (*PokemonRepo)(nil)
)

// PokemonRepo is the SQLite implementation of the PokedexSource and
// PokedexWriter port interfaces. Entry order is the insertion position.
type PokemonRepo struct {
	db *DB
}

// NewPokemonRepo creates a new PokemonRepo backed by the given DB.
func NewPokemonRepo(db *DB) *PokemonRepo {
	return &PokemonRepo{db: db}
}

// Load returns every stored entry in position order, with each entry's types
// in their stored order.
func (r *PokemonRepo) Load(ctx context.Context) ([]model.Pokemon, error) {
	const pokemonQuery = `SELECT position, name, attributes FROM pokemon ORDER BY position`

	rows, err := r.db.Reader.QueryContext(ctx, pokemonQuery)
	if err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}
	defer rows.Close()

	pokemon := []model.Pokemon{}
	index := make(map[int64]int)

	for rows.Next() {
		var (
			position   int64
			p          model.Pokemon
			attributes string
		)
		if err := rows.Scan(&position, &p.Name, &attributes); err != nil {
			return nil, fmt.Errorf("scan pokemon: %w", err)
		}

		if err := json.Unmarshal([]byte(attributes), &p.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes for %s: %w", p.Name, err)
		}
		if len(p.Attributes) == 0 {
			p.Attributes = nil
		}
		p.Types = []string{}

		index[position] = len(pokemon)
		pokemon = append(pokemon, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pokemon: %w", err)
	}

	if err := r.loadTypes(ctx, pokemon, index); err != nil {
		return nil, err
	}

	return pokemon, nil
}

func (r *PokemonRepo) loadTypes(ctx context.Context, pokemon []model.Pokemon, index map[int64]int) error {
	const typesQuery = `SELECT pokemon_position, type_name FROM pokemon_types ORDER BY pokemon_position, ordinal`

	rows, err := r.db.Reader.QueryContext(ctx, typesQuery)
	if err != nil {
		return fmt.Errorf("list pokemon types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			position int64
			typeName string
		)
		if err := rows.Scan(&position, &typeName); err != nil {
			return fmt.Errorf("scan pokemon type: %w", err)
		}

		i, ok := index[position]
		if !ok {
			continue
		}
		pokemon[i].Types = append(pokemon[i].Types, typeName)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pokemon types: %w", err)
	}

	return nil
}

// ReplaceAll swaps the stored dataset for pokemon in a single transaction.
func (r *PokemonRepo) ReplaceAll(ctx context.Context, pokemon []model.Pokemon) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `DELETE FROM pokemon_types`); err != nil {
		return fmt.Errorf("delete pokemon types: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pokemon`); err != nil {
		return fmt.Errorf("delete pokemon: %w", err)
	}

	const insertPokemon = `INSERT INTO pokemon (position, name, attributes) VALUES (?, ?, ?)`
	const insertType = `INSERT INTO pokemon_types (pokemon_position, ordinal, type_name) VALUES (?, ?, ?)`

	for i, p := range pokemon {
		attributes := []byte("{}")
		if len(p.Attributes) > 0 {
			attributes, err = json.Marshal(p.Attributes)
			if err != nil {
				return fmt.Errorf("encode attributes for %s: %w", p.Name, err)
			}
		}

		position := i + 1
		if _, err := tx.ExecContext(ctx, insertPokemon, position, p.Name, string(attributes)); err != nil {
			return fmt.Errorf("insert pokemon %s: %w", p.Name, err)
		}

		for ordinal, typeName := range p.Types {
			if _, err := tx.ExecContext(ctx, insertType, position, ordinal, typeName); err != nil {
				return fmt.Errorf("insert type %s for pokemon %s: %w", typeName, p.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pokemon: %w", err)
	}

	return nil
}
