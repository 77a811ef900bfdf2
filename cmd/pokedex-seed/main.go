// Command pokedex-seed loads a Pokédex JSON document into a SQLite database
// so the server can start with POKEDEX_DATASET_SOURCE=sqlite.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericfisherdev/pokedex/internal/adapter/driven/pokedexjson"
	sqliteadapter "github.com/ericfisherdev/pokedex/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/pokedex/internal/domain/model"
	"github.com/ericfisherdev/pokedex/internal/domain/port/driven"
)

func main() {
	in := flag.String("in", "", "path to a pokedex JSON document; empty uses the bundled dataset")
	dbPath := flag.String("db", "pokedex.db", "path to the SQLite database to write")
	flag.Parse()

	if err := run(*in, *dbPath); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(in, dbPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src driven.PokedexSource = pokedexjson.NewEmbeddedSource()
	if in != "" {
		src = pokedexjson.NewFileSource(in)
	}

	pokemon, err := src.Load(ctx)
	if err != nil {
		return err
	}

	warnUnknownTypes(pokemon)

	db, err := sqliteadapter.NewDB(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	var writer driven.PokedexWriter = sqliteadapter.NewPokemonRepo(db)
	if err := writer.ReplaceAll(ctx, pokemon); err != nil {
		return err
	}

	if err := db.Finalize(ctx); err != nil {
		return err
	}

	slog.Info("dataset seeded", "db_path", dbPath, "count", len(pokemon))
	return nil
}

// warnUnknownTypes logs entries whose types fall outside the vocabulary. They
// are still seeded; the server will simply never match them by type.
func warnUnknownTypes(pokemon []model.Pokemon) {
	for _, p := range pokemon {
		for _, t := range p.Types {
			if !model.IsValidType(t) {
				slog.Warn("type not in vocabulary", "pokemon", p.Name, "type", t)
			}
		}
	}
}
