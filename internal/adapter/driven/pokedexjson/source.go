package pokedexjson

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/ericfisherdev/pokedex/internal/domain/model"
	"github.com/ericfisherdev/pokedex/internal/domain/port/driven"
)

//go:embed data/pokedex.json
var embeddedDataset []byte

// Compile-time interface satisfaction checks.
var (
	_ driven.PokedexSource = (*EmbeddedSource)(nil)
	_ driven.PokedexSource = (*FileSource)(nil)
)

// EmbeddedSource serves the dataset bundled into the binary.
type EmbeddedSource struct{}

// NewEmbeddedSource creates an EmbeddedSource.
func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{}
}

// Load decodes the bundled dataset.
func (s *EmbeddedSource) Load(ctx context.Context) ([]model.Pokemon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pokemon, err := Decode(bytes.NewReader(embeddedDataset))
	if err != nil {
		return nil, fmt.Errorf("load embedded dataset: %w", err)
	}
	return pokemon, nil
}

// FileSource reads the dataset from a JSON file on disk.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load opens and decodes the file.
func (s *FileSource) Load(ctx context.Context) ([]model.Pokemon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", s.path, err)
	}
	defer f.Close()

	pokemon, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", s.path, err)
	}
	return pokemon, nil
}
