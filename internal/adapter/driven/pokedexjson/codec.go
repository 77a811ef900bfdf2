// Package pokedexjson decodes and encodes the Pokédex JSON document format and
// implements the PokedexSource port for embedded and on-disk documents.
package pokedexjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ericfisherdev/pokedex/internal/domain/model"
	"github.com/ericfisherdev/pokedex/internal/domain/port/driven"
)

const (
	nameKey = "name"
	typeKey = "type"
)

// document is the top-level shape of a dataset file.
type document struct {
	Pokemon []json.RawMessage `json:"pokemon"`
}

// Decode reads a dataset document from r. Every entry must carry a non-empty
// string name. The type attribute may be a single string or an array of
// strings; a missing type yields an empty type set. All other attributes are
// preserved verbatim.
func Decode(r io.Reader) ([]model.Pokemon, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w: %w", driven.ErrInvalidDataset, err)
	}
	if doc.Pokemon == nil {
		return nil, fmt.Errorf("decode document: %w: missing %q array", driven.ErrInvalidDataset, "pokemon")
	}

	pokemon := make([]model.Pokemon, 0, len(doc.Pokemon))
	for i, raw := range doc.Pokemon {
		p, err := DecodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}
		pokemon = append(pokemon, p)
	}

	return pokemon, nil
}

// DecodeRecord decodes a single JSON object into a Pokemon.
func DecodeRecord(raw []byte) (model.Pokemon, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Pokemon{}, fmt.Errorf("%w: %w", driven.ErrInvalidDataset, err)
	}
	if fields == nil {
		return model.Pokemon{}, fmt.Errorf("%w: entry is null", driven.ErrInvalidDataset)
	}

	var name string
	if rawName, ok := fields[nameKey]; ok {
		if err := json.Unmarshal(rawName, &name); err != nil {
			return model.Pokemon{}, fmt.Errorf("%w: name: %w", driven.ErrInvalidDataset, err)
		}
	}
	if name == "" {
		return model.Pokemon{}, fmt.Errorf("%w: entry has no name", driven.ErrInvalidDataset)
	}

	types, err := decodeTypes(fields[typeKey])
	if err != nil {
		return model.Pokemon{}, fmt.Errorf("%w: %s: type: %w", driven.ErrInvalidDataset, name, err)
	}

	delete(fields, nameKey)
	delete(fields, typeKey)
	if len(fields) == 0 {
		fields = nil
	}

	return model.Pokemon{Name: name, Types: types, Attributes: fields}, nil
}

// decodeTypes accepts either "Fire" or ["Fire", "Flying"].
func decodeTypes(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, nil
	}

	if raw[0] == '"' {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}
