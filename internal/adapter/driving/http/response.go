package httphandler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ericfisherdev/pokedex/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Error is either a plain
// message or an errorDetail object.
type errorResponse struct {
	Error any `json:"error"`
}

// errorDetail is the object form of an error, used for the production 500 body.
type errorDetail struct {
	Message string `json:"message"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Pokemon int    `json:"pokemon"`
	Time    string `json:"time"`
}

// PokemonResponse is the JSON object for one entry: its pass-through
// attributes plus name and type. Types are always written as an array.
type PokemonResponse map[string]json.RawMessage

// toPokemonResponse converts a domain Pokemon to its JSON response representation.
func toPokemonResponse(p model.Pokemon) (PokemonResponse, error) {
	resp := make(PokemonResponse, len(p.Attributes)+2)
	for k, v := range p.Attributes {
		resp[k] = v
	}

	name, err := json.Marshal(p.Name)
	if err != nil {
		return nil, fmt.Errorf("encode name: %w", err)
	}
	resp["name"] = name

	types := p.Types
	if types == nil {
		types = []string{}
	}
	typeJSON, err := json.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("encode type of %s: %w", p.Name, err)
	}
	resp["type"] = typeJSON

	return resp, nil
}
