// Package httphandler implements the REST API driving adapter: the bearer
// token gate, the read-only Pokédex routes, and their middleware.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/pokedex/internal/application"
	"github.com/ericfisherdev/pokedex/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	pokedexSvc *application.PokedexService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(pokedexSvc *application.PokedexService, logger *slog.Logger) *Handler {
	return &Handler{
		pokedexSvc: pokedexSvc,
		logger:     logger,
	}
}

// RegisterRoutes registers all API routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /types", h.ListTypes)
	mux.HandleFunc("GET /pokemon", h.ListPokemon)
	mux.HandleFunc("GET /health", h.Health)
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with the full middleware chain.
func NewServeMux(h *Handler, opts MiddlewareOptions) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)

	return ApplyMiddleware(mux, opts)
}

// ListTypes returns the type vocabulary in its fixed order.
func (h *Handler) ListTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.pokedexSvc.ListTypes())
}

// ListPokemon returns the entries matching the optional name and type query
// parameters. An empty parameter is treated as absent; when a parameter is
// repeated only its first value is used.
func (h *Handler) ListPokemon(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := model.PokemonFilter{
		Name: query.Get("name"),
		Type: query.Get("type"),
	}

	pokemon := h.pokedexSvc.ListPokemon(filter)

	resp := make([]PokemonResponse, 0, len(pokemon))
	for _, p := range pokemon {
		pr, err := toPokemonResponse(p)
		if err != nil {
			h.logger.Error("failed to encode pokemon", "name", p.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp = append(resp, pr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response including the dataset size.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Pokemon: h.pokedexSvc.Count(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}
