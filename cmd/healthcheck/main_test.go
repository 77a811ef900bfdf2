package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "127.0.0.1:8000"},
		{raw: "garbage", want: "127.0.0.1:8000"},
		{raw: "0.0.0.0:9000", want: "127.0.0.1:9000"},
		{raw: ":9000", want: "127.0.0.1:9000"},
		{raw: "10.0.0.5:8000", want: "10.0.0.5:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}

func TestCheck(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/health" || gotAuth != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	t.Setenv("POKEDEX_LISTEN_ADDR", strings.TrimPrefix(server.URL, "http://"))

	t.Setenv("POKEDEX_API_TOKEN", "secret")
	assert.Equal(t, 0, check())
	assert.Equal(t, "Bearer secret", gotAuth)

	t.Setenv("POKEDEX_API_TOKEN", "wrong")
	assert.Equal(t, 1, check())
}
