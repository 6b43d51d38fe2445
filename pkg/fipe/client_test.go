package fipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearhead/pkg/gateway"
)

type failingTokens struct{ calls atomic.Int32 }

func (f *failingTokens) IDToken(context.Context) (string, error) {
	f.calls.Add(1)
	return "should-not-be-used", nil
}

func newCatalogServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cars/brands", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Option{
			{Code: "21", Name: "Fiat"},
			{Code: "23", Name: "GM - Chevrolet"},
			{Code: "59", Name: "VW - VolksWagen"},
			{Code: "13", Name: "Citroën"},
		})
	})
	mux.HandleFunc("/cars/brands/59/models", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Option{
			{Code: "1", Name: "Gol 1.0"},
			{Code: "2", Name: "Golf GTI"},
			{Code: "3", Name: "Polo"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, hits *atomic.Int32) (*Client, *failingTokens) {
	srv := newCatalogServer(t, hits)
	tokens := &failingTokens{}
	api := gateway.NewClient("http://backend.invalid", tokens, 5*time.Second)
	return NewClient(srv.URL+"/cars", api, 0), tokens
}

func TestBrands_CachedAndAnonymous(t *testing.T) {
	var hits atomic.Int32
	c, tokens := newTestClient(t, &hits)

	first, err := c.Brands(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 4)

	second, err := c.Brands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int32(1), hits.Load())
	assert.Zero(t, tokens.calls.Load())
}

func TestSearchBrands(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, &hits)

	got, err := c.SearchBrands(context.Background(), "citroen")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "13", got[0].Code)
}

func TestSearchModels_ResolvesBrandByName(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, &hits)

	got, err := c.SearchModels(context.Background(), "volkswagen", "gol")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gol 1.0", got[0].Name)

	byCode, err := c.SearchModels(context.Background(), "59", "")
	require.NoError(t, err)
	assert.Len(t, byCode, 3)
}

func TestModels_Errors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, &hits)

	_, err := c.Models(context.Background(), " ")
	assert.Error(t, err)

	_, err = c.Models(context.Background(), "999")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrBackend)
	assert.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
}

func TestFetch_RespectsContextWhileRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := newCatalogServer(t, &hits)
	api := gateway.NewClient(srv.URL, nil, 5*time.Second)
	c := NewClient(srv.URL+"/cars", api, 0.001)

	_, err := c.Brands(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Models(ctx, "59")
	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
