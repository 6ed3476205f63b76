package equivalence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/infrastructure/config"
)

func TestHTTPSourceLoad(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/equivalences" {
			http.NotFound(w, r)
			return
		}
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"equivalences": [
			{"ingredient_name": "oeuf", "to_quantity": 50, "to_unit": "g"},
			{"ingredient_name": "citron", "to_quantity": 0.12, "to_unit": "kg"}
		]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(config.EquivalenceConfig{URL: srv.URL + "/", APIKey: "secret", Timeout: time.Second})
	eqs, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(eqs) != 2 || eqs[0].IngredientName != "oeuf" || eqs[1].ToUnit != "kg" {
		t.Errorf("Load() = %+v", eqs)
	}
	if got := auth.Load(); got != "Bearer secret" {
		t.Errorf("Authorization = %v", got)
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"bad json", http.StatusOK, `{"equivalences": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			src := NewHTTPSource(config.EquivalenceConfig{URL: srv.URL, Timeout: time.Second})
			if _, err := src.Load(context.Background()); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

// 經由 EquivalenceCache 使用 HTTP 來源
func TestHTTPSourceFeedsCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"equivalences": [{"ingredient_name": "oeuf", "to_quantity": 50, "to_unit": "g"}]}`))
	}))
	defer srv.Close()

	loader, err := NewLoader(config.EquivalenceConfig{Source: "http", URL: srv.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	cache := pricing.NewEquivalenceCache(loader, time.Hour, nil)
	grams, ok := cache.Resolve(context.Background(), "oeufs")
	if !ok || grams != 50 {
		t.Errorf("Resolve() = %v, %v", grams, ok)
	}
	cache.Resolve(context.Background(), "oeuf")
	if calls.Load() != 1 {
		t.Errorf("source called %d times, want 1 within ttl", calls.Load())
	}
}

type staticLister []pricing.Equivalence

func (l staticLister) ListEquivalences(ctx context.Context) ([]pricing.Equivalence, error) {
	return l, nil
}

func TestNewLoader(t *testing.T) {
	store := staticLister{{IngredientName: "oeuf", ToQuantity: 50, ToUnit: "g"}}

	loader, err := NewLoader(config.EquivalenceConfig{Source: "store"}, store)
	if err != nil || loader == nil {
		t.Fatalf("NewLoader(store) nil = %t, err = %v", loader == nil, err)
	}
	eqs, _ := loader(context.Background())
	if len(eqs) != 1 {
		t.Errorf("store loader = %+v", eqs)
	}

	if loader, err := NewLoader(config.EquivalenceConfig{Source: "none"}, store); err != nil || loader != nil {
		t.Errorf("NewLoader(none) nil = %t, err = %v", loader == nil, err)
	}
	for _, cfg := range []config.EquivalenceConfig{
		{Source: "http"},
		{Source: "ftp"},
		{Source: "store"},
	} {
		var lister Lister
		if cfg.Source != "store" {
			lister = store
		}
		if _, err := NewLoader(cfg, lister); err == nil {
			t.Errorf("NewLoader(%+v) should fail", cfg)
		}
	}
}
