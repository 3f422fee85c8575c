package topic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const sampleCatalog = `{
	"version": "14.17.1",
	"data": {
		"Ahri":  {"id": "Ahri",  "name": "Ahri",  "title": "the Nine-Tailed Fox", "image": {"full": "Ahri.png"}},
		"Garen": {"id": "Garen", "name": "Garen", "title": "The Might of Demacia", "image": {"full": "Garen.png"}}
	}
}`

func TestCatalogProvider_FetchAndParse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	provider := NewCatalogProvider(server.URL+"/cdn/14.17.1/data/en_US/champion.json",
		time.Second, time.Hour)

	pool, err := provider.Topics(context.Background())
	if err != nil {
		t.Fatalf("Topics failed: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("Expected 2 topics, got %d", len(pool))
	}

	byKey := map[string]Topic{}
	for _, entry := range pool {
		byKey[entry.Key] = entry
	}
	ahri, ok := byKey["Ahri"]
	if !ok {
		t.Fatal("Expected Ahri in the pool")
	}
	if ahri.Title != "the Nine-Tailed Fox" {
		t.Errorf("Unexpected title %q", ahri.Title)
	}
	want := server.URL + "/cdn/14.17.1/img/champion/Ahri.png"
	if ahri.ImageURL != want {
		t.Errorf("Expected image URL %q, got %q", want, ahri.ImageURL)
	}
}

func TestCatalogProvider_CachesPool(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	provider := NewCatalogProvider(server.URL, time.Second, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := provider.Topics(context.Background()); err != nil {
			t.Fatalf("Topics failed: %v", err)
		}
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("Expected a single upstream fetch, got %d", got)
	}
}

func TestCatalogProvider_ServesStaleCacheOnFailure(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	// Zero TTL forces a refresh attempt on every call.
	provider := NewCatalogProvider(server.URL, time.Second, 0)

	if _, err := provider.Topics(context.Background()); err != nil {
		t.Fatalf("Initial fetch failed: %v", err)
	}

	fail.Store(true)
	pool, err := provider.Topics(context.Background())
	if err != nil {
		t.Fatalf("Expected stale cache, got error: %v", err)
	}
	if len(pool) != 2 {
		t.Errorf("Stale cache should still hold 2 topics, got %d", len(pool))
	}
}

func TestCatalogProvider_ErrorWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewCatalogProvider(server.URL, time.Second, time.Hour)
	if _, err := provider.Topics(context.Background()); err == nil {
		t.Error("Expected an error when the catalog is unreachable and no cache exists")
	}
}

func TestFallbackPool(t *testing.T) {
	pool := FallbackPool()
	if len(pool) == 0 {
		t.Fatal("Fallback pool must not be empty")
	}
	for _, entry := range pool {
		if entry.Name == "" {
			t.Errorf("Fallback entry %q has no name", entry.Key)
		}
	}

	// Callers get a copy, not the shared backing array.
	pool[0].Name = "mutated"
	if FallbackPool()[0].Name == "mutated" {
		t.Error("FallbackPool should return a fresh copy")
	}
}

func TestImageURL(t *testing.T) {
	got := imageURL("https://example.com/cdn/14.1.1/data/en_US/champion.json", "14.1.1", "Ahri.png")
	want := "https://example.com/cdn/14.1.1/img/champion/Ahri.png"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if imageURL("https://example.com/champion.json", "14.1.1", "Ahri.png") != "" {
		t.Error("Catalog URL without /cdn/ should produce no image URL")
	}
}
