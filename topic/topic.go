// topic/topic.go
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/impostor/logger"
)

// Topic is one entry of the secret-topic pool handed to investigators.
type Topic struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

// Provider supplies the topic pool. Implementations may fail; callers fall
// back to FallbackPool.
type Provider interface {
	Topics(ctx context.Context) ([]Topic, error)
}

// catalogResponse mirrors the Data Dragon champion.json layout.
type catalogResponse struct {
	Version string `json:"version"`
	Data    map[string]struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Title string `json:"title"`
		Image struct {
			Full string `json:"full"`
		} `json:"image"`
	} `json:"data"`
}

// CatalogProvider fetches the champion catalog over HTTP and caches the
// parsed pool.
type CatalogProvider struct {
	url      string
	client   *http.Client
	cacheTTL time.Duration

	mutex     sync.Mutex
	cached    []Topic
	fetchedAt time.Time
}

func NewCatalogProvider(url string, fetchTimeout, cacheTTL time.Duration) *CatalogProvider {
	return &CatalogProvider{
		url:      url,
		client:   &http.Client{Timeout: fetchTimeout},
		cacheTTL: cacheTTL,
	}
}

func (p *CatalogProvider) Topics(ctx context.Context) ([]Topic, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.cached != nil && time.Since(p.fetchedAt) < p.cacheTTL {
		return p.cached, nil
	}

	pool, err := p.fetch(ctx)
	if err != nil {
		// A stale cache beats the static fallback.
		if p.cached != nil {
			logger.Log.Warnf("Topic catalog refresh failed, serving stale cache: %v", err)
			return p.cached, nil
		}
		return nil, err
	}

	p.cached = pool
	p.fetchedAt = time.Now()
	return pool, nil
}

func (p *CatalogProvider) fetch(ctx context.Context) ([]Topic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topic catalog returned status %d", resp.StatusCode)
	}

	var catalog catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, err
	}
	if len(catalog.Data) == 0 {
		return nil, fmt.Errorf("topic catalog is empty")
	}

	pool := make([]Topic, 0, len(catalog.Data))
	for key, entry := range catalog.Data {
		topic := Topic{
			Key:   key,
			Name:  entry.Name,
			Title: entry.Title,
		}
		if topic.Name == "" {
			topic.Name = key
		}
		if entry.Image.Full != "" && catalog.Version != "" {
			topic.ImageURL = imageURL(p.url, catalog.Version, entry.Image.Full)
		}
		pool = append(pool, topic)
	}
	return pool, nil
}

// imageURL rebuilds the CDN image path next to the catalog URL.
func imageURL(catalogURL, version, file string) string {
	idx := strings.Index(catalogURL, "/cdn/")
	if idx < 0 {
		return ""
	}
	return fmt.Sprintf("%s/cdn/%s/img/champion/%s", catalogURL[:idx], version, file)
}
