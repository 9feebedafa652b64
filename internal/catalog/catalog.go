// Package catalog loads and caches themed word lists
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"spellstar/internal/models"
)

// ThemeIDs enumerates the themes shipped with the game. The list is
// configuration, not derived from what has been loaded.
var ThemeIDs = []string{"fantasy", "scifi"}

// ContentLoadError reports a theme whose content could not be fetched or
// failed validation. Callers surface it to the player rather than retrying.
type ContentLoadError struct {
	ThemeID string
	Err     error
}

func (e *ContentLoadError) Error() string {
	return fmt.Sprintf("failed to load words for theme %q: %v", e.ThemeID, e.Err)
}

func (e *ContentLoadError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves raw word-list content for a theme
type Fetcher interface {
	Fetch(ctx context.Context, themeID string) ([]byte, error)
}

// Catalog is a read-only lookup of themes to levels to words, cached
// in memory after first load
type Catalog struct {
	fetcher  Fetcher
	themeIDs []string

	mu    sync.Mutex
	cache map[string]*models.WordList
}

// New creates a catalog over a content fetcher
func New(fetcher Fetcher) *Catalog {
	return &Catalog{
		fetcher:  fetcher,
		themeIDs: ThemeIDs,
		cache:    make(map[string]*models.WordList),
	}
}

// ListThemeIDs returns the configured theme ids
func (c *Catalog) ListThemeIDs() []string {
	ids := make([]string, len(c.themeIDs))
	copy(ids, c.themeIDs)
	return ids
}

// LoadTheme returns a theme's word list, fetching and caching it on first
// use. The returned list is shared and must be treated as read-only.
func (c *Catalog) LoadTheme(ctx context.Context, themeID string) (*models.WordList, error) {
	c.mu.Lock()
	if cached, ok := c.cache[themeID]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	raw, err := c.fetcher.Fetch(ctx, themeID)
	if err != nil {
		return nil, &ContentLoadError{ThemeID: themeID, Err: err}
	}

	var list models.WordList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &ContentLoadError{ThemeID: themeID, Err: fmt.Errorf("invalid word data: %w", err)}
	}

	if err := validate(&list); err != nil {
		return nil, &ContentLoadError{ThemeID: themeID, Err: err}
	}

	c.mu.Lock()
	c.cache[themeID] = &list
	c.mu.Unlock()

	return &list, nil
}

// ClearCache drops cached word lists, forcing a re-fetch on next load
func (c *Catalog) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]*models.WordList)
	c.mu.Unlock()
}

// validate checks the structural invariants of a word list: a theme,
// at least one level, no empty levels, and no empty word tokens
func validate(list *models.WordList) error {
	if list.Theme == nil {
		return fmt.Errorf("word data has no theme")
	}
	if len(list.Levels) == 0 {
		return fmt.Errorf("word data has no levels")
	}
	for _, level := range list.Levels {
		if len(level.Words) == 0 {
			return fmt.Errorf("level %d has no words", level.Level)
		}
		for i, word := range level.Words {
			if word.Word == "" {
				return fmt.Errorf("level %d word %d is empty", level.Level, i+1)
			}
		}
	}
	return nil
}

// FileFetcher reads theme content from JSON files in a directory
type FileFetcher struct {
	dir string
}

// NewFileFetcher creates a fetcher reading {dir}/{themeId}.json
func NewFileFetcher(dir string) *FileFetcher {
	return &FileFetcher{dir: dir}
}

func (f *FileFetcher) Fetch(ctx context.Context, themeID string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.dir, themeID+".json"))
}

// HTTPFetcher retrieves theme content from a base URL serving
// {base}/words/{themeId}.json
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for a remote content host
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, themeID string) ([]byte, error) {
	url := fmt.Sprintf("%s/words/%s.json", f.baseURL, themeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch word data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
