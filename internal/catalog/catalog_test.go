package catalog

import (
	"context"
	"errors"
	"testing"
)

// fakeFetcher serves canned content and counts fetches
type fakeFetcher struct {
	content map[string]string
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, themeID string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.content[themeID]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(raw), nil
}

const fantasyJSON = `{
	"theme": {"id": "fantasy", "name": "Fantasy Kingdom", "icon": "castle", "description": "Magical words"},
	"levels": [
		{"level": 1, "name": "The Enchanted Forest", "description": "Easy words", "stars_required": 0,
		 "words": [{"word": "cat", "sentence": "The cat sat on the mat."}]}
	]
}`

func TestLoadTheme(t *testing.T) {
	t.Run("loads and parses theme content", func(t *testing.T) {
		fetcher := &fakeFetcher{content: map[string]string{"fantasy": fantasyJSON}}
		c := New(fetcher)

		list, err := c.LoadTheme(context.Background(), "fantasy")
		if err != nil {
			t.Fatalf("LoadTheme() error: %v", err)
		}
		if list.Theme.ID != "fantasy" || list.Theme.Name != "Fantasy Kingdom" {
			t.Errorf("theme = %+v, want fantasy metadata", list.Theme)
		}
		if len(list.Levels) != 1 || len(list.Levels[0].Words) != 1 {
			t.Fatalf("levels = %+v, want one level with one word", list.Levels)
		}
		if list.Levels[0].Words[0].Word != "cat" {
			t.Errorf("word = %q, want cat", list.Levels[0].Words[0].Word)
		}
	})

	t.Run("caches after first load", func(t *testing.T) {
		fetcher := &fakeFetcher{content: map[string]string{"fantasy": fantasyJSON}}
		c := New(fetcher)

		if _, err := c.LoadTheme(context.Background(), "fantasy"); err != nil {
			t.Fatalf("first LoadTheme() error: %v", err)
		}
		if _, err := c.LoadTheme(context.Background(), "fantasy"); err != nil {
			t.Fatalf("second LoadTheme() error: %v", err)
		}
		if fetcher.calls != 1 {
			t.Errorf("fetcher called %d times, want 1", fetcher.calls)
		}
	})

	t.Run("clear cache forces re-fetch", func(t *testing.T) {
		fetcher := &fakeFetcher{content: map[string]string{"fantasy": fantasyJSON}}
		c := New(fetcher)

		c.LoadTheme(context.Background(), "fantasy")
		c.ClearCache()
		c.LoadTheme(context.Background(), "fantasy")

		if fetcher.calls != 2 {
			t.Errorf("fetcher called %d times after ClearCache, want 2", fetcher.calls)
		}
	})

	t.Run("fetch failure returns ContentLoadError", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("network down")}
		c := New(fetcher)

		_, err := c.LoadTheme(context.Background(), "fantasy")
		var loadErr *ContentLoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("error = %v, want *ContentLoadError", err)
		}
		if loadErr.ThemeID != "fantasy" {
			t.Errorf("ThemeID = %q, want fantasy", loadErr.ThemeID)
		}
	})

	t.Run("invalid content fails validation", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{name: "not json", content: "<html>oops</html>"},
			{name: "missing theme", content: `{"levels": [{"level": 1, "words": [{"word": "cat", "sentence": "x"}]}]}`},
			{name: "no levels", content: `{"theme": {"id": "fantasy"}, "levels": []}`},
			{name: "level with no words", content: `{"theme": {"id": "fantasy"}, "levels": [{"level": 1, "words": []}]}`},
			{name: "empty word token", content: `{"theme": {"id": "fantasy"}, "levels": [{"level": 1, "words": [{"word": "", "sentence": "x"}]}]}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				fetcher := &fakeFetcher{content: map[string]string{"fantasy": tt.content}}
				c := New(fetcher)

				_, err := c.LoadTheme(context.Background(), "fantasy")
				var loadErr *ContentLoadError
				if !errors.As(err, &loadErr) {
					t.Fatalf("error = %v, want *ContentLoadError", err)
				}
			})
		}
	})
}

func TestListThemeIDs(t *testing.T) {
	c := New(&fakeFetcher{})

	ids := c.ListThemeIDs()
	if len(ids) == 0 {
		t.Fatal("ListThemeIDs() returned no ids")
	}

	// The returned slice is a copy; mutating it must not affect the catalog
	ids[0] = "mutated"
	if c.ListThemeIDs()[0] == "mutated" {
		t.Error("ListThemeIDs() should return a copy")
	}
}
