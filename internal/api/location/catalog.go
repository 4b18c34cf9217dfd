package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/neptou/go-travel-assistant/internal/types"
)

// Catalog is the in-memory structured place catalog. It is built once at
// startup and read-only afterwards, so lookups need no locking.
type Catalog struct {
	places []types.Place
	byName map[string]*types.Place
}

// NewCatalog indexes the given places by normalized name and alias. When two
// entries normalize to the same key the earlier one wins.
func NewCatalog(places []types.Place) *Catalog {
	c := &Catalog{
		places: places,
		byName: make(map[string]*types.Place, len(places)*2),
	}
	for i := range c.places {
		p := &c.places[i]
		keys := append([]string{p.Name}, p.Aliases...)
		for _, key := range keys {
			norm := normalizeName(key)
			if norm == "" {
				continue
			}
			if _, taken := c.byName[norm]; !taken {
				c.byName[norm] = p
			}
		}
	}
	return c
}

// Lookup finds a catalog entry by exact normalized name or alias.
func (c *Catalog) Lookup(name string) (*types.Place, bool) {
	p, ok := c.byName[normalizeName(name)]
	return p, ok
}

// Filter returns the places matching the given category and area, either of
// which may be empty to match all. Matching is case-insensitive.
func (c *Catalog) Filter(category, area string) []types.Place {
	out := make([]types.Place, 0, len(c.places))
	for _, p := range c.places {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if area != "" && !strings.EqualFold(p.Area, area) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Catalog) Len() int { return len(c.places) }

// normalizeName lowercases and collapses internal whitespace, so "  Boudha
// Stupa " and "boudha stupa" resolve to the same entry.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// LoadCatalogFile reads the place catalog from a JSON file. A missing file
// degrades to an empty catalog so the service can run without structured
// place data.
func LoadCatalogFile(ctx context.Context, path string, logger *slog.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WarnContext(ctx, "Place catalog file not found, continuing with empty catalog",
				slog.String("path", path))
			return NewCatalog(nil), nil
		}
		return nil, fmt.Errorf("failed to read place catalog %s: %w", path, err)
	}

	var places []types.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("failed to parse place catalog %s: %w", path, err)
	}

	logger.DebugContext(ctx, "Loaded place catalog", slog.Int("entries", len(places)))
	return NewCatalog(places), nil
}
