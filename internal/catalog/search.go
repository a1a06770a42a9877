package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domainerrors "github.com/gamevault/gamevault-server/internal/errors"
	"github.com/gamevault/gamevault-server/internal/domain"
)

const searchMocks = 3

// Search finds games matching query. Store search comes first, then a scan of the
// cached corpus, then placeholder results. Only an empty query or an internal
// fault is an error.
func (c *Catalog) Search(ctx context.Context, query string) (games []*domain.Game, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.Validation("Search query is required")
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("search panicked", "query", query, "panic", fmt.Sprint(r))
			games, err = nil, domainerrors.Internal("Search failed")
		}
	}()

	hits, upstreamErr := c.fetch.Search(ctx, query)
	if upstreamErr != nil {
		c.logger.Info("store search unavailable, scanning cache", "query", query, "error", upstreamErr)
	}
	if len(hits) > 0 {
		return hits, nil
	}

	if local := scanCorpus(c.read(ctx).All(), query); len(local) > 0 {
		return local, nil
	}

	return c.searchMocks(query), nil
}

// scanCorpus keeps records whose title, description, developer, publisher, or
// genres contain query, ignoring case and accents.
func scanCorpus(corpus []*domain.Game, query string) []*domain.Game {
	needle := foldText(query)

	out := make([]*domain.Game, 0)
	for _, g := range corpus {
		haystack := []string{
			g.Title,
			g.Description,
			g.Developer,
			g.Publisher,
			strings.Join(g.Genres, " "),
		}
		for _, field := range haystack {
			if strings.Contains(foldText(field), needle) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func (c *Catalog) searchMocks(query string) []*domain.Game {
	out := c.mocks.Mocks(searchMocks, "Search")
	for i, g := range out {
		g.Title = query + " - Game " + strconv.Itoa(i+1)
	}
	return out
}
