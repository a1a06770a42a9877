package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/logger"
)

// batchSize bounds how many documents go into one Bleve batch.
const batchSize = 500

// SuggestionIndex wraps an in-memory Bleve index of catalog records.
//
// Thread safety: all public methods are safe for concurrent use. Rebuild
// builds the replacement off to the side and swaps it in under the write lock.
type SuggestionIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// Options configures the suggestion index.
type Options struct {
	Logger *slog.Logger // Uses a discard logger if nil
}

// NewSuggestionIndex creates an empty in-memory index.
func NewSuggestionIndex(opts Options) (*SuggestionIndex, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SuggestionIndex{index: index, logger: log}, nil
}

// Close releases the index.
func (s *SuggestionIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// DocumentCount returns the number of indexed records.
func (s *SuggestionIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with games. Records are keyed by id, so
// duplicates collapse to the last one seen.
func (s *SuggestionIndex) Rebuild(games []*domain.Game) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	if err := indexGames(fresh, games); err != nil {
		_ = fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous suggestion index", "error", err)
	}

	s.logger.Debug("rebuilt suggestion index", "documents", len(games))
	return nil
}

func indexGames(index bleve.Index, games []*domain.Game) error {
	for i := 0; i < len(games); i += batchSize {
		end := min(i+batchSize, len(games))

		batch := index.NewBatch()
		for _, g := range games[i:end] {
			if g == nil || g.ID == "" {
				continue
			}
			doc := FromGame(g)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
