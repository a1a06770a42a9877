package providers

import (
	"github.com/samber/do/v2"

	"github.com/gamevault/gamevault-server/internal/logger"
	"github.com/gamevault/gamevault-server/internal/search"
)

// SuggestionIndexHandle wraps the suggestion index with shutdown capability.
type SuggestionIndexHandle struct {
	*search.SuggestionIndex
}

// Shutdown implements do.Shutdownable.
func (h *SuggestionIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSuggestionIndex provides the in-memory Bleve index behind /api/suggest.
// It stays empty until the first catalog refresh.
func ProvideSuggestionIndex(i do.Injector) (*SuggestionIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSuggestionIndex(search.Options{
		Logger: log.WithComponent("search"),
	})
	if err != nil {
		return nil, err
	}

	log.Info("Suggestion index initialized")

	return &SuggestionIndexHandle{SuggestionIndex: index}, nil
}
