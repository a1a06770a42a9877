package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/gamevault/gamevault-server/internal/api"
	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/config"
	"github.com/gamevault/gamevault-server/internal/logger"
	"github.com/gamevault/gamevault-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexHandle := do.MustInvoke[*SuggestionIndexHandle](i)
	cat := do.MustInvoke[*catalog.Catalog](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		TierLists: do.MustInvoke[*service.TierListService](i),
		Favorites: do.MustInvoke[*service.FavoritesService](i),
	}

	handler := api.NewServer(
		storeHandle.Store,
		cat,
		indexHandle.SuggestionIndex,
		services,
		sseHandle.Manager,
		api.Options{
			CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
			RateLimitBurst:     cfg.Server.RateLimitBurst,
		},
		log.Logger,
	)

	// The SSE handler extends the write deadline per event, so WriteTimeout
	// only bounds ordinary responses.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
