package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/config"
	"github.com/gamevault/gamevault-server/internal/logger"
	"github.com/gamevault/gamevault-server/internal/sse"
	"github.com/gamevault/gamevault-server/internal/steam"
)

// SteamClientHandle wraps the Steam client with shutdown capability.
type SteamClientHandle struct {
	*steam.Client
}

// Shutdown implements do.Shutdownable.
func (h *SteamClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideSteamClient provides the rate-limited Steam API client.
func ProvideSteamClient(i do.Injector) (*SteamClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := steam.New(steam.Config{
		StoreURL: cfg.Steam.StoreURL,
		WebURL:   cfg.Steam.WebURL,
		APIKey:   cfg.Steam.APIKey,
		Region:   cfg.Steam.Region,
		Currency: cfg.Steam.Currency,
		Timeout:  cfg.Steam.Timeout,
		RPS:      cfg.Steam.RPS,
		Burst:    cfg.Steam.Burst,
	}, log.WithComponent("steam"))

	log.Info("Steam client initialized",
		"region", cfg.Steam.Region,
		"rps", cfg.Steam.RPS,
		"burst", cfg.Steam.Burst,
	)

	return &SteamClientHandle{Client: client}, nil
}

// ProvideCatalog provides the aggregation cache and fetchers. Refreshes
// rebuild the suggestion index and notify connected clients.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*SteamClientHandle](i)
	indexHandle := do.MustInvoke[*SuggestionIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	catalogLog := log.WithComponent("catalog")
	cat := catalog.New(client.Client, catalog.Options{
		TTL:                cfg.Catalog.TTL,
		ListSize:           cfg.Catalog.ListSize,
		SingleFlight:       cfg.Catalog.SingleFlight,
		DetailTTL:          cfg.Catalog.DetailTTL,
		ResolveConcurrency: cfg.Catalog.ResolveConcurrency,
		BlurHash:           cfg.Catalog.BlurHash,
		Currency:           cfg.Steam.Currency,
	}, catalogLog)

	cat.Cache().OnRefresh(func(_ context.Context, snap catalog.Snapshot) {
		if err := indexHandle.Rebuild(snap.All()); err != nil {
			catalogLog.Warn("suggestion index rebuild failed", "error", err)
		}
	})
	cat.Cache().OnRefresh(func(_ context.Context, snap catalog.Snapshot) {
		sseHandle.Emit(sse.NewCatalogRefreshedEvent(snap.LastUpdated, snap.Counts()))
	})

	log.Info("Catalog initialized",
		"ttl", cfg.Catalog.TTL,
		"list_size", cfg.Catalog.ListSize,
		"single_flight", cfg.Catalog.SingleFlight,
	)

	return cat, nil
}
