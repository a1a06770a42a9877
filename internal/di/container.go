// Package di provides dependency injection configuration for the GameVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/gamevault/gamevault-server/internal/auth"
	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/config"
	"github.com/gamevault/gamevault-server/internal/di/providers"
	"github.com/gamevault/gamevault-server/internal/logger"
	"github.com/gamevault/gamevault-server/internal/service"
	"github.com/gamevault/gamevault-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideSteamClient)
	do.Provide(injector, providers.ProvideSuggestionIndex)
	do.Provide(injector, providers.ProvideCatalog)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideTierListService)
	do.Provide(injector, providers.ProvideFavoritesService)

	// Workers
	do.Provide(injector, providers.ProvideCatalogWarmer)
	do.Provide(injector, providers.ProvideStoreGCJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SteamClientHandle](injector)
	_ = do.MustInvoke[*providers.SuggestionIndexHandle](injector)
	_ = do.MustInvoke[*catalog.Catalog](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.TierListService](injector)
	_ = do.MustInvoke[*service.FavoritesService](injector)

	// Server before the warm-up so early requests are served while it runs.
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.CatalogWarmer](injector)
	_ = do.MustInvoke[*providers.StoreGCJob](injector)

	return nil
}
