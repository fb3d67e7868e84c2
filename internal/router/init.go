package router

import (
	"github.com/gamevault/storefront/internal/application"
	"github.com/gamevault/storefront/internal/container"
	pginfra "github.com/gamevault/storefront/internal/infrastructure/postgres"
	handlers "github.com/gamevault/storefront/internal/interface/http"
	"github.com/gamevault/storefront/internal/router/modules"
	"github.com/gamevault/storefront/pkg/catalog"
)

// InitModules builds the services from the container singletons and
// registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetPGPool())
	games := pginfra.NewGameRepository(container.GetPGPool())

	rawg := catalog.NewRAWG(cfg.RAWGBaseURL, cfg.RAWGAPIKey, cfg.ProviderTimeout)
	prices := catalog.NewCheapShark(cfg.CheapSharkBaseURL, cfg.ProviderTimeout)

	accounts := application.NewAccountService(
		users,
		container.GetJWT(),
		container.GetRedis(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRabbitPub(),
		logger,
	)
	catalogSvc := application.NewCatalogService(
		games,
		users,
		rawg,
		prices,
		container.GetRedis(),
		cfg.CatalogCacheTTL,
		container.GetES(),
		cfg.ESGamesIndex,
		logger,
	)
	collections := application.NewCollectionService(users, logger)
	checkout := application.NewCheckoutService(users, games, container.GetRabbitPub(), logger)

	accountHandler := handlers.NewAccountHandler(accounts, logger, cfg.CookieDomain, cfg.CookieSecure)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, accounts, logger)
	collectionHandler := handlers.NewCollectionHandler(collections, catalogSvc, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkout, logger)

	jwt := container.GetJWT()
	r.Add(modules.NewAccountModule(accountHandler, jwt))
	r.Add(modules.NewCatalogModule(catalogHandler, jwt))
	r.Add(modules.NewCollectionModule(collectionHandler, jwt))
	r.Add(modules.NewCheckoutModule(checkoutHandler, jwt))
	r.Add(modules.NewDebugModule())
}
