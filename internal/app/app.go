package app

import (
	"context"
	"database/sql"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cartfleet/internal/cache"
	appconfig "cartfleet/internal/config"
	httpserver "cartfleet/internal/http"
	"cartfleet/internal/http/handlers"
	"cartfleet/internal/http/middleware"
	"cartfleet/internal/password"
	"cartfleet/internal/relay"
	"cartfleet/internal/repository"
	"cartfleet/internal/service"
	"cartfleet/internal/upload"
	"cartfleet/libs/db"
	libredis "cartfleet/libs/redis"
)

// App wires dependencies for the fleet server.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	redis  *goredis.Client
	logger *zap.Logger
}

// New builds the application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var redisClient *goredis.Client
	var positions *cache.PositionStore
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		positions = cache.NewPositionStore(redisClient, cfg.PositionTTL())
	}

	userRepo := repository.NewUserRepository(sqlDB)
	cartRepo := repository.NewCartRepository(sqlDB)
	locationRepo := repository.NewLocationRepository(sqlDB)
	alertRepo := repository.NewAlertRepository(sqlDB)

	hasher := password.NewBcryptHasher(0)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, logger)

	var cartSvc *service.CartService
	if positions != nil {
		cartSvc = service.NewCartService(cartRepo, positions, logger)
	} else {
		cartSvc = service.NewCartService(cartRepo, nil, logger)
	}
	locationSvc := service.NewLocationService(locationRepo)
	alertSvc := service.NewAlertService(alertRepo, logger)

	storage, err := upload.NewStorage(cfg.Uploads.Dir, "/uploads")
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	hub := relay.NewHub(relay.NewRooms(), cartSvc, logger)
	relayServer := relay.NewServer(hub, func(token string) error {
		_, err := tokenSvc.ValidateToken(token)
		return err
	}, cfg.RelayWriteTimeout(), logger)

	deps := httpserver.RouterDeps{
		Auth:      handlers.NewAuthHandlers(authSvc),
		Users:     handlers.NewUserHandlers(userRepo, storage, logger),
		Carts:     handlers.NewCartHandlers(cartSvc),
		Locations: handlers.NewLocationHandlers(locationSvc),
		Alerts:    handlers.NewAlertHandlers(alertSvc),
		Health:    handlers.NewHealthHandler(),
		RelayWS:   relayServer.HandleWS,
		UploadDir: storage.Dir(),
	}

	router := httpserver.NewRouter(deps, tokenSvc)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     sqlDB,
		redis:  redisClient,
		logger: logger,
	}, nil
}

var _ middleware.TokenValidator = (*service.TokenService)(nil)

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
