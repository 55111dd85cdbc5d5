package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tricol/supplierchain/internal/app"
	"github.com/tricol/supplierchain/internal/config"
	"github.com/tricol/supplierchain/internal/database"
	"github.com/tricol/supplierchain/internal/health"
	"github.com/tricol/supplierchain/internal/http/handler"
	"github.com/tricol/supplierchain/internal/http/middleware"
	"github.com/tricol/supplierchain/internal/http/router"
	"github.com/tricol/supplierchain/internal/observability"
	"github.com/tricol/supplierchain/internal/repository"
	"github.com/tricol/supplierchain/internal/security"
	"github.com/tricol/supplierchain/internal/seeder"
	"github.com/tricol/supplierchain/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewRoleRepository,
	repository.NewPermissionRepository,
	repository.NewProductRepository,
)

var SecuritySet = wire.NewSet(
	security.NewPasswordHasher,
	provideTokenVerifier,
)

var ServiceSet = wire.NewSet(
	service.NewRBACService,
	provideIdentityProvider,
	providePermissionResolver,
	seeder.New,
	wire.Bind(new(service.RBACAuthorizer), new(*service.RBACService)),
	wire.Bind(new(service.PermissionResolver), new(*service.CachedPermissionResolver)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewTestHandler,
	handler.NewProductHandler,
	handler.NewDirectoryHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// SeedRunner backs the standalone seed CLI: migrate, then run the seeder.
type SeedRunner struct {
	db     *gorm.DB
	seeder *seeder.Seeder
	logger *slog.Logger
}

func NewSeedRunner(db *gorm.DB, s *seeder.Seeder, logger *slog.Logger) *SeedRunner {
	return &SeedRunner{db: db, seeder: s, logger: logger}
}

func (r *SeedRunner) Run(ctx context.Context) error {
	return r.seeder.Run(ctx)
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.PermissionCacheRedisEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideTokenVerifier(cfg *config.Config) (*security.TokenVerifier, error) {
	if cfg.JWKSURL == "" && cfg.JWTStaticSecret != "" {
		return security.NewStaticTokenVerifier(cfg.JWTStaticSecret, cfg.JWTLeeway), nil
	}
	return security.NewJWKSTokenVerifier(security.JWKSConfig{
		URL:             cfg.RealmJWKSURL(),
		ClientTimeout:   cfg.KeycloakTimeout,
		RefreshInterval: cfg.JWKSRefreshInterval,
		Leeway:          cfg.JWTLeeway,
	})
}

func provideIdentityProvider(cfg *config.Config) service.IdentityProvider {
	return service.NewKeycloakProvider(service.KeycloakConfig{
		BaseURL:      cfg.KeycloakBaseURL,
		Realm:        cfg.KeycloakRealm,
		ClientID:     cfg.KeycloakClientID,
		ClientSecret: cfg.KeycloakClientSecret,
		Timeout:      cfg.KeycloakTimeout,
	})
}

func providePermissionResolver(cfg *config.Config, redisClient redis.UniversalClient, users repository.UserRepository, rbac *service.RBACService) *service.CachedPermissionResolver {
	var store service.RBACPermissionCacheStore
	if cfg.PermissionCacheRedisEnabled && redisClient != nil {
		store = service.NewRedisRBACPermissionCacheStore(redisClient, "rbacperm")
	} else {
		store = service.NewInMemoryRBACPermissionCacheStore()
	}
	return service.NewCachedPermissionResolver(store, users, rbac, cfg.PermissionCacheTTL)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.PermissionCacheRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, "rl:api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
			nil,
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute, "api").Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.PermissionCacheRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, "rl:auth")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
			nil,
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute, "auth").Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	testHandler *handler.TestHandler,
	productHandler *handler.ProductHandler,
	directoryHandler *handler.DirectoryHandler,
	verifier *security.TokenVerifier,
	rbac service.RBACAuthorizer,
	resolver service.PermissionResolver,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:        authHandler,
		TestHandler:        testHandler,
		ProductHandler:     productHandler,
		DirectoryHandler:   directoryHandler,
		TokenVerifier:      verifier,
		RBACService:        rbac,
		PermissionResolver: resolver,
		CORSOrigins:        cfg.CORSAllowedOrigins,
		AuthRateLimitRPM:   cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:    cfg.APIRateLimitPerMin,
		BodyLimit:          cfg.RequestBodyLimit,
		GlobalRateLimiter:  globalRateLimiter,
		AuthRateLimiter:    authRateLimiter,
		Readiness:          readiness,
		EnableOTelHTTP:     cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 3)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.PermissionCacheRedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	if c := health.NewIdentityProviderChecker(cfg.KeycloakBaseURL, cfg.KeycloakRealm, &http.Client{Timeout: cfg.KeycloakTimeout}); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(time.Second, 0, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	s *seeder.Seeder,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, s, readiness)
}
