package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"property-registry.backend/internal/config"
	"property-registry.backend/internal/infrastructure/blockchain"
	"property-registry.backend/internal/infrastructure/datasources/postgres"
	"property-registry.backend/internal/infrastructure/jobs"
	"property-registry.backend/internal/infrastructure/metrics"
	"property-registry.backend/internal/infrastructure/models"
	"property-registry.backend/internal/infrastructure/registry"
	"property-registry.backend/internal/infrastructure/repositories"
	"property-registry.backend/internal/infrastructure/wallet"
	"property-registry.backend/internal/interfaces/http/handlers"
	"property-registry.backend/internal/interfaces/http/middleware"
	"property-registry.backend/internal/usecases"
	"property-registry.backend/pkg/crypto"
	"property-registry.backend/pkg/jwt"
	"property-registry.backend/pkg/logger"
	"property-registry.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = postgres.Connect
	newSessionStore = redis.NewSessionStore
	runServer       = serve
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	migrateDB       = func(db *gorm.DB) error { return db.AutoMigrate(&models.TxJournal{}) }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(context.Background(), "Database not available, journal endpoints will return errors", zap.Error(err))
	} else if err := migrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate transaction journal: %w", err)
	} else {
		logger.Info(context.Background(), "Connected to database")
	}

	switch hash := cfg.Security.OperatorPasswordHash; {
	case hash == "":
		logger.Warn(context.Background(), "OPERATOR_PASSWORD_HASH is not set, operator login is disabled")
	case !crypto.IsPasswordHash(hash):
		return errors.New("OPERATOR_PASSWORD_HASH is not a bcrypt hash, generate one with cmd/hash-gen")
	}

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wallet. Without configured keys the gateway runs read-only.
	var (
		provider   wallet.Provider
		signer     blockchain.Signer
		controller usecases.WalletController
	)
	if len(cfg.Blockchain.WalletPrivateKeys) > 0 {
		keyed, err := wallet.NewKeyedProvider(cfg.Blockchain.WalletPrivateKeys)
		if err != nil {
			return fmt.Errorf("failed to load wallet keys: %w", err)
		}
		provider, signer, controller = keyed, keyed, keyed
		logger.Info(ctx, "Keyed wallet loaded", zap.Int("accounts", len(keyed.Known())))
	} else {
		logger.Warn(ctx, "No wallet keys configured, mutations are disabled")
	}

	session := wallet.NewSession(provider)
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start wallet session: %w", err)
	}
	defer session.Close()
	if cfg.Blockchain.AutoConnect && controller != nil {
		if _, err := controller.RequestAccounts(ctx); err != nil {
			logger.Warn(ctx, "Wallet auto-connect failed", zap.Error(err))
		} else if err := session.Sync(ctx); err != nil {
			logger.Warn(ctx, "Wallet session sync failed", zap.Error(err))
		}
	}

	// Registry
	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()
	accessor := blockchain.NewContractAccessor(clientFactory, blockchain.AccessorConfig{
		RPCURL:          cfg.Blockchain.RPCURL,
		ContractAddress: cfg.Blockchain.ContractAddress,
		ExpectedChainID: cfg.Blockchain.ExpectedChainID,
		ConfirmTimeout:  cfg.Blockchain.ConfirmTimeout,
		PollInterval:    cfg.Blockchain.ConfirmPollInterval,
	}, signer)

	appMetrics := metrics.New()
	shim := registry.NewShim(accessor, appMetrics,
		registry.NewV3Surface(cfg.Blockchain.MaxEnumerate),
		registry.NewLegacySurface(cfg.Blockchain.MaxEnumerate))
	enumerator := registry.NewEnumerator(shim, cfg.Blockchain.EnumerateConcurrency, appMetrics)

	// Usecases
	journalRepo := repositories.NewTxJournalRepository(db)
	runner := usecases.NewTxRunner(journalRepo, redis.Locker{}, appMetrics, cfg.Blockchain.ConfirmTimeout+time.Minute)

	propertyUsecase := usecases.NewPropertyUsecase(enumerator, shim, session, accessor, runner)
	adminUsecase := usecases.NewAdminUsecase(enumerator, shim, session, runner)
	superAdminUsecase := usecases.NewSuperAdminUsecase(shim, session, runner)
	walletUsecase := usecases.NewWalletUsecase(controller, session, accessor)
	txJournalUsecase := usecases.NewTxJournalUsecase(journalRepo)
	authUsecase := usecases.NewAuthUsecase(cfg.Security.OperatorName, cfg.Security.OperatorPasswordHash, jwtService, sessionStore)

	// Background jobs
	reconciler := jobs.NewJournalReconcilerJob(journalRepo, accessor, appMetrics,
		cfg.Jobs.ReconcileInterval, cfg.Jobs.ReconcileAfter, cfg.Jobs.ReconcileDropAfter, cfg.Jobs.ReconcileBatch)
	go reconciler.Start(ctx)
	defer reconciler.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.AccountContextMiddleware(session))
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r, appMetrics)
	registerAPIV1Routes(r, routeDeps{
		authHandler:           handlers.NewAuthHandler(authUsecase),
		propertyHandler:       handlers.NewPropertyHandler(propertyUsecase),
		adminHandler:          handlers.NewAdminHandler(adminUsecase),
		superAdminHandler:     handlers.NewSuperAdminHandler(superAdminUsecase),
		walletHandler:         handlers.NewWalletHandler(walletUsecase),
		txJournalHandler:      handlers.NewTxJournalHandler(txJournalUsecase),
		authMiddleware:        middleware.AuthMiddleware(authUsecase),
		idempotencyMiddleware: middleware.IdempotencyMiddleware(cfg.Security.IdempotencyTTL),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	logger.Info(ctx, "Property registry gateway starting",
		zap.String("port", cfg.Server.Port),
		zap.String("rpc", cfg.Blockchain.RPCURL),
		zap.String("contract", accessor.ContractAddress().Hex()),
	)
	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests
func serve(ctx context.Context, r *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
