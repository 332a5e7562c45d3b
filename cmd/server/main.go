package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/auth"
	"ledger-api/internal/config"
	apphttp "ledger-api/internal/http"
	"ledger-api/internal/ledger"
	"ledger-api/internal/repository"
	"ledger-api/internal/repository/memory"
	"ledger-api/internal/repository/sqlstore"
	"ledger-api/internal/service"
	"ledger-api/internal/storage"
	"ledger-api/internal/validation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uow, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("setup store: %v", err)
	}
	defer closeStore()
	logger.Infof("using %s store", cfg.Database.Driver)

	v, err := validation.New()
	if err != nil {
		logger.Fatalf("setup validator: %v", err)
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	var tokens *auth.Tokens
	if strings.TrimSpace(cfg.Auth.JWTSecret) != "" {
		tokens = auth.NewTokens(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	} else {
		logger.Warn("auth jwt secret not set, login disabled")
	}

	handler := apphttp.NewHandler(
		service.NewUserService(uow, v, logger),
		service.NewAccountService(uow, logger),
		service.NewAccountingService(uow, ledger.NewEngine(), logger),
		service.NewStatementService(uow, storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix, logger),
		tokens,
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func buildStore(ctx context.Context, cfg config.Config) (repository.UnitOfWork, func(), error) {
	var (
		db      *sql.DB
		dialect sqlstore.Dialect
		err     error
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	case config.DriverPostgres:
		dialect = sqlstore.Postgres
		db, err = sqlstore.OpenPostgres(ctx, cfg.Database.DSN)
	default:
		dialect = sqlstore.SQLite
		db, err = sqlstore.Open(cfg.Database.Path)
	}
	if err != nil {
		return nil, nil, err
	}

	store := sqlstore.New(db, dialect)
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}
	return store, func() { db.Close() }, nil
}

// buildStorage returns a nil service when no bucket is configured; the
// statement routes then answer 503.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not set, statement export disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
