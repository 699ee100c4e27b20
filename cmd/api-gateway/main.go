package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ecde-votmis-api/api/swagger"
	"github.com/noah-isme/ecde-votmis-api/internal/handler"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	"github.com/noah-isme/ecde-votmis-api/internal/repository"
	"github.com/noah-isme/ecde-votmis-api/internal/server"
	"github.com/noah-isme/ecde-votmis-api/internal/service"
	"github.com/noah-isme/ecde-votmis-api/pkg/cache"
	"github.com/noah-isme/ecde-votmis-api/pkg/config"
	"github.com/noah-isme/ecde-votmis-api/pkg/database"
	"github.com/noah-isme/ecde-votmis-api/pkg/export"
	"github.com/noah-isme/ecde-votmis-api/pkg/logger"
	"github.com/noah-isme/ecde-votmis-api/pkg/storage"
)

// @title ECDE & VOTMIS API
// @version 1.0.0
// @description Learner registration, UPI issuance, transfers and registers for ECDE centres and vocational training centres.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.NewMigrator(db, logr).MigrateDirectory(ctx, cfg.Database.MigrationsDir)
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations complete", zap.Int("applied", applied))
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.UPI.SequenceBackend == config.SequenceBackendRedis {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	validate := validator.New()
	metrics := service.NewMetricsService()

	personRepo := repository.NewPersonRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	var sequences interface {
		Next(ctx context.Context, prefix string) (int64, error)
	}
	if cfg.UPI.SequenceBackend == config.SequenceBackendRedis {
		sequences = repository.NewRedisSequenceRepository(redisClient)
	} else {
		sequences = repository.NewUPISequenceRepository(db)
	}

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Cache.DashboardTTL, logr, cfg.Cache.Enabled)
	issuer := service.NewUPIIssuer(sequences, personRepo, institutionRepo, service.UPIIssuerConfig{
		JurisdictionCode:       cfg.UPI.JurisdictionCode,
		DefaultInstitutionCode: cfg.UPI.DefaultInstitutionCode,
		SequenceWidth:          cfg.UPI.SequenceWidth,
		MaxAttempts:            cfg.UPI.MaxAttempts,
	}, metrics, logr)
	uploadPolicy := service.UploadPolicy{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
		URLPrefix:        cfg.APIPrefix + "/files/",
	}

	personSvc := service.NewPersonService(personRepo, issuer, files, signer, uploadPolicy, cacheSvc, auditRepo, validate, logr)
	directorySvc := service.NewDirectoryService(personRepo, metrics, logr)
	lifecycleSvc := service.NewLifecycleService(personRepo, transferRepo, cacheSvc, auditRepo, validate, logr)
	reportSvc := service.NewReportService(directorySvc, cacheSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	institutionSvc := service.NewInstitutionService(institutionRepo, auditRepo, validate, logr)
	authSvc := service.NewAuthService(profileRepo, logr, service.AuthConfig{
		AccessTokenSecret: cfg.Auth.Secret,
		Issuer:            cfg.Auth.Issuer,
	})

	bankAccounts := service.NewRecordService[*models.BankAccount]("bank_accounts", repository.NewBankAccountRepository(db), nil, nil, uploadPolicy, validate, logr)
	books := service.NewRecordService[*models.Book]("books", repository.NewBookRepository(db), nil, nil, uploadPolicy, validate, logr)
	infrastructure := service.NewRecordService[*models.InfrastructureAsset]("infrastructure", repository.NewInfrastructureRepository(db), nil, nil, uploadPolicy, validate, logr)
	emergencies := service.NewRecordService[*models.Emergency]("emergencies", repository.NewEmergencyRepository(db), nil, nil, uploadPolicy, validate, logr)
	capitation := service.NewRecordService[*models.CapitationReceipt]("capitation_receipts", repository.NewCapitationReceiptRepository(db), files, signer, uploadPolicy, validate, logr)

	router := server.NewRouter(server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		MetricsService: metrics,
		Authenticator:  authSvc,
	}, server.Handlers{
		Persons:        handler.NewPersonHandler(personSvc, directorySvc),
		Lifecycle:      handler.NewLifecycleHandler(lifecycleSvc),
		Reports:        handler.NewReportHandler(reportSvc),
		Institutions:   handler.NewInstitutionHandler(institutionSvc),
		BankAccounts:   handler.NewRecordHandler[*models.BankAccount](bankAccounts, func() *models.BankAccount { return &models.BankAccount{} }),
		Books:          handler.NewRecordHandler[*models.Book](books, func() *models.Book { return &models.Book{} }),
		Infrastructure: handler.NewRecordHandler[*models.InfrastructureAsset](infrastructure, func() *models.InfrastructureAsset { return &models.InfrastructureAsset{} }),
		Emergencies:    handler.NewRecordHandler[*models.Emergency](emergencies, func() *models.Emergency { return &models.Emergency{} }),
		Capitation:     handler.NewRecordHandler[*models.CapitationReceipt](capitation, func() *models.CapitationReceipt { return &models.CapitationReceipt{} }),
		Files:          handler.NewFileHandler(signer, files),
		Metrics:        handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upi_sequence_backend", cfg.UPI.SequenceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
