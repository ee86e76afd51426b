package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/coursedesk/coursedesk-server/internal/api/http/router"
	"github.com/coursedesk/coursedesk-server/internal/config"
	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/repository/postgres"
	"github.com/coursedesk/coursedesk-server/internal/server"
	"github.com/coursedesk/coursedesk-server/internal/service"
	storage "github.com/coursedesk/coursedesk-server/internal/storage/minio"
	"github.com/coursedesk/coursedesk-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	minioClient, err := minio.New(cfg.Assets.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Assets.AccessKey, cfg.Assets.SecretKey, ""),
		Secure: cfg.Assets.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	assetStore, err := storage.NewAssetStore(ctx, minioClient, cfg.Assets.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize asset store", "error", err)
	}

	authService := service.NewAuth(userRepo, refreshTokenRepo, tokenManager, logger)
	catalogService := service.NewCatalog(courseRepo, assetStore, logger)
	enrollmentService := service.NewEnrollment(enrollmentRepo, courseRepo, logger)

	handler := router.New(authService, catalogService, enrollmentService, logger)
	httpServer := server.NewHTTP(fmt.Sprintf(":%s", cfg.HTTP.Port), handler, logger)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
