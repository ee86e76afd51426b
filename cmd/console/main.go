// Command console drives the enrollment workflow in-process against the same
// services the HTTP server wires, with no transport in between. It is meant
// for smoke-testing a deployment's database and auth configuration.
//
// Usage:
//
//	console enroll <email> <password> <course-id>
//	console recover <recovery-token> <new-password>
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/config"
	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/provider/local"
	"github.com/coursedesk/coursedesk-server/internal/repository/postgres"
	"github.com/coursedesk/coursedesk-server/internal/service"
	"github.com/coursedesk/coursedesk-server/internal/token"
	"github.com/coursedesk/coursedesk-server/internal/workflow"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

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

	authService := service.NewAuth(userRepo, refreshTokenRepo, tokenManager, logger)
	enrollmentService := service.NewEnrollment(enrollmentRepo, courseRepo, logger)

	provider := local.New(authService, tokenManager, logger)
	flow := workflow.New(provider, enrollmentService, logger)
	if err := flow.Start(ctx); err != nil {
		logger.Fatal("failed to start workflow", "error", err)
	}
	defer flow.Close()

	switch args[0] {
	case "enroll":
		if len(args) != 4 {
			usage()
			os.Exit(2)
		}
		if err := runEnroll(ctx, flow, args[1], args[2], args[3]); err != nil {
			logger.Fatal("enroll failed", "error", err)
		}
	case "recover":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := runRecover(ctx, flow, args[1], args[2]); err != nil {
			logger.Fatal("recover failed", "error", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func runEnroll(ctx context.Context, flow *workflow.Workflow, email, password, rawCourseID string) error {
	courseID, err := uuid.Parse(rawCourseID)
	if err != nil {
		return fmt.Errorf("invalid course id: %w", err)
	}

	if err := flow.SignIn(ctx, email, password); err != nil {
		return err
	}
	defer func() {
		_ = flow.SignOut(ctx)
	}()

	view, err := flow.Enroll(ctx, courseID)
	if err != nil {
		return err
	}

	fmt.Printf("enrolled=%t count_stale=%t\n", view.Enrolled, view.CountStale)
	return nil
}

func runRecover(ctx context.Context, flow *workflow.Workflow, recoveryToken, newPassword string) error {
	if err := flow.BeginRecovery(ctx, recoveryToken); err != nil {
		return err
	}
	if err := flow.SubmitNewPassword(ctx, newPassword); err != nil {
		return err
	}

	fmt.Printf("recovery=%s\n", flow.RecoveryState())
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  console enroll <email> <password> <course-id>")
	fmt.Fprintln(os.Stderr, "  console recover <recovery-token> <new-password>")
}
