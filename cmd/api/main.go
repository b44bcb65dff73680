package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/cache"
	"github.com/noah-isme/leetnote-go-api/internal/config"
	"github.com/noah-isme/leetnote-go-api/internal/database"
	"github.com/noah-isme/leetnote-go-api/internal/handler"
	"github.com/noah-isme/leetnote-go-api/internal/middleware"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
	"github.com/noah-isme/leetnote-go-api/internal/router"
	"github.com/noah-isme/leetnote-go-api/internal/service"
	"github.com/noah-isme/leetnote-go-api/internal/utils"
	"github.com/noah-isme/leetnote-go-api/pkg/ai"
	cloud "github.com/noah-isme/leetnote-go-api/pkg/cloudinary"
	"github.com/noah-isme/leetnote-go-api/pkg/leetcode"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, caching disabled")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not set, evaluation events disabled")
	}

	completer, err := ai.NewClient(ai.ClientConfig{
		APIKey:    cfg.AIAPIKey,
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		MaxTokens: cfg.AIMaxTokens,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create evaluation model client")
	}

	var storage service.FileStorage
	if cfg.CloudinaryEnabled() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		storage = uploader
	}

	responseCache := cache.New(redisClient, cfg.CacheDefaultTTL, logger)
	validate := utils.NewValidator()

	problemRepo := repository.NewProblemRepository(db)
	statusRepo := repository.NewProblemStatusRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewLeetcodeProfileRepository(db)
	transactor := repository.NewTransactor(db)

	publisher := service.NewNATSEvaluationPublisher(natsConn, cfg.NATSSubject)
	evaluationService := service.NewEvaluationService(problemRepo, submissionRepo, evaluationRepo, transactor, completer, publisher, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo)
	problemService := service.NewProblemService(problemRepo, statusRepo, responseCache, logger)
	userService := service.NewUserService(userRepo, storage, responseCache, cfg.UploadMaxSizeMB, logger)
	leetcodeService := service.NewLeetcodeService(profileRepo, userRepo, leetcode.NewClient(cfg.LeetcodeGraphQLURL, cfg.LeetcodeTimeout), responseCache, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ProblemHandler:    handler.NewProblemHandler(problemService, logger),
		UserHandler:       handler.NewUserHandler(userService, validate, logger),
		LeetcodeHandler:   handler.NewLeetcodeHandler(leetcodeService, validate, logger),
		HealthProbes:      healthProbes(db, redisClient, natsConn),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret, resolveUser(userService)),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func resolveUser(users service.UserService) middleware.UserResolver {
	return func(ctx context.Context, subject, email string) (uint, error) {
		user, err := users.FindOrCreate(ctx, subject, email)
		if err != nil {
			return 0, err
		}
		return user.ID, nil
	}
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
