package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"eschool/internal/api/v1/handler"
	"eschool/internal/config"
	"eschool/internal/middleware"
	"eschool/internal/payment"
	"eschool/internal/pubsub"
	"eschool/internal/repository"
	"eschool/internal/service"
	"eschool/internal/storage"

	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *sql.DB, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")

	// Open DB connection (connection pooling)
	dsn := cfg.DBConnectionString
	// In a development environment, we want to ensure that SSL is disabled for
	// local testing. In production, the connection string should be provided
	// with the correct SSL settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := " "
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if strings.Contains(dsn, "?") {
				separator = "&"
			} else {
				separator = "?"
			}
		}
		dsn += separator + "sslmode=disable"
	}
	// For non-development environments that use a transaction pooler like pgbouncer,
	// we must use the simple query protocol to avoid issues with server-side prepared statements.
	if cfg.Environment != "development" {
		if !strings.Contains(dsn, "prefer_simple_protocol") {
			separator := "&"
			if !strings.Contains(dsn, "?") {
				separator = "?"
			}
			dsn += separator + "prefer_simple_protocol=true"
		}
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
		return nil, nil, err
	}

	if err := db.Ping(); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Initialize S3-backed blob store
	s3Client, err := storage.NewS3Client(context.TODO(), cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to load S3 config: %v", err)
		return nil, nil, err
	}
	blobStore := storage.NewS3Store(s3Client, cfg.S3Bucket, cfg.S3URL, logger)

	// Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Initialize Pub/Sub publisher
	publisher, err := pubsub.NewPublisher(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
		return nil, nil, err
	}

	// Initialize payment processor
	processor := payment.NewStripeProcessor(cfg, logger)

	// Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(db)
	courseRepo := repository.NewCourseRepo(db, logger)
	enrollmentRepo := repository.NewEnrollmentRepo(db)
	completionRepo := repository.NewCompletionRepo(db)
	intentRepo := repository.NewIntentRepo(db)

	catalogSvc := service.NewCatalogService(courseRepo, userRepo, publisher, cfg.EventsTopic, logger)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, publisher, cfg.EventsTopic, logger)
	settlementSvc := service.NewSettlementService(intentRepo, courseRepo, userRepo, enrollmentSvc, processor, cfg.Currency, cfg.PlatformFeeRate, logger)
	completionSvc := service.NewCompletionService(completionRepo, logger)

	courseHandler := handler.NewCourseHandler(catalogSvc, validate)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, settlementSvc)
	completionHandler := handler.NewCompletionHandler(completionSvc, validate)
	mediaHandler := handler.NewMediaHandler(blobStore, validate)

	// Initialize middleware. Authoring routes additionally require the
	// instructor role.
	authMw := middleware.AuthMiddleware(cfg.JWTSecret, logger)
	instructorMw := func(next http.Handler) http.Handler {
		return authMw(middleware.RequireRole(middleware.RoleInstructor)(next))
	}

	// Create ServeMux router with the API v1 routes under /v1
	apiV1Mux := http.NewServeMux()
	courseHandler.RegisterRoutes(apiV1Mux, instructorMw)
	mediaHandler.RegisterRoutes(apiV1Mux, instructorMw)
	enrollmentHandler.RegisterRoutes(apiV1Mux, authMw)
	completionHandler.RegisterRoutes(apiV1Mux, authMw)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	// Redirect /api/* to /v1/* for backward compatibility
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, "/v1/"+rest, http.StatusMovedPermanently)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), db, nil
}
