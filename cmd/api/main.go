//	@title			Bulletin Board API
//	@version		1.0
//	@description	Posts with file attachments, comments and likes.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/navidved/bulletin/internal/auth"
	"github.com/navidved/bulletin/internal/board"
	"github.com/navidved/bulletin/internal/comment"
	"github.com/navidved/bulletin/internal/config"
	"github.com/navidved/bulletin/internal/db"
	"github.com/navidved/bulletin/internal/like"
	"github.com/navidved/bulletin/internal/member"
	appMiddleware "github.com/navidved/bulletin/internal/middleware"
	"github.com/navidved/bulletin/internal/storage"

	_ "github.com/navidved/bulletin/docs/swagger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)

	ctx := context.Background()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	blobs, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("object storage init failed")
	}

	// Wire dependencies: repository → service → handler
	tx := db.NewTransactor(pool)

	memberRepo := member.NewRepository(pool)
	memberSvc := member.NewService(memberRepo)
	memberHandler := member.NewHandler(memberSvc)

	authSvc := auth.NewService(memberSvc, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(authSvc)

	commentRepo := comment.NewRepository(pool)
	commentHandler := comment.NewHandler(comment.NewService(commentRepo))

	likeRepo := like.NewRepository(pool)
	likeHandler := like.NewHandler(like.NewService(likeRepo, tx))

	boardSvc := board.NewService(
		board.NewRepository(pool),
		board.NewAttachments(board.NewAttachmentRepository(pool), storage.WithMetrics(blobs), cfg.BlobNamespace),
		commentRepo,
		likeRepo,
		memberRepo,
		tx,
		board.Options{ImagePrefix: cfg.ImagePrefix, PageSize: cfg.PageSize},
	)
	boardHandler := board.NewHandler(boardSvc, cfg.MaxUploadBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(appMiddleware.Metrics)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", authHandler.Login)

		r.Route("/members", func(r chi.Router) {
			r.Post("/", memberHandler.Signup)
			r.With(appMiddleware.RequireAuth(cfg.JWTSecret)).Get("/me", memberHandler.GetMe)
		})

		// Reads are public; mutations resolve the caller and the service enforces ownership.
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.OptionalAuth(cfg.JWTSecret))

			r.Get("/posts", boardHandler.List)
			r.Post("/posts", boardHandler.Create)
			r.Get("/posts/{id}", boardHandler.Get)
			r.Put("/posts/{id}", boardHandler.Update)
			r.Delete("/posts/{id}", boardHandler.Delete)

			r.Get("/posts/{id}/comments", commentHandler.List)
			r.Post("/posts/{id}/comments", commentHandler.Add)
			r.Delete("/comments/{commentID}", commentHandler.Delete)

			r.Get("/posts/{id}/like", likeHandler.Get)
			r.Put("/posts/{id}/like", likeHandler.Toggle)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case "minio":
		s, err := storage.NewMinioStorage(ctx, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := storage.NewS3Storage(ctx, storage.S3Config{
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		log.Warn().Msg("using in-memory object storage; attachments are lost on restart")
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
