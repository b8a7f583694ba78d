//	@title			Home Cloud API
//	@version		1.0
//	@description	Backend for Home Cloud: shared household documents, tasks and file storage.
//
//	@host		localhost:8080
//	@BasePath	/api

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/homecloud/service/internal/config"
	"github.com/homecloud/service/internal/db"
	"github.com/homecloud/service/internal/document"
	"github.com/homecloud/service/internal/files"
	"github.com/homecloud/service/internal/group"
	appMiddleware "github.com/homecloud/service/internal/middleware"
	"github.com/homecloud/service/internal/notification"
	"github.com/homecloud/service/internal/profile"
	"github.com/homecloud/service/internal/storage"
	"github.com/homecloud/service/internal/task"
	"github.com/homecloud/service/internal/user"

	_ "github.com/homecloud/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if cfg.IsProduction() && cfg.Storage.Provider == config.ProviderMemory {
		log.Println("storage: memory provider in production, uploaded files will not survive a restart")
	}
	gateway := storage.NewGateway(ctx, cfg.Storage, storage.Connect)
	cancel()

	// Wire dependencies: repository → handler
	filesHandler := files.NewHandler(gateway)
	userHandler := user.NewHandler(user.NewRepository(pool))
	groupHandler := group.NewHandler(group.NewRepository(pool))
	profileHandler := profile.NewHandler(profile.NewRepository(pool))
	documentHandler := document.NewHandler(document.NewRepository(pool))
	taskHandler := task.NewHandler(task.NewRepository(pool))
	notificationHandler := notification.NewHandler(notification.NewRepository(pool))

	metrics := appMiddleware.NewMetrics(prometheus.DefaultRegisterer)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(metrics.Handler)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at http://localhost:8080/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Route("/azure", filesHandler.Routes)
		r.Route("/users", userHandler.Routes)
		r.Route("/groups", groupHandler.Routes)
		r.Route("/profiles", profileHandler.Routes)
		r.Route("/documents", documentHandler.Routes)
		r.Route("/tasks", taskHandler.Routes)
		r.Route("/notifications", notificationHandler.Routes)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
