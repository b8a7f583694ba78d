// Command functions is the Azure Functions custom handler. The Functions host
// forwards HTTP triggers to it on FUNCTIONS_CUSTOMHANDLER_PORT.
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

	"github.com/homecloud/service/internal/config"
	"github.com/homecloud/service/internal/functions"
	appMiddleware "github.com/homecloud/service/internal/middleware"
)

func main() {
	cfg := config.Load()

	h := functions.NewHandler(cfg.FunctionAppName, cfg.FunctionsEnv)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Route("/api", h.Routes)

	srv := &http.Server{
		Addr:         ":" + cfg.FunctionsPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("functions handler %q listening on :%s (env=%s)", cfg.FunctionAppName, cfg.FunctionsPort, cfg.FunctionsEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("functions handler stopped")
}
