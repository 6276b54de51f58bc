//	@title			PixVault Gallery API
//	@version		1.0
//	@description	Image gallery gateway over an S3-compatible object store: upload images, list them with fresh pre-signed URLs, and delete them.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/pixvault/service/internal/config"
	"github.com/pixvault/service/internal/gallery"
	appMiddleware "github.com/pixvault/service/internal/middleware"
	"github.com/pixvault/service/internal/storage"
	"github.com/pixvault/service/internal/web"

	_ "github.com/pixvault/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewMinioStore(storage.MinioOptions{
		Endpoint:   cfg.StorageEndpoint,
		AccessKey:  cfg.StorageAccessKey,
		SecretKey:  cfg.StorageSecretKey,
		Region:     cfg.StorageRegion,
		Bucket:     cfg.StorageBucket,
		UseSSL:     cfg.StorageUseSSL,
		PublicBase: cfg.StoragePublicBase,
		Timeout:    cfg.StorageTimeout,
	})
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// One liveness probe before accepting traffic.
	if err := store.Ping(context.Background()); err != nil {
		log.Fatalf("storage backend not reachable: %v", err)
	}
	log.Printf("connected to storage backend at %s (bucket %q)", cfg.StorageEndpoint, cfg.StorageBucket)

	// Wire dependencies: store → service → handler
	gallerySvc := gallery.NewService(store)
	galleryHandler := gallery.NewHandler(gallerySvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Embedded gallery page
	r.Get("/", web.Gallery)

	// Health check
	r.Get("/health", galleryHandler.Health)

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Uploads are rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Post("/upload", galleryHandler.Upload)
	})

	r.Route("/images", func(r chi.Router) {
		r.Get("/", galleryHandler.List)
		r.Get("/{key}", galleryHandler.Describe)
		r.Get("/{key}/url", galleryHandler.GrantURL)
		r.Delete("/{key}", galleryHandler.Delete)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
