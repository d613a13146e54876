package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"animeshelf/internal/auth"
	"animeshelf/internal/catalog"
	"animeshelf/internal/events"
	"animeshelf/internal/importer"
	"animeshelf/internal/shelf"
	"animeshelf/pkg/database"
	"animeshelf/pkg/utils"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address for the HTTP API")
	flag.Parse()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hub.Stats().Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hub.Stats().Clients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"db":         cfg.Path,
			"ws_clients": hub.Stats().Clients,
		})
	})

	// Catalog (public): search / lookup / season browse
	catalogClient := catalog.New(utils.LoadCatalogConfig())
	catalogHandler := catalog.NewHandler(catalogClient)
	catalogHandler.RegisterRoutes(router.Group("/catalog"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Shelf (protected)
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.ProfileID,
			"username": claims.Username,
		})
	})

	shelfRepo := shelf.NewRepo(db)
	shelfHandler := shelf.NewHandler(shelfRepo, catalogClient, hub)
	shelfHandler.RegisterRoutes(protected)

	imp := importer.NewImporter(shelfRepo, catalogClient, hub)
	importHandler := importer.NewHandler(imp, shelfRepo)
	importHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
