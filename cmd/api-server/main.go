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

	"github.com/gin-gonic/gin"

	"cinehub/internal/auth"
	"cinehub/internal/catalogue"
	"cinehub/internal/events"
	"cinehub/internal/omdb"
	"cinehub/internal/reviews"
	"cinehub/pkg/database"
	"cinehub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

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

	router.GET("/users/me", auth.AuthMiddleware(tokenSvc), func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	// Catalogue
	omdbCfg := utils.LoadOMDbConfig()
	if omdbCfg.APIKey == "" {
		log.Printf("OMDB_API_KEY not set; provider lookups will fail")
	}
	provider := omdb.NewClient(omdbCfg.APIKey, omdbCfg.BaseURL)

	reviewRepo := reviews.NewRepo(db)
	catalogueRepo := catalogue.NewRepo(db)
	catalogueHandler := catalogue.NewHandler(catalogueRepo, provider, reviewRepo, hub)

	public := router.Group("/audiovisuals")
	catalogueHandler.RegisterPublicRoutes(public)

	protected := router.Group("/audiovisuals")
	protected.Use(auth.AuthMiddleware(tokenSvc))
	catalogueHandler.RegisterProtectedRoutes(protected)

	// Reviews
	reviewHandler := reviews.NewHandler(reviewRepo, hub)
	reviewHandler.RegisterPublicRoutes(router.Group(""))

	protectedReviews := router.Group("")
	protectedReviews.Use(auth.AuthMiddleware(tokenSvc))
	reviewHandler.RegisterProtectedRoutes(protectedReviews)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpSrv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on :%s", port)
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
