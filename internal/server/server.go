// Package server assembles the HTTP API: services, handlers, middleware and
// routes over one database handle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"giftwise/internal/auth"
	"giftwise/internal/config"
	_ "giftwise/internal/docs" // swagger spec
	"giftwise/internal/handlers"
	"giftwise/internal/logger"
	"giftwise/internal/middleware"
	"giftwise/internal/services"
	"giftwise/internal/validator"
)

const shutdownTimeout = 10 * time.Second

// Options tunes a Server beyond what Config carries.
type Options struct {
	// Now overrides the token clock.
	Now func() time.Time
	// Registry receives the HTTP and process metrics. A fresh registry is
	// used when nil.
	Registry *prometheus.Registry
}

// Server is the giftwise HTTP API.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
}

// New wires the API over db. The schema must already be migrated.
func New(cfg *config.Config, db *gorm.DB, opts Options) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	// Services
	userService := services.NewUserService(db)
	personService := services.NewPersonService(db)
	giftService := services.NewGiftService(db)
	occasionService := services.NewOccasionService(db)
	budgetService := services.NewBudgetService(db)
	revocationService := services.NewRevocationServiceWithClock(db, opts.Now)
	auditService := services.NewAuditService(db)

	authenticator, err := auth.New(userService, auth.Options{
		Secret:     []byte(cfg.JWTSecret),
		TTL:        cfg.JWTExpirationDur,
		BcryptCost: cfg.BcryptCost,
		Now:        opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authenticator, revocationService, auditService)
	userHandler := handlers.NewUserHandler(userService, auditService)
	personHandler := handlers.NewPersonHandler(personService, auditService)
	giftHandler := handlers.NewGiftHandler(giftService, auditService)
	occasionHandler := handlers.NewOccasionHandler(occasionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := middleware.NewMetrics(registry)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.Handler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NoRoute)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authenticator, revocationService))

	user := protected.Group("/user")
	user.GET("/validate", userHandler.Validate)
	user.GET("/profile", userHandler.GetProfile)
	user.PUT("/profile", userHandler.UpdateProfile)
	user.PUT("/preferences", userHandler.UpdatePreferences)

	people := protected.Group("/people")
	people.POST("", personHandler.CreatePerson)
	people.GET("", personHandler.GetPeople)
	people.GET("/:id", personHandler.GetPerson)
	people.PUT("/:id", personHandler.UpdatePerson)
	people.DELETE("/:id", personHandler.DeletePerson)

	gifts := protected.Group("/gifts")
	gifts.POST("", giftHandler.CreateGift)
	gifts.GET("", giftHandler.GetGifts)
	gifts.GET("/:id", giftHandler.GetGift)
	gifts.PUT("/:id", giftHandler.UpdateGift)
	gifts.DELETE("/:id", giftHandler.DeleteGift)

	occasions := protected.Group("/occasions")
	occasions.POST("", occasionHandler.CreateOccasion)
	occasions.GET("", occasionHandler.GetOccasions)
	occasions.GET("/:id", occasionHandler.GetOccasion)
	occasions.PUT("/:id", occasionHandler.UpdateOccasion)
	occasions.DELETE("/:id", occasionHandler.DeleteOccasion)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	return &Server{cfg: cfg, router: router}, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured port until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	log := logger.Get()

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting giftwise API on port %s", s.cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
