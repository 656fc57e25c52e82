package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rockomatthews/crypto-racer/internal/auth"
	"github.com/rockomatthews/crypto-racer/internal/blockchain"
	"github.com/rockomatthews/crypto-racer/internal/config"
	"github.com/rockomatthews/crypto-racer/internal/database"
	"github.com/rockomatthews/crypto-racer/internal/handlers"
	"github.com/rockomatthews/crypto-racer/internal/iracing"
	"github.com/rockomatthews/crypto-racer/internal/jobs"
	"github.com/rockomatthews/crypto-racer/internal/repository"
	"github.com/rockomatthews/crypto-racer/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize Solana client
	solanaClient := blockchain.NewSolanaClient(
		cfg.Solana.RPCEndpoint,
		cfg.Solana.HouseWalletPrivateKey,
	)

	// Select the race-data source: the live iRacing client when
	// credentials are configured, the offline stub otherwise
	var raceData iracing.RaceDataSource
	if cfg.IRacingConfigured() {
		raceData = iracing.NewClient(
			cfg.IRacing.ClientID,
			cfg.IRacing.ClientSecret,
			cfg.IRacing.RedirectURI,
			iracing.WithRefreshToken(cfg.IRacing.RefreshToken),
		)
		log.Println("iRacing client configured (live mode)")
	} else {
		raceData = iracing.NewStubClient()
		log.Println("iRacing credentials not set, running with placeholder data")
	}

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	raceService := services.NewRaceService(repo)
	betService := services.NewBetService(repo, solanaClient, cfg.Solana.HouseWalletAddress)
	payoutService := services.NewPayoutService(repo, solanaClient)
	settlementService := services.NewSettlementService(repo, raceData, payoutService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	raceHandler := handlers.NewRaceHandler(raceService)
	betHandler := handlers.NewBetHandler(betService)
	iracingHandler := handlers.NewIRacingHandler(raceData, authService)
	cronHandler := handlers.NewCronHandler(settlementService, cfg.App.CronSecret)

	// Start settlement job (runs every minute)
	settler := jobs.NewRaceSettler(settlementService, time.Minute)
	go settler.Start()
	defer settler.Stop()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000", // Local development
		"http://localhost:3001",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:3001",
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public race routes
	router.GET("/api/races", raceHandler.GetRaces)
	router.GET("/api/races/:id", raceHandler.GetRaceByID)
	router.GET("/api/series", iracingHandler.GetSeries)

	// Cron route (shared-secret protected, for hosted schedulers)
	router.GET("/cron/update-races", cronHandler.UpdateRaces)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Race management
		api.POST("/races", raceHandler.CreateRace)

		// Bet endpoints
		api.GET("/bets", betHandler.GetBets)
		api.POST("/bets", betHandler.CreateBet)
		api.POST("/bets/create-transaction", betHandler.CreateBetTransaction)
		api.POST("/bets/confirm-transaction", betHandler.ConfirmBetTransaction)

		// iRacing member endpoints
		api.GET("/iracing/profile", iracingHandler.GetProfile)
		api.GET("/iracing/races", iracingHandler.GetUserRaces)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
