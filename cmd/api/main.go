package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zinefold/zinefold-api/internal/config"
	"github.com/zinefold/zinefold-api/internal/domain/credit"
	"github.com/zinefold/zinefold-api/internal/domain/issuance"
	"github.com/zinefold/zinefold-api/internal/domain/payment"
	"github.com/zinefold/zinefold-api/internal/domain/token"
	"github.com/zinefold/zinefold-api/internal/domain/transaction"
	"github.com/zinefold/zinefold-api/internal/domain/transfer"
	"github.com/zinefold/zinefold-api/internal/domain/wallet"
	"github.com/zinefold/zinefold-api/internal/middleware"
	"github.com/zinefold/zinefold-api/internal/pkg/database"
	"github.com/zinefold/zinefold-api/internal/pkg/jwt"
	"github.com/zinefold/zinefold-api/internal/pkg/logger"
	pkgresponse "github.com/zinefold/zinefold-api/internal/pkg/response"
	"github.com/zinefold/zinefold-api/internal/pkg/vault"
	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Zinefold API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	secretVault, err := vault.New(cfg.WalletEncryptionKey, cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize secret vault")
	}

	ledger := xrpl.NewClient(xrpl.Config{URL: cfg.XRPLServerURL, Timeout: cfg.XRPLTimeout})
	platform := issuance.PlatformAccount{
		Address:   cfg.PlatformAddress,
		Seed:      cfg.PlatformSeed,
		AssetCode: cfg.PlatformAsset,
	}
	if !platform.Configured() {
		log.Warn().Msg("Platform ledger account not configured, purchases credit internally only")
	}

	// ---------- Repositories ----------
	creditRepo := credit.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	transactionRepo := transaction.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	tokenRepo := token.NewRepository(db)

	// ---------- Services ----------
	creditService := credit.NewService(creditRepo)
	walletService := wallet.NewService(walletRepo, secretVault, cfg.PayIDDomain)
	issuanceService := issuance.NewService(ledger, creditService, walletRepo, transactionRepo, platform)

	processor := payment.NewProcessor(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	paymentService := payment.NewService(paymentRepo, processor, issuanceService, payment.URLs{
		SuccessURL: cfg.FrontendURL + "/credits/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  cfg.FrontendURL + "/credits/cancel",
	})

	trustLines := token.NewTrustLines(ledger, redis)
	tokenService := token.NewService(tokenRepo, walletService, creditService, issuanceService, trustLines, transactionRepo, tokenRepo)

	transferService := transfer.NewService(walletService, issuanceService, transactionRepo, platform)

	// ---------- Handlers ----------
	creditHandler := credit.NewHandler(creditService)
	walletHandler := wallet.NewHandler(walletService)
	transactionHandler := transaction.NewHandler(transactionRepo)
	paymentHandler := payment.NewHandler(paymentService)
	tokenHandler := token.NewHandler(tokenService)
	transferHandler := transfer.NewHandler(transferService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/wallets", walletHandler.Routes(authMiddleware))
		r.Mount("/credits", creditHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
		r.Mount("/tokens", tokenHandler.Routes(authMiddleware))
		r.Mount("/transfers", transferHandler.Routes(authMiddleware))
		r.Mount("/transactions", transactionHandler.Routes(authMiddleware))
	})

	r.Mount("/webhooks/stripe", paymentHandler.WebhookRoutes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
