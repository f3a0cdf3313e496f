package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/lazymint/internal/chain"
	"github.com/fairyhunter13/lazymint/internal/config"
	"github.com/fairyhunter13/lazymint/internal/handler"
	"github.com/fairyhunter13/lazymint/internal/metrics"
	"github.com/fairyhunter13/lazymint/internal/price"
	"github.com/fairyhunter13/lazymint/internal/repository"
	"github.com/fairyhunter13/lazymint/internal/service"
	"github.com/fairyhunter13/lazymint/internal/validator"
	"github.com/fairyhunter13/lazymint/internal/voucher"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	defaultPrice, err := price.ParseWei(cfg.Collection.MintPriceWei)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid COLLECTION_MINT_PRICE_WEI")
	}

	// Voucher signer is optional; without it the read-only endpoints still work
	var signer service.VoucherSigner
	signerAddress := ""
	if cfg.Signer.PrivateKey != "" {
		s, err := voucher.NewSignerFromHex(cfg.Signer.PrivateKey)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid SIGNER_PRIVATE_KEY")
		}
		signer = s
		signerAddress = s.Address().Hex()
		log.Info().Str("signer", signerAddress).Msg("voucher signing enabled")
	} else {
		log.Warn().Msg("SIGNER_PRIVATE_KEY not set, voucher issuing disabled")
	}

	// On-chain reads are optional and advisory
	var mintStatus service.MintStatusReader
	if cfg.Chain.RPCURL != "" && cfg.Collection.ContractAddress != "" {
		reader, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Collection.ContractAddress, cfg.Chain.CallTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to chain rpc")
		}
		defer reader.Close()
		mintStatus = reader
		log.Info().Str("contract", cfg.Collection.ContractAddress).Msg("on-chain mint status enabled")
	}

	quoter := price.NewCachedQuoter(
		price.NewCoinGecko(cfg.Price.APIURL, cfg.Price.APIKey, cfg.Price.Timeout),
		cfg.Price.CacheSize,
		cfg.Price.CacheTTL,
	)

	m := metrics.New()

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "LazyMint NFT Backend",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())
	app.Use(m.Middleware())

	// Initialize validator
	validate := validator.New()

	// Initialize components (layered architecture)
	nftRepo := repository.NewNFTRepository(pool)
	mintRepo := repository.NewMintRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	nftService := service.NewNFTService(pool, nftRepo, mintRepo, defaultPrice)
	voucherService := service.NewVoucherService(nftRepo, mintRepo, signer, mintStatus, m)
	paymentService := service.NewPaymentService(nftRepo, mintRepo, paymentRepo, voucherService, quoter,
		cfg.Chain.Network, cfg.Price.QuoteTTL, cfg.Payment.IntentTTL, m)

	nftHandler := handler.NewNFTHandler(nftService, validate)
	voucherHandler := handler.NewVoucherHandler(voucherService, validate)
	if cfg.Payment.WebhookSecret == "" {
		log.Warn().Msg("PAYMENT_WEBHOOK_SECRET not set, payment webhook is unauthenticated")
	}
	paymentHandler := handler.NewPaymentHandler(paymentService, validate, cfg.Payment.WebhookSecret)

	// Health and metrics
	healthHandler := handler.NewHealthHandler(pool, signerAddress, mintStatus != nil)
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", m.Handler())

	// NFT routes; static segments before :tokenId
	app.Get("/api/nft", nftHandler.ListNFTs)
	app.Get("/api/nft/stats/collection", nftHandler.Stats)
	app.Get("/api/nft/owner/:address", nftHandler.ListByOwner)
	app.Get("/api/nft/:tokenId", nftHandler.GetNFT)
	app.Post("/api/nft/verify", voucherHandler.VerifyVoucher)
	app.Post("/api/nft/voucher/:tokenId", voucherHandler.IssueVoucher)
	app.Post("/api/nft/minted/:tokenId", voucherHandler.ConfirmMint)

	// Payment routes
	app.Get("/api/payment/currencies", paymentHandler.Currencies)
	app.Post("/api/payment/calculate", paymentHandler.Calculate)
	app.Post("/api/payment/create", paymentHandler.CreatePayment)
	app.Get("/api/payment/status/:paymentId", paymentHandler.PaymentStatus)
	app.Post("/api/payment/webhook", paymentHandler.Webhook)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
