package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"prompt-arena/config"
	"prompt-arena/handlers"
	"prompt-arena/middleware"
	"prompt-arena/models"
	"prompt-arena/services"
	"prompt-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	app := fiber.New()

	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// TranslateError surfaces unique-constraint races as gorm.ErrDuplicatedKey,
	// which the wallet/attempt paths rely on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.Conversation{},
		&models.Message{},
		&models.CreditWallet{},
		&models.CreditTransaction{},
		&models.CreditPurchase{},
		&models.Payment{},
		&models.Attempt{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	if err := services.EnsureSequences(db); err != nil {
		log.Fatal("failed to create id sequences: ", err)
	}
	if err := utils.SeedChallenges(db); err != nil {
		log.Fatal("failed to seed challenges: ", err)
	}

	provider := services.NewMollieClient(cfg.MollieBaseURL, cfg.MollieAPIKey)
	walletService := services.NewWalletService(db)
	botService := services.NewBotService(cfg.SecretExposureProbability)
	authService := services.NewAuthService(db, cfg)
	challengeService := services.NewChallengeService(db, cfg, walletService, botService)
	paymentService := services.NewPaymentService(db, cfg, provider)
	creditService := services.NewCreditService(db, cfg, provider, walletService)
	attemptService := services.NewAttemptService(db)

	requireAuth := middleware.RequireAuth(db, cfg)
	handlers.SetupAuthRoutes(app, authService, requireAuth)
	handlers.SetupChallengeRoutes(app, challengeService, requireAuth)
	handlers.SetupPaymentRoutes(app, paymentService, requireAuth)
	handlers.SetupCreditRoutes(app, creditService, requireAuth)
	handlers.SetupAttemptRoutes(app, attemptService, requireAuth)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	reconciler := services.NewReconcilerService(db, provider, paymentService, creditService)
	if cfg.ReconcileEnabled {
		interval := time.Duration(cfg.ReconcileIntervalMinutes) * time.Minute
		if err := reconciler.Start(interval); err != nil {
			log.Fatal("failed to start payment reconciler: ", err)
		}
		defer reconciler.Stop()
		log.Infof("✅ Payment reconciler running (every %s)", interval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Errorf("Server error: %v", err)
		}
	}()
	log.Infof("✅ Server running on %s", cfg.ListenAddr)

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}
}
