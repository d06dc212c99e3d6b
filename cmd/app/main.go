package main

import (
	"context"
	"log"
	"os"
	"time"

	"ExamPrepAPI/external/notifier"
	"ExamPrepAPI/external/paypal"
	"ExamPrepAPI/external/razorpay"

	"ExamPrepAPI/internal/config"
	"ExamPrepAPI/internal/db"
	"ExamPrepAPI/internal/middleware"
	"ExamPrepAPI/internal/repository"
	"ExamPrepAPI/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}

	// ======================
	// INFRA
	// ======================
	ctx := context.Background()

	if err := db.RunMigrations(cfg); err != nil {
		log.Fatal(err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	// ======================
	// EXTERNALS
	// ======================
	rzpClient := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	ppClient := paypal.NewClient(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalBaseURL)

	events := notifier.NewPublisher(cfg.Brokers(), cfg.KafkaTopic, logger)
	defer events.Close()

	// ======================
	// REPOSITORIES
	// ======================
	authRepo := repository.NewAuthRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	cartRepo := repository.NewCartRepository(rdb)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	// ======================
	// SERVICES
	// ======================
	jwtSecret := []byte(cfg.JWTSecret)
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour

	authSvc := services.NewAuthService(pool, authRepo, userRepo, jwtSecret, tokenTTL)
	cartSvc := services.NewCartService(cartRepo)
	orderSvc := services.NewOrderService(orderRepo, userRepo, events, logger)
	paymentSvc := services.NewPaymentService(
		paymentRepo, userRepo, rzpClient, ppClient, events,
		cfg.RazorpayKeySecret, logger,
	)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())

	api := e.Group("/exam-prep")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerAuthRoutes(api, authSvc)
	registerCartRoutes(api, cartSvc, jwtSecret)
	registerOrderRoutes(api, orderSvc, jwtSecret)
	registerPaymentRoutes(api, paymentSvc, jwtSecret)

	// ======================
	// SERVER
	// ======================
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
