package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"payments-backend/controllers"
	"payments-backend/database"
	"payments-backend/metrics"
	"payments-backend/middlewares"
	"payments-backend/repository"
	"payments-backend/routes"
	"payments-backend/services"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// ---- Database
	database.Connect()
	database.AutoMigrate()

	// ---- Dependencies (constructed once, passed explicitly)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	recorder := metrics.NewRedisRecorder(
		envStr("CACHE_HOST", "localhost"),
		envStr("CACHE_PORT", "6379"),
	)

	chargeRepo := repository.NewGormChargeRepository(database.DB)
	idempotencyRepo := repository.NewGormIdempotencyRepository(database.DB)
	idempotency := services.NewIdempotencyService(idempotencyRepo, recorder, logger)
	gateway := services.NewSimulatedGateway(
		time.Duration(envInt("GATEWAY_DELAY_MS", 100)) * time.Millisecond)
	payments := services.NewPaymentService(chargeRepo, idempotency, gateway, recorder, logger)
	controller := controllers.NewPaymentController(payments)

	// ---- Limits (configurable via env)
	bodyLimitBytes := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	app.Use(recover.New())

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: envStr("ALLOWED_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key, X-Correlation-ID",
	}))

	// ---- Global rate limiter
	rlMax := envInt("RATE_LIMIT_MAX", 60)
	rlWindow := time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
	}))

	// ---- Observability: metrics outermost, then request logging
	app.Use(middlewares.Metrics(recorder))
	app.Use(middlewares.RequestLogger(logger))
	app.Get("/metrics", monitor.New())

	// ---- Swagger / OpenAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/",
		FilePath: "./docs/openapi.yml",
		Path:     "v1",
	}))

	// ---- Routes
	routes.Register(app, controller, recorder)

	// ---- Start
	logger.Info("payment API starting", "port", envStr("PORT", "8080"))
	if err := app.Listen(":" + envStr("PORT", "8080")); err != nil {
		panic(err)
	}
}
