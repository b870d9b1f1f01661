package main

import (
	"context"
	"errors"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"interview-agent/internal/config"
	"interview-agent/internal/domain/fiber/handler"
	"interview-agent/internal/logger"
	"interview-agent/internal/middleware"
	"interview-agent/internal/repository"
	"interview-agent/internal/service"
	"interview-agent/internal/usecase"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	llmConfig := config.LoadLLMConfig()

	zlog, err := logger.New(appConfig.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(healthcheck.New())
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	client, err := buildCompletionClient(ctx, llmConfig, zlog)
	if err != nil {
		zlog.Fatal("could not build completion client", zap.Error(err))
	}

	invoker := service.NewInvoker(client, llmConfig, zlog)
	store := repository.NewSessionRepository()
	generator := usecase.NewQuestionGenerator(invoker, zlog)
	evaluator := usecase.NewAnswerEvaluator(invoker, zlog)
	uc := usecase.NewInterviewUsecase(store, generator, evaluator, llmConfig.EvalMode, zlog)
	h := handler.NewInterviewHandler(uc)

	h.RegisterRoutes(app)

	// Background units are plain goroutines; keep an eye on their count.
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			zlog.Debug("runtime stats",
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("sessions", store.Count()))
		}
	}()

	port := appConfig.Port
	if port == "" {
		port = ":3000"
	}

	zlog.Info("server running",
		zap.String("port", port),
		zap.String("provider", llmConfig.Provider),
		zap.String("model", llmConfig.Model),
		zap.String("eval_mode", llmConfig.EvalMode))
	if err := app.Listen(port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func buildCompletionClient(ctx context.Context, cfg *config.LLMConfig, zlog *zap.Logger) (service.CompletionClient, error) {
	switch cfg.Provider {
	case "openrouter":
		model := cfg.Model
		if os.Getenv("LLM_MODEL") == "" {
			model = "openai/gpt-4o-mini"
		}
		return service.NewOpenRouterService(model, zlog), nil
	default:
		return service.NewGeminiService(ctx, cfg.Model, zlog)
	}
}
