package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/config"
	"alfredoptarigan/resume-tailor/internal/handlers"
	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/repositories"
	"alfredoptarigan/resume-tailor/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zl.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	// Initialize repositories
	resumeRepo := repositories.NewResumeRepository(db)
	cvRepo := repositories.NewCVRepository(db)
	jobRepo := repositories.NewJobPostingRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	zl.Info("✅ Repositories initialized successfully")

	// Initialize the model gateway
	llmLog := logger.WithCommonFields(zl, cfg.LLM.Provider, cfg.LLM.Model)
	gateway, err := services.NewLLMGateway(cfg.LLM, llmLog)
	if err != nil {
		zl.Fatal("❌ Failed to initialize LLM gateway", zap.Error(err))
	}
	zl.Info("✅ LLM gateway initialized", zap.String(logger.FieldProvider, gateway.Provider()))

	// Initialize services
	validator := services.MustNewResponseValidator()
	extractor := services.NewTextExtractor()
	renderer := services.NewDocumentRenderer(cfg.Renderer.Timeout, cfg.Renderer.ChromePath, zl)
	payments := services.NewPaymentService(
		resumeRepo,
		purchaseRepo,
		cfg.Payment.TokenSecret,
		cfg.Payment.TokenTTL,
		cfg.Payment.StripeWebhookSecret,
		zl,
	)
	resumeService := services.NewResumeService(resumeRepo, extractor, gateway, validator, payments, llmLog)
	cvService := services.NewCVService(cvRepo, extractor, zl)
	applicationService := services.NewApplicationService(
		cvRepo,
		jobRepo,
		appRepo,
		payments,
		gateway,
		validator,
		renderer,
		llmLog,
	)
	zl.Info("✅ Services initialized successfully")

	// Initialize handlers
	h := handlers.Handlers{
		Resume:      handlers.NewResumeHandler(resumeService, cfg.Storage.MaxFileSize, zl),
		CV:          handlers.NewCVHandler(cvService, cfg.Storage.MaxFileSize, zl),
		Application: handlers.NewApplicationHandler(applicationService, zl),
		Export:      handlers.NewExportHandler(renderer, payments, zl),
	}
	zl.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Tailor API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature, " + handlers.SessionHeader,
	}))

	// Routes
	handlers.Register(app.Group("/api/v1"), h)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Tailor API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/parse-cv",
				"POST /api/v1/ats-rewrite",
				"POST /api/v1/jd-match",
				"POST /api/v1/cover-letter",
				"GET /api/v1/resumes/:id/download",
				"POST /api/v1/export-pdf",
				"POST /api/v1/payment-webhook",
				"POST /api/v1/cv",
				"POST /api/v1/cv/upload",
				"GET /api/v1/applications",
				"POST /api/v1/applications",
				"POST /api/v1/applications/stream",
				"GET /api/v1/applications/:id",
				"PATCH /api/v1/applications/:id",
				"GET /api/v1/applications/:id/pdf",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			zl.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
