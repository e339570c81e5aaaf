package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/credifiscal-api/internal/application/decision"
	"github.com/jhoicas/credifiscal-api/internal/application/document"
	"github.com/jhoicas/credifiscal-api/internal/application/ports"
	"github.com/jhoicas/credifiscal-api/internal/application/request"
	infraacte "github.com/jhoicas/credifiscal-api/internal/infrastructure/acte"
	infrapdf "github.com/jhoicas/credifiscal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/credifiscal-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/credifiscal-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/credifiscal-api/internal/interfaces/http"
	"github.com/jhoicas/credifiscal-api/pkg/config"
	"github.com/jhoicas/credifiscal-api/pkg/logger"
	"github.com/jhoicas/credifiscal-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
		Level:   "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reqRepo := postgres.NewCorrectionRequestRepository(pool)
	decRepo := postgres.NewDecisionRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Notificaciones de cambio de estado vía Redis Pub/Sub; si no hay Redis
	// configurado los eventos se descartan.
	var notifier ports.Notifier = infraredis.NopNotifier{}
	if cfg.Redis.Enabled() {
		publisher, err := infraredis.NewPublisher(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer publisher.Close()
		notifier = publisher
	}

	acteBuilder := infraacte.NewBuilderService()
	pdfGenerator := infrapdf.NewMarotoActeGenerator()

	createRequestUC := request.NewCreateRequestUseCase(txRunner, reqRepo)
	requestQueryUC := request.NewRequestQueryUseCase(reqRepo, decRepo, docRepo, pdfGenerator)
	admissibilityUC := request.NewAdmissibilityUseCase(txRunner, notifier)
	submitDecisionUC := decision.NewSubmitDecisionUseCase(txRunner, acteBuilder, notifier)
	documentUploadUC := document.NewUploadUseCase(txRunner, docRepo, reqRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CrediFiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateRequest:  createRequestUC,
		RequestQuery:   requestQueryUC,
		Admissibility:  admissibilityUC,
		SubmitDecision: submitDecisionUC,
		DocumentUpload: documentUploadUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
