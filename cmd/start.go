package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"binary-metadata/core/loader"
	"binary-metadata/core/logger"
	"binary-metadata/core/middleware/auth"
	"binary-metadata/core/middleware/rayid"

	"binary-metadata/feature/document"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "binary-metadata/docs/swagger"
)

// @title Binary Metadata API
// @version 1.0
// @description API for documents whose fields are kept in sync with the metadata embedded in their binaries.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the binary metadata server",
	Long:  `Loads the metadata descriptors, connects storage and starts the HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger and metadata engine
		rt, err := loadRuntime()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 2. Database and object storage
		svc, err := rt.documentService(ctx)
		if err != nil {
			logg.Fatal("Failed to initialize document service", zap.Error(err))
		}

		// 3. Async worker pool
		worker := document.NewAsyncWorker(rt.cfg.Metadata.AsyncWorkers, rt.cfg.Metadata.AsyncQueueSize, svc.ProcessAsync, logg)
		svc.UseWorker(worker)
		workerDone := make(chan error, 1)
		go func() {
			workerDone <- worker.Run(ctx)
		}()

		// 4. Fiber app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             rt.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager()
		mgr.Register(document.NewFeature(svc))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start server
		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful shutdown: stop accepting requests, then drain queued jobs
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		timeout := time.Duration(rt.cfg.Server.ShutdownTimeout()) * time.Second
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}

		worker.Close()
		select {
		case err := <-workerDone:
			if err != nil {
				logg.Warn("Async worker stopped with error", zap.Error(err))
			}
		case <-time.After(timeout):
			logg.Warn("Async worker did not drain in time")
			cancel()
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
