package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/chessai-backend/internal/config"
	"github.com/benbeisheim/chessai-backend/internal/controller"
	"github.com/benbeisheim/chessai-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.InitLog(cfg.LogPath, "SERVER: "); err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: cfg.LogPath != "",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: cfg.Origins != "*",
	}))
	app.Use(logger.New(logger.Config{
		Output: log.Writer(),
	}))

	gameManager := service.NewGameManager(cfg.Depth, cfg.Seed)
	gameService := service.NewGameService(gameManager)
	controller.RegisterRoutes(app, gameService, cfg.Origins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go gameManager.Run(ctx, cfg.MatchInterval)
	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (depth %d)", cfg.Addr, cfg.Depth)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
	gameManager.Wait()
}
