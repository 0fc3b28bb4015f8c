package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"aspir_backend/internals/configs"
	database "aspir_backend/internals/databases"
	"aspir_backend/internals/middlewares"
	"aspir_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Reload()

	app := fiber.New(fiber.Config{
		AppName:      "ASPIR Backend",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"code":    code,
				"status":  "error",
				"message": err.Error(),
			})
		},
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()
	if configs.GetEnv("RUN_MIGRATIONS", "true") == "true" {
		database.Migrate()
	}
	rdb := database.ConnectRedis(cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	route.SetupRoutes(app, database.DB, rdb)

	port := configs.GetEnv("PORT", "8080")

	go func() {
		log.Printf("🚀 Listening on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("❌ server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown err: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Println("✅ Bye")
}
