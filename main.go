package main

import (
	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	"lms/routers/courseRoutes"
	"lms/services/learning"
	"lms/services/notification"
	"lms/services/rewards"
	"lms/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db
	cfg := config.AppConfig

	ledger := rewards.NewLedger(db)
	inbox := notification.NewDispatcher(db, cfg.NotificationWebhookURL)
	svc := learning.NewService(db, learning.Hooks{
		Points:   ledger,
		Notifier: inbox,
		Mailer:   utils.NewMailer(cfg),
	}, learning.Options{
		EnforceQuizExpiry: cfg.QuizExpiryEnforced,
		ExpiryGrace:       time.Duration(cfg.QuizExpiryGraceSecond) * time.Second,
		BaseURL:           cfg.AppBaseURL,
	})

	if _, err := utils.InitializeProgressScheduler(svc, cfg.ReconcileCron); err != nil {
		log.Fatalf("Failed to start progress scheduler: %v", err)
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	h := controllers.NewHandler(svc, ledger, inbox)
	courseRoutes.SetupCourseRoutes(app, h)
	courseRoutes.SetupAdminCourseRoutes(app, h)

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
