package main

import (
	"log"
	"time"

	config "github.com/edusphere/admissions_backend/configs"
	"github.com/edusphere/admissions_backend/database"
	"github.com/edusphere/admissions_backend/handlers"
	"github.com/edusphere/admissions_backend/jobs"
	"github.com/edusphere/admissions_backend/notifications"
	"github.com/edusphere/admissions_backend/payments"
	"github.com/edusphere/admissions_backend/routes"
	"github.com/edusphere/admissions_backend/services"
	"github.com/edusphere/admissions_backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	enrollmentService := services.NewEnrollmentService(
		database.DB,
		config.LoadPolicy(),
		payments.NewGatewayService(),
		config.Config("GATEWAY_WEBHOOK_SECRET"),
	)
	handlers.InitEnrollmentService(enrollmentService)

	c := cron.New()
	c.AddFunc("0 9 * * *", jobs.SendInstallmentReminders)
	c.AddFunc("30 0 * * *", jobs.MarkOverdueInstallments)
	go c.Start()
	log.Println("✅ Cron jobs for installments scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Admissions API",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Kolkata",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Admissions API",
		})
	})

	routes.PublicRoutes(app)
	routes.AuthRoutes(app)
	routes.PaymentRoutes(app)
	routes.AdminRoutes(app)
	routes.UploadRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
