package main

import (
	"log"

	"learnhub/config"
	"learnhub/routes"
	"learnhub/session"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Identity service and session store
	auth := session.NewAuthenticator(db, cfg)
	store := session.NewStore(auth, logger)
	store.Start()
	defer store.Close()

	unsubscribe := store.Subscribe(func(snap session.Snapshot) {
		switch {
		case snap.IsLoading:
			logger.Println("session: loading")
		case snap.Viewer == nil:
			logger.Println("session: anonymous")
		default:
			logger.Printf("session: viewer %s", snap.Viewer.ID)
		}
	})
	defer unsubscribe()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(utils.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, auth, store)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
