package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/w3art/marko/configs"
	"github.com/w3art/marko/internal/api/handlers"
	"github.com/w3art/marko/internal/api/middleware"
	job "github.com/w3art/marko/internal/jobs"
	"github.com/w3art/marko/internal/queue"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	// Generated images are written here and served back to the frontend.
	app.Static("/uploads", cfg.UploadDir)

	userRepo := repository.NewUserRepository(db)
	metaAccountRepo := repository.NewMetaAccountRepository(db)
	oauthStateRepo := repository.NewOAuthStateRepository(db)
	contentRepo := repository.NewContentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	metaClient := service.NewMetaClient(*cfg)
	authService := service.NewAuthService(userRepo)
	aiService := service.NewAIService(*cfg)
	imageService := service.NewImageService(*cfg)
	r2Service := service.NewR2Service(*cfg)
	metaService := service.NewMetaService(*cfg, metaClient, metaAccountRepo, oauthStateRepo)
	contentService := service.NewContentService(contentRepo, analyticsRepo, metaService, metaAccountRepo)
	campaignService := service.NewCampaignService(aiService, campaignRepo, contentRepo)
	chatService := service.NewChatService(aiService, conversationRepo, messageRepo, userRepo, metaAccountRepo)
	analyticsService := service.NewAnalyticsService(aiService, metaService, metaClient, analyticsRepo, contentRepo, campaignRepo, metaAccountRepo, userRepo)
	mediaService := service.NewMediaService(r2Service, mediaAssetRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/api/auth/register", auth.Register)
	app.Post("/api/auth/login", auth.Login)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/auth/me", auth.Me)
	api.Put("/auth/me", auth.UpdateProfile)

	meta := handlers.NewMetaHandler(metaService)
	api.Get("/meta/status", meta.Status)
	api.Get("/meta/connect", meta.Connect)
	api.Post("/meta/callback", meta.Callback)
	api.Post("/meta/select-page", meta.SelectPage)
	api.Post("/meta/publish", meta.Publish)
	api.Get("/meta/accounts", meta.Accounts)
	api.Delete("/meta/disconnect", meta.Disconnect)

	chat := handlers.NewChatHandler(chatService)
	api.Get("/chat/conversations", chat.ListConversations)
	api.Get("/chat/conversations/:id", chat.GetConversation)
	api.Post("/chat/send", chat.Send)
	api.Delete("/chat/conversations/:id", chat.DeleteConversation)

	content := handlers.NewContentHandler(contentService, aiService, imageService, client)
	api.Post("/content/generate", content.Generate)
	api.Post("/content/generate-image", content.GenerateImage)
	api.Post("/content", content.Create)
	api.Get("/content", content.List)
	api.Get("/content/:id", content.Get)
	api.Put("/content/:id", content.Update)
	api.Post("/content/:id/publish", content.Publish)
	api.Delete("/content/:id", content.Delete)

	campaign := handlers.NewCampaignHandler(campaignService)
	api.Post("/campaigns", campaign.Create)
	api.Get("/campaigns", campaign.List)
	api.Get("/campaigns/:id", campaign.Get)
	api.Put("/campaigns/:id", campaign.Update)
	api.Delete("/campaigns/:id", campaign.Delete)
	api.Post("/campaigns/:id/generate-strategy", campaign.GenerateStrategy)
	api.Get("/campaigns/:id/content", campaign.Content)

	analytics := handlers.NewAnalyticsHandler(analyticsService)
	api.Get("/analytics/overview", analytics.Overview)
	api.Get("/analytics/content/:id", analytics.ContentAnalytics)
	api.Post("/analytics/content/:id/refresh", analytics.Refresh)
	api.Post("/analytics/content/:id/analyze", analytics.Analyze)
	api.Get("/analytics/campaign/:id", analytics.Campaign)
	api.Get("/analytics/top-content", analytics.TopContent)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Get("/media", media.List)
	api.Delete("/media/:id", media.Remove)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, metaAccountRepo, metaClient)
	stateSweepJob := job.NewStateSweepJob(oauthStateRepo)

	//queue
	queueW := queue.NewQueue(contentRepo, contentService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", stateSweepJob.Sweep)
	c.AddFunc("@every 06h00m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishContent, queueW.HandlePublishContentTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":8000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:8000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
