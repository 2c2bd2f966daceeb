package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"reelforge/api-gateway/billing"
	"reelforge/api-gateway/config"
	"reelforge/api-gateway/handlers"
	"reelforge/api-gateway/internal/genclient"
	"reelforge/api-gateway/internal/jobs"
	"reelforge/api-gateway/middleware"
	"reelforge/api-gateway/pipeline"
	"reelforge/api-gateway/snapshot"
	"reelforge/api-gateway/wizard"
)

func main() {
	cfg := config.Load()

	config.InitLogger(cfg.Env)

	if err := config.InitSupabase(cfg); err != nil {
		log.Fatalf("Failed to initialize Supabase: %v", err)
	}

	rdb, err := config.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer rdb.Close()

	gen := genclient.New(cfg.GenBackendURL, config.Log)
	jobStore := jobs.NewStore(config.SupabaseClient)
	runner := pipeline.NewRunner(gen, jobStore, config.Log, cfg.TargetClipsCount)
	sessions := wizard.NewRegistry()
	snapshots := snapshot.NewStore(rdb, snapshot.DefaultTTL)
	billingSvc := billing.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceProID)

	h := handlers.NewApplicationHandler(gen, runner, sessions, snapshots, billingSvc, config.Log, config.SupabaseClient)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // locked down per environment at the edge
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))
	app.Use(middleware.RequestLogger())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Creation service is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")

	// Stripe calls this; it authenticates with its signature, not a JWT.
	apiV1.Post("/billing/webhook", h.StripeWebhook)

	authed := apiV1.Group("", middleware.RequireAuth(cfg.SupabaseJWTSecret))

	// Wizard session routes
	sessionsGroup := authed.Group("/wizard/sessions")
	sessionsGroup.Post("", h.CreateSession)
	sessionsGroup.Get("/:sessionId", h.GetSession)
	sessionsGroup.Delete("/:sessionId", h.CloseSession)
	sessionsGroup.Post("/:sessionId/script", h.SubmitScript)
	sessionsGroup.Post("/:sessionId/enhance", h.EnhanceScript)
	sessionsGroup.Post("/:sessionId/regenerate", h.RegenerateScript)
	sessionsGroup.Post("/:sessionId/voice", h.SelectVoice)
	sessionsGroup.Post("/:sessionId/template", h.SelectTemplate)
	sessionsGroup.Post("/:sessionId/advance", h.AdvanceStep)
	sessionsGroup.Post("/:sessionId/retreat", h.RetreatStep)
	sessionsGroup.Post("/:sessionId/pipeline", h.StartPipeline)
	sessionsGroup.Get("/:sessionId/pipeline", h.GetPipelineStatus)
	sessionsGroup.Post("/:sessionId/assemble", h.AssembleVideo)

	// Library routes
	authed.Get("/videos", h.ListVideos)
	authed.Get("/videos/:videoId", h.GetVideo)
	authed.Delete("/videos/:videoId", h.DeleteVideo)

	// Pipeline job status
	authed.Get("/jobs/:jobId", h.GetJobStatus)

	// Templates for the optional template step
	authed.Get("/templates", handlers.ListTemplates)

	// Profile routes
	authed.Get("/profile", handlers.GetProfile)
	authed.Patch("/profile", handlers.UpdateProfile)

	// Billing
	authed.Post("/billing/checkout", h.CreateCheckout)

	log.Printf("Starting creation service on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
