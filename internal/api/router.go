package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/sinbc2003/cluade2/internal/api/handler"
	customMiddleware "github.com/sinbc2003/cluade2/internal/api/middleware"
	"github.com/sinbc2003/cluade2/internal/config"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/imagegen"
	"github.com/sinbc2003/cluade2/internal/intent"
	"github.com/sinbc2003/cluade2/internal/llm"
	"github.com/sinbc2003/cluade2/internal/llm/anthropic"
	"github.com/sinbc2003/cluade2/internal/llm/gemini"
	"github.com/sinbc2003/cluade2/internal/llm/openai"
	"github.com/sinbc2003/cluade2/internal/repository/mongo"
	"github.com/sinbc2003/cluade2/internal/repository/postgres"
	"github.com/sinbc2003/cluade2/internal/repository/redis"
	"github.com/sinbc2003/cluade2/internal/security"
	"github.com/sinbc2003/cluade2/internal/service"
)

// Deps carries the shared infrastructure handles the router wires together
type Deps struct {
	Docs        *mongo.DB
	Usage       *postgres.DB
	Redis       *redis.Client
	ImageStore  imagegen.ObjectStore
	RetentionFn func(*service.RetentionSweeper)
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Repositories
	chatbotRepo := mongo.NewChatbotRepository(deps.Docs)
	sessionRepo := mongo.NewSessionRepository(deps.Docs)
	historyRepo := mongo.NewHistoryRepository(deps.Docs)
	publicHistoryRepo := mongo.NewPublicHistoryRepository(deps.Docs)
	userRepo := mongo.NewUserRepository(deps.Docs)

	usageRepo := postgres.NewUsageRepository(deps.Usage.Pool)

	var sessionCache service.SessionCache
	var rateLimiter *redis.RateLimiter
	if deps.Redis != nil {
		sessionCache = redis.NewSessionCache(deps.Redis)
		rateLimiter = redis.NewRateLimiter(
			deps.Redis,
			cfg.RateLimit.RequestsPerMinute,
			cfg.RateLimit.Burst,
		)
	}

	// Model routing
	llmRouter := llm.NewRouter()
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.Register(openai.NewProvider(cfg.LLM.OpenAI.APIKey), "gpt-")
	} else {
		log.Warn().Msg("OpenAI API key is empty, skipping registration")
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.Register(gemini.NewProvider(cfg.LLM.Gemini.APIKey), "gemini-")
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.Register(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey), "claude-")
	} else {
		log.Warn().Msg("Anthropic API key is empty, skipping registration")
	}

	// Image pipeline
	classifier := intent.NewClassifier()
	var images service.ImageGenerator
	if cfg.LLM.OpenAI.APIKey != "" && deps.ImageStore != nil {
		synth := imagegen.NewDalleSynthesizer(cfg.LLM.OpenAI.APIKey, cfg.Image.Model)
		images = imagegen.NewGenerator(synth, deps.ImageStore, classifier, cfg.Image.Prefix)
	} else {
		images = imagegen.Disabled{}
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	chatbotService := service.NewChatbotService(chatbotRepo)
	usageService := service.NewUsageService(usageRepo)

	historyService := service.NewHistoryService(historyRepo, chatbotRepo)
	publicHistoryService := service.NewHistoryService(publicHistoryRepo, chatbotRepo)

	sessionService := service.NewSessionService(sessionRepo, sessionCache, historyService)
	publicSessionService := service.NewSessionService(sessionRepo, sessionCache, publicHistoryService)

	dispatchService := service.NewDispatchService(sessionService, llmRouter, classifier, images, usageService, cfg.LLM.StreamTimeout)
	publicDispatchService := service.NewDispatchService(publicSessionService, llmRouter, classifier, images, usageService, cfg.LLM.StreamTimeout)

	if deps.RetentionFn != nil {
		sweeper := service.NewRetentionSweeper(
			usageRepo,
			[]domain.HistoryRepository{historyRepo, publicHistoryRepo},
			cfg.Retention.Window,
			cfg.Retention.SweepInterval,
		)
		deps.RetentionFn(sweeper)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	chatbotHandler := handler.NewChatbotHandler(chatbotService, images)
	chatHandler := handler.NewChatHandler(dispatchService, sessionService, chatbotService)
	publicChatHandler := handler.NewPublicChatHandler(publicDispatchService, publicSessionService, chatbotService)
	historyHandler := handler.NewHistoryHandler(historyService)
	usageHandler := handler.NewUsageHandler(usageService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Docs, deps.Usage))

		// Auth routes (public)
		r.Post("/auth/login", authHandler.Login)

		// Public chatbot surface: anonymous visitors, rate limited
		r.Route("/public/chatbots", func(r chi.Router) {
			r.Use(customMiddleware.VisitorIdentity)
			if rateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}

			r.Get("/", chatbotHandler.ListShared)

			r.Route("/{chatbotID}", func(r chi.Router) {
				r.Get("/", publicChatHandler.GetSession)
				r.Post("/chat", publicChatHandler.Chat)
				r.Post("/reset", publicChatHandler.Reset)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/password", authHandler.ChangePassword)
			r.With(authMiddleware.RequirePrivileged).Post("/auth/register", authHandler.Register)

			r.Get("/models", handler.ListModels(llmRouter))
			r.With(authMiddleware.RequirePrivileged).Get("/usage", usageHandler.List)

			r.Route("/chatbots", func(r chi.Router) {
				r.Get("/", chatbotHandler.List)
				r.Get("/shared", chatbotHandler.ListShared)
				r.Post("/", chatbotHandler.Create)

				r.Route("/{chatbotID}", func(r chi.Router) {
					r.Get("/", chatbotHandler.Get)
					r.Put("/", chatbotHandler.Update)
					r.Delete("/", chatbotHandler.Delete)
					r.Patch("/visibility", chatbotHandler.SetVisibility)
					r.Post("/profile-image", chatbotHandler.GenerateProfileImage)

					r.Get("/session", chatHandler.GetSession)
					r.Post("/chat", chatHandler.Chat)
					r.Post("/reset", chatHandler.Reset)

					r.Get("/history", historyHandler.ListByChatbot)
					r.Delete("/history/{recordID}", historyHandler.Delete)
				})
			})
		})
	})

	return r
}
