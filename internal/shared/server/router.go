package server

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalens-backend/internal/analysis"
	"legalens-backend/internal/chat"
	"legalens-backend/internal/llm"
	"legalens-backend/internal/llm/gemini"
	"legalens-backend/internal/llm/openai"
	"legalens-backend/internal/shared/config"
	"legalens-backend/internal/shared/metrics"
	"legalens-backend/internal/shared/server/middleware"
	"legalens-backend/internal/shared/server/respond"
	"legalens-backend/internal/shared/storage/db"
	"legalens-backend/internal/shared/telemetry"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(rateLimits()),
	)

	// Dependencies
	sqlDB := connectDatabase(cfg)

	var analysisRepo analysis.Repo
	if sqlDB != nil {
		analysisRepo = &analysis.PGRepo{DB: sqlDB}
	} else {
		analysisRepo = analysis.NewMemoryRepo()
	}
	var chatStore chat.Store
	if sqlDB != nil {
		chatStore = &chat.PGStore{DB: sqlDB}
	} else {
		chatStore = chat.NewMemoryStore()
	}

	client := newLLMClient(cfg)
	runner := analysis.NewRunner(analysis.RunnerConfig{
		MaxAttempts: cfg.RunnerMaxAttempts,
		BaseDelay:   cfg.RunnerBaseDelay,
	})

	analysisSvc := &analysis.Service{
		Repo:         analysisRepo,
		Orchestrator: analysis.NewOrchestrator(client, runner),
		Languages:    cfg.SupportedLanguages,
	}
	analysisHandler := analysis.NewHandler(analysisSvc)

	chatSvc := &chat.Service{
		Store:    chatStore,
		Analyses: analysisSvc,
		Client:   client,
		Runner:   runner,
	}
	chatHandler := chat.NewHandler(chatSvc)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	analysisHandler.RegisterRoutes(api)
	chatHandler.RegisterRoutes(api)

	return r
}

// connectDatabase opens Postgres when configured, falling back to in-memory
// stores when the connection or migrations fail outside production.
func connectDatabase(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.DefaultServerOptions())
	if err != nil {
		telemetry.Warn("db.connect_failed", map[string]any{"error": err.Error()})
		return nil
	}
	if err := db.RunMigrations(context.Background(), dbConn); err != nil {
		telemetry.Warn("db.migrate_failed", map[string]any{"error": err.Error()})
		_ = dbConn.Close()
		return nil
	}
	return dbConn
}

// newLLMClient selects the configured provider, preferring a real provider
// and degrading to the mock client when no credentials are available.
func newLLMClient(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel)
		if err == nil {
			return client
		}
		telemetry.Warn("llm.provider_unavailable", map[string]any{"provider": "openai", "error": err.Error()})
	case "gemini":
		client, err := gemini.NewClient(context.Background(), cfg.LLMAPIKey, cfg.LLMModel)
		if err == nil {
			return client
		}
		telemetry.Warn("llm.provider_unavailable", map[string]any{"provider": "gemini", "error": err.Error()})
	}
	return llm.NewMockClient()
}

func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"analyze": {Rate: 0.5, Burst: 3},
			"chat":    {Rate: 1, Burst: 5},
			"default": {Rate: 10, Burst: 20},
		},
		DefaultGroup: "default",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method != http.MethodPost {
				return "default"
			}
			switch c.FullPath() {
			case "/api/v1/analyses":
				return "analyze"
			case "/api/v1/chat/sessions/:id/messages":
				return "chat"
			}
			return "default"
		},
		Limiter: middleware.NewRateLimiter(nil),
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
