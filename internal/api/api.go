package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/ethanbaker/api/pkg/api_key"
	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/smartmarket/pkg/config"
	"github.com/ethanbaker/smartmarket/pkg/gateway"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	chat_module "github.com/ethanbaker/smartmarket/internal/api/modules/chat"
	health_module "github.com/ethanbaker/smartmarket/internal/api/modules/health"
	items_module "github.com/ethanbaker/smartmarket/internal/api/modules/items"
	reports_module "github.com/ethanbaker/smartmarket/internal/api/modules/reports"
)

// Dependencies are the services the HTTP modules serve
type Dependencies struct {
	DB      *gorm.DB
	Ledger  *ledger.Ledger
	Gateway *gateway.Gateway
	AskLog  *gateway.AskLog
}

// NewEngine builds the gin engine with every module registered under '/api'
func NewEngine(cfg *config.APIConfig, deps *Dependencies) (*gin.Engine, error) {
	// Make api key validator
	validator, err := makeApiKeyValidator(cfg)
	if err != nil {
		return nil, err
	}
	auth := api_key.APIKeyHeaderHandler(validator)

	// Add app level settings/routes
	engine := gin.Default()
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	// Adding custom modules
	health_module.RegisterRoutes(baseGroup, deps.DB)
	items_module.RegisterRoutes(baseGroup, deps.Ledger, auth)
	reports_module.RegisterRoutes(baseGroup, deps.Ledger)
	if deps.Gateway != nil {
		chat_module.RegisterRoutes(baseGroup, deps.Gateway, deps.AskLog, auth)
	} else {
		log.Println("[API-MAIN]: no gateway configured, chat routes are disabled")
	}

	return engine, nil
}

// Start builds the engine and serves it on the configured port
func Start(cfg *config.APIConfig, deps *Dependencies) error {
	engine, err := NewEngine(cfg, deps)
	if err != nil {
		return err
	}

	log.Printf("[API-MAIN]: listening on :%s\n", cfg.Port)
	return engine.Run(":" + cfg.Port)
}

// makeApiKeyValidator checks if the provided API key is valid
func makeApiKeyValidator(cfg *config.APIConfig) (func(key string) bool, error) {
	apiKey := strings.TrimSpace(cfg.Key)
	if apiKey == "" {
		return nil, errors.New("API_KEY not set in environment")
	}

	return func(key string) bool {
		return apiKey == key
	}, nil
}
