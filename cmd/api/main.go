package main

import (
	"log"

	"github.com/ethanbaker/smartmarket/internal/api"
	"github.com/ethanbaker/smartmarket/internal/audit"
	"github.com/ethanbaker/smartmarket/pkg/config"
	"github.com/ethanbaker/smartmarket/pkg/database"
	"github.com/ethanbaker/smartmarket/pkg/gateway"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/ethanbaker/smartmarket/pkg/llm"
)

// Start the API server
func main() {
	// Load global config
	cfg, err := config.Load(config.EnvFile())
	if err != nil {
		log.Fatalf("[API-MAIN]: Failed to load config: %v", err)
	}

	// Open the backing store and make sure the schema exists
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("[API-MAIN]: Failed to open database: %v", err)
	}
	defer database.Close(db)

	store := ledger.NewStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("[API-MAIN]: Failed to migrate ledger: %v", err)
	}
	asks := gateway.NewAskLog(db)
	if err := asks.Migrate(); err != nil {
		log.Fatalf("[API-MAIN]: Failed to migrate ask log: %v", err)
	}
	l := ledger.New(store)

	// Create the text-understanding collaborator
	model, err := newModel(&cfg.LLM)
	if err != nil {
		log.Fatalf("[API-MAIN]: Failed to create model: %v", err)
	}

	gw := gateway.New(model, store, gateway.Options{
		Threshold: cfg.LLM.ClassifierThreshold,
		Dialect:   cfg.Database.SQLDialect(),
		Log:       asks,
	})

	// Schedule the replay audit
	auditor, err := audit.NewAuditor(l, &cfg.Audit)
	if err != nil {
		log.Fatalf("[API-MAIN]: Failed to create auditor: %v", err)
	}
	auditor.Start()
	defer auditor.Stop()

	// Start
	if err := api.Start(&cfg.API, &api.Dependencies{DB: db, Ledger: l, Gateway: gw, AskLog: asks}); err != nil {
		log.Fatal("[API-MAIN]: Failed to start server: ", err)
	}
}

// newModel pairs the chat client with a zero-shot classifier when one is
// configured, or lets the chat model score labels itself
func newModel(cfg *config.LLMConfig) (llm.Model, error) {
	chat, err := llm.NewChatClient(llm.ChatConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	if cfg.ClassifierURL == "" {
		log.Println("[API-MAIN]: CLASSIFIER_URL not set, classifying with the chat model")
		return llm.Combine(chat, llm.NewChatClassifier(chat)), nil
	}
	return llm.Combine(chat, llm.NewZeroShotClient(cfg.ClassifierURL, cfg.APIKey, cfg.Timeout)), nil
}
