package main

import (
	"fmt"
	"net/http"
	"os"

	"trade-journal-go/internal/chartcheck"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	svc := journal.NewService(log, db)
	checker := chartcheck.NewChecker(&cfg.ChartCheck, log)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, svc, checker)

	mux.HandleFunc("GET /api/trades", apiHandler.ListTrades)
	mux.HandleFunc("POST /api/trades", apiHandler.CreateTrade)
	mux.HandleFunc("GET /api/trades/{id}", apiHandler.GetTrade)
	mux.HandleFunc("PUT /api/trades/{id}", apiHandler.UpdateTrade)
	mux.HandleFunc("DELETE /api/trades/{id}", apiHandler.DeleteTrade)
	mux.HandleFunc("PUT /api/trades/{id}/notes", apiHandler.ReplaceTradeNotes)
	mux.HandleFunc("PUT /api/trades/{id}/charts", apiHandler.ReplaceTradeCharts)

	mux.HandleFunc("GET /api/analyses", apiHandler.ListAnalyses)
	mux.HandleFunc("POST /api/analyses", apiHandler.CreateAnalysis)
	mux.HandleFunc("GET /api/analyses/{id}", apiHandler.GetAnalysis)
	mux.HandleFunc("PUT /api/analyses/{id}", apiHandler.UpdateAnalysis)
	mux.HandleFunc("DELETE /api/analyses/{id}", apiHandler.DeleteAnalysis)
	mux.HandleFunc("PUT /api/analyses/{id}/notes", apiHandler.ReplaceAnalysisNotes)
	mux.HandleFunc("PUT /api/analyses/{id}/charts", apiHandler.ReplaceAnalysisCharts)

	mux.HandleFunc("GET /api/accounts", apiHandler.ListAccounts)
	mux.HandleFunc("POST /api/accounts", apiHandler.CreateAccount)
	mux.HandleFunc("POST /api/accounts/{id}/archive", apiHandler.ArchiveAccount)
	mux.HandleFunc("GET /api/setups", apiHandler.ListSetups)
	mux.HandleFunc("POST /api/setups", apiHandler.CreateSetup)
	mux.HandleFunc("GET /api/setups/{id}/charts", apiHandler.SetupCharts)
	mux.HandleFunc("POST /api/setups/{id}/charts", apiHandler.LinkChartToSetup)
	mux.HandleFunc("GET /api/notes/{id}/charts", apiHandler.NoteCharts)
	mux.HandleFunc("POST /api/notes/{id}/charts", apiHandler.LinkChartToNote)

	mux.HandleFunc("GET /api/stats", apiHandler.Stats)
	mux.HandleFunc("GET /api/equity", apiHandler.Equity)
	mux.HandleFunc("POST /api/charts/check", apiHandler.CheckChart)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting journal API server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("API server failed", zap.Error(err))
	}
}
