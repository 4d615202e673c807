package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/logger"

	"go.uber.org/zap"
)

// Seeds the journal with synthetic trades for demos and manual testing.
// Roughly two thirds of the rows are advanced to closed, every fifth closed
// one on to reviewed, exercising the real lifecycle path instead of raw
// inserts.
func main() {
	count := flag.Int("count", 10, "number of synthetic trades to insert")
	flag.Parse()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	svc := journal.NewService(log, db)

	assets := cfg.Journal.Assets
	if len(assets) == 0 {
		assets = []string{"EUR/USD"}
	}

	now := time.Now().UTC()
	for i := 0; i < *count; i++ {
		openedAt := now.Add(-time.Duration(i*6) * time.Hour)
		session := journal.Sessions[i%len(journal.Sessions)]

		payload := &journal.TradePayload{
			LocalTZ:   cfg.Journal.LocalTZ,
			DateLocal: openedAt.Format("2006-01-02"),
			TimeLocal: openedAt.Format("15:04:05"),
			Asset:     assets[i%len(assets)],
			Session:   session,
			RiskPct:   0.5 + float64(i%5)*0.1,
			State:     journal.StateOpen,
		}

		id, err := svc.CreateTrade(payload)
		if err != nil {
			log.Fatal("Failed to seed trade", zap.Int("index", i), zap.Error(err))
		}

		if i%3 == 0 {
			continue // leave open
		}

		// Advance through the real update path.
		result := journal.Results[i%len(journal.Results)]
		netPnl := float64((i + 1) * 50)
		if result == journal.ResultLoss {
			netPnl = -netPnl
		}
		rr := 1.0 + float64(i%4)*0.5
		rewardPct := rr * 10

		var problems []string
		if i%2 == 0 {
			problems = append(problems, journal.EmotionalProblems[0])
		}

		payload.State = journal.StateClosed
		payload.Closed = &journal.ClosedStage{
			Result:            result,
			NetPnl:            &netPnl,
			RiskReward:        &rr,
			RewardPercent:     &rewardPct,
			HotThoughts:       "Impulse entry",
			EmotionalProblems: problems,
		}
		if err := svc.UpdateTrade(id, payload); err != nil {
			log.Fatal("Failed to close seeded trade", zap.Uint("trade_id", id), zap.Error(err))
		}

		if i%5 == 0 {
			estimation := i % 2
			payload.State = journal.StateReviewed
			payload.Review = &journal.ReviewStage{
				ColdThoughts: "Calm review",
				Estimation:   &estimation,
			}
			if err := svc.UpdateTrade(id, payload); err != nil {
				log.Fatal("Failed to review seeded trade", zap.Uint("trade_id", id), zap.Error(err))
			}
		}
	}

	log.Info("Seeded synthetic trades", zap.Int("count", *count))
}
