package journal

import (
	"fmt"
	"sync/atomic"
	"testing"

	"trade-journal-go/internal/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// setupTest creates a service backed by an isolated in-memory database.
func setupTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:journal_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return NewService(zap.NewNop(), db)
}

func ptr[T any](v T) *T { return &v }

// openPayload is a minimal valid submit targeting the open state.
func openPayload() *TradePayload {
	return &TradePayload{
		LocalTZ:   "UTC+3",
		DateLocal: "2024-03-15",
		TimeLocal: "10:30:00",
		Asset:     "EUR/USD",
		Session:   "Frankfurt",
		RiskPct:   1.0,
		State:     StateOpen,
	}
}

// closedPayload is a valid submit targeting the closed state.
func closedPayload() *TradePayload {
	p := openPayload()
	p.State = StateClosed
	p.Closed = &ClosedStage{
		Result:        ResultWin,
		NetPnl:        ptr(125.5),
		RiskReward:    ptr(2.0),
		RewardPercent: ptr(20.0),
		HotThoughts:   "clean breakout entry",
	}
	return p
}
