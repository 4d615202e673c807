package journal

import (
	"testing"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTrade_StartsOpen(t *testing.T) {
	svc := setupTest(t)

	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "open", trade.State)
	assert.Equal(t, 1.0, trade.RiskPct)
	assert.Nil(t, trade.Result)
	assert.Nil(t, trade.NetPnl)
	assert.Nil(t, trade.RiskReward)
	assert.Nil(t, trade.ClosedAtUTC)
}

func TestCreateTrade_MissedPath(t *testing.T) {
	svc := setupTest(t)

	p := openPayload()
	p.State = StateMissed
	id, err := svc.CreateTrade(p)
	require.NoError(t, err)

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "missed", trade.State)
	assert.Nil(t, trade.Result)
}

func TestCreateTrade_RejectsAdvancedState(t *testing.T) {
	svc := setupTest(t)

	p := closedPayload()
	_, err := svc.CreateTrade(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "initial state")
}

func TestCreateTrade_IgnoresOutcomeOnOpen(t *testing.T) {
	// A creation payload smuggling closed-stage data still lands with NULL
	// outcome columns.
	svc := setupTest(t)

	p := openPayload()
	p.Closed = &ClosedStage{Result: ResultWin, NetPnl: ptr(100.0), RiskReward: ptr(2.0)}
	id, err := svc.CreateTrade(p)
	require.NoError(t, err)

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Nil(t, trade.Result)
	assert.Nil(t, trade.NetPnl)
}

func TestUpdateTrade_OpenToClosed(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "closed", trade.State)
	require.NotNil(t, trade.Result)
	assert.Equal(t, "win", *trade.Result)
	require.NotNil(t, trade.NetPnl)
	assert.Equal(t, 125.5, *trade.NetPnl)
	require.NotNil(t, trade.RiskReward)
	assert.Equal(t, 2.0, *trade.RiskReward)
	assert.NotNil(t, trade.ClosedAtUTC)
}

func TestUpdateTrade_DowngradeResetsClosedFields(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	closed, err := svc.GetTrade(id)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAtUTC)
	closedAt := *closed.ClosedAtUTC

	// Walk the trade back down to open.
	require.NoError(t, svc.UpdateTrade(id, openPayload()))

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "open", trade.State)
	assert.Nil(t, trade.Result)
	assert.Nil(t, trade.NetPnl)
	assert.Nil(t, trade.RiskReward)
	assert.Nil(t, trade.RewardPercent)
	assert.Nil(t, trade.HotThoughts)
	assert.Nil(t, trade.EmotionalProblems)
	// The closing timestamp is never cleared once stamped.
	require.NotNil(t, trade.ClosedAtUTC)
	assert.Equal(t, closedAt, *trade.ClosedAtUTC)
}

func TestUpdateTrade_ClosedAtStampedOnce(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTrade(id, closedPayload()))
	first, err := svc.GetTrade(id)
	require.NoError(t, err)
	require.NotNil(t, first.ClosedAtUTC)

	// Down to open and back up to closed: the stamp must not move.
	require.NoError(t, svc.UpdateTrade(id, openPayload()))
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	second, err := svc.GetTrade(id)
	require.NoError(t, err)
	require.NotNil(t, second.ClosedAtUTC)
	assert.Equal(t, *first.ClosedAtUTC, *second.ClosedAtUTC)
}

func TestUpdateTrade_IllegalTransition(t *testing.T) {
	svc := setupTest(t)
	p := openPayload()
	p.State = StateMissed
	id, err := svc.CreateTrade(p)
	require.NoError(t, err)

	// missed -> closed is neither forward- nor backward-reachable.
	err = svc.UpdateTrade(id, closedPayload())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestUpdateTrade_ReviewFields(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	reviewed := closedPayload()
	reviewed.State = StateReviewed
	reviewed.Review = &ReviewStage{ColdThoughts: "entry was fine, exit early", Estimation: ptr(1)}
	require.NoError(t, svc.UpdateTrade(id, reviewed))

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "reviewed", trade.State)
	require.NotNil(t, trade.ColdThoughts)
	assert.Equal(t, "entry was fine, exit early", *trade.ColdThoughts)
	require.NotNil(t, trade.Estimation)
	assert.Equal(t, 1, *trade.Estimation)
}

func TestUpdateTrade_ReviewFieldsPreservedWhenStayingReviewed(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	reviewed := closedPayload()
	reviewed.State = StateReviewed
	reviewed.Review = &ReviewStage{ColdThoughts: "keep this", Estimation: ptr(1)}
	require.NoError(t, svc.UpdateTrade(id, reviewed))

	// Re-save as reviewed without the review section: the reflection stays.
	again := closedPayload()
	again.State = StateReviewed
	require.NoError(t, svc.UpdateTrade(id, again))

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	require.NotNil(t, trade.ColdThoughts)
	assert.Equal(t, "keep this", *trade.ColdThoughts)
	require.NotNil(t, trade.Estimation)
	assert.Equal(t, 1, *trade.Estimation)
}

func TestUpdateTrade_ReviewFieldsNulledOnDowngrade(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	reviewed := closedPayload()
	reviewed.State = StateReviewed
	reviewed.Review = &ReviewStage{ColdThoughts: "gone after downgrade", Estimation: ptr(0)}
	require.NoError(t, svc.UpdateTrade(id, reviewed))

	// Back down to closed: review-stage fields reset.
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))

	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "closed", trade.State)
	assert.Nil(t, trade.ColdThoughts)
	assert.Nil(t, trade.Estimation)
}

func TestUpdateTrade_NotFound(t *testing.T) {
	svc := setupTest(t)
	err := svc.UpdateTrade(9999, openPayload())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTrade_NotFound(t *testing.T) {
	svc := setupTest(t)
	_, err := svc.GetTrade(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTrade_DetachesAndCollectsChildren(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.ReplaceTradeNotes(id, []NoteRow{{Body: "solo note"}}))
	require.NoError(t, svc.ReplaceTradeCharts(id, []ChartRow{{ChartURL: "https://charts.example/a.png"}}))

	require.NoError(t, svc.DeleteTrade(id))

	_, err = svc.GetTrade(id)
	assert.ErrorIs(t, err, ErrNotFound)

	var noteCount, chartCount int64
	require.NoError(t, svc.db.Model(&models.Note{}).Count(&noteCount).Error)
	require.NoError(t, svc.db.Model(&models.Chart{}).Count(&chartCount).Error)
	assert.Zero(t, noteCount)
	assert.Zero(t, chartCount)
}

func TestDeleteTrade_SharedNoteSurvives(t *testing.T) {
	svc := setupTest(t)
	first, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	second, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)

	require.NoError(t, svc.ReplaceTradeNotes(first, []NoteRow{{Body: "shared wisdom"}}))
	notes, err := svc.TradeNotes(first)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	// Attach the same note to the second trade directly.
	link := models.TradeNote{TradeID: second, NoteID: notes[0].ID}
	require.NoError(t, svc.db.Create(&link).Error)

	require.NoError(t, svc.DeleteTrade(first))

	remaining, err := svc.TradeNotes(second)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "shared wisdom", remaining[0].Body)
}

func TestListTrades_Filters(t *testing.T) {
	svc := setupTest(t)

	p := openPayload()
	p.Asset = "EUR/USD"
	_, err := svc.CreateTrade(p)
	require.NoError(t, err)

	p2 := openPayload()
	p2.Asset = "XAU/USD"
	p2.DateLocal = "2024-03-20"
	id2, err := svc.CreateTrade(p2)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateTrade(id2, func() *TradePayload {
		c := closedPayload()
		c.Asset = "XAU/USD"
		c.DateLocal = "2024-03-20"
		return c
	}()))

	byAsset, err := svc.ListTrades(TradeFilter{Asset: "XAU/USD"})
	require.NoError(t, err)
	assert.Len(t, byAsset, 1)

	byState, err := svc.ListTrades(TradeFilter{State: "open"})
	require.NoError(t, err)
	assert.Len(t, byState, 1)

	byDate, err := svc.ListTrades(TradeFilter{DateFrom: "2024-03-16"})
	require.NoError(t, err)
	assert.Len(t, byDate, 1)

	all, err := svc.ListTrades(TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListTrades_OrderByWhitelist(t *testing.T) {
	svc := setupTest(t)
	_, err := svc.ListTrades(TradeFilter{OrderBy: "net_pnl; DROP TABLE trades"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a sortable column")

	_, err = svc.ListTrades(TradeFilter{OrderBy: "net_pnl", Descending: true})
	assert.NoError(t, err)
}

func TestEndToEndLifecycle(t *testing.T) {
	svc := setupTest(t)

	// Open a trade.
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "open", trade.State)
	assert.Nil(t, trade.Result)
	assert.Nil(t, trade.NetPnl)

	// Close it with a win.
	require.NoError(t, svc.UpdateTrade(id, closedPayload()))
	trade, err = svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "closed", trade.State)
	require.NotNil(t, trade.Result)
	assert.Equal(t, "win", *trade.Result)
	assert.Equal(t, 125.5, *trade.NetPnl)
	assert.Equal(t, 2.0, *trade.RiskReward)
	require.NotNil(t, trade.ClosedAtUTC)
	stamped := *trade.ClosedAtUTC

	// Walk it back to open: outcome resets, the stamp stays.
	require.NoError(t, svc.UpdateTrade(id, openPayload()))
	trade, err = svc.GetTrade(id)
	require.NoError(t, err)
	assert.Nil(t, trade.Result)
	assert.Nil(t, trade.NetPnl)
	assert.Nil(t, trade.RiskReward)
	assert.Nil(t, trade.RewardPercent)
	assert.Nil(t, trade.HotThoughts)
	require.NotNil(t, trade.ClosedAtUTC)
	assert.Equal(t, stamped, *trade.ClosedAtUTC)
}

func TestSaveTrade_ChildFailureReportsCommittedRow(t *testing.T) {
	// The trade row and its children are written in two sequential phases.
	// When the child phase fails the row is already committed, and the error
	// must say so instead of pretending the whole save rolled back.
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)

	require.NoError(t, svc.db.Exec("DROP TABLE trade_notes").Error)

	p := openPayload()
	p.Asset = "GBP/USD"
	err = svc.SaveTrade(id, p, []NoteRow{{Body: "never lands"}}, nil)
	require.Error(t, err)

	var pw *PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, "trade", pw.Owner)
	assert.Equal(t, id, pw.ID)
	assert.Contains(t, err.Error(), "already committed")

	// Phase one went through: the row carries the new field values.
	trade, err := svc.GetTrade(id)
	require.NoError(t, err)
	assert.Equal(t, "GBP/USD", trade.Asset)
}

func TestSaveTrade_ReconcilesChildren(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)

	err = svc.SaveTrade(id, openPayload(),
		[]NoteRow{{Body: "watch the London open"}},
		[]ChartRow{{ChartURL: "https://charts.example/eu.png"}},
	)
	require.NoError(t, err)

	notes, err := svc.TradeNotes(id)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	charts, err := svc.TradeCharts(id)
	require.NoError(t, err)
	assert.Len(t, charts, 1)
}
