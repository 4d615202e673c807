package journal

import (
	"testing"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount_Defaults(t *testing.T) {
	svc := setupTest(t)

	id, err := svc.CreateAccount(&AccountPayload{Name: "  FTMO 100k  "})
	require.NoError(t, err)

	accounts, err := svc.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, id, accounts[0].ID)
	assert.Equal(t, "FTMO 100k", accounts[0].Name)
	assert.Equal(t, "USD", accounts[0].Currency)
}

func TestCreateAccount_RequiresName(t *testing.T) {
	svc := setupTest(t)
	_, err := svc.CreateAccount(&AccountPayload{Name: "   "})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestArchiveAccount_HidesFromListing(t *testing.T) {
	svc := setupTest(t)
	id, err := svc.CreateAccount(&AccountPayload{Name: "old demo"})
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveAccount(id))

	accounts, err := svc.ListAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestArchiveAccount_NotFound(t *testing.T) {
	svc := setupTest(t)
	assert.ErrorIs(t, svc.ArchiveAccount(55), ErrNotFound)
}

func TestCreateAndListSetups(t *testing.T) {
	svc := setupTest(t)
	_, err := svc.CreateSetup("ORB", "opening range breakout")
	require.NoError(t, err)
	_, err = svc.CreateSetup("FVG fill", "")
	require.NoError(t, err)

	setups, err := svc.ListSetups()
	require.NoError(t, err)
	require.Len(t, setups, 2)
	assert.Equal(t, "FVG fill", setups[0].Name)
	assert.Equal(t, "ORB", setups[1].Name)
	assert.Nil(t, setups[0].Description)
}

func TestLinkChartToSetup_Idempotent(t *testing.T) {
	svc := setupTest(t)
	setupID, err := svc.CreateSetup("ORB", "")
	require.NoError(t, err)

	tradeID, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.ReplaceTradeCharts(tradeID, []ChartRow{
		{ChartURL: "https://charts.example/example.png"},
	}))
	charts, err := svc.TradeCharts(tradeID)
	require.NoError(t, err)
	require.Len(t, charts, 1)

	require.NoError(t, svc.LinkChartToSetup(setupID, charts[0].ID))
	require.NoError(t, svc.LinkChartToSetup(setupID, charts[0].ID))

	linked, err := svc.SetupCharts(setupID)
	require.NoError(t, err)
	assert.Len(t, linked, 1)
}

func TestLinkChartToSetup_MissingTargets(t *testing.T) {
	svc := setupTest(t)
	setupID, err := svc.CreateSetup("ORB", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.LinkChartToSetup(999, 1), ErrNotFound)
	assert.ErrorIs(t, svc.LinkChartToSetup(setupID, 999), ErrNotFound)
}

func TestLinkChartToNote_KeepsChartAliveThroughNote(t *testing.T) {
	// A chart linked only through a note dies with the note's last reference.
	svc := setupTest(t)
	tradeID, err := svc.CreateTrade(openPayload())
	require.NoError(t, err)
	require.NoError(t, svc.ReplaceTradeNotes(tradeID, []NoteRow{{Body: "with chart"}}))
	require.NoError(t, svc.ReplaceTradeCharts(tradeID, []ChartRow{
		{ChartURL: "https://charts.example/n.png"},
	}))
	notes, err := svc.TradeNotes(tradeID)
	require.NoError(t, err)
	charts, err := svc.TradeCharts(tradeID)
	require.NoError(t, err)

	require.NoError(t, svc.LinkChartToNote(notes[0].ID, charts[0].ID))

	// Detach the chart from the trade; the note link keeps it alive.
	require.NoError(t, svc.ReplaceTradeCharts(tradeID, []ChartRow{}))
	linked, err := svc.NoteCharts(notes[0].ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)

	// Dropping the note garbage-collects both the note and the chart.
	require.NoError(t, svc.ReplaceTradeNotes(tradeID, []NoteRow{}))
	var noteCount, chartCount int64
	require.NoError(t, svc.db.Model(&models.Note{}).Count(&noteCount).Error)
	require.NoError(t, svc.db.Model(&models.Chart{}).Count(&chartCount).Error)
	assert.Zero(t, noteCount)
	assert.Zero(t, chartCount)
}
