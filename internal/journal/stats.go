package journal

import (
	"sort"

	"trade-journal-go/internal/models"
)

// Stats holds aggregate performance figures over a set of trades. R is the
// risk-normalized outcome: a win counts its risk:reward, a loss counts -1, a
// break-even counts 0. ProfitFactor is nil when the set has wins but no
// losses (the ratio is unbounded); plain zero means no wins either.
type Stats struct {
	Count        int      `json:"count"`
	WinRate      float64  `json:"win_rate"` // percent
	ProfitFactor *float64 `json:"profit_factor"`
	ExpectancyR  float64  `json:"expectancy_r"`
	AvgR         float64  `json:"avg_r"`
	TotalPnl     float64  `json:"total_pnl"`
	BestTrade    float64  `json:"best_trade"`
	WorstTrade   float64  `json:"worst_trade"`
}

// EquityPoint is one step of the cumulative PnL curve.
type EquityPoint struct {
	DateLocal string  `json:"date_local"`
	TradeID   uint    `json:"trade_id"`
	NetPnl    float64 `json:"net_pnl"`
	CumPnl    float64 `json:"cum_pnl"`
}

// rValue maps a trade's outcome to R. Trades without outcome data yield no R.
func rValue(t models.Trade) (float64, bool) {
	if t.Result == nil {
		return 0, false
	}
	switch Result(*t.Result) {
	case ResultWin:
		if t.RiskReward != nil {
			return *t.RiskReward, true
		}
		return 0, true
	case ResultLoss:
		return -1, true
	case ResultBreakEven:
		return 0, true
	}
	return 0, false
}

// ComputeStats aggregates trades that carry an outcome; open, cancelled and
// missed trades contribute nothing.
func ComputeStats(trades []models.Trade) Stats {
	var stats Stats
	var wins, losses float64 // absolute sums for profit factor
	var winCount int
	var sumR, sumWinR, sumLossR float64
	var winRCount, lossRCount int
	first := true

	for _, t := range trades {
		r, ok := rValue(t)
		if !ok || t.NetPnl == nil {
			continue
		}
		pnl := *t.NetPnl

		stats.Count++
		stats.TotalPnl += pnl
		if first || pnl > stats.BestTrade {
			stats.BestTrade = pnl
		}
		if first || pnl < stats.WorstTrade {
			stats.WorstTrade = pnl
		}
		first = false

		if pnl > 0 {
			wins += pnl
		} else if pnl < 0 {
			losses += -pnl
		}
		if Result(*t.Result) == ResultWin {
			winCount++
		}
		sumR += r
		if r > 0 {
			sumWinR += r
			winRCount++
		} else if r < 0 {
			sumLossR += -r
			lossRCount++
		}
	}

	if stats.Count == 0 {
		zero := 0.0
		stats.ProfitFactor = &zero
		return stats
	}

	stats.WinRate = float64(winCount) / float64(stats.Count) * 100
	switch {
	case losses > 0:
		pf := wins / losses
		stats.ProfitFactor = &pf
	case wins > 0:
		stats.ProfitFactor = nil // unbounded
	default:
		zero := 0.0
		stats.ProfitFactor = &zero
	}
	stats.AvgR = sumR / float64(stats.Count)

	var avgWinR, avgLossR float64
	if winRCount > 0 {
		avgWinR = sumWinR / float64(winRCount)
	}
	if lossRCount > 0 {
		avgLossR = sumLossR / float64(lossRCount)
	}
	p := stats.WinRate / 100
	stats.ExpectancyR = p*avgWinR - (1-p)*avgLossR

	return stats
}

// BuildEquityCurve returns cumulative PnL over outcome-bearing trades,
// ordered by local date then id.
func BuildEquityCurve(trades []models.Trade) []EquityPoint {
	withPnl := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.NetPnl != nil && t.Result != nil {
			withPnl = append(withPnl, t)
		}
	}
	sort.SliceStable(withPnl, func(i, j int) bool {
		if withPnl[i].DateLocal != withPnl[j].DateLocal {
			return withPnl[i].DateLocal < withPnl[j].DateLocal
		}
		return withPnl[i].ID < withPnl[j].ID
	})

	curve := make([]EquityPoint, 0, len(withPnl))
	var cum float64
	for _, t := range withPnl {
		cum += *t.NetPnl
		curve = append(curve, EquityPoint{
			DateLocal: t.DateLocal,
			TradeID:   t.ID,
			NetPnl:    *t.NetPnl,
			CumPnl:    cum,
		})
	}
	return curve
}

// Stats computes aggregate figures for trades matching the filter.
func (s *Service) Stats(f TradeFilter) (Stats, error) {
	trades, err := s.ListTrades(f)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(trades), nil
}

// EquityCurve computes the cumulative PnL series for trades matching the filter.
func (s *Service) EquityCurve(f TradeFilter) ([]EquityPoint, error) {
	trades, err := s.ListTrades(f)
	if err != nil {
		return nil, err
	}
	return BuildEquityCurve(trades), nil
}
