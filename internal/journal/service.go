package journal

import (
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns the trade lifecycle and the child-collection reconciliation.
// All persistence goes through it; handlers and commands stay thin.
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new journal service.
func NewService(logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{logger: logger, db: db}
}

// CreateTrade validates the payload and inserts a new trade. Creation starts
// at "open", or at "missed" on the path dedicated to logging missed
// opportunities; outcome fields are forced NULL regardless of the payload.
func (s *Service) CreateTrade(p *TradePayload) (uint, error) {
	if p.State == "" {
		p.State = StateOpen
	}
	var problems []string
	if p.State != StateOpen && p.State != StateMissed {
		problems = append(problems, fmt.Sprintf("initial state must be %q or %q, got %q", StateOpen, StateMissed, p.State))
	}
	if err := p.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Problems = append(problems, ve.Problems...)
			return 0, ve
		}
		return 0, err
	}
	if len(problems) > 0 {
		return 0, &ValidationError{Problems: problems}
	}

	var trade models.Trade
	s.applyPayload(&trade, p)
	if err := s.db.Create(&trade).Error; err != nil {
		return 0, fmt.Errorf("failed to create trade: %w", err)
	}
	s.logger.Info("Created trade",
		zap.Uint("trade_id", trade.ID),
		zap.String("asset", trade.Asset),
		zap.String("state", trade.State),
	)
	return trade.ID, nil
}

// UpdateTrade validates the full-form payload against the trade's current
// state and persists the trade row. Child collections are reconciled
// separately (see SaveTrade and the Replace* entry points).
func (s *Service) UpdateTrade(id uint, p *TradePayload) error {
	trade, err := s.getTradeRow(id)
	if err != nil {
		return err
	}

	var problems []string
	current := State(trade.State)
	if p.State.Valid() && !CanTransition(current, p.State) {
		problems = append(problems, fmt.Sprintf("state %q is not reachable from %q", p.State, current))
	}
	if err := p.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Problems = append(problems, ve.Problems...)
			return ve
		}
		return err
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	s.applyPayload(trade, p)
	if err := s.db.Save(trade).Error; err != nil {
		return fmt.Errorf("failed to update trade #%d: %w", id, err)
	}
	s.logger.Info("Updated trade",
		zap.Uint("trade_id", id),
		zap.String("state", trade.State),
	)
	return nil
}

// SaveTrade persists the trade row and then reconciles its note and chart
// collections. The two phases are sequential, not atomic: when a child phase
// fails the trade row is already committed, and the returned
// PartialWriteError says so.
func (s *Service) SaveTrade(id uint, p *TradePayload, notes []NoteRow, charts []ChartRow) error {
	if err := s.UpdateTrade(id, p); err != nil {
		return err
	}
	if notes != nil {
		if err := s.ReplaceTradeNotes(id, notes); err != nil {
			return &PartialWriteError{Owner: "trade", ID: id, Err: err}
		}
	}
	if charts != nil {
		if err := s.ReplaceTradeCharts(id, charts); err != nil {
			return &PartialWriteError{Owner: "trade", ID: id, Err: err}
		}
	}
	return nil
}

// applyPayload writes the payload onto the trade row, resetting every field
// of a stage the target state does not reach so a walked-back trade retains
// no stale outcome data. Validation has already passed.
func (s *Service) applyPayload(trade *models.Trade, p *TradePayload) {
	dateLocal, _ := normalizeDate(p.DateLocal)
	timeLocal, _ := normalizeTime(p.TimeLocal)

	trade.LocalTZ = p.LocalTZ
	trade.DateLocal = dateLocal
	trade.TimeLocal = timeLocal
	trade.AccountID = p.AccountID
	trade.SetupID = p.SetupID
	trade.AnalysisID = p.AnalysisID
	trade.Asset = p.Asset
	trade.Session = trimPtr(p.Session)
	trade.RiskPct = p.RiskPct
	trade.State = string(p.State)

	tier := StageOf(p.State)
	if tier == StageClosed || tier == StageReview {
		result := string(p.Closed.Result)
		trade.Result = &result
		trade.NetPnl = p.Closed.NetPnl
		trade.RiskReward = p.Closed.RiskReward
		trade.RewardPercent = p.Closed.RewardPercent
		trade.HotThoughts = trimPtr(p.Closed.HotThoughts)
		trade.EmotionalProblems = SerializeEmotionalProblems(p.Closed.EmotionalProblems)
	} else {
		trade.Result = nil
		trade.NetPnl = nil
		trade.RiskReward = nil
		trade.RewardPercent = nil
		trade.HotThoughts = nil
		trade.EmotionalProblems = nil
	}

	switch {
	case tier == StageReview && p.Review != nil:
		trade.ColdThoughts = trimPtr(p.Review.ColdThoughts)
		trade.Estimation = p.Review.Estimation
	case p.State == StateReviewed:
		// Re-saving a reviewed trade without the review section keeps the
		// existing reflection instead of nulling it.
	default:
		trade.ColdThoughts = nil
		trade.Estimation = nil
	}

	// Stamp the closing time once, on the first transition into the closed
	// tier. It is never overwritten and never cleared, including downgrades.
	if (tier == StageClosed || tier == StageReview) && trade.ClosedAtUTC == nil {
		now := time.Now().UTC()
		trade.ClosedAtUTC = &now
	}
}

// GetTrade returns a trade by id.
func (s *Service) GetTrade(id uint) (*models.Trade, error) {
	return s.getTradeRow(id)
}

func (s *Service) getTradeRow(id uint) (*models.Trade, error) {
	var trade models.Trade
	if err := s.db.First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "trade", ID: id}
		}
		return nil, fmt.Errorf("failed to load trade #%d: %w", id, err)
	}
	return &trade, nil
}

// DeleteTrade removes the trade, detaches its notes and charts, and
// garbage-collects children that became unreferenced everywhere.
func (s *Service) DeleteTrade(id uint) error {
	if _, err := s.getTradeRow(id); err != nil {
		return err
	}

	var noteLinks []models.TradeNote
	if err := s.db.Where("trade_id = ?", id).Find(&noteLinks).Error; err != nil {
		return fmt.Errorf("failed to list note links for trade #%d: %w", id, err)
	}
	var chartLinks []models.TradeChart
	if err := s.db.Where("trade_id = ?", id).Find(&chartLinks).Error; err != nil {
		return fmt.Errorf("failed to list chart links for trade #%d: %w", id, err)
	}

	if err := s.db.Where("trade_id = ?", id).Delete(&models.TradeNote{}).Error; err != nil {
		return fmt.Errorf("failed to detach notes from trade #%d: %w", id, err)
	}
	if err := s.db.Where("trade_id = ?", id).Delete(&models.TradeChart{}).Error; err != nil {
		return fmt.Errorf("failed to detach charts from trade #%d: %w", id, err)
	}
	for _, link := range noteLinks {
		if err := s.gcNote(link.NoteID); err != nil {
			return err
		}
	}
	for _, link := range chartLinks {
		if err := s.gcChart(link.ChartID); err != nil {
			return err
		}
	}

	if err := s.db.Delete(&models.Trade{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete trade #%d: %w", id, err)
	}
	s.logger.Info("Deleted trade", zap.Uint("trade_id", id))
	return nil
}

// TradeFilter narrows ListTrades. Zero values mean "no filter".
type TradeFilter struct {
	AccountID  *uint
	SetupID    *uint
	AnalysisID *uint
	Asset      string
	State      string
	Result     string
	Session    string
	DateFrom   string
	DateTo     string
	OrderBy    string
	Descending bool
}

// tradeOrderColumns whitelists ORDER BY targets; anything else is rejected
// before reaching SQL.
var tradeOrderColumns = map[string]bool{
	"id":             true,
	"date_local":     true,
	"time_local":     true,
	"account_id":     true,
	"setup_id":       true,
	"analysis_id":    true,
	"asset":          true,
	"state":          true,
	"result":         true,
	"session":        true,
	"net_pnl":        true,
	"risk_reward":    true,
	"reward_percent": true,
}

// ListTrades returns trades matching the filter, ordered by date then id
// unless the filter names another whitelisted column.
func (s *Service) ListTrades(f TradeFilter) ([]models.Trade, error) {
	q := s.db.Model(&models.Trade{})
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.SetupID != nil {
		q = q.Where("setup_id = ?", *f.SetupID)
	}
	if f.AnalysisID != nil {
		q = q.Where("analysis_id = ?", *f.AnalysisID)
	}
	if f.Asset != "" {
		q = q.Where("asset = ?", f.Asset)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.Result != "" {
		q = q.Where("result = ?", f.Result)
	}
	if f.Session != "" {
		q = q.Where("session = ?", f.Session)
	}
	if f.DateFrom != "" {
		q = q.Where("date_local >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("date_local <= ?", f.DateTo)
	}

	if f.OrderBy != "" {
		if !tradeOrderColumns[f.OrderBy] {
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("order_by %q is not a sortable column", f.OrderBy)}}
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		q = q.Order(f.OrderBy + " " + dir)
	} else {
		q = q.Order("date_local ASC, id ASC")
	}

	var trades []models.Trade
	if err := q.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}
