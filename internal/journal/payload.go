package journal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	dateLayoutAlt   = "02.01.2006"
	timeLayout      = "15:04:05"
	timeLayoutShort = "15:04"
)

// Risk percent bounds enforced on every submit; the UI slider uses the same
// range but payloads can arrive from non-UI callers.
const (
	riskPctMin  = 0.5
	riskPctMax  = 2.0
	riskPctStep = 0.1
)

// ClosedStage carries the fields of the "after close" form section. Numeric
// fields are pointers so a missing value is distinguishable from zero.
type ClosedStage struct {
	Result            Result   `json:"result"`
	NetPnl            *float64 `json:"net_pnl"`
	RiskReward        *float64 `json:"risk_reward"`
	RewardPercent     *float64 `json:"reward_percent"`
	HotThoughts       string   `json:"hot_thoughts"`
	EmotionalProblems []string `json:"emotional_problems"`
}

// ReviewStage carries the fields of the review form section. Estimation stays
// optional even on reviewed trades: a thumbs widget may yield no selection.
type ReviewStage struct {
	ColdThoughts string `json:"cold_thoughts"`
	Estimation   *int   `json:"estimation"`
}

// TradePayload is one full-form submit. The UI always resubmits the whole
// form; stages that are not visible for the target state arrive as nil.
type TradePayload struct {
	LocalTZ    string  `json:"local_tz"`
	DateLocal  string  `json:"date_local"`
	TimeLocal  string  `json:"time_local"`
	AccountID  *uint   `json:"account_id"`
	SetupID    *uint   `json:"setup_id"`
	AnalysisID *uint   `json:"analysis_id"`
	Asset      string  `json:"asset"`
	Session    string  `json:"session"`
	RiskPct    float64 `json:"risk_pct"`
	State      State   `json:"state"`

	Closed *ClosedStage `json:"closed"`
	Review *ReviewStage `json:"review"`
}

// Validate checks every rule for the payload's target state and reports all
// violations at once. No write may be attempted when it returns an error.
func (p *TradePayload) Validate() error {
	var problems []string

	if !p.State.Valid() {
		problems = append(problems, fmt.Sprintf("unknown state %q", p.State))
	}
	if _, err := normalizeDate(p.DateLocal); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := normalizeTime(p.TimeLocal); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(p.Asset) == "" {
		problems = append(problems, "asset is required")
	}
	if p.Session != "" && !validSession(p.Session) {
		problems = append(problems, fmt.Sprintf("unknown session %q, allowed: %s", p.Session, strings.Join(Sessions, ", ")))
	}
	if !riskPctValid(p.RiskPct) {
		problems = append(problems, fmt.Sprintf("risk_pct must be between %.1f and %.1f in steps of %.1f", riskPctMin, riskPctMax, riskPctStep))
	}

	if p.State.Valid() && StageOf(p.State) != StageOpen {
		if p.Closed == nil {
			problems = append(problems, fmt.Sprintf("closed-stage data is required for state %q", p.State))
		} else {
			if !p.Closed.Result.Valid() {
				problems = append(problems, "result must be one of: win, loss, be")
			}
			if p.Closed.NetPnl == nil {
				problems = append(problems, "net_pnl is required to close a trade")
			}
			if p.Closed.RiskReward == nil {
				problems = append(problems, "risk_reward is required to close a trade")
			}
		}
	}
	if p.Review != nil && p.Review.Estimation != nil {
		if v := *p.Review.Estimation; v != 0 && v != 1 {
			problems = append(problems, "estimation must be 0 or 1")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func riskPctValid(r float64) bool {
	if r < riskPctMin-1e-9 || r > riskPctMax+1e-9 {
		return false
	}
	scaled := r / riskPctStep
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, dateLayoutAlt} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("date_local %q is not a valid date (expected %s)", s, dateLayout)
}

func normalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, timeLayoutShort} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", fmt.Errorf("time_local %q is not a valid time (expected %s)", s, timeLayout)
}

// trimPtr returns a pointer to the trimmed string, or nil when it trims away.
func trimPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// AnalysisPayload is one full-form analysis submit.
type AnalysisPayload struct {
	LocalTZ           string `json:"local_tz"`
	DateLocal         string `json:"date_local"`
	TimeLocal         string `json:"time_local"`
	Asset             string `json:"asset"`
	PreMarketSummary  string `json:"pre_market_summary"`
	PlanSummary       string `json:"plan_summary"`
	PostMarketSummary string `json:"post_market_summary"`
	DayResult         string `json:"day_result"`
}

// Validate reports every violated analysis rule at once.
func (p *AnalysisPayload) Validate() error {
	var problems []string
	if _, err := normalizeDate(p.DateLocal); err != nil {
		problems = append(problems, err.Error())
	}
	if p.TimeLocal != "" {
		if _, err := normalizeTime(p.TimeLocal); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if p.DayResult != "" && !validDayResult(p.DayResult) {
		problems = append(problems, fmt.Sprintf("unknown day_result %q, allowed: %s", p.DayResult, strings.Join(DayResults, ", ")))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
