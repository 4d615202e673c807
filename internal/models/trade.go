package models

import "time"

// Trade is one logged trading decision. It moves through the lifecycle
// open -> closed -> reviewed (or cancelled/missed); the outcome columns stay
// NULL until the trade reaches the closed tier.
type Trade struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LocalTZ   string `json:"local_tz"`
	DateLocal string `gorm:"index" json:"date_local"`
	TimeLocal string `json:"time_local"`

	// Optional references; the trade survives the referent disappearing.
	AccountID  *uint `gorm:"index" json:"account_id"`
	SetupID    *uint `gorm:"index" json:"setup_id"`
	AnalysisID *uint `json:"analysis_id"`

	Asset   string  `gorm:"index" json:"asset"`
	Session *string `gorm:"check:session IN ('Frankfurt','LOKZ','Lunch','Pre-NY','NYKZ','Other')" json:"session"`

	State  string  `gorm:"check:state IN ('open','closed','reviewed','cancelled','missed')" json:"state"`
	Result *string `gorm:"index;check:result IN ('win','loss','be')" json:"result"`

	RiskPct       float64  `json:"risk_pct"`
	NetPnl        *float64 `json:"net_pnl"`
	RiskReward    *float64 `json:"risk_reward"`
	RewardPercent *float64 `json:"reward_percent"`
	Estimation    *int     `json:"estimation"`

	// EmotionalProblems holds a JSON list drawn from a fixed vocabulary.
	EmotionalProblems *string `json:"emotional_problems"`
	HotThoughts       *string `json:"hot_thoughts"`
	ColdThoughts      *string `json:"cold_thoughts"`

	// Stamped on the first transition into the closed tier, never cleared.
	ClosedAtUTC *time.Time `json:"closed_at_utc"`
}
