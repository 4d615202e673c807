package models

import "time"

// Analysis is a dated market review. Structurally parallel to Trade but
// without a lifecycle; its notes and charts are scoped by a section tag.
type Analysis struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAtUTC time.Time `json:"created_at_utc"`

	LocalTZ   string `json:"local_tz"`
	DateLocal string `gorm:"index" json:"date_local"`
	TimeLocal string `json:"time_local"`
	Asset     string `gorm:"index" json:"asset"`

	PreMarketSummary  *string `json:"pre_market_summary"`
	PlanSummary       *string `json:"plan_summary"`
	PostMarketSummary *string `json:"post_market_summary"`
	DayResult         *string `json:"day_result"`
}
