package models

// Junction tables carry nothing beyond the two keys (plus a section tag for
// analyses). A row's existence is the only evidence of attachment.

type TradeNote struct {
	TradeID uint `gorm:"primaryKey" json:"trade_id"`
	NoteID  uint `gorm:"primaryKey" json:"note_id"`
}

type TradeChart struct {
	TradeID uint `gorm:"primaryKey" json:"trade_id"`
	ChartID uint `gorm:"primaryKey" json:"chart_id"`
}

type AnalysisNote struct {
	AnalysisID uint   `gorm:"primaryKey" json:"analysis_id"`
	NoteID     uint   `gorm:"primaryKey" json:"note_id"`
	Section    string `gorm:"primaryKey;check:section IN ('pre','plan','post')" json:"section"`
}

type AnalysisChart struct {
	AnalysisID uint   `gorm:"primaryKey" json:"analysis_id"`
	ChartID    uint   `gorm:"primaryKey" json:"chart_id"`
	Section    string `gorm:"primaryKey;check:section IN ('pre','plan','post')" json:"section"`
}

type SetupChart struct {
	SetupID uint `gorm:"primaryKey" json:"setup_id"`
	ChartID uint `gorm:"primaryKey" json:"chart_id"`
}

type NoteChart struct {
	NoteID  uint `gorm:"primaryKey" json:"note_id"`
	ChartID uint `gorm:"primaryKey" json:"chart_id"`
}
