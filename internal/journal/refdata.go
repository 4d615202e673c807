package journal

import (
	"fmt"
	"strings"

	"trade-journal-go/internal/models"
)

// AccountPayload creates a broker account.
type AccountPayload struct {
	Name            string   `json:"name"`
	Broker          string   `json:"broker"`
	Currency        string   `json:"currency"`
	StartingBalance *float64 `json:"starting_balance"`
	IsProp          bool     `json:"is_prop"`
}

// CreateAccount inserts a new account.
func (s *Service) CreateAccount(p *AccountPayload) (uint, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, &ValidationError{Problems: []string{"account name is required"}}
	}
	account := models.Account{
		Name:            strings.TrimSpace(p.Name),
		Broker:          trimPtr(p.Broker),
		Currency:        p.Currency,
		StartingBalance: p.StartingBalance,
		IsProp:          p.IsProp,
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}
	if err := s.db.Create(&account).Error; err != nil {
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return account.ID, nil
}

// ListAccounts returns active accounts; archived ones drop out of listings
// but stay referenced by their trades.
func (s *Service) ListAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("archived = ?", false).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ArchiveAccount hides an account from listings without touching its trades.
func (s *Service) ArchiveAccount(id uint) error {
	res := s.db.Model(&models.Account{}).Where("id = ?", id).Update("archived", true)
	if res.Error != nil {
		return fmt.Errorf("failed to archive account #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "account", ID: id}
	}
	return nil
}

// CreateSetup inserts a named trade pattern.
func (s *Service) CreateSetup(name, description string) (uint, error) {
	if strings.TrimSpace(name) == "" {
		return 0, &ValidationError{Problems: []string{"setup name is required"}}
	}
	setup := models.Setup{Name: strings.TrimSpace(name), Description: trimPtr(description)}
	if err := s.db.Create(&setup).Error; err != nil {
		return 0, fmt.Errorf("failed to create setup: %w", err)
	}
	return setup.ID, nil
}

// ListSetups returns every setup, alphabetical.
func (s *Service) ListSetups() ([]models.Setup, error) {
	var setups []models.Setup
	if err := s.db.Order("name ASC").Find(&setups).Error; err != nil {
		return nil, fmt.Errorf("failed to list setups: %w", err)
	}
	return setups, nil
}

// LinkChartToSetup attaches an existing chart as a setup example. Linking is
// idempotent.
func (s *Service) LinkChartToSetup(setupID, chartID uint) error {
	var setup models.Setup
	if err := s.db.First(&setup, setupID).Error; err != nil {
		return &NotFoundError{Entity: "setup", ID: setupID}
	}
	var chart models.Chart
	if err := s.db.First(&chart, chartID).Error; err != nil {
		return &NotFoundError{Entity: "chart", ID: chartID}
	}
	link := models.SetupChart{SetupID: setupID, ChartID: chartID}
	if err := s.db.FirstOrCreate(&link, link).Error; err != nil {
		return fmt.Errorf("failed to link chart #%d to setup #%d: %w", chartID, setupID, err)
	}
	return nil
}

// SetupCharts lists the example charts of a setup.
func (s *Service) SetupCharts(setupID uint) ([]models.Chart, error) {
	var charts []models.Chart
	err := s.db.
		Joins("JOIN setup_charts ON setup_charts.chart_id = charts.id").
		Where("setup_charts.setup_id = ?", setupID).
		Order("charts.id ASC").
		Find(&charts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list charts for setup #%d: %w", setupID, err)
	}
	return charts, nil
}

// LinkChartToNote attaches an existing chart to a note. Idempotent.
func (s *Service) LinkChartToNote(noteID, chartID uint) error {
	var note models.Note
	if err := s.db.First(&note, noteID).Error; err != nil {
		return &NotFoundError{Entity: "note", ID: noteID}
	}
	var chart models.Chart
	if err := s.db.First(&chart, chartID).Error; err != nil {
		return &NotFoundError{Entity: "chart", ID: chartID}
	}
	link := models.NoteChart{NoteID: noteID, ChartID: chartID}
	if err := s.db.FirstOrCreate(&link, link).Error; err != nil {
		return fmt.Errorf("failed to link chart #%d to note #%d: %w", chartID, noteID, err)
	}
	return nil
}

// NoteCharts lists the charts attached to a note.
func (s *Service) NoteCharts(noteID uint) ([]models.Chart, error) {
	var charts []models.Chart
	err := s.db.
		Joins("JOIN note_charts ON note_charts.chart_id = charts.id").
		Where("note_charts.note_id = ?", noteID).
		Order("charts.id ASC").
		Find(&charts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list charts for note #%d: %w", noteID, err)
	}
	return charts, nil
}
