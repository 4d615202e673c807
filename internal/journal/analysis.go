package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateAnalysis validates the payload and inserts a new market review.
func (s *Service) CreateAnalysis(p *AnalysisPayload) (uint, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	analysis := models.Analysis{CreatedAtUTC: time.Now().UTC()}
	applyAnalysisPayload(&analysis, p)
	if err := s.db.Create(&analysis).Error; err != nil {
		return 0, fmt.Errorf("failed to create analysis: %w", err)
	}
	s.logger.Info("Created analysis",
		zap.Uint("analysis_id", analysis.ID),
		zap.String("date_local", analysis.DateLocal),
	)
	return analysis.ID, nil
}

// UpdateAnalysis persists a full-form analysis edit.
func (s *Service) UpdateAnalysis(id uint, p *AnalysisPayload) error {
	analysis, err := s.getAnalysisRow(id)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	applyAnalysisPayload(analysis, p)
	if err := s.db.Save(analysis).Error; err != nil {
		return fmt.Errorf("failed to update analysis #%d: %w", id, err)
	}
	return nil
}

func applyAnalysisPayload(analysis *models.Analysis, p *AnalysisPayload) {
	dateLocal, _ := normalizeDate(p.DateLocal)
	analysis.LocalTZ = p.LocalTZ
	analysis.DateLocal = dateLocal
	if p.TimeLocal != "" {
		timeLocal, _ := normalizeTime(p.TimeLocal)
		analysis.TimeLocal = timeLocal
	} else {
		analysis.TimeLocal = ""
	}
	analysis.Asset = p.Asset
	analysis.PreMarketSummary = trimPtr(p.PreMarketSummary)
	analysis.PlanSummary = trimPtr(p.PlanSummary)
	analysis.PostMarketSummary = trimPtr(p.PostMarketSummary)
	analysis.DayResult = trimPtr(p.DayResult)
}

// GetAnalysis returns an analysis by id.
func (s *Service) GetAnalysis(id uint) (*models.Analysis, error) {
	return s.getAnalysisRow(id)
}

func (s *Service) getAnalysisRow(id uint) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := s.db.First(&analysis, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "analysis", ID: id}
		}
		return nil, fmt.Errorf("failed to load analysis #%d: %w", id, err)
	}
	return &analysis, nil
}

// ListAnalyses returns every analysis, newest first.
func (s *Service) ListAnalyses() ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := s.db.Order("date_local DESC, time_local DESC, id DESC").Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}

// DeleteAnalysis removes the analysis, detaches its children in every
// section, unsets the reference on trades that pointed at it, and
// garbage-collects orphaned children.
func (s *Service) DeleteAnalysis(id uint) error {
	if _, err := s.getAnalysisRow(id); err != nil {
		return err
	}

	var noteLinks []models.AnalysisNote
	if err := s.db.Where("analysis_id = ?", id).Find(&noteLinks).Error; err != nil {
		return fmt.Errorf("failed to list note links for analysis #%d: %w", id, err)
	}
	var chartLinks []models.AnalysisChart
	if err := s.db.Where("analysis_id = ?", id).Find(&chartLinks).Error; err != nil {
		return fmt.Errorf("failed to list chart links for analysis #%d: %w", id, err)
	}

	if err := s.db.Where("analysis_id = ?", id).Delete(&models.AnalysisNote{}).Error; err != nil {
		return fmt.Errorf("failed to detach notes from analysis #%d: %w", id, err)
	}
	if err := s.db.Where("analysis_id = ?", id).Delete(&models.AnalysisChart{}).Error; err != nil {
		return fmt.Errorf("failed to detach charts from analysis #%d: %w", id, err)
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

	// The trade keeps living when its analysis disappears; the reference
	// just becomes unset.
	if err := s.db.Model(&models.Trade{}).Where("analysis_id = ?", id).
		Update("analysis_id", nil).Error; err != nil {
		return fmt.Errorf("failed to unset analysis reference on trades: %w", err)
	}

	if err := s.db.Delete(&models.Analysis{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete analysis #%d: %w", id, err)
	}
	s.logger.Info("Deleted analysis", zap.Uint("analysis_id", id))
	return nil
}

// ReplaceAnalysisNotes reconciles the note set of one analysis section.
// Sections are independent: rows attached under other sections are untouched.
func (s *Service) ReplaceAnalysisNotes(analysisID uint, section string, rows []NoteRow) error {
	if !validSection(section) {
		return &ValidationError{Problems: []string{fmt.Sprintf("section must be one of: %s", strings.Join(Sections, ", "))}}
	}
	if _, err := s.getAnalysisRow(analysisID); err != nil {
		return err
	}
	existing, err := s.AnalysisNotes(analysisID, section)
	if err != nil {
		return err
	}

	d := diffRows(existing, noteID, rows, noteRowID, noteRowBlank, noteUnchanged)
	if d.empty() {
		return nil
	}

	for _, u := range d.updates {
		if err := s.updateNote(u.ID, u.Row); err != nil {
			return err
		}
	}
	for _, r := range d.inserts {
		note := models.Note{
			Title: trimPtr(r.Title),
			Body:  strings.TrimSpace(r.Body),
			Tags:  SerializeTags(r.Tags),
		}
		if err := s.db.Create(&note).Error; err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		link := models.AnalysisNote{AnalysisID: analysisID, NoteID: note.ID, Section: section}
		if err := s.db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link note #%d to analysis #%d: %w", note.ID, analysisID, err)
		}
	}
	for _, id := range d.removes {
		if err := s.db.Where("analysis_id = ? AND note_id = ? AND section = ?", analysisID, id, section).
			Delete(&models.AnalysisNote{}).Error; err != nil {
			return fmt.Errorf("failed to detach note #%d from analysis #%d: %w", id, analysisID, err)
		}
		if err := s.gcNote(id); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceAnalysisCharts reconciles the chart set of one analysis section.
func (s *Service) ReplaceAnalysisCharts(analysisID uint, section string, rows []ChartRow) error {
	if !validSection(section) {
		return &ValidationError{Problems: []string{fmt.Sprintf("section must be one of: %s", strings.Join(Sections, ", "))}}
	}
	if _, err := s.getAnalysisRow(analysisID); err != nil {
		return err
	}
	existing, err := s.AnalysisCharts(analysisID, section)
	if err != nil {
		return err
	}

	d := diffRows(existing, chartID, rows, chartRowID, chartRowBlank, chartUnchanged)
	if d.empty() {
		return nil
	}

	for _, u := range d.updates {
		if err := s.updateChart(u.ID, u.Row); err != nil {
			return err
		}
	}
	for _, r := range d.inserts {
		chart := models.Chart{
			ChartURL:    strings.TrimSpace(r.ChartURL),
			Description: trimPtr(r.Description),
		}
		if err := s.db.Create(&chart).Error; err != nil {
			return fmt.Errorf("failed to create chart: %w", err)
		}
		link := models.AnalysisChart{AnalysisID: analysisID, ChartID: chart.ID, Section: section}
		if err := s.db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link chart #%d to analysis #%d: %w", chart.ID, analysisID, err)
		}
	}
	for _, id := range d.removes {
		if err := s.db.Where("analysis_id = ? AND chart_id = ? AND section = ?", analysisID, id, section).
			Delete(&models.AnalysisChart{}).Error; err != nil {
			return fmt.Errorf("failed to detach chart #%d from analysis #%d: %w", id, analysisID, err)
		}
		if err := s.gcChart(id); err != nil {
			return err
		}
	}
	return nil
}

// AnalysisNotes lists an analysis's notes; section "" means every section.
func (s *Service) AnalysisNotes(analysisID uint, section string) ([]models.Note, error) {
	if section != "" && !validSection(section) {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("section must be one of: %s", strings.Join(Sections, ", "))}}
	}
	q := s.db.
		Joins("JOIN analysis_notes ON analysis_notes.note_id = notes.id").
		Where("analysis_notes.analysis_id = ?", analysisID)
	if section != "" {
		q = q.Where("analysis_notes.section = ?", section)
	}
	var notes []models.Note
	if err := q.Order("notes.id ASC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes for analysis #%d: %w", analysisID, err)
	}
	return notes, nil
}

// AnalysisCharts lists an analysis's charts; section "" means every section.
func (s *Service) AnalysisCharts(analysisID uint, section string) ([]models.Chart, error) {
	if section != "" && !validSection(section) {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("section must be one of: %s", strings.Join(Sections, ", "))}}
	}
	q := s.db.
		Joins("JOIN analysis_charts ON analysis_charts.chart_id = charts.id").
		Where("analysis_charts.analysis_id = ?", analysisID)
	if section != "" {
		q = q.Where("analysis_charts.section = ?", section)
	}
	var charts []models.Chart
	if err := q.Order("charts.id ASC").Find(&charts).Error; err != nil {
		return nil, fmt.Errorf("failed to list charts for analysis #%d: %w", analysisID, err)
	}
	return charts, nil
}
