package journal

import (
	"fmt"
	"strings"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NoteRow is one editor row proposed as part of a full replacement set.
// A nil ID means a new row; a non-nil ID is only trusted when it matches a
// child currently attached to the owner.
type NoteRow struct {
	ID    *uint    `json:"id"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// ChartRow is one chart editor row.
type ChartRow struct {
	ID          *uint  `json:"id"`
	ChartURL    string `json:"chart_url"`
	Description string `json:"description"`
}

type rowUpdate[R any] struct {
	ID  uint
	Row R
}

// delta is the minimal change set turning the attached children into the
// proposed rows.
type delta[R any] struct {
	inserts []R
	updates []rowUpdate[R]
	removes []uint
}

func (d delta[R]) empty() bool {
	return len(d.inserts) == 0 && len(d.updates) == 0 && len(d.removes) == 0
}

// diffRows computes the insert/update/remove partition of proposed editor
// rows against the currently attached children. Blank rows are dropped (they
// are empty editor lines, not data). A row id is treated as an update target
// only when it belongs to this owner's existing set; stale or cross-owner ids
// fall through to insert. Rows equal to their stored child produce no update,
// which makes re-submitting an unchanged set a no-op.
func diffRows[E any, R any](
	existing []E,
	existingID func(E) uint,
	proposed []R,
	rowID func(R) (uint, bool),
	blank func(R) bool,
	unchanged func(E, R) bool,
) delta[R] {
	byID := make(map[uint]E, len(existing))
	for _, e := range existing {
		byID[existingID(e)] = e
	}

	var d delta[R]
	kept := make(map[uint]bool, len(existing))
	for _, r := range proposed {
		if blank(r) {
			continue
		}
		if id, ok := rowID(r); ok {
			if e, attached := byID[id]; attached && !kept[id] {
				kept[id] = true
				if !unchanged(e, r) {
					d.updates = append(d.updates, rowUpdate[R]{ID: id, Row: r})
				}
				continue
			}
		}
		d.inserts = append(d.inserts, r)
	}
	for _, e := range existing {
		if id := existingID(e); !kept[id] {
			d.removes = append(d.removes, id)
		}
	}
	return d
}

func noteID(n models.Note) uint { return n.ID }

func noteRowID(r NoteRow) (uint, bool) {
	if r.ID == nil {
		return 0, false
	}
	return *r.ID, true
}

func noteRowBlank(r NoteRow) bool {
	return strings.TrimSpace(r.Body) == ""
}

func noteUnchanged(n models.Note, r NoteRow) bool {
	return strPtrEqual(n.Title, trimPtr(r.Title)) &&
		n.Body == strings.TrimSpace(r.Body) &&
		strPtrEqual(n.Tags, SerializeTags(r.Tags))
}

func chartID(c models.Chart) uint { return c.ID }

func chartRowID(r ChartRow) (uint, bool) {
	if r.ID == nil {
		return 0, false
	}
	return *r.ID, true
}

func chartRowBlank(r ChartRow) bool {
	return strings.TrimSpace(r.ChartURL) == ""
}

func chartUnchanged(c models.Chart, r ChartRow) bool {
	return c.ChartURL == strings.TrimSpace(r.ChartURL) &&
		strPtrEqual(c.Description, trimPtr(r.Description))
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ReplaceTradeNotes makes the trade's attached note set equal exactly the
// non-blank proposed rows. Matched rows are updated in place, preserving
// identity (and mutating the shared note for every owner referencing it);
// new rows are inserted and linked; rows the user removed are detached and
// garbage-collected once nothing references them.
func (s *Service) ReplaceTradeNotes(tradeID uint, rows []NoteRow) error {
	if _, err := s.getTradeRow(tradeID); err != nil {
		return err
	}
	existing, err := s.TradeNotes(tradeID)
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
		link := models.TradeNote{TradeID: tradeID, NoteID: note.ID}
		if err := s.db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link note #%d to trade #%d: %w", note.ID, tradeID, err)
		}
	}
	for _, id := range d.removes {
		if err := s.db.Where("trade_id = ? AND note_id = ?", tradeID, id).
			Delete(&models.TradeNote{}).Error; err != nil {
			return fmt.Errorf("failed to detach note #%d from trade #%d: %w", id, tradeID, err)
		}
		if err := s.gcNote(id); err != nil {
			return err
		}
	}

	s.logger.Debug("Reconciled trade notes",
		zap.Uint("trade_id", tradeID),
		zap.Int("inserted", len(d.inserts)),
		zap.Int("updated", len(d.updates)),
		zap.Int("removed", len(d.removes)),
	)
	return nil
}

// ReplaceTradeCharts is the chart counterpart of ReplaceTradeNotes.
func (s *Service) ReplaceTradeCharts(tradeID uint, rows []ChartRow) error {
	if _, err := s.getTradeRow(tradeID); err != nil {
		return err
	}
	existing, err := s.TradeCharts(tradeID)
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
		link := models.TradeChart{TradeID: tradeID, ChartID: chart.ID}
		if err := s.db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link chart #%d to trade #%d: %w", chart.ID, tradeID, err)
		}
	}
	for _, id := range d.removes {
		if err := s.db.Where("trade_id = ? AND chart_id = ?", tradeID, id).
			Delete(&models.TradeChart{}).Error; err != nil {
			return fmt.Errorf("failed to detach chart #%d from trade #%d: %w", id, tradeID, err)
		}
		if err := s.gcChart(id); err != nil {
			return err
		}
	}

	s.logger.Debug("Reconciled trade charts",
		zap.Uint("trade_id", tradeID),
		zap.Int("inserted", len(d.inserts)),
		zap.Int("updated", len(d.updates)),
		zap.Int("removed", len(d.removes)),
	)
	return nil
}

// updateNote edits the shared note row; every owner referencing it sees the
// change. A map update is used so nil pointers clear columns.
func (s *Service) updateNote(id uint, r NoteRow) error {
	res := s.db.Model(&models.Note{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title": trimPtr(r.Title),
		"body":  strings.TrimSpace(r.Body),
		"tags":  SerializeTags(r.Tags),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update note #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "note", ID: id}
	}
	return nil
}

func (s *Service) updateChart(id uint, r ChartRow) error {
	res := s.db.Model(&models.Chart{}).Where("id = ?", id).Updates(map[string]interface{}{
		"chart_url":   strings.TrimSpace(r.ChartURL),
		"description": trimPtr(r.Description),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update chart #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "chart", ID: id}
	}
	return nil
}

// gcNote deletes a note once no junction row references it anymore,
// cascading into its chart links.
func (s *Service) gcNote(noteID uint) error {
	var count int64
	for _, q := range []*gorm.DB{
		s.db.Model(&models.TradeNote{}).Where("note_id = ?", noteID),
		s.db.Model(&models.AnalysisNote{}).Where("note_id = ?", noteID),
	} {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count references to note #%d: %w", noteID, err)
		}
		count += n
	}
	if count > 0 {
		return nil
	}

	var chartLinks []models.NoteChart
	if err := s.db.Where("note_id = ?", noteID).Find(&chartLinks).Error; err != nil {
		return fmt.Errorf("failed to list chart links for note #%d: %w", noteID, err)
	}
	if err := s.db.Where("note_id = ?", noteID).Delete(&models.NoteChart{}).Error; err != nil {
		return fmt.Errorf("failed to detach charts from note #%d: %w", noteID, err)
	}
	if err := s.db.Delete(&models.Note{}, noteID).Error; err != nil {
		return fmt.Errorf("failed to delete orphaned note #%d: %w", noteID, err)
	}
	for _, link := range chartLinks {
		if err := s.gcChart(link.ChartID); err != nil {
			return err
		}
	}
	return nil
}

// gcChart deletes a chart once no junction row in any owner table references it.
func (s *Service) gcChart(chartID uint) error {
	var count int64
	for _, q := range []*gorm.DB{
		s.db.Model(&models.TradeChart{}).Where("chart_id = ?", chartID),
		s.db.Model(&models.AnalysisChart{}).Where("chart_id = ?", chartID),
		s.db.Model(&models.SetupChart{}).Where("chart_id = ?", chartID),
		s.db.Model(&models.NoteChart{}).Where("chart_id = ?", chartID),
	} {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count references to chart #%d: %w", chartID, err)
		}
		count += n
	}
	if count > 0 {
		return nil
	}
	if err := s.db.Delete(&models.Chart{}, chartID).Error; err != nil {
		return fmt.Errorf("failed to delete orphaned chart #%d: %w", chartID, err)
	}
	return nil
}

// TradeNotes lists the notes attached to a trade, oldest first.
func (s *Service) TradeNotes(tradeID uint) ([]models.Note, error) {
	var notes []models.Note
	err := s.db.
		Joins("JOIN trade_notes ON trade_notes.note_id = notes.id").
		Where("trade_notes.trade_id = ?", tradeID).
		Order("notes.id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for trade #%d: %w", tradeID, err)
	}
	return notes, nil
}

// TradeCharts lists the charts attached to a trade, oldest first.
func (s *Service) TradeCharts(tradeID uint) ([]models.Chart, error) {
	var charts []models.Chart
	err := s.db.
		Joins("JOIN trade_charts ON trade_charts.chart_id = charts.id").
		Where("trade_charts.trade_id = ?", tradeID).
		Order("charts.id ASC").
		Find(&charts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list charts for trade #%d: %w", tradeID, err)
	}
	return charts, nil
}
