package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trade-journal-go/internal/chartcheck"
	"trade-journal-go/internal/journal"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	svc     *journal.Service
	checker chartcheck.CheckerInterface
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, svc *journal.Service, checker chartcheck.CheckerInterface) *APIHandler {
	return &APIHandler{log: log, svc: svc, checker: checker}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps the journal error taxonomy onto HTTP statuses. Validation
// responses carry every violated rule; a partial write says explicitly that
// the owner row was already committed.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	var ve *journal.ValidationError
	if errors.As(err, &ve) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    "validation failed",
			"problems": ve.Problems,
		})
		return
	}
	if errors.Is(err, journal.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	var pw *journal.PartialWriteError
	if errors.As(err, &pw) {
		h.log.Error("Partial write", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":     pw.Error(),
			"committed": true,
		})
		return
	}
	h.log.Error("Request failed", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, errors.New("id must be a positive integer")
	}
	return uint(id), nil
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func parseOptionalUint(s string) *uint {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

func tradeFilterFromQuery(r *http.Request) journal.TradeFilter {
	q := r.URL.Query()
	return journal.TradeFilter{
		AccountID:  parseOptionalUint(q.Get("account_id")),
		SetupID:    parseOptionalUint(q.Get("setup_id")),
		AnalysisID: parseOptionalUint(q.Get("analysis_id")),
		Asset:      q.Get("asset"),
		State:      q.Get("state"),
		Result:     q.Get("result"),
		Session:    q.Get("session"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
		OrderBy:    q.Get("order_by"),
		Descending: q.Get("order") == "desc",
	}
}

// --- Trades ---

func (h *APIHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.svc.ListTrades(tradeFilterFromQuery(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trades)
}

func (h *APIHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var payload journal.TradePayload
	if !h.decode(w, r, &payload) {
		return
	}
	id, err := h.svc.CreateTrade(&payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *APIHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	trade, err := h.svc.GetTrade(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	notes, err := h.svc.TradeNotes(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	charts, err := h.svc.TradeCharts(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trade":  trade,
		"notes":  notes,
		"charts": charts,
	})
}

// tradeSaveRequest is the full-form submit: the trade payload plus the
// complete proposed note and chart sets. Nil collections mean "leave as is".
type tradeSaveRequest struct {
	journal.TradePayload
	Notes  []journal.NoteRow  `json:"notes"`
	Charts []journal.ChartRow `json:"charts"`
}

func (h *APIHandler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req tradeSaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.SaveTrade(id, &req.TradePayload, req.Notes, req.Charts); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *APIHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.svc.DeleteTrade(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *APIHandler) ReplaceTradeNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var rows []journal.NoteRow
	if !h.decode(w, r, &rows) {
		return
	}
	if err := h.svc.ReplaceTradeNotes(id, rows); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "replaced"})
}

func (h *APIHandler) ReplaceTradeCharts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var rows []journal.ChartRow
	if !h.decode(w, r, &rows) {
		return
	}
	if err := h.svc.ReplaceTradeCharts(id, rows); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "replaced"})
}

// --- Analyses ---

func (h *APIHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.svc.ListAnalyses()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analyses)
}

func (h *APIHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var payload journal.AnalysisPayload
	if !h.decode(w, r, &payload) {
		return
	}
	id, err := h.svc.CreateAnalysis(&payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *APIHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	analysis, err := h.svc.GetAnalysis(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	section := r.URL.Query().Get("section")
	notes, err := h.svc.AnalysisNotes(id, section)
	if err != nil {
		h.writeError(w, err)
		return
	}
	charts, err := h.svc.AnalysisCharts(id, section)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"analysis": analysis,
		"notes":    notes,
		"charts":   charts,
	})
}

func (h *APIHandler) UpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var payload journal.AnalysisPayload
	if !h.decode(w, r, &payload) {
		return
	}
	if err := h.svc.UpdateAnalysis(id, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *APIHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.svc.DeleteAnalysis(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *APIHandler) ReplaceAnalysisNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var rows []journal.NoteRow
	if !h.decode(w, r, &rows) {
		return
	}
	if err := h.svc.ReplaceAnalysisNotes(id, r.URL.Query().Get("section"), rows); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "replaced"})
}

func (h *APIHandler) ReplaceAnalysisCharts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var rows []journal.ChartRow
	if !h.decode(w, r, &rows) {
		return
	}
	if err := h.svc.ReplaceAnalysisCharts(id, r.URL.Query().Get("section"), rows); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "replaced"})
}

// --- Reference data ---

func (h *APIHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *APIHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload journal.AccountPayload
	if !h.decode(w, r, &payload) {
		return
	}
	id, err := h.svc.CreateAccount(&payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *APIHandler) ListSetups(w http.ResponseWriter, r *http.Request) {
	setups, err := h.svc.ListSetups()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, setups)
}

func (h *APIHandler) CreateSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.svc.CreateSetup(req.Name, req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *APIHandler) ArchiveAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.svc.ArchiveAccount(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (h *APIHandler) SetupCharts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	charts, err := h.svc.SetupCharts(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, charts)
}

func (h *APIHandler) LinkChartToSetup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req struct {
		ChartID uint `json:"chart_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.LinkChartToSetup(id, req.ChartID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (h *APIHandler) NoteCharts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	charts, err := h.svc.NoteCharts(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, charts)
}

func (h *APIHandler) LinkChartToNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req struct {
		ChartID uint `json:"chart_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.LinkChartToNote(id, req.ChartID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

// --- Stats ---

func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(tradeFilterFromQuery(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) Equity(w http.ResponseWriter, r *http.Request) {
	curve, err := h.svc.EquityCurve(tradeFilterFromQuery(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, curve)
}

// --- Chart check ---

func (h *APIHandler) CheckChart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChartURL string `json:"chart_url"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.checker.Check(r.Context(), req.ChartURL); err != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"reachable": false,
			"error":     err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"reachable": true})
}
