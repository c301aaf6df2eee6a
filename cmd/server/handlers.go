package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/quotedesk/internal/archive"
	"github.com/Simplici0/quotedesk/internal/backend"
	"github.com/Simplici0/quotedesk/internal/export"
	"github.com/Simplici0/quotedesk/internal/quote"
	"github.com/Simplici0/quotedesk/internal/session"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest = errors.New("invalid request")
	errNoSession  = errors.New("no active quote session")
)

type projectRequest struct {
	ProjectID string `json:"project_id"`
}

type itemRequest struct {
	CategoryID int64 `json:"category_id"`
	ItemID     int64 `json:"item_id"`
}

type quantityRequest struct {
	CategoryID int64   `json:"category_id"`
	ItemID     int64   `json:"item_id"`
	Quantity   rawText `json:"quantity"`
}

type filterRequest struct {
	CategoryID int64  `json:"category_id"`
	Text       string `json:"text"`
}

type additionalCostRequest struct {
	Value rawText `json:"value"`
}

type errorResponse struct {
	Error string        `json:"error"`
	View  *session.View `json:"view,omitempty"`
}

type quoteResponse struct {
	archive.Record
	PDFURL string `json:"pdf_url"`
}

// rawText keeps user input as typed, whether it arrives as a JSON string or number.
type rawText string

func (t *rawText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = rawText(s)
		return nil
	}
	if string(data) == "null" {
		*t = ""
		return nil
	}
	*t = rawText(data)
	return nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).View())
}

func (s *server) handleSelectProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	s.writeSessionResult(w, r, sess, sess.SelectProject(r.Context(), quote.ProjectID(req.ProjectID)))
}

func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.writeSessionResult(w, r, sess, sess.Reload(r.Context()))
}

func (s *server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	s.writeSessionResult(w, r, sess, sess.Toggle(req.CategoryID, req.ItemID))
}

func (s *server) handleQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	s.writeSessionResult(w, r, sess, sess.SetQuantity(req.CategoryID, req.ItemID, string(req.Quantity)))
}

func (s *server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	sess.SetFilter(req.CategoryID, req.Text)
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *server) handleAdditionalCost(w http.ResponseWriter, r *http.Request) {
	var req additionalCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	sess.SetAdditionalCost(string(req.Value))
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *server) handleGenerateQuote(w http.ResponseWriter, r *http.Request) {
	rec, err := s.exporter.Generate(r.Context(), sessionFrom(r).Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quoteResponse{Record: rec, PDFURL: fmt.Sprintf("/quotes/%d.pdf", rec.ID)})
}

func (s *server) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	reply, err := s.exporter.Save(r.Context(), sessionFrom(r).Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	records, err := s.archive.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, archive.ErrNotFound)
		return
	}

	rec, err := s.archive.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "Quote_"+rec.QuoteID+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.PDF)))
	_, _ = w.Write(rec.PDF)
}

// writeSessionResult answers a session mutation with the updated view. On
// failure the view is still sent so the client can show partial state.
func (s *server) writeSessionResult(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	view := sess.View()
	if err == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}

	status := statusFor(err)
	logError(r, status, err)
	writeJSON(w, status, errorResponse{Error: publicMessage(status, err), View: &view})
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logError(r, status, err)
	writeJSON(w, status, errorResponse{Error: publicMessage(status, err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest), errors.Is(err, quote.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrUnknownProject),
		errors.Is(err, session.ErrUnknownItem),
		errors.Is(err, quote.ErrNotSelected),
		errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, export.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, export.ErrQuoteIDUnavailable), backend.KindOf(err) != "":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func logError(r *http.Request, status int, err error) {
	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		err = fmt.Errorf("%w: %w", errBadRequest, err)
		logError(r, http.StatusBadRequest, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
