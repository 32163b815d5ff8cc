package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fiscus/internal/core"
	"fiscus/internal/metrics"
	"fiscus/internal/stats"
)

type transactionPayload struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// toTransaction converts the wire payload to a domain transaction. Field
// problems come back as ValidationError so they map to 400.
func (p transactionPayload) toTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := parseDate(p.Date)
	if err != nil {
		return core.Transaction{}, core.Validationf("invalid date %q: want YYYY-MM-DD", p.Date)
	}

	return core.Transaction{
		Type:        core.TxType(strings.TrimSpace(p.Type)),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(p.Category),
		Date:        date,
		Description: strings.TrimSpace(p.Description),
	}, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}

// ownerFrom scopes the request. A missing header falls back to the shared
// default owner rather than failing, matching single-user deployments.
func ownerFrom(r *http.Request) string {
	if owner := strings.TrimSpace(r.Header.Get("X-Owner-ID")); owner != "" {
		return owner
	}
	return defaultOwner
}

// todayFrom reads the reference date from the query string, defaulting to
// the current UTC day.
func todayFrom(r *http.Request) core.Date {
	if v := strings.TrimSpace(r.URL.Query().Get("today")); v != "" {
		if d, err := parseDate(v); err == nil {
			return d
		}
	}
	return core.DateOf(time.Now().UTC())
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.Validationf("malformed request body: %v", err)
	}
	return nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.Transactions(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTransactions(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, s.logger, err)
		return
	}

	tx, err := payload.toTransaction()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	stored, err := s.service.Add(r.Context(), ownerFrom(r), tx)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewTransaction(stored))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, s.logger, err)
		return
	}

	tx, err := payload.toTransaction()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	tx.ID = chi.URLParam(r, "id")

	stored, err := s.service.Update(r.Context(), ownerFrom(r), tx)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTransaction(stored))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), ownerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.service.Totals(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTotals(totals))
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	s.cachedSeries(w, r, "weekly", s.service.Weekly)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	s.cachedSeries(w, r, "monthly", s.service.Monthly)
}

func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	s.cachedSeries(w, r, "yearly", s.service.Yearly)
}

// cachedSeries serves a derived series from the per-owner cache, computing
// and storing the marshaled body on a miss.
func (s *Server) cachedSeries(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, owner string, today core.Date) (stats.Series, error)) {
	owner := ownerFrom(r)
	today := todayFrom(r)
	key := owner + ":" + name + ":" + today.Format(dateLayout)

	if body, ok := s.statsCache.Get(key); ok {
		metrics.StatsCacheHits.WithLabelValues("hit").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	metrics.StatsCacheHits.WithLabelValues("miss").Inc()

	series, err := fn(r.Context(), owner, today)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	body, err := json.Marshal(viewSeries(series))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.statsCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	typ := core.TypeExpense
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		typ = core.TxType(v)
		if !typ.Valid() {
			writeError(w, s.logger, core.ErrInvalidType)
			return
		}
	}

	breakdown, err := s.service.Breakdown(r.Context(), ownerFrom(r), typ)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBreakdown(breakdown))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.service.Groups(r.Context(), ownerFrom(r), todayFrom(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGroups(groups))
}

type categoryEntryView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	reg := s.service.Registry()

	keys := reg.Keys()
	out := make([]categoryEntryView, 0, len(keys))
	for _, key := range keys {
		entry, err := reg.Resolve(key)
		if err != nil {
			continue
		}
		out = append(out, categoryEntryView{
			Key:   key,
			Label: entry.Label,
			Icon:  entry.Icon,
			Color: entry.Color,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "advisor is not configured"})
		return
	}

	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	owner := ownerFrom(r)
	summary, err := s.service.Summary(r.Context(), owner)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	reply, err := s.advisor.Ask(r.Context(), summary, req.Question)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
