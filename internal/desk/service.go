// Package desk provides the HTTP handlers for quoting, persisting and
// stress-testing hedged bond calculations.
//
// Monetary values use shopspring/decimal and travel as JSON strings.
package desk

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bondhedge/hedge-engine/internal/engine"
	"github.com/bondhedge/hedge-engine/internal/metrics"
	"github.com/bondhedge/hedge-engine/internal/model"
	"github.com/bondhedge/hedge-engine/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Options bounds scenario sweeps.
type Options struct {
	Workers   int // concurrent rows per sweep
	MaxPoints int // shifts per sweep
}

// Service handles calculation requests. Calculations are pure and
// immutable once stored, so no locking is needed here.
type Service struct {
	store    store.Store
	defaults model.Defaults
	opts     Options
	wsHub    *WSHub // optional WebSocket hub for event broadcasts
}

// NewService creates a new desk service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, defaults model.Defaults, opts Options, hub *WSHub) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxPoints < 1 {
		opts.MaxPoints = 401
	}
	return &Service{
		store:    st,
		defaults: defaults,
		opts:     opts,
		wsHub:    hub,
	}
}

// Routes mounts the API under the given router.
func (s *Service) Routes(r chi.Router) {
	if s.wsHub != nil {
		r.Get("/ws", s.wsHub.HandleWS)
	}
	r.Post("/quote", s.Quote)
	r.Get("/calculations", s.ListCalculations)
	r.Post("/calculations", s.CreateCalculation)
	r.Get("/calculations/{calculationID}", s.GetCalculation)
	r.Get("/calculations/{calculationID}/scenarios", s.ListScenarios)
	r.Post("/calculations/{calculationID}/scenarios", s.SweepScenarios)
}

// QuoteResponse is the body returned from POST /quote.
type QuoteResponse struct {
	Investment model.InvestmentParameters `json:"investment"`
	Hedge      model.HedgeParameters      `json:"hedge"`
	Result     model.CalculationResult    `json:"result"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []engine.FieldError `json:"fields,omitempty"`
}

// Quote handles POST /api/v1/quote. Nothing is persisted.
func (s *Service) Quote(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, res, err := s.calculate(req)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QuoteResponse{Investment: p.Investment, Hedge: p.Hedge, Result: *res})
}

// CreateCalculation handles POST /api/v1/calculations.
func (s *Service) CreateCalculation(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, res, err := s.calculate(req)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	calc := &model.Calculation{
		ID:         uuid.New().String(),
		Investment: p.Investment,
		Hedge:      p.Hedge,
		Result:     *res,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateCalculation(r.Context(), calc); err != nil {
		slog.Error("store calculation failed", "err", err)
		writeError(w, "failed to store calculation", http.StatusInternalServerError)
		return
	}

	slog.Info("calculation created",
		"id", calc.ID,
		"principal", p.Investment.Principal.String(),
		"convention", string(p.Investment.Convention),
		"cost_model", string(p.CostModel),
		"lots", res.LotsRequired,
		"net_with_hedge", res.NetReturnWithHedgeINR.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:                  EventCalculationCreated,
			CalculationID:         calc.ID,
			LotsRequired:          res.LotsRequired,
			NetReturnWithHedgeINR: res.NetReturnWithHedgeINR.String(),
			ReturnPercentHedged:   res.ReturnPercentWithHedge.String(),
			CostModel:             string(res.CostModel),
		})
	}

	writeJSON(w, http.StatusCreated, calc)
}

// ListCalculations handles GET /api/v1/calculations?limit=N, newest first.
func (s *Service) ListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	calcs, err := s.store.ListCalculations(r.Context(), limit)
	if err != nil {
		slog.Error("list calculations failed", "err", err)
		writeError(w, "failed to list calculations", http.StatusInternalServerError)
		return
	}
	if calcs == nil {
		calcs = []model.Calculation{}
	}
	writeJSON(w, http.StatusOK, calcs)
}

// GetCalculation handles GET /api/v1/calculations/{calculationID}.
func (s *Service) GetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// SweepScenarios handles POST /api/v1/calculations/{calculationID}/scenarios.
// Every shift gets a row; rows that cannot be evaluated carry an error
// and do not fail the request.
func (s *Service) SweepScenarios(w http.ResponseWriter, r *http.Request) {
	calc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	shifts, err := req.Resolve(s.opts.MaxPoints)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	rows := engine.SweepScenarios(r.Context(), calc.Result, shifts, s.opts.Workers)
	failed := 0
	for _, row := range rows {
		if !row.OK() {
			failed++
		}
	}
	metrics.ObserveSweep(len(rows)-failed, failed)

	sweep := &model.Sweep{
		ID:            uuid.New().String(),
		CalculationID: calc.ID,
		Rows:          rows,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.InsertSweep(r.Context(), sweep); err != nil {
		slog.Error("store sweep failed", "calculation", calc.ID, "err", err)
		writeError(w, "failed to store scenario sweep", http.StatusInternalServerError)
		return
	}

	slog.Info("scenarios swept",
		"calculation", calc.ID,
		"sweep", sweep.ID,
		"rows", len(rows),
		"failed", failed,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:          EventScenariosSwept,
			CalculationID: calc.ID,
			SweepID:       sweep.ID,
			Rows:          len(rows),
			FailedRows:    failed,
		})
	}

	writeJSON(w, http.StatusCreated, sweep)
}

// ListScenarios handles GET /api/v1/calculations/{calculationID}/scenarios.
func (s *Service) ListScenarios(w http.ResponseWriter, r *http.Request) {
	calc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	sweeps, err := s.store.GetSweepsByCalculation(r.Context(), calc.ID)
	if err != nil {
		slog.Error("list sweeps failed", "calculation", calc.ID, "err", err)
		writeError(w, "failed to list scenario sweeps", http.StatusInternalServerError)
		return
	}
	if sweeps == nil {
		sweeps = []model.Sweep{}
	}
	writeJSON(w, http.StatusOK, sweeps)
}

// calculate resolves the request and runs the engine, recording metrics
// for both outcomes.
func (s *Service) calculate(req CalculateRequest) (Params, *model.CalculationResult, error) {
	p, err := req.Resolve(s.defaults)
	if err != nil {
		metrics.CalculationFailures.WithLabelValues(failureKind(err)).Inc()
		return Params{}, nil, err
	}

	start := time.Now()
	res, err := engine.Calculate(p.Investment, p.Hedge, p.CostModel, p.Rounding)
	if err != nil {
		metrics.CalculationFailures.WithLabelValues(failureKind(err)).Inc()
		return Params{}, nil, err
	}
	metrics.ObserveCalculation(string(p.CostModel), string(p.Rounding), res.LotsRequired, time.Since(start))
	return p, res, nil
}

// lookup loads the calculation named in the URL, writing 404/500 itself.
func (s *Service) lookup(w http.ResponseWriter, r *http.Request) (*model.Calculation, bool) {
	id := chi.URLParam(r, "calculationID")

	calc, err := s.store.GetCalculation(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, "calculation not found", http.StatusNotFound)
		return nil, false
	case err != nil:
		slog.Error("load calculation failed", "id", id, "err", err)
		writeError(w, "failed to load calculation", http.StatusInternalServerError)
		return nil, false
	}
	return calc, true
}

func failureKind(err error) string {
	switch {
	case engine.IsValidation(err):
		return "validation"
	case engine.IsInvalidInput(err):
		return "invalid_input"
	default:
		return "internal"
	}
}

// writeCalculationError maps engine errors to 422 (validation),
// 400 (invalid input) or 500, listing the offending fields.
func writeCalculationError(w http.ResponseWriter, err error) {
	fields := engine.FieldErrors(err)
	switch {
	case engine.IsValidation(err):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: fields})
	case engine.IsInvalidInput(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid input", Fields: fields})
	default:
		slog.Error("calculation failed", "err", err)
		writeError(w, "calculation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
