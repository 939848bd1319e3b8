package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"

	"github.com/asimoes/retrosim/internal/modules/simulation"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "retrosim",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSimulation runs a full simulation and returns the complete
// result: allocation, purchase log, valuation and messages.
func (s *Server) handleSimulation(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runSimulation(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleAllocation returns only the allocation table of a run.
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runSimulation(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":           result.RunID,
		"rows":             result.Allocation.Rows,
		"initial_cash_usd": result.Allocation.InitialCashUSD,
		"final_cash_usd":   result.Allocation.FinalCashUSD,
		"messages":         result.Messages,
	})
}

// handlePurchaseLog returns the unit-by-unit purchase events of a run.
func (s *Server) handlePurchaseLog(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runSimulation(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": result.RunID,
		"events": result.Allocation.Events,
	})
}

// handleValuation returns positions, value series and statistics.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runSimulation(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":       result.RunID,
		"positions":    result.Positions,
		"summary":      result.Summary,
		"value_dates":  result.ValueDates,
		"value_series": result.ValueSeries,
		"stats":        result.Stats,
	})
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status": "running",
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// runSimulation parses the query parameters, falls back to configured
// defaults and executes the run. Returns false after writing an error
// response.
func (s *Server) runSimulation(w http.ResponseWriter, r *http.Request) (*simulation.Result, bool) {
	input := simulation.Input{
		TotalCashUSD: s.cfg.DefaultCashUSD,
		PurchaseDate: s.cfg.DefaultBuyDate,
	}

	if raw := r.URL.Query().Get("cash"); raw != "" {
		cash, err := strconv.ParseFloat(raw, 64)
		if err != nil || cash <= 0 {
			s.writeError(w, http.StatusBadRequest, "cash must be a positive number")
			return nil, false
		}
		input.TotalCashUSD = cash
	}

	if raw := r.URL.Query().Get("purchase_date"); raw != "" {
		date, err := timeseries.ParseDate(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "purchase_date must be YYYY-MM-DD")
			return nil, false
		}
		input.PurchaseDate = date
	}

	result, err := s.sim.Run(input)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}

	return result, true
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
