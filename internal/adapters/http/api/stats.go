package api

import (
	"net/http"
)

// StatsProvider reports the current service snapshot.
type StatsProvider interface {
	GetStats() Stats
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	if h.statsProvider == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrNoStats)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
