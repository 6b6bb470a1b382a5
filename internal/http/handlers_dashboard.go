package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request, u core.User) {
	b, err := s.svc.Dashboard.Balance(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newBalanceView(b, s.svc.Dashboard.Policy())).Write(w)
}

// handleMonthlySummary defaults to the current month. A missing or malformed
// year or month is replaced by the current one, each on its own.
func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request, u core.User) {
	year, month := s.monthOrNow(LenientMonthParams(r.URL.Query()))

	sum, err := s.svc.Dashboard.MonthlySummary(r.Context(), u.ID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newSummaryView(sum)).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, u core.User) {
	hist, err := s.svc.Dashboard.History(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newHistoryViews(hist)).Write(w)
}

// monthOrNow fills a missing year or month from the current date.
func (s *Server) monthOrNow(mp MonthParams) (int, int) {
	return core.ResolveMonth(mp.Year, mp.Month, s.now())
}
