package http

import (
	"net/http"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.SummaryStats(r.Context(), s.now())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Dashboard data fetched Successfully", envelope{"stats": stats})
}

func (s *Server) handlePieCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := s.dashboard.PieCharts(r.Context(), s.now())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Charts-Data Fetched Successfully", envelope{"charts": charts})
}

func (s *Server) handleBarCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := s.dashboard.BarCharts(r.Context(), s.now())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "BarChart-Data Fetched Successfully", envelope{"charts": charts})
}

func (s *Server) handleLineCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := s.dashboard.LineCharts(r.Context(), s.now())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "LineChart-Data Fetched Successfully", envelope{"charts": charts})
}
