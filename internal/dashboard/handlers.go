package dashboard

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/labels"
	"github.com/sells-group/demography-cli/internal/model"
	"github.com/sells-group/demography-cli/internal/store"
)

const pageTitle = "Demographic Data Visualization - United States Of America"

type categoryControl struct {
	Key   string
	Title string
}

var categoryControls = []categoryControl{
	{Key: string(model.CategoryState), Title: "State"},
	{Key: string(model.CategoryAgeGroup), Title: "Age Group"},
	{Key: string(model.CategoryRace), Title: "Race"},
	{Key: string(model.CategorySex), Title: "Sex"},
	{Key: string(model.CategoryHisp), Title: "Hispanic Origin"},
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, map[string]any{
		"Title":       pageTitle,
		"MinYear":     s.cfg.MinYear,
		"MaxYear":     s.cfg.MaxYear,
		"DefaultYear": s.cfg.DefaultYear,
		"Categories":  categoryControls,
	})
	if err != nil {
		zap.L().Error("dashboard: render index", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.st.Ping(r.Context()); err != nil {
		zap.L().Warn("dashboard: readiness check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// data loads the cached dataset, writing a 503 when it is unavailable.
func (s *Server) data(w http.ResponseWriter, r *http.Request) (*Data, bool) {
	d, err := s.cache.Get(r.Context())
	if err != nil {
		zap.L().Error("dashboard: load data", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "data unavailable")
		return nil, false
	}
	return d, true
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	d, ok := s.data(w, r)
	if !ok {
		return
	}

	options := make(map[string][]string, len(model.AllCategories()))
	for _, c := range model.AllCategories() {
		options[string(c)] = d.Resolver.Options(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"options": options,
		"years": map[string]int{
			"min":     s.cfg.MinYear,
			"max":     s.cfg.MaxYear,
			"default": s.cfg.DefaultYear,
		},
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	d, ok := s.data(w, r)
	if !ok {
		return
	}
	sel, _, err := parseSelection(r.URL.Query(), s.cfg, d.Resolver)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":   sel.Year,
		"charts": d.Resolver.BuildCharts(d.Rows, sel),
	})
}

func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	d, ok := s.data(w, r)
	if !ok {
		return
	}
	sel, mode, err := parseSelection(r.URL.Query(), s.cfg, d.Resolver)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := d.Resolver.Filter(d.Rows, sel, mode)
	if rows == nil {
		rows = []labels.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":  sel.Year,
		"mode":  mode,
		"count": len(rows),
		"rows":  rows,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d, ok := s.data(w, r)
	if !ok {
		return
	}
	sel, mode, err := parseSelection(r.URL.Query(), s.cfg, d.Resolver)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := d.Resolver.Filter(d.Rows, sel, mode)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="demography-%d-%s.xlsx"`, sel.Year, mode))
	if err := writeRowsXLSX(w, rows); err != nil {
		zap.L().Error("dashboard: write export", zap.Error(err))
	}
}

func (s *Server) handleLoads(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	loads, err := s.st.ListLoads(r.Context(), store.LoadFilter{Limit: limit})
	if err != nil {
		zap.L().Error("dashboard: list loads", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "load log unavailable")
		return
	}
	if loads == nil {
		loads = []model.LoadEntry{}
	}

	snap, err := s.collector.Collect(r.Context(), s.lookback)
	if err != nil {
		zap.L().Error("dashboard: collect load stats", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "load log unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": snap,
		"loads":   loads,
	})
}
