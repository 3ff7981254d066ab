package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"treesync/config"
	"treesync/internal/pipeline"
	"treesync/internal/store"
	"treesync/metrics"
	"treesync/stats"
)

// Router builds HTTP handlers for /api and /ops.
type Router struct {
	cfg     config.Config
	store   *store.Store
	stats   *stats.Service
	syncer  *pipeline.Orchestrator
	metrics *metrics.Metrics
}

func NewRouter(cfg config.Config, st *store.Store, sv *stats.Service, syncer *pipeline.Orchestrator, m *metrics.Metrics) *Router {
	return &Router{cfg: cfg, store: st, stats: sv, syncer: syncer, metrics: m}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/trees-by-genre", r.instrument("/api/trees-by-genre", r.treesByGenus))
	mux.HandleFunc("/api/trees-by-arrondissement", r.instrument("/api/trees-by-arrondissement", r.treesByDistrict))
	mux.HandleFunc("/api/average-tree-height-by-district", r.instrument("/api/average-tree-height-by-district", r.averageHeight))
	mux.HandleFunc("/api/top-tree-species", r.instrument("/api/top-tree-species", r.topSpecies))
	mux.HandleFunc("/api/data", r.instrument("/api/data", r.runSync))
	mux.HandleFunc("/ops/health", r.health)
	mux.HandleFunc("/ops/status", r.status)
	if r.metrics != nil {
		mux.Handle("/metrics", r.metrics.Handler())
	}
}

func (r *Router) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	if r.metrics == nil {
		return h
	}
	return r.metrics.Middleware(endpoint, h)
}

func (r *Router) treesByGenus(w http.ResponseWriter, req *http.Request) {
	groups, err := r.stats.ByGenus(req.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	genus := make([]*string, 0, len(groups))
	counts := make([]int64, 0, len(groups))
	for _, g := range groups {
		genus = append(genus, g.Genus)
		counts = append(counts, g.Count)
	}
	respondJSON(w, map[string]any{"genre": genus, "treeCounts": counts})
}

func (r *Router) treesByDistrict(w http.ResponseWriter, req *http.Request) {
	groups, err := r.stats.ByDistrict(req.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	districts := make([]*string, 0, len(groups))
	counts := make([]int64, 0, len(groups))
	for _, g := range groups {
		districts = append(districts, g.District)
		counts = append(counts, g.Count)
	}
	respondJSON(w, map[string]any{"arrondissements": districts, "treeCounts": counts})
}

func (r *Router) averageHeight(w http.ResponseWriter, req *http.Request) {
	groups, err := r.stats.AverageHeightByDistrict(req.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if groups == nil {
		groups = []stats.DistrictHeight{}
	}
	respondJSON(w, map[string]any{"data": groups})
}

func (r *Router) topSpecies(w http.ResponseWriter, req *http.Request) {
	groups, err := r.stats.TopSpecies(req.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if groups == nil {
		groups = []stats.SpeciesCount{}
	}
	respondJSON(w, map[string]any{"data": groups})
}

// runSync executes one synchronous sync run and returns its summary.
func (r *Router) runSync(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := r.syncer.Run(req.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		status := http.StatusInternalServerError
		if res.Stage == pipeline.StageFetch {
			status = http.StatusBadGateway
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	respondJSON(w, res)
}

func (r *Router) status(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	rowCount, _ := r.store.CountTrees(ctx)
	summary := map[string]any{
		"state":     r.syncer.State(),
		"tree_rows": rowCount,
		"config": map[string]any{
			"DB_DRIVER":  r.cfg.DBDriver,
			"SOURCE_URL": r.cfg.SourceURL,
			"PAGE_SIZE":  r.cfg.PageSize,
		},
	}
	if last := r.syncer.LastRun(); last != nil {
		summary["last_run"] = last
	}
	respondJSON(w, summary)
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
