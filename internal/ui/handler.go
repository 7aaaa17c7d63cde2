package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
)

// Handler manages HTTP requests for the API
type Handler struct {
	Logger log.Logger
	Config *cfg.Config
	UserMd *model.User
	EdgeMd *model.Edge
}

// NewHandler creates a new API handler
func NewHandler(logger log.Logger, config *cfg.Config, connector db.Connector) (*Handler, error) {
	userMd, err := model.NewUser(config, logger, connector)
	if err != nil {
		return nil, err
	}
	edgeMd, err := model.NewEdge(config, logger, connector)
	if err != nil {
		return nil, err
	}
	return &Handler{
		Logger: logger,
		Config: config,
		UserMd: userMd,
		EdgeMd: edgeMd,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the API
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/leads", h.getLeads)
	mux.HandleFunc("/api/users", h.getUsers)
	mux.HandleFunc("/api/connections", h.getConnections)
	mux.HandleFunc("/api/stats", h.getStats)
}

// LeadResponse is the flattened view of a rated user for recruiters
type LeadResponse struct {
	Login    string   `json:"login"`
	Name     string   `json:"name"`
	Rating   float64  `json:"rating"`
	Depth    int      `json:"depth"`
	Tags     []string `json:"tags"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Email    string   `json:"email"`
	Blog     string   `json:"blog"`
	Linkedin string   `json:"linkedin"`
	Summary  string   `json:"summary"`
}

// GetLeads returns rated users above an optional rating floor, best first
func (h *Handler) getLeads(w http.ResponseWriter, r *http.Request) {
	minRating := parseFloat(r.URL.Query().Get("minRating"), 0)
	limit := parseInt(r.URL.Query().Get("limit"), 100)

	users, err := h.UserMd.List(model.StatusProcessed, minRating, -1, limit)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch leads: %v", err)
		http.Error(w, "Failed to fetch leads", http.StatusInternalServerError)
		return
	}

	leads := make([]LeadResponse, 0, len(users))
	for i := range users {
		user := &users[i]
		if user.Rating == nil {
			continue
		}
		leads = append(leads, LeadResponse{
			Login:    user.Login,
			Name:     user.Name,
			Rating:   *user.Rating,
			Depth:    user.Depth,
			Tags:     user.Tags,
			Company:  user.Company,
			Location: user.Location,
			Email:    user.Email,
			Blog:     user.Blog,
			Linkedin: strOrEmpty(user.LinkedinUrl),
			Summary:  strOrEmpty(user.LinkedinSummary),
		})
	}

	h.writeJSON(w, r, map[string]interface{}{"leads": leads, "count": len(leads)})
}

// GetUsers returns users filtered by status and depth, full records
func (h *Handler) getUsers(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	maxDepth := parseInt(r.URL.Query().Get("maxDepth"), -1)
	limit := parseInt(r.URL.Query().Get("limit"), 100)

	users, err := h.UserMd.List(status, 0, maxDepth, limit)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch users: %v", err)
		http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]interface{}{"users": users, "count": len(users)})
}

// GetConnections returns the stored graph neighborhood of one login
func (h *Handler) getConnections(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("login")
	if login == "" {
		http.Error(w, "Missing login parameter", http.StatusBadRequest)
		return
	}

	following, err := h.EdgeMd.Outbound(login)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch outbound edges: %v", err)
		http.Error(w, "Failed to fetch connections", http.StatusInternalServerError)
		return
	}
	followers, err := h.EdgeMd.Inbound(login)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch inbound edges: %v", err)
		http.Error(w, "Failed to fetch connections", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]interface{}{
		"login":     login,
		"following": following,
		"followers": followers,
	})
}

// GetStats returns crawl progress counters
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.UserMd.CountByStatus()
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to count users: %v", err)
		http.Error(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}
	edges, err := h.EdgeMd.Count()
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to count edges: %v", err)
		http.Error(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]interface{}{
		"users": counts,
		"edges": edges,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
