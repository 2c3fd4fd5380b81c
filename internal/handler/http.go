package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/domain"
	"github.com/Twicheg/TheGameBackEnd/internal/export"
	"github.com/Twicheg/TheGameBackEnd/internal/redis"
	"github.com/Twicheg/TheGameBackEnd/internal/service"
	"github.com/Twicheg/TheGameBackEnd/internal/websocket"
)

// Handler provides HTTP handlers for the game-progression API
type Handler struct {
	players     *service.PlayerService
	boosts      *service.BoostService
	progression *service.ProgressionService
	catalog     *service.CatalogService
	exporter    *export.Exporter
	scoreboard  *redis.Scoreboard
	hub         *websocket.Hub
	boostConfig *config.BoostConfig
	logger      *slog.Logger

	// selfBase is the server's own address, used for the internal boost
	// call fired after a successful level up.
	selfBase   string
	selfClient *http.Client
}

// NewHandler creates a new HTTP handler
func NewHandler(
	players *service.PlayerService,
	boosts *service.BoostService,
	progression *service.ProgressionService,
	catalog *service.CatalogService,
	exporter *export.Exporter,
	hub *websocket.Hub,
	boostCfg *config.BoostConfig,
	port int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		players:     players,
		boosts:      boosts,
		progression: progression,
		catalog:     catalog,
		exporter:    exporter,
		hub:         hub,
		boostConfig: boostCfg,
		logger:      logger,
		selfBase:    fmt.Sprintf("http://127.0.0.1:%d", port),
		selfClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

// SetScoreboard attaches the optional score mirror backing the
// scoreboard endpoint.
func (h *Handler) SetScoreboard(sb *redis.Scoreboard) {
	h.scoreboard = sb
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Player operations
		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.CreatePlayer)
			r.Get("/", h.ListPlayers)

			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", h.GetPlayer)
				r.Patch("/level_up", h.LevelUp)
				r.Post("/boost", h.ApplyBoost)
				r.Get("/boosts", h.ListBoosts)
			})
		})

		// Catalog administration
		r.Route("/levels", func(r chi.Router) {
			r.Post("/", h.CreateLevel)
			r.Get("/", h.ListLevels)
			r.Post("/{levelID}/prizes", h.BindPrize)
		})
		r.Post("/prizes", h.CreatePrize)

		r.Get("/scoreboard", h.GetScoreboard)
		r.Get("/export/csv", h.ExportCSV)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// playerID extracts and validates the player id path parameter.
func playerID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidRequest
	}
	return id, nil
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// CreatePlayer registers a player and assigns their first level
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	player, err := h.players.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("failed to create player", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    player,
	})
}

// ListPlayers returns all players
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list players", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	h.writeSuccess(w, players)
}

// GetPlayer returns a player's full state after boost cleanup
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	detail, err := h.players.Get(r.Context(), id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get player", "player_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, detail)
}

// LevelUp runs the level-advancement workflow for one player
func (h *Handler) LevelUp(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.progression.Advance(r.Context(), id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to level up", "player_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	if result.Success {
		go h.grantLevelUpBoost(id)
	}

	// Rule outcomes such as "max level reached" are part of the result
	// contract, not HTTP errors.
	h.writeJSON(w, http.StatusOK, result)
}

// grantLevelUpBoost fires the internal boost call for a freshly
// advanced player.
func (h *Handler) grantLevelUpBoost(id uuid.UUID) {
	payload, err := json.Marshal(domain.ApplyBoostRequest{
		Title:       h.boostConfig.Title,
		Description: h.boostConfig.Description,
		Duration:    h.boostConfig.Duration,
	})
	if err != nil {
		h.logger.Error("can't buff player", "player_id", id, "error", err)
		return
	}

	url := fmt.Sprintf("%s/api/v1/players/%s/boost", h.selfBase, id)
	resp, err := h.selfClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		h.logger.Error("can't buff player", "player_id", id, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		h.logger.Error("can't buff player", "player_id", id, "status", resp.StatusCode)
	}
}

// ApplyBoost applies a boost to a player
func (h *Handler) ApplyBoost(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req domain.ApplyBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.Title == "" || req.Duration <= 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	msg, err := h.boosts.Apply(r.Context(), id, req)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to apply boost", "player_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    map[string]string{"ok": msg},
	})
}

// ListBoosts returns a player's boosts
func (h *Handler) ListBoosts(w http.ResponseWriter, r *http.Request) {
	id, err := playerID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	boosts, err := h.boosts.List(r.Context(), id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to list boosts", "player_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, boosts)
}

// CreateLevelRequest is the payload for level creation
type CreateLevelRequest struct {
	Title string `json:"title"`
	Order int    `json:"order"`
}

// CreateLevel adds a level definition
func (h *Handler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req CreateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.Title == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	level, err := h.catalog.CreateLevel(r.Context(), req.Title, req.Order)
	if err != nil {
		h.logger.Error("failed to create level", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: level})
}

// ListLevels returns the level sequence in progression order
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.catalog.ListLevels(r.Context())
	if err != nil {
		h.logger.Error("failed to list levels", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	h.writeSuccess(w, levels)
}

// CreatePrizeRequest is the payload for prize creation
type CreatePrizeRequest struct {
	Title string `json:"title"`
}

// CreatePrize adds a prize definition
func (h *Handler) CreatePrize(w http.ResponseWriter, r *http.Request) {
	var req CreatePrizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.Title == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	prize, err := h.catalog.CreatePrize(r.Context(), req.Title)
	if err != nil {
		h.logger.Error("failed to create prize", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: prize})
}

// BindPrizeRequest is the payload for attaching a prize to a level
type BindPrizeRequest struct {
	PrizeID int64 `json:"prize_id"`
}

// BindPrize attaches a prize to the level that grants it
func (h *Handler) BindPrize(w http.ResponseWriter, r *http.Request) {
	levelID, err := strconv.ParseInt(chi.URLParam(r, "levelID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	var req BindPrizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	binding, err := h.catalog.BindPrize(r.Context(), levelID, req.PrizeID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to bind prize", "level_id", levelID, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: binding})
}

// GetScoreboard returns the top cumulative scores
func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	if h.scoreboard == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("scoreboard disabled"))
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.scoreboard.TopN(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get scoreboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, entries)
}

// ExportCSV returns the bulk player export as a CSV attachment
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.ExportCSV(r.Context())
	if err != nil {
		if domain.IsUnavailableError(err) {
			h.writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		h.logger.Error("failed to export csv", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="players.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write csv response", "error", err)
	}
}
