package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
	"github.com/wricardo/freecell/transport/websocket"
)

// Options configures optional parts of the server.
type Options struct {
	// StaticDir is served at / when set.
	StaticDir string
	// Cookie configures the browser session cookie.
	Cookie CookieConfig
	// TestMode makes the browser routes deal near-won games.
	TestMode bool
}

// Server represents the REST API server
type Server struct {
	service  service.GameService
	hub      *websocket.Hub
	router   *mux.Router
	cookies  *cookieSessions
	testMode bool
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts Options) (*Server, error) {
	cookies, err := newCookieSessions(opts.Cookie)
	if err != nil {
		return nil, err
	}

	s := &Server{
		service:  gameService,
		hub:      hub,
		router:   mux.NewRouter(),
		cookies:  cookies,
		testMode: opts.TestMode,
	}

	s.setupMiddleware()
	s.setupRoutes(opts.StaticDir)
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		hlog.NewHandler(log.Logger),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
		middleware.Recoverer,
	)
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes(staticDir string) {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/validate", s.handleValidate).Methods("POST")
	api.HandleFunc("/sessions/{id}/undo", s.handleUndo).Methods("POST")

	// High scores
	api.HandleFunc("/highscores", s.handleHighScores).Methods("GET")
	api.HandleFunc("/highscores", s.handleClearHighScores).Methods("DELETE")

	// Browser client protocol, session held in a cookie
	s.router.HandleFunc("/newgame", s.handleCookieNewGame).Methods("POST")
	s.router.HandleFunc("/cancel", s.handleCookieCancel).Methods("POST")
	s.router.HandleFunc("/state", s.handleCookieState).Methods("GET")
	s.router.HandleFunc("/move", s.handleCookieMove).Methods("POST")
	s.router.HandleFunc("/validate-move", s.handleCookieValidate).Methods("POST")
	s.router.HandleFunc("/undo", s.handleCookieUndo).Methods("POST")
	s.router.HandleFunc("/high-scores", s.handleCookieHighScores).Methods("GET")
	s.router.HandleFunc("/clear-high-scores", s.handleCookieClearHighScores).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	if staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors to a status code. Rule
// rejections also carry their kind.
func respondServiceError(w http.ResponseWriter, err error) {
	if me, ok := engine.AsMoveError(err); ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": me.Reason,
			"kind":  string(me.Kind),
		})
		return
	}
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoGameInProgress):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidSeed),
		errors.Is(err, engine.ErrGameOver),
		errors.Is(err, engine.ErrNoMovesToUndo):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoHighScoreStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// moveBody is the wire form of a move: {"num": 2, "source": "t3", "dest": "t5"}.
type moveBody struct {
	Num    *int   `json:"num"`
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

func (b moveBody) request() (engine.MoveRequest, error) {
	if b.Source == "" || b.Dest == "" {
		return engine.MoveRequest{}, errors.New("Missing move parameters")
	}
	src, err := engine.ParseLocation(b.Source)
	if err != nil {
		return engine.MoveRequest{}, fmt.Errorf("invalid source: %w", err)
	}
	dst, err := engine.ParseLocation(b.Dest)
	if err != nil {
		return engine.MoveRequest{}, fmt.Errorf("invalid destination: %w", err)
	}
	num := 1
	if b.Num != nil {
		num = *b.Num
	}
	return engine.MoveRequest{Count: num, Source: src, Dest: dst}, nil
}

func readMove(r *http.Request) (engine.MoveRequest, error) {
	var body moveBody
	if err := decodeBody(r, &body); err != nil {
		return engine.MoveRequest{}, errors.New("Invalid request body")
	}
	return body.request()
}

// broadcastMove pushes the new state and, on a win, the high score entry.
func (s *Server) broadcastMove(sessionID string, result *service.MoveResult) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastState(sessionID, result.GameState)
	if result.Won {
		s.hub.BroadcastEvent(sessionID, websocket.EventGameWon, result.HighScore)
	}
}

func (s *Server) broadcastState(sessionID string, state *engine.GameState) {
	if s.hub != nil {
		s.hub.BroadcastState(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var opts service.NewGameOptions
	if err := decodeBody(r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.NewGame(r.Context(), opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(session.ID, session.GameState)
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.CancelGame(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventGameCancelled, nil)
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req, err := readMove(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Move(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastMove(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := readMove(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.ValidateMove(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Undo(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(sessionID, state)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Undo successful",
		"game_state": state,
	})
}

// High score handlers

func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.HighScores(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(entries),
		"high_scores": entries,
	})
}

func (s *Server) handleClearHighScores(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearHighScores(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "High scores cleared"})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		if sid, ok := s.cookies.sessionID(r); ok {
			sessionID = sid
		}
	}
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
