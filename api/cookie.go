package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
	"github.com/wricardo/freecell/transport/websocket"
)

// CookieConfig configures the signed browser session cookie.
type CookieConfig struct {
	Name   string
	Secret string
	Secure bool
	MaxAge time.Duration
}

const (
	defaultCookieName   = "freecell_session"
	defaultCookieMaxAge = 30 * 24 * time.Hour
	cookieIssuer        = "freecell"
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// cookieSessions keeps a session id in an HS256-signed cookie.
type cookieSessions struct {
	name   string
	secret []byte
	secure bool
	maxAge time.Duration
}

func newCookieSessions(cfg CookieConfig) (*cookieSessions, error) {
	c := &cookieSessions{
		name:   cfg.Name,
		secret: []byte(cfg.Secret),
		secure: cfg.Secure,
		maxAge: cfg.MaxAge,
	}
	if c.name == "" {
		c.name = defaultCookieName
	}
	if c.maxAge <= 0 {
		c.maxAge = defaultCookieMaxAge
	}
	if len(c.secret) == 0 {
		c.secret = make([]byte, 32)
		if _, err := rand.Read(c.secret); err != nil {
			return nil, fmt.Errorf("generate cookie secret: %w", err)
		}
		log.Warn().Msg("COOKIE_SECRET not set, browser sessions will not survive a restart")
	}
	return c, nil
}

// sessionID returns the id carried by a valid cookie.
func (c *cookieSessions) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", false
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cookieIssuer))
	if err != nil || claims.SessionID == "" {
		return "", false
	}
	return claims.SessionID, true
}

// issue sets the cookie for sessionID.
func (c *cookieSessions) issue(w http.ResponseWriter, sessionID string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

const msgNoGame = "No game in progress"

// respondCookieError writes errors the way the browser client expects them:
// rule rejections and bad input are a 400 with an "error" message.
func respondCookieError(w http.ResponseWriter, err error) {
	if me, ok := engine.AsMoveError(err); ok {
		respondError(w, http.StatusBadRequest, me.Reason)
		return
	}
	switch {
	case errors.Is(err, service.ErrNoGameInProgress):
		respondError(w, http.StatusBadRequest, msgNoGame)
	case statusFor(err) == http.StatusInternalServerError:
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

// parseSeed accepts a JSON number or numeric string. Absent means random.
func parseSeed(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.New("Seed must be an integer")
		}
		return int64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errors.New("Seed must be an integer")
		}
		return n, nil
	default:
		return 0, errors.New("Seed must be an integer")
	}
}

func (s *Server) handleCookieNewGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Seed      interface{} `json:"seed"`
		KingsOnly bool        `json:"kings_only_on_empty_tableau"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	seed, err := parseSeed(body.Seed)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Seed != nil && (seed < engine.MinSeed || seed > engine.MaxSeed) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Seed must be between %d and %d", engine.MinSeed, engine.MaxSeed))
		return
	}

	sid, _ := s.cookies.sessionID(r)
	session, err := s.service.NewGame(r.Context(), service.NewGameOptions{
		SessionID:               sid,
		Seed:                    seed,
		KingsOnlyOnEmptyTableau: body.KingsOnly,
		TestMode:                s.testMode,
	})
	if err != nil {
		respondCookieError(w, err)
		return
	}
	if err := s.cookies.issue(w, session.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastState(session.ID, session.GameState)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "New game started",
		"seed":    session.GameState.Seed,
		"state":   session.GameState,
	})
}

func (s *Server) handleCookieCancel(w http.ResponseWriter, r *http.Request) {
	if sid, ok := s.cookies.sessionID(r); ok {
		err := s.service.CancelGame(r.Context(), sid)
		if err == nil && s.hub != nil {
			s.hub.BroadcastEvent(sid, websocket.EventGameCancelled, nil)
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Game cancelled."})
}

func (s *Server) handleCookieState(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if ok {
		state, err := s.service.GetGameState(r.Context(), sid)
		if err == nil {
			respondJSON(w, http.StatusOK, state)
			return
		}
		if !errors.Is(err, service.ErrNoGameInProgress) {
			respondCookieError(w, err)
			return
		}
	}

	if !s.testMode {
		respondError(w, http.StatusBadRequest, msgNoGame)
		return
	}

	// Test servers hand every visitor a near-won game.
	session, err := s.service.NewGame(r.Context(), service.NewGameOptions{SessionID: sid, TestMode: true})
	if err != nil {
		respondCookieError(w, err)
		return
	}
	if err := s.cookies.issue(w, session.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, session.GameState)
}

func (s *Server) handleCookieMove(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, msgNoGame)
		return
	}

	req, err := readMove(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Move(r.Context(), sid, req)
	if err != nil {
		respondCookieError(w, err)
		return
	}
	s.broadcastMove(sid, result)

	resp := map[string]interface{}{
		"message": "Move successful",
		"state":   result.GameState,
		"cascade": result.Cascade,
	}
	if result.Won {
		resp["message"] = "You won!"
		if result.HighScore != nil {
			resp["runtime"] = result.HighScore.Runtime
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCookieValidate(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, msgNoGame)
		return
	}

	req, err := readMove(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"valid": false, "error": err.Error()})
		return
	}

	result, err := s.service.ValidateMove(r.Context(), sid, req)
	if err != nil {
		respondCookieError(w, err)
		return
	}
	if !result.Valid {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"valid": false,
			"error": result.Reason,
			"kind":  result.Kind,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) handleCookieUndo(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.cookies.sessionID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, msgNoGame)
		return
	}

	state, err := s.service.Undo(r.Context(), sid)
	if err != nil {
		respondCookieError(w, err)
		return
	}

	s.broadcastState(sid, state)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Undo successful",
		"state":   state,
	})
}

func (s *Server) handleCookieHighScores(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.HighScores(r.Context())
	if err != nil {
		respondCookieError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCookieClearHighScores(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearHighScores(r.Context()); err != nil {
		respondCookieError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "High scores cleared!"})
}
