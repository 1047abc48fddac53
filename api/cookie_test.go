package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/freecell/game/engine"
)

func sessionCookie(t *testing.T, rec interface{ Result() *http.Response }) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == defaultCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestCookieGameFlow(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, "POST", "/newgame", map[string]interface{}{"seed": 42})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	var started struct {
		Message string           `json:"message"`
		Seed    int64            `json:"seed"`
		State   engine.GameState `json:"state"`
	}
	decode(t, rec, &started)
	assert.Equal(t, "New game started", started.Message)
	assert.Equal(t, int64(42), started.Seed)

	rec = env.do(t, "GET", "/state", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var state engine.GameState
	decode(t, rec, &state)
	assert.Equal(t, started.State.Tableau, state.Tableau)

	rec = env.do(t, "POST", "/validate-move", map[string]interface{}{"num": 1, "source": "f1", "dest": "f2"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"valid":false,"error":"unsupported move type","kind":"malformed"}`, rec.Body.String())

	rec = env.do(t, "POST", "/validate-move", map[string]interface{}{"num": 1, "source": "t1", "dest": "f1"}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = env.do(t, "POST", "/undo", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"no moves to undo"}`, rec.Body.String())

	rec = env.do(t, "POST", "/move", map[string]interface{}{"num": 2, "source": "t1", "dest": "f1"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"can only move one card at a time to freecells"}`, rec.Body.String())

	rec = env.do(t, "POST", "/move", map[string]interface{}{"num": 1, "source": "t1", "dest": "f1"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var moved struct {
		Message string           `json:"message"`
		State   engine.GameState `json:"state"`
	}
	decode(t, rec, &moved)
	assert.Equal(t, "Move successful", moved.Message)
	assert.Equal(t, 1, moved.State.MoveCount)

	rec = env.do(t, "POST", "/undo", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Undo successful")

	rec = env.do(t, "POST", "/cancel", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Game cancelled."}`, rec.Body.String())

	rec = env.do(t, "GET", "/state", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No game in progress"}`, rec.Body.String())
}

func TestCookieMoveRejections(t *testing.T) {
	env := newTestEnv(t, Options{})
	_, err := env.sessions.Put("q", engine.NewEngine(quietState()), false)
	require.NoError(t, err)

	issued := httptest.NewRecorder()
	require.NoError(t, env.server.cookies.issue(issued, "q"))
	cookie := sessionCookie(t, issued)

	rec := env.do(t, "POST", "/move", map[string]interface{}{"num": 1, "source": "t1", "dest": "f1"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name   string
		source string
		dest   string
		want   string
	}{
		{"occupied freecell", "t2", "f1", "selected freecell is not empty"},
		{"empty freecell", "f2", "t2", "selected freecell is empty"},
		{"rank", "t2", "t3", "destination card must be one rank higher"},
		{"color", "t2", "t6", "destination card must be opposite color"},
		{"foundation needs an ace", "t3", "dD", "only an Ace can start a foundation"},
		{"tableau suit", "t2", "dS", "top card suit does not match foundation suit"},
		{"freecell suit", "f1", "dH", "card suit does not match foundation suit"},
		{"same column", "t2", "t2", "source and destination columns must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/move", map[string]interface{}{"num": 1, "source": tt.source, "dest": tt.dest}, cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rec.Body.String())
		})
	}

	rec = env.do(t, "GET", "/state", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var state engine.GameState
	decode(t, rec, &state)
	assert.Equal(t, 1, state.MoveCount)
	assert.Empty(t, state.Tableau[0])
	assert.Equal(t, "5S", state.Freecells[0].String())
}

func TestCookieNewGameReusesSession(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, "POST", "/newgame", map[string]interface{}{"seed": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = env.do(t, "POST", "/newgame", map[string]interface{}{"seed": "2"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, env.sessions.Count())
	assert.Contains(t, rec.Body.String(), `"seed":2`)
}

func TestCookieNewGameSeedValidation(t *testing.T) {
	env := newTestEnv(t, Options{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not a number", `{"seed":"abc"}`, "Seed must be an integer"},
		{"fraction", `{"seed":1.5}`, "Seed must be an integer"},
		{"object", `{"seed":{}}`, "Seed must be an integer"},
		{"zero", `{"seed":0}`, "Seed must be between 1 and 32000"},
		{"too large", `{"seed":32001}`, "Seed must be between 1 and 32000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/newgame", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	rec := env.do(t, "POST", "/newgame", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCookieRoutesWithoutCookie(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{"/move", "/validate-move", "/undo"} {
		rec := env.do(t, "POST", path, map[string]interface{}{"num": 1, "source": "t1", "dest": "f1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "No game in progress", path)
	}

	rec := env.do(t, "POST", "/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCookieRejectsForgedToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, "POST", "/newgame", map[string]interface{}{"seed": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	var claims sessionClaims
	_, _, err := jwt.NewParser().ParseUnverified(cookie.Value, &claims)
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	value, err := forged.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec = env.do(t, "GET", "/state", nil, &http.Cookie{Name: defaultCookieName, Value: value})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "GET", "/state", nil, &http.Cookie{Name: defaultCookieName, Value: "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCookieTestModeDealsNearWonGame(t *testing.T) {
	env := newTestEnv(t, Options{TestMode: true})

	rec := env.do(t, "GET", "/state", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)

	var state engine.GameState
	decode(t, rec, &state)
	assert.Len(t, state.Foundations[engine.Hearts], 12)

	rec = env.do(t, "POST", "/move", map[string]interface{}{"num": 1, "source": "t2", "dest": "dH"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "You won!")

	rec = env.do(t, "GET", "/high-scores", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCookieHighScores(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, "POST", "/clear-high-scores", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"High scores cleared!"}`, rec.Body.String())
}

func TestCookieCustomName(t *testing.T) {
	env := newTestEnv(t, Options{Cookie: CookieConfig{Name: "fc", Secure: true}})
	rec := env.do(t, "POST", "/newgame", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "fc", cookies[0].Name)
	assert.True(t, cookies[0].Secure)
}
