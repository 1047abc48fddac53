package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/highscore"
	"github.com/wricardo/freecell/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Freecell",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Freecell - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Move all 52 cards onto the four foundations, Ace to King by suit.

AVAILABLE TOOLS:
- new_game: Deal a game (optional seed 1-32000 for a reproducible deal)
- list_sessions: List all active sessions
- game_state: Show the board
- move: Move cards, with a short note on your intent
- validate_move: Check whether a move is legal without making it
- undo: Revert the last move or automatic foundation move
- cancel_game: Abandon a game
- high_scores: Show the best completed games
- game_instructions: Full rules and notation

Locations: t1-t8 tableau columns, f1-f4 freecells, dS dH dD dC foundations.

NOTE: The 'intent' parameter on the move tool serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func moveProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionIDProperty(),
		"source": map[string]interface{}{
			"type":        "string",
			"description": "Where the cards come from: t1-t8, f1-f4 or dS/dH/dD/dC",
		},
		"dest": map[string]interface{}{
			"type":        "string",
			"description": "Where the cards go: t1-t8, f1-f4 or dS/dH/dD/dC",
		},
		"num": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"description": "Number of cards to move (default 1; more than one only between tableau columns)",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Deal a new Freecell game in a new session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"seed": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinSeed,
					"maximum":     engine.MaxSeed,
					"description": "Deal number; omit for a random deal",
				},
				"kings_only_on_empty_tableau": map[string]interface{}{
					"type":        "boolean",
					"description": "Only Kings (or runs headed by a King) may fill an empty column",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Reuse this session id instead of generating one (optional)",
				},
			},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_game",
		Description: "Abandon a game and delete its session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleCancelGame)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	moveProps := moveProperties()
	moveProps["intent"] = map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move cards between tableau, freecells and foundations. Cards that can safely go to the foundations move there automatically afterwards.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: moveProps,
			Required:   []string{"session_id", "source", "dest"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_move",
		Description: "Check whether a move is legal without making it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: moveProperties(),
			Required:   []string{"session_id", "source", "dest"},
		},
	}, c.handleValidateMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Revert the most recent move. Each automatic foundation move is undone separately.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "Show the best completed games, fewest moves first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleHighScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of Freecell and the move notation",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

func moveBody(args map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"source": args["source"],
		"dest":   args["dest"],
	}
	if num, ok := args["num"].(float64); ok {
		body["num"] = int(num)
	}
	return body
}

// Tool handlers

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}
	if kingsOnly, ok := args["kings_only_on_empty_tableau"].(bool); ok {
		body["kings_only_on_empty_tableau"] = kingsOnly
	}
	if id, ok := args["session_id"].(string); ok && id != "" {
		body["session_id"] = id
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n\n%s", session.ID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		b.WriteString(formatSessionLine(&s))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCancelGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The intent is only logged; the API does not take it.
	if intent, ok := args["intent"].(string); ok && intent != "" {
		log.Debug().Str("session", fmt.Sprint(args["session_id"])).Str("intent", intent).Msg("mcp move")
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path, moveBody(args), &result); err != nil {
		return mcp.NewToolResultError("Move rejected: " + err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleValidateMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/validate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ValidateResult
	if err := c.apiCall(ctx, "POST", path, moveBody(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result.Valid {
		return mcp.NewToolResultText("✓ Move is legal"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✗ Move is illegal (%s): %s", result.Kind, result.Reason)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/undo")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message   string            `json:"message"`
		GameState *engine.GameState `json:"game_state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(response.GameState)), nil
}

func (c *Client) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		HighScores []highscore.Entry `json:"high_scores"`
	}
	if err := c.apiCall(ctx, "GET", "/api/highscores", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHighScores(response.HighScores)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Freecell - Complete Instructions

OBJECTIVE:
Build all four foundations up by suit from Ace to King.

LAYOUT:
• t1-t8: eight tableau columns, dealt face up (the last card listed is on top)
• f1-f4: four freecells, each holds one card
• dS dH dD dC: the foundations for Spades, Hearts, Diamonds and Clubs

RULES:
• Tableau: a card may go on a card one rank higher of the opposite color
  (e.g. 9H on 10S). Any card may fill an empty column unless the game was
  dealt with kings_only_on_empty_tableau, in which case only a King may.
• Freecells: any single top card may go to an empty freecell.
• Foundations: Ace first, then the next rank of the same suit.
• Sequences: several cards may move between columns at once when they form
  a descending run of alternating colors. The most you can move is
  (empty freecells + 1) × (empty columns + 1), not counting the destination
  column.
• A card may be taken back from a foundation onto the tableau or a freecell.

AUTOMATIC MOVES:
After each move, cards that can safely go to the foundations are moved
there (an Ace or Two always; higher cards once both opposite-color
foundations are no more than one rank behind). Each automatic move can be
undone on its own.

NOTATION:
  move {"source": "t3", "dest": "f1"}           top card of column 3 to freecell 1
  move {"source": "t3", "dest": "t6", "num": 3} three-card run from column 3 to 6
  move {"source": "f2", "dest": "dH"}           freecell 2 to the Hearts foundation

STRATEGY:
• Free Aces and Twos early.
• Empty columns are worth more than empty freecells: they double your
  sequence capacity.
• Use validate_move when unsure; it never changes the game.`

// Formatting helpers

func formatSessionLine(s *service.SessionInfo) string {
	status := "in progress"
	moves := 0
	var seed int64
	if s.GameState != nil {
		moves = s.GameState.MoveCount
		seed = s.GameState.Seed
		if s.GameState.GameOver {
			status = "won"
		}
	}
	return fmt.Sprintf("- %s (Seed: %d, Moves: %d, %s, Last used: %s)\n",
		s.ID, seed, moves, status, s.LastAccessedAt.Format("15:04:05"))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "(no state)"
	}
	var b strings.Builder
	b.WriteString(engine.Render(state))
	if !state.GameOver {
		fmt.Fprintf(&b, "\nEmpty freecells: %d, empty columns: %d, largest run: %d\n",
			state.EmptyFreecells(), state.EmptyColumns(),
			engine.MaxMovableCards(state.EmptyFreecells(), state.EmptyColumns()))
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ " + result.Message + "\n")
	} else {
		b.WriteString("✗ " + result.Message + "\n")
	}

	if len(result.Cascade) > 0 {
		b.WriteString("Automatic moves:\n")
		for _, step := range result.Cascade {
			fmt.Fprintf(&b, "- %s from %s to d%s\n", step.Card, step.From, step.Card.Suit)
		}
	}
	if result.Won && result.HighScore != nil {
		fmt.Fprintf(&b, "🎉 Solved in %d moves, %.1fs\n", result.HighScore.Moves, result.HighScore.Runtime)
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHighScores(entries []highscore.Entry) string {
	if len(entries) == 0 {
		return "No high scores yet."
	}
	var b strings.Builder
	b.WriteString("High Scores:\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %d moves  %.1fs  seed %d  (%s %s)\n", i+1, e.Moves, e.Runtime, e.Seed, e.Date, e.Time)
	}
	return b.String()
}
