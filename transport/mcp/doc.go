// Package mcp exposes Freecell to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API, and the response is rendered as text with engine.Render.
//
// Tools:
//   - new_game: Deal a game, optionally with a seed and the kings-only rule
//   - list_sessions: List active sessions
//   - game_state: Show the board
//   - move: Apply a move (source, dest, num) and report automatic moves
//   - validate_move: Check a move without applying it
//   - undo: Revert the last move or automatic move
//   - cancel_game: Delete a session
//   - high_scores: Show the ranked log
//   - game_instructions: Rules and notation
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp handled by GetMCPServer().HandleMessage
package mcp
