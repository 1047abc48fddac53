// Package api provides the HTTP handlers for the Freecell server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Deal a game {seed, kings_only_on_empty_tableau, test_mode, session_id}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session details with its game state
//   - DELETE /api/sessions/{id} - Cancel the game
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Apply {num, source, dest}
//   - POST /api/sessions/{id}/validate - Check a move without applying it
//   - POST /api/sessions/{id}/undo - Revert the last move or cascade step
//
// High Scores:
//   - GET /api/highscores - Ranked log
//   - DELETE /api/highscores - Empty the log
//
// Browser client:
//
// The bundled web client keeps its session id in a signed cookie and talks
// to POST /newgame, POST /cancel, GET /state, POST /move, POST
// /validate-move, POST /undo, GET /high-scores and POST /clear-high-scores.
// These routes answer every failure with 400 and {"error": "..."}.
//
// Locations are written t1-t8 (tableau), f1-f4 (freecells) and dS, dH, dD,
// dC (foundations):
//
//	{"num": 3, "source": "t2", "dest": "t7"}
//
// Errors:
//
// REST routes answer 404 for an unknown session, 400 for a rejected move
// (with the rejection "kind"), an invalid seed, undo without history or a
// finished game, and 500 otherwise.
//
// Live updates:
//
// GET /ws?session={id} upgrades to a WebSocket that receives the new state
// after every change to that session.
package api
