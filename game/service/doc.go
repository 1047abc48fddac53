// Package service provides the business logic layer for the Freecell server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing, validation and undo
//   - Recording wins in the high score log
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game
// operations. SessionManager stores sessions and is injected by the caller,
// so the transport layers never touch a global map.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/
// terminal) and the game engine. Each session holds its own engine and a
// mutex; every operation locks the session for its whole duration, so two
// requests against one session never interleave while different sessions
// proceed in parallel.
//
// Usage:
//
//	sessions := session.NewManager()
//	scores, _ := highscore.NewFileStore("high_scores.json", 20)
//	gameService := service.NewGameService(sessions, scores)
//
//	info, err := gameService.NewGame(ctx, service.NewGameOptions{Seed: 42})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	src, _ := engine.ParseLocation("t1")
//	dst, _ := engine.ParseLocation("f1")
//	result, err := gameService.Move(ctx, info.ID, engine.MoveRequest{Count: 1, Source: src, Dest: dst})
//
// Errors:
//
// Rule rejections come back as *engine.MoveError. A missing session yields
// ErrNoGameInProgress and an out-of-range seed ErrInvalidSeed.
package service
