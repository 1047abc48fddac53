// Package engine provides the core game logic for Freecell.
//
// The engine package implements the rules including:
//   - Card model with rank ordering and suit colors
//   - Legal-move predicates for tableau, freecell and foundation piles
//   - Supermove capacity from free cells and empty columns
//   - Auto-cascade of ready cards to the foundations
//   - Snapshot-based undo history
//   - Seeded deals and win detection
//
// Core Types:
//
// GameState holds the eight tableau columns, four freecells, four foundation
// piles and the undo history. GameEngine wraps one state and exposes Move,
// Validate and Undo. Rule rejections are *MoveError values carrying a Kind
// and a human readable reason; a rejected move never changes the state.
//
// Usage:
//
//	eng := engine.NewGameEngine(42, false)
//
//	src, _ := engine.ParseLocation("t3")
//	dst, _ := engine.ParseLocation("f1")
//	outcome, err := eng.Move(engine.MoveRequest{Count: 1, Source: src, Dest: dst})
//	if err != nil {
//		fmt.Println("illegal:", err)
//	}
//
// Locations:
//
// At the boundary a location is written t1..t8 for tableau columns, f1..f4
// for freecells and dS, dH, dD, dC for foundations. Internally indices are
// 0-based.
//
// Concurrency:
//
// A GameEngine is not safe for concurrent use. The session layer holds a
// per-session lock around every call.
package engine
