// Package terminal implements the text play loop behind "freecell play".
//
// Input lines:
//
//	move 3 from t4 to t7
//	move 1 from f2 to dH
//	undo
//	new 11982
//	help
//	quit
//
// The board is drawn with engine.Render after every change. Games go
// through service.GameService, so wins are recorded like any other client.
package terminal
