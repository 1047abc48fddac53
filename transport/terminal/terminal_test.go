package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
	"github.com/wricardo/freecell/game/session"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Command
		wantErr string
	}{
		{"quit", "quit", Command{Kind: CmdQuit}, ""},
		{"exit", "  EXIT ", Command{Kind: CmdQuit}, ""},
		{"help", "help", Command{Kind: CmdHelp}, ""},
		{"undo", "undo", Command{Kind: CmdUndo}, ""},
		{"new random", "new", Command{Kind: CmdNew}, ""},
		{"new seeded", "new 11982", Command{Kind: CmdNew, Seed: 11982}, ""},
		{"new bad seed", "new abc", Command{}, "Seed must be an integer."},
		{
			"move to freecell", "move 1 from t2 to f1",
			Command{Kind: CmdMove, Move: engine.MoveRequest{Count: 1, Source: engine.Column(1), Dest: engine.Cell(0)}}, "",
		},
		{
			"move to foundation", "Move 1 From F4 To dH",
			Command{Kind: CmdMove, Move: engine.MoveRequest{Count: 1, Source: engine.Cell(3), Dest: engine.Foundation(engine.Hearts)}}, "",
		},
		{
			"supermove", "move 3 from t4 to t7",
			Command{Kind: CmdMove, Move: engine.MoveRequest{Count: 3, Source: engine.Column(3), Dest: engine.Column(6)}}, "",
		},
		{"bad count", "move x from t1 to t2", Command{}, "Invalid number of cards."},
		{"bad location", "move 1 from t9 to t2", Command{}, "Invalid source or destination."},
		{"bad suit", "move 1 from t1 to dX", Command{}, "Invalid source or destination."},
		{"missing words", "move 1 t1 t2", Command{}, "Invalid command format"},
		{"empty", "   ", Command{}, "Invalid command format"},
		{"unknown", "shuffle", Command{}, "Invalid command format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func play(t *testing.T, opts service.NewGameOptions, input string) (string, *session.Manager) {
	t.Helper()
	sessions := session.NewManager()
	svc := service.NewGameService(sessions, nil)

	var out bytes.Buffer
	err := New(svc, strings.NewReader(input), &out).Run(context.Background(), opts)
	require.NoError(t, err)
	return out.String(), sessions
}

func TestRunRejectionsAndCommands(t *testing.T) {
	input := strings.Join([]string{
		"undo",
		"move 2 from t1 to f1",
		"move 1 from f1 to f2",
		"bogus",
		"help",
		"new 0",
		"new 99999",
		"new 7",
		"quit",
	}, "\n")

	out, sessions := play(t, service.NewGameOptions{Seed: 42}, input)

	for _, want := range []string{
		"Shuffling deck with seed 42...",
		"No moves to undo.",
		"Move failed: can only move one card at a time to freecells",
		"Move failed: unsupported move type",
		"Invalid command format",
		"Locations: t1-t8 tableau",
		"Seed must be between 1 and 32000.",
		"Shuffling deck with seed 7...",
		"Seed: 7",
		"Thanks for playing!",
	} {
		assert.Contains(t, out, want)
	}
	assert.Zero(t, sessions.Count(), "session should be removed when the loop ends")
}

func TestRunMoveAndUndo(t *testing.T) {
	out, _ := play(t, service.NewGameOptions{Seed: 42}, "move 1 from t1 to f1\nundo\nquit\n")

	assert.Contains(t, out, "Move successful!")
	assert.Contains(t, out, "Moves: 1")
	assert.Contains(t, out, "Undo successful.")
}

func TestRunWin(t *testing.T) {
	out, _ := play(t, service.NewGameOptions{TestMode: true}, "move 1 from t2 to dH\nquit\n")

	assert.Contains(t, out, "Auto: KS from t1 to dS")
	assert.Contains(t, out, "*** YOU WON ***")
	assert.Contains(t, out, "Congratulations! You won in")
	assert.NotContains(t, out, "Thanks for playing!", "the loop ends on a win")
}

func TestRunEndOfInput(t *testing.T) {
	out, _ := play(t, service.NewGameOptions{Seed: 3}, "")
	assert.Contains(t, out, "Enter move: ")
}

func TestRunCancelledContext(t *testing.T) {
	svc := service.NewGameService(session.NewManager(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(svc, strings.NewReader("quit\n"), &out).Run(ctx, service.NewGameOptions{Seed: 3})
	assert.ErrorIs(t, err, context.Canceled)
}
