package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
)

// CommandKind identifies a parsed input line.
type CommandKind int

const (
	CmdMove CommandKind = iota
	CmdUndo
	CmdNew
	CmdHelp
	CmdQuit
)

// Command is one line of player input.
type Command struct {
	Kind CommandKind
	Move engine.MoveRequest
	// Seed is set for CmdNew; 0 means a random deal.
	Seed int64
}

var errFormat = errors.New("Invalid command format. Use: move N from tX to tY/fZ/dS, 'undo', 'new [seed]', 'help' or 'quit'.")

// ParseCommand parses "move N from SRC to DST", "undo", "new [seed]", "help"
// and "quit". Input is case-insensitive.
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(strings.ToLower(line))
	if len(parts) == 0 {
		return Command{}, errFormat
	}

	switch parts[0] {
	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "undo", "u":
		return Command{Kind: CmdUndo}, nil
	case "new":
		cmd := Command{Kind: CmdNew}
		if len(parts) > 2 {
			return Command{}, errFormat
		}
		if len(parts) == 2 && parts[1] != "random" {
			seed, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return Command{}, errors.New("Seed must be an integer.")
			}
			cmd.Seed = seed
		}
		return cmd, nil
	case "move":
		if len(parts) != 6 || parts[2] != "from" || parts[4] != "to" {
			return Command{}, errFormat
		}
		num, err := strconv.Atoi(parts[1])
		if err != nil {
			return Command{}, errors.New("Invalid number of cards.")
		}
		src, err := engine.ParseLocation(parts[3])
		if err != nil {
			return Command{}, errors.New("Invalid source or destination.")
		}
		dst, err := engine.ParseLocation(parts[5])
		if err != nil {
			return Command{}, errors.New("Invalid source or destination.")
		}
		return Command{Kind: CmdMove, Move: engine.MoveRequest{Count: num, Source: src, Dest: dst}}, nil
	}
	return Command{}, errFormat
}

const helpText = `Commands:
  move N from SRC to DST   e.g. "move 1 from t2 to f1", "move 3 from t4 to t7", "move 1 from f1 to dH"
  undo                     take back the last move or automatic move
  new [seed]               deal a new game (seed 1-32000, random when omitted)
  help                     show this text
  quit                     leave the game

Locations: t1-t8 tableau, f1-f4 freecells, dS dH dD dC foundations.`

// Game plays one session of Freecell over a text stream.
type Game struct {
	svc       service.GameService
	in        *bufio.Scanner
	out       io.Writer
	sessionID string
}

// New creates a game that reads commands from in and writes to out.
func New(svc service.GameService, in io.Reader, out io.Writer) *Game {
	return &Game{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run deals a game with opts and plays until the player quits, wins or the
// input ends.
func (g *Game) Run(ctx context.Context, opts service.NewGameOptions) error {
	fmt.Fprintln(g.out, "Welcome to ASCII Freecell! Type moves like 'move 1 from t2 to f1', 'undo' to undo last move, or 'quit' to exit.")

	if err := g.deal(ctx, opts); err != nil {
		return err
	}
	defer func() {
		if err := g.svc.CancelGame(context.Background(), g.sessionID); err != nil {
			log.Debug().Err(err).Str("session", g.sessionID).Msg("terminal session already gone")
		}
	}()

	if err := g.printBoard(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(g.out, "Enter move: ")
		if !g.in.Scan() {
			fmt.Fprintln(g.out)
			return g.in.Err()
		}

		cmd, err := ParseCommand(g.in.Text())
		if err != nil {
			fmt.Fprintf(g.out, "%v\n\n", err)
			continue
		}

		switch cmd.Kind {
		case CmdQuit:
			fmt.Fprintln(g.out, "Thanks for playing!")
			return nil

		case CmdHelp:
			fmt.Fprintf(g.out, "%s\n\n", helpText)

		case CmdUndo:
			if _, err := g.svc.Undo(ctx, g.sessionID); err != nil {
				if errors.Is(err, engine.ErrNoMovesToUndo) {
					fmt.Fprint(g.out, "No moves to undo.\n\n")
					continue
				}
				fmt.Fprintf(g.out, "Undo failed: %v\n\n", err)
				continue
			}
			fmt.Fprint(g.out, "Undo successful.\n\n")
			if err := g.printBoard(ctx); err != nil {
				return err
			}

		case CmdNew:
			next := opts
			next.Seed = cmd.Seed
			next.SessionID = g.sessionID
			if err := g.deal(ctx, next); err != nil {
				if errors.Is(err, service.ErrInvalidSeed) {
					fmt.Fprintf(g.out, "Seed must be between %d and %d.\n\n", engine.MinSeed, engine.MaxSeed)
					continue
				}
				return err
			}
			if err := g.printBoard(ctx); err != nil {
				return err
			}

		case CmdMove:
			result, err := g.svc.Move(ctx, g.sessionID, cmd.Move)
			if err != nil {
				if me, ok := engine.AsMoveError(err); ok {
					fmt.Fprintf(g.out, "Move failed: %s\n\n", me.Reason)
					continue
				}
				fmt.Fprintf(g.out, "Move failed: %v\n\n", err)
				continue
			}

			fmt.Fprintln(g.out, "Move successful!")
			for _, step := range result.Cascade {
				fmt.Fprintf(g.out, "Auto: %s from %s to %s\n", step.Card, step.From, engine.Foundation(step.Card.Suit))
			}
			fmt.Fprintln(g.out)
			fmt.Fprintln(g.out, engine.Render(result.GameState))

			if result.Won {
				fmt.Fprintf(g.out, "🎉 Congratulations! You won in %d moves! 🎉\n", result.GameState.MoveCount)
				return nil
			}
		}
	}
}

// deal starts a new game, reusing the current session when there is one.
func (g *Game) deal(ctx context.Context, opts service.NewGameOptions) error {
	info, err := g.svc.NewGame(ctx, opts)
	if err != nil {
		return err
	}
	g.sessionID = info.ID
	if info.GameState.Seed != 0 {
		fmt.Fprintf(g.out, "Shuffling deck with seed %d...\n\n", info.GameState.Seed)
	}
	return nil
}

func (g *Game) printBoard(ctx context.Context) error {
	state, err := g.svc.GetGameState(ctx, g.sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out, engine.Render(state))
	return nil
}
