// Command analyze prints quick, human-readable statistics about Freecell
// deals. For each seed in a range it reports how deep the Aces are buried,
// how many column tops have a legal move, and whether the deal holds exactly
// one deck. It does not try to solve the deals.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/freecell/game/engine"
)

// DealStats summarizes one deal.
type DealStats struct {
	Seed int64
	// AceDepth is the number of cards covering each Ace.
	AceDepth map[engine.Suit]int
	// Playable counts column tops that can go to a foundation or onto
	// another column.
	Playable int
	// Integrity is nil when the deal holds exactly one deck.
	Integrity error
}

// TotalAceDepth is the sum of AceDepth over all suits.
func (d DealStats) TotalAceDepth() int {
	total := 0
	for _, depth := range d.AceDepth {
		total += depth
	}
	return total
}

// Analyze deals seed and measures it.
func Analyze(seed int64) (DealStats, error) {
	if seed == 0 {
		return DealStats{}, fmt.Errorf("seed must be between %d and %d", engine.MinSeed, engine.MaxSeed)
	}
	if err := engine.ValidateSeed(seed); err != nil {
		return DealStats{}, err
	}

	state := engine.NewGame(seed, false, time.Time{})
	stats := DealStats{
		Seed:      seed,
		AceDepth:  make(map[engine.Suit]int, engine.NumSuits),
		Integrity: engine.CheckIntegrity(state),
	}

	for _, col := range state.Tableau {
		for i, card := range col {
			if card.Rank == engine.Ace {
				stats.AceDepth[card.Suit] = len(col) - 1 - i
			}
		}
	}

	for i, col := range state.Tableau {
		if len(col) == 0 {
			continue
		}
		top := col[len(col)-1]
		if engine.CanPlaceOnFoundation(state.Foundations[top.Suit], top) == nil {
			stats.Playable++
			continue
		}
		for j, dest := range state.Tableau {
			if i != j && len(dest) > 0 && engine.CanPlaceOnTableau(dest, []engine.Card{top}, false) == nil {
				stats.Playable++
				break
			}
		}
	}
	return stats, nil
}

// printStats writes one line per seed followed by a summary.
func printStats(w io.Writer, from, to int64) error {
	var (
		count      int
		depthTotal int
		hardest    DealStats
		easiest    DealStats
		broken     int
	)

	for seed := from; seed <= to; seed++ {
		stats, err := Analyze(seed)
		if err != nil {
			return err
		}

		status := "✅"
		if stats.Integrity != nil {
			status = "⚠️  " + stats.Integrity.Error()
			broken++
		}
		fmt.Fprintf(w, "Seed %5d: aces buried %2d (S%d H%d D%d C%d), playable tops %d %s\n",
			seed, stats.TotalAceDepth(),
			stats.AceDepth[engine.Spades], stats.AceDepth[engine.Hearts],
			stats.AceDepth[engine.Diamonds], stats.AceDepth[engine.Clubs],
			stats.Playable, status)

		if count == 0 || stats.TotalAceDepth() > hardest.TotalAceDepth() {
			hardest = stats
		}
		if count == 0 || stats.TotalAceDepth() < easiest.TotalAceDepth() {
			easiest = stats
		}
		depthTotal += stats.TotalAceDepth()
		count++
	}

	fmt.Fprintf(w, "\n=== %d deals ===\n", count)
	fmt.Fprintf(w, "Average ace depth: %.2f\n", float64(depthTotal)/float64(count))
	fmt.Fprintf(w, "Most buried aces: seed %d (%d)\n", hardest.Seed, hardest.TotalAceDepth())
	fmt.Fprintf(w, "Least buried aces: seed %d (%d)\n", easiest.Seed, easiest.TotalAceDepth())
	if broken > 0 {
		return fmt.Errorf("%d deals failed the integrity check", broken)
	}
	return nil
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "print statistics for a range of Freecell deals",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "from", Value: 1, Usage: "first seed"},
			&cli.IntFlag{Name: "to", Value: 10, Usage: "last seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			from, to := int64(cmd.Int("from")), int64(cmd.Int("to"))
			if from > to {
				return fmt.Errorf("--from %d is after --to %d", from, to)
			}
			return printStats(out, from, to)
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
