// Command validate checks saved Freecell game states, as written by
// "freecell deal --json" or GET /api/sessions/{id}/state. It checks:
//   - JSON structure, card encoding and pile counts (8 columns, 4 freecells)
//   - Foundation keys are the four suits
//   - The piles hold exactly one deck and every foundation runs Ace upward
//   - The seed is 0 (random deal) or within the deal range
//   - game_over agrees with the foundations
//
// Files are given as arguments; with none, every *.json in ./states is checked.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/freecell/game/engine"
)

// rawState keeps the pile lengths that fixed-size arrays would silently truncate.
type rawState struct {
	Tableau     []json.RawMessage          `json:"tableau"`
	Freecells   []json.RawMessage          `json:"freecells"`
	Foundations map[string]json.RawMessage `json:"foundations"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateState loads and validates a single game state file.
func validateState(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	if len(raw.Tableau) != engine.NumColumns {
		result.fail("Expected %d tableau columns, got %d", engine.NumColumns, len(raw.Tableau))
	}
	if len(raw.Freecells) != engine.NumFreecells {
		result.fail("Expected %d freecells, got %d", engine.NumFreecells, len(raw.Freecells))
	}
	for key := range raw.Foundations {
		if !engine.Suit(key).Valid() {
			result.fail("Unknown foundation suit %q", key)
		}
	}
	if !result.Valid {
		return result
	}

	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		result.fail("Invalid card data: %v", err)
		return result
	}

	if err := engine.CheckIntegrity(&state); err != nil {
		result.fail("Integrity check failed: %v", err)
	}
	if err := engine.ValidateSeed(state.Seed); err != nil {
		result.fail("Invalid seed: %v", err)
	}
	if state.MoveCount < 0 {
		result.fail("move_count cannot be negative, got %d", state.MoveCount)
	}
	won := engine.IsWon(state.Foundations)
	if state.GameOver != won {
		result.fail("game_over is %t but the foundations say %t", state.GameOver, won)
	}

	if result.Valid {
		onFoundations := 0
		for _, pile := range state.Foundations {
			onFoundations += len(pile)
		}
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Seed %d, %d moves", state.Seed, state.MoveCount),
			fmt.Sprintf("✓ %d cards on foundations, %d empty freecells, %d empty columns",
				onFoundations, state.EmptyFreecells(), state.EmptyColumns()),
		)
	}
	return result
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join("states", "*.json"))
		if err != nil {
			fmt.Printf("Error finding state files: %v\n", err)
			os.Exit(1)
		}
	}
	if len(files) == 0 {
		fmt.Println("No state files to validate")
		return
	}

	allValid := true
	for _, file := range files {
		result := validateState(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All game states are valid!")
	} else {
		fmt.Println("❌ Some game states have errors")
		os.Exit(1)
	}
}
