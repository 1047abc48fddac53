package engine

import "slices"

// CanStackMove checks that stack, given in column order (deepest card first),
// descends by one rank per card and alternates colors.
func CanStackMove(stack []Card) error {
	for i := 0; i+1 < len(stack); i++ {
		below, above := stack[i], stack[i+1]
		if below.Rank != above.Rank+1 {
			return reject(KindOrdering, "cards must be in descending rank")
		}
		if below.Color() == above.Color() {
			return reject(KindOrdering, "cards must alternate colors")
		}
	}
	return nil
}

// CanPlaceOnTableau checks whether moving, whose first card lands first, may be
// placed on dest.
func CanPlaceOnTableau(dest []Card, moving []Card, kingsOnlyOnEmpty bool) error {
	if len(moving) == 0 {
		return reject(KindStructural, "not enough cards to move")
	}
	bottom := moving[0]
	if len(dest) == 0 {
		if kingsOnlyOnEmpty && bottom.Rank != King {
			return reject(KindOrdering, "only a King can be placed on an empty column")
		}
		return nil
	}
	top := dest[len(dest)-1]
	if top.Rank != bottom.Rank+1 {
		return reject(KindOrdering, "destination card must be one rank higher")
	}
	if top.Color() == bottom.Color() {
		return reject(KindOrdering, "destination card must be opposite color")
	}
	return nil
}

// CanPlaceOnFoundation checks whether card may go on top of pile.
func CanPlaceOnFoundation(pile []Card, card Card) error {
	if len(pile) == 0 {
		if card.Rank != Ace {
			return reject(KindFoundationSeq, "only an Ace can start a foundation")
		}
		return nil
	}
	top := pile[len(pile)-1]
	if card.Suit != top.Suit {
		return reject(KindFoundationSeq, "card suit must match foundation suit")
	}
	if card.Rank != top.Rank+1 {
		return reject(KindFoundationSeq, "card rank must be one higher than foundation top")
	}
	return nil
}

// MaxMovableCards is the supermove capacity for the given free resources.
func MaxMovableCards(emptyFreecells, emptyTableauColumns int) int {
	return (emptyFreecells + 1) * (emptyTableauColumns + 1)
}

// EmptyFreecells counts unoccupied freecells.
func (s *GameState) EmptyFreecells() int {
	n := 0
	for _, c := range s.Freecells {
		if c == nil {
			n++
		}
	}
	return n
}

// EmptyColumns counts empty tableau columns, ignoring the given indices.
func (s *GameState) EmptyColumns(exclude ...int) int {
	n := 0
	for i, col := range s.Tableau {
		if len(col) == 0 && !slices.Contains(exclude, i) {
			n++
		}
	}
	return n
}

// MaxMovable returns the capacity for a supermove between columns src and dst.
func (s *GameState) MaxMovable(src, dst int) int {
	return MaxMovableCards(s.EmptyFreecells(), s.EmptyColumns(src, dst))
}
