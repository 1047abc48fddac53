package engine

// Each move operation checks its preconditions and, unless validateOnly is
// set, applies the move. A rejected move never touches the state.

func (s *GameState) moveTableauToFreecell(col, cell int, validateOnly bool) error {
	src := s.Tableau[col]
	if len(src) == 0 {
		return reject(KindStructural, "source tableau column is empty")
	}
	if s.Freecells[cell] != nil {
		return reject(KindOccupancy, "selected freecell is not empty")
	}
	if validateOnly {
		return nil
	}

	card := src[len(src)-1]
	s.Tableau[col] = src[:len(src)-1]
	s.Freecells[cell] = &card
	return nil
}

func (s *GameState) moveFreecellToTableau(cell, col int, validateOnly bool) error {
	card := s.Freecells[cell]
	if card == nil {
		return reject(KindOccupancy, "selected freecell is empty")
	}
	if err := CanPlaceOnTableau(s.Tableau[col], []Card{*card}, s.KingsOnlyOnEmptyTableau); err != nil {
		return err
	}
	if validateOnly {
		return nil
	}

	s.Tableau[col] = append(s.Tableau[col], *card)
	s.Freecells[cell] = nil
	return nil
}

// Cards coming back from a foundation may always land on an empty column.
func (s *GameState) moveFoundationToTableau(suit Suit, col int, validateOnly bool) error {
	pile := s.Foundations[suit]
	if len(pile) == 0 {
		return reject(KindStructural, "selected foundation pile is empty")
	}
	card := pile[len(pile)-1]
	if err := CanPlaceOnTableau(s.Tableau[col], []Card{card}, false); err != nil {
		return err
	}
	if validateOnly {
		return nil
	}

	s.Foundations[suit] = pile[:len(pile)-1]
	s.Tableau[col] = append(s.Tableau[col], card)
	return nil
}

func (s *GameState) moveTableauToFoundation(col int, suit Suit, validateOnly bool) error {
	src := s.Tableau[col]
	if len(src) == 0 {
		return reject(KindStructural, "source tableau column is empty")
	}
	card := src[len(src)-1]
	if card.Suit != suit {
		return reject(KindFoundationSeq, "top card suit does not match foundation suit")
	}
	if err := CanPlaceOnFoundation(s.Foundations[suit], card); err != nil {
		return err
	}
	if validateOnly {
		return nil
	}

	s.Tableau[col] = src[:len(src)-1]
	s.Foundations[suit] = append(s.Foundations[suit], card)
	return nil
}

func (s *GameState) moveFreecellToFoundation(cell int, suit Suit, validateOnly bool) error {
	card := s.Freecells[cell]
	if card == nil {
		return reject(KindOccupancy, "selected freecell is empty")
	}
	if card.Suit != suit {
		return reject(KindFoundationSeq, "card suit does not match foundation suit")
	}
	if err := CanPlaceOnFoundation(s.Foundations[suit], *card); err != nil {
		return err
	}
	if validateOnly {
		return nil
	}

	s.Foundations[suit] = append(s.Foundations[suit], *card)
	s.Freecells[cell] = nil
	return nil
}

func (s *GameState) moveFoundationToFreecell(suit Suit, cell int, validateOnly bool) error {
	pile := s.Foundations[suit]
	if len(pile) == 0 {
		return reject(KindStructural, "no card to move from foundation")
	}
	if s.Freecells[cell] != nil {
		return reject(KindOccupancy, "target freecell is not empty")
	}
	if validateOnly {
		return nil
	}

	card := pile[len(pile)-1]
	s.Foundations[suit] = pile[:len(pile)-1]
	s.Freecells[cell] = &card
	return nil
}

// moveTableauToTableau moves the top num cards of column from onto column to.
func (s *GameState) moveTableauToTableau(num, from, to int, validateOnly bool) error {
	if from == to {
		return reject(KindMalformed, "source and destination columns must differ")
	}
	src := s.Tableau[from]
	if num > len(src) {
		return reject(KindStructural, "not enough cards to move")
	}
	stack := src[len(src)-num:]
	if err := CanStackMove(stack); err != nil {
		return err
	}
	if err := CanPlaceOnTableau(s.Tableau[to], stack, s.KingsOnlyOnEmptyTableau); err != nil {
		return err
	}
	if limit := s.MaxMovable(from, to); num > limit {
		return reject(KindCapacity,
			"you can only move up to %d cards at once, based on available freecells and empty tableau columns", limit)
	}
	if validateOnly {
		return nil
	}

	s.Tableau[to] = append(s.Tableau[to], stack...)
	s.Tableau[from] = src[:len(src)-num]
	return nil
}

type movePair struct {
	from, to LocationKind
}

// Dispatch routes req to the operation for its (source, destination) kinds.
// With validateOnly set the state is never modified.
func (s *GameState) Dispatch(req MoveRequest, validateOnly bool) error {
	if req.Count < 1 {
		return reject(KindMalformed, "number of cards to move must be positive")
	}
	if err := req.Source.Validate(); err != nil {
		return err
	}
	if err := req.Dest.Validate(); err != nil {
		return err
	}

	src, dst := req.Source, req.Dest
	single := func(what string) error {
		if req.Count != 1 {
			return reject(KindMalformed, "can only move one card at a time %s", what)
		}
		return nil
	}

	switch (movePair{src.Kind, dst.Kind}) {
	case movePair{KindTableau, KindTableau}:
		return s.moveTableauToTableau(req.Count, src.Index, dst.Index, validateOnly)
	case movePair{KindTableau, KindFreecell}:
		if err := single("to freecells"); err != nil {
			return err
		}
		return s.moveTableauToFreecell(src.Index, dst.Index, validateOnly)
	case movePair{KindFreecell, KindTableau}:
		if err := single("from freecells"); err != nil {
			return err
		}
		return s.moveFreecellToTableau(src.Index, dst.Index, validateOnly)
	case movePair{KindFoundation, KindTableau}:
		if err := single("from foundation"); err != nil {
			return err
		}
		return s.moveFoundationToTableau(src.Suit, dst.Index, validateOnly)
	case movePair{KindTableau, KindFoundation}:
		if err := single("to foundations"); err != nil {
			return err
		}
		return s.moveTableauToFoundation(src.Index, dst.Suit, validateOnly)
	case movePair{KindFreecell, KindFoundation}:
		if err := single("from freecells to foundations"); err != nil {
			return err
		}
		return s.moveFreecellToFoundation(src.Index, dst.Suit, validateOnly)
	case movePair{KindFoundation, KindFreecell}:
		if err := single("from foundation"); err != nil {
			return err
		}
		return s.moveFoundationToFreecell(src.Suit, dst.Index, validateOnly)
	default:
		return reject(KindMalformed, "unsupported move type")
	}
}
