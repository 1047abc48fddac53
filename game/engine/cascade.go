package engine

// AutoCascade moves foundation-ready cards until none remain. Tableau tops
// are scanned left to right before freecells and the first match is moved,
// then the scan restarts. Every step pushes its own history snapshot.
func (s *GameState) AutoCascade() []CascadeStep {
	var steps []CascadeStep
	for {
		step, ok := s.nextCascadeStep()
		if !ok {
			return steps
		}
		steps = append(steps, step)
	}
}

func (s *GameState) nextCascadeStep() (CascadeStep, bool) {
	for i, col := range s.Tableau {
		if len(col) == 0 {
			continue
		}
		card := col[len(col)-1]
		if CanPlaceOnFoundation(s.Foundations[card.Suit], card) != nil {
			continue
		}
		s.pushHistory()
		if err := s.moveTableauToFoundation(i, card.Suit, false); err != nil {
			s.popHistory()
			continue
		}
		return CascadeStep{Card: card, From: Column(i)}, true
	}

	for i, cell := range s.Freecells {
		if cell == nil {
			continue
		}
		card := *cell
		if CanPlaceOnFoundation(s.Foundations[card.Suit], card) != nil {
			continue
		}
		s.pushHistory()
		if err := s.moveFreecellToFoundation(i, card.Suit, false); err != nil {
			s.popHistory()
			continue
		}
		return CascadeStep{Card: card, From: Cell(i)}, true
	}
	return CascadeStep{}, false
}
