package engine

// snapshot deep-copies the piles and rule flag.
func (s *GameState) snapshot() Snapshot {
	return Snapshot{
		Tableau:                 s.Tableau.clone(),
		Freecells:               s.Freecells,
		Foundations:             s.Foundations.clone(),
		Seed:                    s.Seed,
		KingsOnlyOnEmptyTableau: s.KingsOnlyOnEmptyTableau,
	}
}

func (s *GameState) pushHistory() {
	s.History = append(s.History, s.snapshot())
}

// popHistory discards the most recent snapshot without restoring it.
func (s *GameState) popHistory() {
	if n := len(s.History); n > 0 {
		s.History = s.History[:n-1]
	}
}

// restore pops the most recent snapshot into the live fields. MoveCount,
// StartTime and GameOver are not part of a snapshot.
func (s *GameState) restore() bool {
	n := len(s.History)
	if n == 0 {
		return false
	}
	snap := s.History[n-1]
	s.History = s.History[:n-1]

	s.Tableau = snap.Tableau.clone()
	s.Freecells = snap.Freecells
	s.Foundations = snap.Foundations.clone()
	s.Seed = snap.Seed
	s.KingsOnlyOnEmptyTableau = snap.KingsOnlyOnEmptyTableau
	return true
}
