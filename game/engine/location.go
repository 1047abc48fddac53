package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationKind tags the three kinds of pile a card can sit in.
type LocationKind int

const (
	KindTableau LocationKind = iota
	KindFreecell
	KindFoundation
)

func (k LocationKind) String() string {
	switch k {
	case KindTableau:
		return "tableau"
	case KindFreecell:
		return "freecell"
	case KindFoundation:
		return "foundation"
	default:
		return "unknown"
	}
}

// Location addresses a pile. Index is 0-based and used for tableau and
// freecell locations; Suit is used for foundations.
type Location struct {
	Kind  LocationKind
	Index int
	Suit  Suit
}

// Column returns the location of tableau column i (0-based).
func Column(i int) Location { return Location{Kind: KindTableau, Index: i} }

// Cell returns the location of freecell i (0-based).
func Cell(i int) Location { return Location{Kind: KindFreecell, Index: i} }

// Foundation returns the location of the foundation for suit.
func Foundation(suit Suit) Location { return Location{Kind: KindFoundation, Suit: suit} }

// ParseLocation parses t1..t8, f1..f4 and dS/dH/dD/dC.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Location{}, fmt.Errorf("invalid location %q", s)
	}
	prefix, rest := strings.ToLower(s[:1]), s[1:]

	switch prefix {
	case "t", "f":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
		}
		loc := Location{Kind: KindTableau, Index: n - 1}
		if prefix == "f" {
			loc.Kind = KindFreecell
		}
		if err := loc.Validate(); err != nil {
			return Location{}, err
		}
		return loc, nil
	case "d":
		loc := Foundation(Suit(strings.ToUpper(rest)))
		if err := loc.Validate(); err != nil {
			return Location{}, err
		}
		return loc, nil
	}
	return Location{}, fmt.Errorf("invalid location %q: must start with t, f or d", s)
}

// Validate checks the index or suit against the board dimensions.
func (l Location) Validate() error {
	switch l.Kind {
	case KindTableau:
		if l.Index < 0 || l.Index >= NumColumns {
			return reject(KindMalformed, "tableau column must be between 1 and %d", NumColumns)
		}
	case KindFreecell:
		if l.Index < 0 || l.Index >= NumFreecells {
			return reject(KindMalformed, "freecell must be between 1 and %d", NumFreecells)
		}
	case KindFoundation:
		if !l.Suit.Valid() {
			return reject(KindMalformed, "invalid foundation suit %q", string(l.Suit))
		}
	default:
		return reject(KindMalformed, "invalid source or destination")
	}
	return nil
}

func (l Location) String() string {
	switch l.Kind {
	case KindTableau:
		return "t" + strconv.Itoa(l.Index+1)
	case KindFreecell:
		return "f" + strconv.Itoa(l.Index+1)
	case KindFoundation:
		return "d" + string(l.Suit)
	}
	return "?"
}

// MarshalText encodes the location in its string grammar.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the string grammar.
func (l *Location) UnmarshalText(text []byte) error {
	loc, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = loc
	return nil
}
