package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuitColor(t *testing.T) {
	assert.Equal(t, Red, Hearts.Color())
	assert.Equal(t, Red, Diamonds.Color())
	assert.Equal(t, Black, Spades.Color())
	assert.Equal(t, Black, Clubs.Color())
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		in   string
		want Card
	}{
		{"AS", Card{Rank: Ace, Suit: Spades}},
		{"10h", Card{Rank: 10, Suit: Hearts}},
		{"qd", Card{Rank: Queen, Suit: Diamonds}},
		{"KC", Card{Rank: King, Suit: Clubs}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCard(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "X", "1S", "14H", "AX"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, bad)
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "10H", Card{Rank: 10, Suit: Hearts}.String())
	assert.Equal(t, "AS", Card{Rank: Ace, Suit: Spades}.String())
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(Card{Rank: 10, Suit: Hearts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":"10","suit":"H"}`, string(data))

	var c Card
	require.NoError(t, json.Unmarshal([]byte(`{"rank":12,"suit":"s"}`), &c))
	assert.Equal(t, Card{Rank: Queen, Suit: Spades}, c)

	assert.Error(t, json.Unmarshal([]byte(`{"rank":"Z","suit":"S"}`), &c))
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate %v", c)
		seen[c] = true
	}
	assert.Equal(t, Card{Rank: Ace, Suit: Spades}, deck[0])
	assert.Equal(t, Card{Rank: King, Suit: Clubs}, deck[DeckSize-1])
}
