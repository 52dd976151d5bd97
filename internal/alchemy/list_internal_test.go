package alchemy

import (
	"testing"

	"SkyrimAlchemy/internal/gamedata"

	"github.com/stretchr/testify/assert"
)

func TestListAllPrefersPairsOnTies(t *testing.T) {
	p := func(gold uint16) *Potion { return &Potion{Gold: gold} }
	pairs := []*Potion{p(50), p(30), p(10)}
	triples := []*Potion{p(60), p(30), p(5)}
	l := &List{potions2: pairs, potions3: triples}

	var got []*Potion
	for potion := range l.All() {
		got = append(got, potion)
	}
	want := []*Potion{triples[0], pairs[0], pairs[1], triples[1], pairs[2], triples[2]}
	assert.Equal(t, len(want), len(got))
	for i := range want {
		assert.Same(t, want[i], got[i], "index %d", i)
	}
}

func TestValidTriple(t *testing.T) {
	x := []gamedata.GlobalFormID{{ID: 1}}
	y := []gamedata.GlobalFormID{{ID: 2}}
	xy := []gamedata.GlobalFormID{{ID: 1}, {ID: 2}}

	tests := []struct {
		name       string
		ab, bc, ca []gamedata.GlobalFormID
		want       bool
	}{
		{"one edge", x, nil, nil, false},
		{"no edges", nil, nil, nil, false},
		{"two equal edges", x, x, nil, false},
		{"two distinct edges", x, nil, y, true},
		{"superset edge", x, xy, nil, true},
		{"three equal edges", x, x, x, false},
		{"one distinct edge", x, x, y, true},
		{"all distinct", x, y, xy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validTriple(tt.ab, tt.bc, tt.ca))
		})
	}
}
