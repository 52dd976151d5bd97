package alchemy

import (
	"slices"
	"sync"

	"SkyrimAlchemy/internal/gamedata"
)

// SharedEffects returns the IDs of the effects both ingredients carry, in
// the order they appear on a.
func SharedEffects(a, b *gamedata.Ingredient) []gamedata.GlobalFormID {
	var shared []gamedata.GlobalFormID
	for _, ea := range a.Effects {
		if slices.ContainsFunc(b.Effects, func(eb gamedata.Effect) bool { return eb.ID == ea.ID }) {
			shared = append(shared, ea.ID)
		}
	}
	return shared
}

type pairKey struct {
	a, b gamedata.GlobalFormID
}

func newPairKey(a, b gamedata.GlobalFormID) pairKey {
	if b.Compare(a) < 0 {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// SharedEffectsCache memoizes SharedEffects per unordered ingredient pair.
// It is safe for concurrent use.
type SharedEffectsCache struct {
	m sync.Map
}

// Get returns the effects shared by a and b, sorted by ID.
func (c *SharedEffectsCache) Get(a, b *gamedata.Ingredient) []gamedata.GlobalFormID {
	key := newPairKey(a.ID, b.ID)
	if v, ok := c.m.Load(key); ok {
		return v.([]gamedata.GlobalFormID)
	}
	shared := SharedEffects(a, b)
	slices.SortFunc(shared, gamedata.GlobalFormID.Compare)
	v, _ := c.m.LoadOrStore(key, shared)
	return v.([]gamedata.GlobalFormID)
}

// Shares reports whether a and b have an effect in common.
func (c *SharedEffectsCache) Shares(a, b *gamedata.Ingredient) bool {
	return len(c.Get(a, b)) > 0
}

// Len returns the number of cached pairs.
func (c *SharedEffectsCache) Len() int {
	n := 0
	c.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
