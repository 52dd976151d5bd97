package alchemy

import (
	"cmp"
	"context"
	"iter"
	"runtime"
	"slices"
	"strings"

	"SkyrimAlchemy/internal/gamedata"
	"SkyrimAlchemy/internal/logging"

	"github.com/Songmu/flextime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// List holds every worthwhile potion of a set of ingredients, ordered by
// value.
type List struct {
	potions2 []*Potion
	potions3 []*Potion
}

// Build brews every pair of ingredients sharing an effect and every triple
// whose third ingredient adds an effect over the pairs it contains.
// Ingredients are processed in name order.
func Build(ctx context.Context, gd *gamedata.GameData, ingredients []*gamedata.Ingredient, log *zap.Logger) (*List, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := flextime.Now()

	ings := slices.Clone(ingredients)
	slices.SortStableFunc(ings, func(a, b *gamedata.Ingredient) int {
		return strings.Compare(a.DisplayName(), b.DisplayName())
	})

	var cache SharedEffectsCache
	pairs := make([][]*Potion, len(ings))
	triples := make([][]*Potion, len(ings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range ings {
		g.Go(func() error {
			a := ings[i]
			for j := i + 1; j < len(ings); j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				b := ings[j]
				if cache.Shares(a, b) {
					p, err := NewPotion(gd, a, b)
					if err != nil {
						return err
					}
					pairs[i] = append(pairs[i], p)
				}
				for k := j + 1; k < len(ings); k++ {
					c := ings[k]
					if !validTriple(cache.Get(a, b), cache.Get(b, c), cache.Get(c, a)) {
						continue
					}
					p, err := NewPotion(gd, a, b, c)
					if err != nil {
						return err
					}
					triples[i] = append(triples[i], p)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l := &List{
		potions2: sortByGold(slices.Concat(pairs...)),
		potions3: sortByGold(slices.Concat(triples...)),
	}
	log.Debug("built potion list",
		zap.Int("ingredients", len(ings)),
		zap.Int("pairs", len(l.potions2)),
		zap.Int("triples", len(l.potions3)),
		zap.Int("cached_pairs", cache.Len()),
		logging.Since(start))
	return l, nil
}

// validTriple decides whether a three ingredient potion is worth brewing
// from the effects shared along each edge of the triangle. Every ingredient
// must be connected and at least two edges must contribute different effects.
func validTriple(ab, bc, ca []gamedata.GlobalFormID) bool {
	var edges [][]gamedata.GlobalFormID
	for _, e := range [][]gamedata.GlobalFormID{ab, bc, ca} {
		if len(e) > 0 {
			edges = append(edges, e)
		}
	}
	switch len(edges) {
	case 2:
		return !slices.Equal(edges[0], edges[1])
	case 3:
		d12 := !slices.Equal(ab, bc)
		d23 := !slices.Equal(bc, ca)
		d31 := !slices.Equal(ca, ab)
		return (d12 && (d31 || d23)) || (d31 && d23)
	}
	return false
}

func sortByGold(potions []*Potion) []*Potion {
	slices.SortStableFunc(potions, func(a, b *Potion) int {
		return cmp.Compare(b.Gold, a.Gold)
	})
	return potions
}

// Len returns the number of potions.
func (l *List) Len() int {
	return len(l.potions2) + len(l.potions3)
}

// All yields every potion, most valuable first. On equal value two
// ingredient potions come first.
func (l *List) All() iter.Seq[*Potion] {
	return func(yield func(*Potion) bool) {
		i, j := 0, 0
		for i < len(l.potions2) || j < len(l.potions3) {
			var p *Potion
			if j < len(l.potions3) && (i == len(l.potions2) || l.potions3[j].Gold > l.potions2[i].Gold) {
				p = l.potions3[j]
				j++
			} else {
				p = l.potions2[i]
				i++
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Top returns at most n potions from All.
func (l *List) Top(n int) []*Potion {
	if n <= 0 {
		return nil
	}
	out := make([]*Potion, 0, min(n, l.Len()))
	for p := range l.All() {
		if len(out) == n {
			break
		}
		out = append(out, p)
	}
	return out
}
