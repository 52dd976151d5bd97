package alchemy

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"SkyrimAlchemy/internal/gamedata"
)

var (
	ErrNotEnoughIngredients = errors.New("not enough ingredients")
	ErrTooManyIngredients   = errors.New("too many ingredients")
	ErrNoSharedEffects      = errors.New("ingredients share no effects")
	ErrDuplicateIngredient  = errors.New("duplicate ingredient")
	ErrInvalidIngredient    = errors.New("ingredient has duplicate effects")
	ErrUnknownMagicEffect   = errors.New("unknown magic effect")
)

// PotionError reports the ingredient that prevented a potion from being made.
type PotionError struct {
	Err        error
	Ingredient *gamedata.Ingredient
}

func (e *PotionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Ingredient.DisplayName())
}

func (e *PotionError) Unwrap() error { return e.Err }

// Type is either a potion or a poison.
type Type int

const (
	TypePotion Type = iota
	TypePoison
)

func (t Type) String() string {
	if t == TypePoison {
		return "Poison"
	}
	return "Potion"
}

// Potion is a valid combination of ingredients. Effects are ordered by value,
// most valuable first.
type Potion struct {
	Ingredients []*gamedata.Ingredient
	Effects     []PotionEffect
	Gold        uint16
}

// NewPotion brews ingredients. Only effects present in at least two
// ingredients end up in the potion; when several ingredients carry the same
// effect the most valuable version is used.
func NewPotion(gd *gamedata.GameData, ingredients ...*gamedata.Ingredient) (*Potion, error) {
	switch {
	case len(ingredients) < MinIngredients:
		return nil, ErrNotEnoughIngredients
	case len(ingredients) > MaxIngredients:
		return nil, ErrTooManyIngredients
	}

	seen := make(map[gamedata.GlobalFormID]bool, len(ingredients))
	for _, ing := range ingredients {
		if seen[ing.ID] {
			return nil, &PotionError{Err: ErrDuplicateIngredient, Ingredient: ing}
		}
		seen[ing.ID] = true
	}

	var all []gamedata.Effect
	for _, ing := range ingredients {
		ids := make(map[gamedata.GlobalFormID]bool, len(ing.Effects))
		for _, eff := range ing.Effects {
			if ids[eff.ID] {
				return nil, &PotionError{Err: ErrInvalidIngredient, Ingredient: ing}
			}
			ids[eff.ID] = true
		}
		all = append(all, ing.Effects...)
	}
	slices.SortStableFunc(all, func(a, b gamedata.Effect) int {
		return a.ID.Compare(b.ID)
	})

	counts := make(map[gamedata.GlobalFormID]int, len(all))
	for _, eff := range all {
		counts[eff.ID]++
	}

	var effects []PotionEffect
	var last gamedata.GlobalFormID
	for _, eff := range all {
		if counts[eff.ID] < 2 {
			continue
		}
		mgef, ok := gd.MagicEffects[eff.ID]
		if !ok {
			return nil, fmt.Errorf("%w %s", ErrUnknownMagicEffect, eff.ID)
		}
		pe := NewPotionEffect(eff, mgef)
		if n := len(effects); n > 0 && last == eff.ID {
			if pe.Gold > effects[n-1].Gold {
				effects[n-1] = pe
			}
			continue
		}
		effects = append(effects, pe)
		last = eff.ID
	}
	if len(effects) == 0 {
		return nil, ErrNoSharedEffects
	}

	slices.SortStableFunc(effects, func(a, b PotionEffect) int {
		return cmp.Compare(b.Gold, a.Gold)
	})
	if len(effects) > MaxEffects {
		effects = effects[:MaxEffects]
	}

	var gold uint32
	for _, e := range effects {
		gold += uint32(e.Gold)
	}
	return &Potion{
		Ingredients: slices.Clone(ingredients),
		Effects:     effects,
		Gold:        uint16(min(gold, math.MaxUint16)),
	}, nil
}

// Primary is the most valuable effect, which names the potion.
func (p *Potion) Primary() PotionEffect {
	return p.Effects[0]
}

// Type is a poison when the primary effect is hostile.
func (p *Potion) Type() Type {
	if p.Primary().MagicEffect.Hostile {
		return TypePoison
	}
	return TypePotion
}

func (p *Potion) Name() string {
	return fmt.Sprintf("%s of %s", p.Type(), p.Primary().MagicEffect.DisplayName())
}

// Description joins the descriptions of all effects.
func (p *Potion) Description() string {
	parts := make([]string, len(p.Effects))
	for i, e := range p.Effects {
		parts[i] = e.Description()
	}
	return strings.Join(parts, " ")
}

// IngredientNames returns the display names of the ingredients in order.
func (p *Potion) IngredientNames() []string {
	names := make([]string, len(p.Ingredients))
	for i, ing := range p.Ingredients {
		names[i] = ing.DisplayName()
	}
	return names
}

func (p *Potion) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\nValue: %d gold\nIngredients:\n", p.Name(), p.Description(), p.Gold)
	for _, name := range p.IngredientNames() {
		fmt.Fprintf(&sb, "- %s\n", name)
	}
	return sb.String()
}
