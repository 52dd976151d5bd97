// Package gamedata merges the ingredients and magic effects of a load order
// and stores them as JSON.
package gamedata

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"SkyrimAlchemy/internal/loadorder"
	"SkyrimAlchemy/internal/plugin"

	"go.uber.org/zap"
)

// GlobalFormID identifies a record by its plugin's position in the load order.
type GlobalFormID struct {
	LoadOrderIndex uint16 `json:"load_order_index"`
	ID             uint32 `json:"id"`
}

func (g GlobalFormID) String() string {
	return fmt.Sprintf("%04d:%06X", g.LoadOrderIndex, g.ID)
}

// Compare orders IDs by load order index, then ID.
func (g GlobalFormID) Compare(o GlobalFormID) int {
	if c := cmp.Compare(g.LoadOrderIndex, o.LoadOrderIndex); c != 0 {
		return c
	}
	return cmp.Compare(g.ID, o.ID)
}

// Ingredient is an ingredient keyed by global form ID.
type Ingredient struct {
	ID       GlobalFormID `json:"form_id"`
	EditorID string       `json:"editor_id"`
	Name     string       `json:"name,omitempty"`
	Effects  []Effect     `json:"effects"`
}

// DisplayName is the ingredient's name, or its editor ID when unnamed.
func (i *Ingredient) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.EditorID
}

// Effect is one effect of an ingredient.
type Effect struct {
	ID        GlobalFormID `json:"form_id"`
	Magnitude float32      `json:"magnitude"`
	Area      uint32       `json:"area"`
	Duration  uint32       `json:"duration"`
}

// MagicEffect is a magic effect keyed by global form ID.
type MagicEffect struct {
	ID          GlobalFormID `json:"form_id"`
	EditorID    string       `json:"editor_id"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description"`
	Flags       uint32       `json:"flags"`
	Hostile     bool         `json:"is_hostile"`
	BaseCost    float32      `json:"base_cost"`
}

// DisplayName is the effect's name, or its editor ID when unnamed.
func (m *MagicEffect) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.EditorID
}

// GameData holds the merged records of a load order.
type GameData struct {
	LoadOrder    *loadorder.LoadOrder
	Ingredients  map[GlobalFormID]*Ingredient
	MagicEffects map[GlobalFormID]*MagicEffect
}

// IngredientList returns the ingredients ordered by ID.
func (gd *GameData) IngredientList() []*Ingredient {
	return slices.SortedFunc(maps.Values(gd.Ingredients), func(a, b *Ingredient) int {
		return a.ID.Compare(b.ID)
	})
}

// MagicEffectList returns the magic effects ordered by ID.
func (gd *GameData) MagicEffectList() []*MagicEffect {
	return slices.SortedFunc(maps.Values(gd.MagicEffects), func(a, b *MagicEffect) int {
		return a.ID.Compare(b.ID)
	})
}

// Plugin returns the name of the plugin owning id.
func (gd *GameData) Plugin(id GlobalFormID) string {
	name, _ := gd.LoadOrder.Get(int(id.LoadOrderIndex))
	return name
}

// IngredientError reports an ingredient that cannot be brewed with: it
// references magic effects that are not part of the game data, or lists an
// effect more than once.
type IngredientError struct {
	Ingredient *Ingredient
	Unknown    []GlobalFormID
	Duplicate  []GlobalFormID
}

func joinIDs(ids []GlobalFormID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	return strings.Join(s, ", ")
}

func (e *IngredientError) Error() string {
	var problems []string
	if len(e.Unknown) > 0 {
		problems = append(problems, "references unknown magic effects: "+joinIDs(e.Unknown))
	}
	if len(e.Duplicate) > 0 {
		problems = append(problems, "repeats magic effects: "+joinIDs(e.Duplicate))
	}
	return fmt.Sprintf("ingredient %s %s", e.Ingredient.DisplayName(), strings.Join(problems, "; "))
}

// Validate returns an error for every ingredient that references unknown
// magic effects or repeats one, ordered by ingredient ID.
func (gd *GameData) Validate() []*IngredientError {
	var errs []*IngredientError
	for _, ing := range gd.IngredientList() {
		var unknown, duplicate []GlobalFormID
		seen := make(map[GlobalFormID]bool, len(ing.Effects))
		for _, eff := range ing.Effects {
			if _, ok := gd.MagicEffects[eff.ID]; !ok {
				unknown = append(unknown, eff.ID)
			}
			if seen[eff.ID] && !slices.Contains(duplicate, eff.ID) {
				duplicate = append(duplicate, eff.ID)
			}
			seen[eff.ID] = true
		}
		if len(unknown) > 0 || len(duplicate) > 0 {
			errs = append(errs, &IngredientError{Ingredient: ing, Unknown: unknown, Duplicate: duplicate})
		}
	}
	return errs
}

// PurgeInvalid removes the ingredients Validate rejects and returns how many
// were removed.
func (gd *GameData) PurgeInvalid(log *zap.Logger) int {
	errs := gd.Validate()
	for _, err := range errs {
		delete(gd.Ingredients, err.Ingredient.ID)
		log.Warn("ignoring invalid ingredient",
			zap.Stringer("form_id", err.Ingredient.ID),
			zap.String("plugin", gd.Plugin(err.Ingredient.ID)),
			zap.Error(err))
	}
	return len(errs)
}

// Builder merges plugins in load order. Records from later plugins replace
// earlier records with the same form ID.
type Builder struct {
	lo           *loadorder.LoadOrder
	ingredients  map[plugin.FormID]plugin.Ingredient
	magicEffects map[plugin.FormID]plugin.MagicEffect
}

// NewBuilder returns a builder over lo. Build compacts lo in place.
func NewBuilder(lo *loadorder.LoadOrder) *Builder {
	return &Builder{
		lo:           lo,
		ingredients:  make(map[plugin.FormID]plugin.Ingredient),
		magicEffects: make(map[plugin.FormID]plugin.MagicEffect),
	}
}

// Add merges the records of p. Plugins must be added in load order.
func (b *Builder) Add(p *plugin.Plugin) error {
	if p.IsLight() {
		if err := b.lo.MarkLight(p.Name); err != nil {
			return err
		}
	}
	for _, ing := range p.Ingredients {
		b.ingredients[ing.FormID] = ing
	}
	for _, mgef := range p.MagicEffects {
		b.magicEffects[mgef.FormID] = mgef
	}
	return nil
}

// Build keeps only the magic effects used by ingredients, drops unused
// plugins from the load order and assigns global form IDs.
func (b *Builder) Build() (*GameData, error) {
	used := make(map[plugin.FormID]bool)
	for _, ing := range b.ingredients {
		for _, eff := range ing.Effects {
			used[eff.FormID] = true
		}
	}

	var indexes []int
	index := func(id plugin.FormID) (int, error) {
		i, ok := b.lo.Index(id.Plugin)
		if !ok {
			return 0, fmt.Errorf("form ID %s: plugin %s is not in the load order", id, id.Plugin)
		}
		indexes = append(indexes, i)
		return i, nil
	}

	type pending struct {
		index int
		id    uint32
	}
	resolved := make(map[plugin.FormID]pending)
	resolve := func(id plugin.FormID) error {
		if _, ok := resolved[id]; ok {
			return nil
		}
		i, err := index(id)
		if err != nil {
			return err
		}
		resolved[id] = pending{index: i, id: id.ID}
		return nil
	}

	for id, ing := range b.ingredients {
		if err := resolve(id); err != nil {
			return nil, err
		}
		for _, eff := range ing.Effects {
			if err := resolve(eff.FormID); err != nil {
				return nil, err
			}
		}
	}
	for id := range b.magicEffects {
		if used[id] {
			if err := resolve(id); err != nil {
				return nil, err
			}
		}
	}

	remap := b.lo.DrainUnused(indexes)
	global := func(id plugin.FormID) GlobalFormID {
		p := resolved[id]
		return GlobalFormID{LoadOrderIndex: uint16(remap[p.index]), ID: p.id}
	}

	gd := &GameData{
		LoadOrder:    b.lo,
		Ingredients:  make(map[GlobalFormID]*Ingredient, len(b.ingredients)),
		MagicEffects: make(map[GlobalFormID]*MagicEffect, len(used)),
	}
	for id, ing := range b.ingredients {
		out := &Ingredient{
			ID:       global(id),
			EditorID: ing.EditorID,
			Name:     ing.Name,
			Effects:  make([]Effect, len(ing.Effects)),
		}
		for i, eff := range ing.Effects {
			out.Effects[i] = Effect{
				ID:        global(eff.FormID),
				Magnitude: eff.Magnitude,
				Area:      eff.Area,
				Duration:  eff.Duration,
			}
		}
		slices.SortStableFunc(out.Effects, func(a, b Effect) int {
			return a.ID.Compare(b.ID)
		})
		gd.Ingredients[out.ID] = out
	}
	for id, mgef := range b.magicEffects {
		if !used[id] {
			continue
		}
		out := &MagicEffect{
			ID:          global(id),
			EditorID:    mgef.EditorID,
			Name:        mgef.Name,
			Description: mgef.Description,
			Flags:       mgef.Flags,
			Hostile:     mgef.Hostile,
			BaseCost:    mgef.BaseCost,
		}
		gd.MagicEffects[out.ID] = out
	}
	return gd, nil
}
