package alchemy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"SkyrimAlchemy/internal/gamedata"

	"go.uber.org/zap"
)

// DefaultLimit is the number of potions suggested when no limit is given.
const DefaultLimit = 20

var (
	ErrInvalidLimit     = errors.New("limit must be at least 1")
	ErrConflictingLists = errors.New("a blacklist and a whitelist cannot be used together")
)

// ReadNames reads an ingredient list with one name per line. Blank lines are
// ignored.
func ReadNames(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names[strings.ToLower(name)] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return names, nil
}

// SuggestOptions configures Suggest.
type SuggestOptions struct {
	Limit int
	// Blacklist excludes ingredients by lowercase name.
	Blacklist map[string]bool
	// Whitelist restricts the ingredients by lowercase name.
	Whitelist map[string]bool
	Log       *zap.Logger
}

// Filter applies the blacklist or whitelist to ingredients.
func (o SuggestOptions) Filter(ingredients []*gamedata.Ingredient) ([]*gamedata.Ingredient, error) {
	if o.Blacklist != nil && o.Whitelist != nil {
		return nil, ErrConflictingLists
	}
	var out []*gamedata.Ingredient
	for _, ing := range ingredients {
		name := strings.ToLower(ing.DisplayName())
		switch {
		case o.Blacklist != nil && o.Blacklist[name]:
			continue
		case o.Whitelist != nil && !o.Whitelist[name]:
			continue
		}
		out = append(out, ing)
	}
	return out, nil
}

// Suggest returns the most valuable potions that can be brewed from the
// ingredients of gd.
func Suggest(ctx context.Context, gd *gamedata.GameData, opts SuggestOptions) ([]*Potion, error) {
	if opts.Limit < 1 {
		return nil, ErrInvalidLimit
	}
	ings, err := opts.Filter(gd.IngredientList())
	if err != nil {
		return nil, err
	}
	list, err := Build(ctx, gd, ings, opts.Log)
	if err != nil {
		return nil, err
	}
	return list.Top(opts.Limit), nil
}
