package gamedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"SkyrimAlchemy/internal/loadorder"

	"github.com/Masterminds/semver/v3"
)

// FormatVersion is written to every exported file.
const FormatVersion = "1.0.0"

// compatible is the range of file versions Load accepts.
var compatible = semver.MustParse(FormatVersion)

var ErrIncompatibleVersion = errors.New("incompatible game data version")

type file struct {
	Version      string         `json:"version"`
	LoadOrder    []string       `json:"load_order"`
	Ingredients  []*Ingredient  `json:"ingredients"`
	MagicEffects []*MagicEffect `json:"magic_effects"`
}

func (gd *GameData) MarshalJSON() ([]byte, error) {
	return json.Marshal(file{
		Version:      FormatVersion,
		LoadOrder:    gd.LoadOrder.Plugins(),
		Ingredients:  gd.IngredientList(),
		MagicEffects: gd.MagicEffectList(),
	})
}

func (gd *GameData) UnmarshalJSON(data []byte) error {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if err := checkVersion(f.Version); err != nil {
		return err
	}
	gd.LoadOrder = loadorder.Restore(f.LoadOrder)
	gd.Ingredients = make(map[GlobalFormID]*Ingredient, len(f.Ingredients))
	for _, ing := range f.Ingredients {
		if int(ing.ID.LoadOrderIndex) >= gd.LoadOrder.Len() {
			return fmt.Errorf("ingredient %s: load order index out of range", ing.ID)
		}
		gd.Ingredients[ing.ID] = ing
	}
	gd.MagicEffects = make(map[GlobalFormID]*MagicEffect, len(f.MagicEffects))
	for _, mgef := range f.MagicEffects {
		if int(mgef.ID.LoadOrderIndex) >= gd.LoadOrder.Len() {
			return fmt.Errorf("magic effect %s: load order index out of range", mgef.ID)
		}
		gd.MagicEffects[mgef.ID] = mgef
	}
	return nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing version", ErrIncompatibleVersion)
	}
	got, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIncompatibleVersion, err)
	}
	constraint, err := semver.NewConstraint(fmt.Sprintf("^%d", compatible.Major()))
	if err != nil {
		return err
	}
	if !constraint.Check(got) {
		return fmt.Errorf("%w: %s, expected %s", ErrIncompatibleVersion, got, constraint)
	}
	return nil
}

// Load reads game data exported by Write.
func Load(path string) (*GameData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game data: %w", err)
	}
	var gd GameData
	if err := json.Unmarshal(data, &gd); err != nil {
		return nil, fmt.Errorf("parse game data %s: %w", path, err)
	}
	return &gd, nil
}

// Write stores gd as indented JSON at path, creating parent directories.
func (gd *GameData) Write(path string) error {
	data, err := json.MarshalIndent(gd, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game data: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create game data directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write game data: %w", err)
	}
	return nil
}
