// Package alchemy computes the potions that can be brewed from game data and
// their value.
package alchemy

import (
	"math"
	"strconv"
	"strings"

	"SkyrimAlchemy/internal/gamedata"
)

const (
	MinIngredients = 2
	MaxIngredients = 3
	MaxEffects     = 6

	// PowerFactor scales effects flagged as affected by power. It excludes
	// perks and skill.
	PowerFactor = 6.0
)

// Magic effect flags that change potion strength.
const (
	flagNoDuration            = 0x00000200
	flagNoMagnitude           = 0x00000400
	flagPowerAffectsMagnitude = 0x00200000
	flagPowerAffectsDuration  = 0x00400000
)

const (
	instantDuration = 10.0
	goldExponent    = 1.1
)

// Magnitude returns the brewed magnitude of an ingredient effect. Like the
// game, strength math is single precision.
func Magnitude(base float32, flags uint32) uint32 {
	m := base
	if flags&flagNoMagnitude != 0 {
		m = 0
	}
	if flags&flagPowerAffectsMagnitude != 0 {
		m *= PowerFactor
	}
	return saturate32(math.Round(float64(m)))
}

// Duration returns the brewed duration of an ingredient effect.
func Duration(base uint32, flags uint32) uint32 {
	d := float32(base)
	if flags&flagNoDuration != 0 {
		d = 0
	}
	if flags&flagPowerAffectsDuration != 0 {
		d *= PowerFactor
	}
	return saturate32(math.Round(float64(d)))
}

// GoldValue returns the value of an effect of the given strength. A zero
// duration counts as ten seconds.
func GoldValue(magnitude, duration uint32, baseCost float32) uint16 {
	mag := float32(max(magnitude, 1))
	dur := float32(duration)
	if duration == 0 {
		dur = instantDuration
	}
	strength := float32(math.Pow(float64(mag*(dur/10)), goldExponent))
	return saturate16(float64(baseCost * strength))
}

func saturate32(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

func saturate16(v float64) uint16 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

// PotionEffect is an ingredient effect as it appears in a brewed potion.
type PotionEffect struct {
	MagicEffect *gamedata.MagicEffect
	Magnitude   uint32
	Duration    uint32
	Gold        uint16
}

// NewPotionEffect computes the strength and value of eff.
func NewPotionEffect(eff gamedata.Effect, mgef *gamedata.MagicEffect) PotionEffect {
	mag := Magnitude(eff.Magnitude, mgef.Flags)
	dur := Duration(eff.Duration, mgef.Flags)
	return PotionEffect{
		MagicEffect: mgef,
		Magnitude:   mag,
		Duration:    dur,
		Gold:        GoldValue(mag, dur, mgef.BaseCost),
	}
}

// Description fills the magnitude and duration into the effect description.
func (e PotionEffect) Description() string {
	return strings.NewReplacer(
		"<mag>", strconv.FormatUint(uint64(e.Magnitude), 10),
		"<dur>", strconv.FormatUint(uint64(e.Duration), 10),
	).Replace(e.MagicEffect.Description)
}
