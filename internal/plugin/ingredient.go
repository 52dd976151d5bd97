package plugin

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"
)

var (
	ErrMissingEditorID = errors.New("record is missing editor ID")
	ErrMissingData     = errors.New("record is missing data")
	ErrEffectOrder     = errors.New("EFIT appeared before EFID")
)

// Ingredient is an INGR record.
type Ingredient struct {
	FormID   FormID
	EditorID string
	Name     string
	Effects  []IngredientEffect
}

// IngredientEffect is one effect of an ingredient.
type IngredientEffect struct {
	FormID    FormID
	Magnitude float32
	Area      uint32
	Duration  uint32
}

// DisplayName is the ingredient's name, or its editor ID when unnamed.
func (i *Ingredient) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.EditorID
}

func (p *Plugin) parseIngredient(rec *Record) (Ingredient, error) {
	id, err := p.ResolveFormID(rec.Header.FormID)
	if err != nil {
		return Ingredient{}, err
	}
	ing := Ingredient{FormID: id}

	edid, ok := rec.Find(typeEDID)
	if !ok {
		return Ingredient{}, ErrMissingEditorID
	}
	ing.EditorID = zstring(edid.Data)

	if full, ok := rec.Find(typeFULL); ok {
		if ing.Name, err = p.lstring(full.Data, KindStrings); err != nil {
			return Ingredient{}, err
		}
	}

	// Effects follow ENIT as EFID/EFIT pairs.
	seenENIT := false
	var current *FormID
	for _, s := range rec.Subrecords {
		if !seenENIT {
			seenENIT = s.Type == typeENIT
			continue
		}
		switch s.Type {
		case typeEFID:
			if len(s.Data) < 4 {
				return Ingredient{}, ErrTruncated
			}
			efid, err := p.ResolveFormID(binary.LittleEndian.Uint32(s.Data))
			if err != nil {
				return Ingredient{}, err
			}
			current = &efid
		case typeEFIT:
			if current == nil {
				return Ingredient{}, ErrEffectOrder
			}
			if len(s.Data) < 12 {
				return Ingredient{}, ErrTruncated
			}
			ing.Effects = append(ing.Effects, IngredientEffect{
				FormID:    *current,
				Magnitude: math.Float32frombits(binary.LittleEndian.Uint32(s.Data[0:4])),
				Area:      binary.LittleEndian.Uint32(s.Data[4:8]),
				Duration:  binary.LittleEndian.Uint32(s.Data[8:12]),
			})
			current = nil
		}
	}

	slices.SortStableFunc(ing.Effects, func(a, b IngredientEffect) int {
		return a.FormID.Compare(b.FormID)
	})
	return ing, nil
}
