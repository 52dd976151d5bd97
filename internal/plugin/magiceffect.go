package plugin

import (
	"encoding/binary"
	"math"
)

const flagHostile = 0x1

// MagicEffect is an MGEF record.
type MagicEffect struct {
	FormID      FormID
	EditorID    string
	Name        string
	Description string
	Flags       uint32
	Hostile     bool
	BaseCost    float32
}

// DisplayName is the effect's name, or its editor ID when unnamed.
func (m *MagicEffect) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.EditorID
}

func (p *Plugin) parseMagicEffect(rec *Record) (MagicEffect, error) {
	id, err := p.ResolveFormID(rec.Header.FormID)
	if err != nil {
		return MagicEffect{}, err
	}
	m := MagicEffect{FormID: id}

	edid, ok := rec.Find(typeEDID)
	if !ok {
		return MagicEffect{}, ErrMissingEditorID
	}
	m.EditorID = zstring(edid.Data)

	if full, ok := rec.Find(typeFULL); ok {
		if m.Name, err = p.lstring(full.Data, KindStrings); err != nil {
			return MagicEffect{}, err
		}
	}
	if dnam, ok := rec.Find(typeDNAM); ok {
		if m.Description, err = p.lstring(dnam.Data, KindDLStrings); err != nil {
			return MagicEffect{}, err
		}
	}

	data, ok := rec.Find(typeDATA)
	if !ok {
		return MagicEffect{}, ErrMissingData
	}
	if len(data.Data) < 8 {
		return MagicEffect{}, ErrTruncated
	}
	m.Flags = binary.LittleEndian.Uint32(data.Data[0:4])
	m.BaseCost = math.Float32frombits(binary.LittleEndian.Uint32(data.Data[4:8]))
	m.Hostile = m.Flags&flagHostile != 0
	return m, nil
}
