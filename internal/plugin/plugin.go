// Package plugin parses the ingredient and magic effect records of Skyrim
// Special Edition plugin files.
package plugin

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Header flags of the TES4 record.
const (
	FlagMaster    = 0x1
	FlagLocalized = 0x80
	FlagLight     = 0x200
)

// FormID identifies a record by the plugin that defines it and its local ID.
type FormID struct {
	Plugin string
	ID     uint32
}

func (f FormID) String() string {
	return fmt.Sprintf("%s:%06X", f.Plugin, f.ID)
}

// Compare orders form IDs by plugin name, then ID.
func (f FormID) Compare(o FormID) int {
	if c := cmp.Compare(f.Plugin, o.Plugin); c != 0 {
		return c
	}
	return cmp.Compare(f.ID, o.ID)
}

// Plugin is a parsed plugin file.
type Plugin struct {
	Name        string
	Flags       uint32
	Version     float32
	RecordCount uint32
	Masters     []string

	Ingredients  []Ingredient
	MagicEffects []MagicEffect

	strings map[StringsKind]stringsLookup
	log     *zap.Logger
}

type stringsLookup interface {
	Lookup(id uint32) (string, error)
}

func (p *Plugin) IsMaster() bool    { return p.Flags&FlagMaster != 0 }
func (p *Plugin) IsLocalized() bool { return p.Flags&FlagLocalized != 0 }
func (p *Plugin) IsLight() bool     { return p.Flags&FlagLight != 0 }

// ResolveFormID maps a raw form ID to the plugin owning it. The top byte
// indexes the plugin's masters; one past the last master is the plugin itself.
func (p *Plugin) ResolveFormID(raw uint32) (FormID, error) {
	index := int(raw >> 24)
	id := raw & 0x00ffffff
	switch {
	case index < len(p.Masters):
		return FormID{Plugin: p.Masters[index], ID: id}, nil
	case index == len(p.Masters):
		return FormID{Plugin: p.Name, ID: id}, nil
	}
	return FormID{}, fmt.Errorf("form ID %08X: master index %d out of range (%d masters)", raw, index, len(p.Masters))
}

// lstring decodes a localizable string field. Localized plugins store an ID
// into the strings file of the given kind; an ID missing from that file
// decodes to the empty string.
func (p *Plugin) lstring(b []byte, kind StringsKind) (string, error) {
	if !p.IsLocalized() {
		return zstring(b), nil
	}
	if len(b) < 4 {
		return "", fmt.Errorf("string ID: %w", ErrTruncated)
	}
	id := binary.LittleEndian.Uint32(b)
	if id == 0 {
		return "", nil
	}
	s, err := p.strings[kind].Lookup(id)
	if errors.Is(err, ErrStringNotFound) {
		p.log.Warn("localized string not found",
			zap.String("plugin", p.Name),
			zap.String("file", kind.Extension()),
			zap.Uint32("id", id))
		return "", nil
	}
	return s, err
}

// Parser reads plugins from a game's Data directory.
type Parser struct {
	DataDir string
	Log     *zap.Logger
}

// NewParser returns a parser for plugins in dataDir.
func NewParser(dataDir string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{DataDir: dataDir, Log: log}
}

// ParseFile reads and parses the named plugin.
func (ps *Parser) ParseFile(name string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(ps.DataDir, name))
	if err != nil {
		return nil, fmt.Errorf("read plugin: %w", err)
	}
	return ps.Parse(name, data)
}

// ParseHeader decodes only the TES4 header of the plugin.
func (ps *Parser) ParseHeader(name string, data []byte) (*Plugin, []byte, error) {
	rec, rest, err := readRecord(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s header: %w", name, err)
	}
	if rec.Header.Type != typeTES4 {
		return nil, nil, fmt.Errorf("parse %s header: expected TES4, found %q", name, rec.Header.Type.String())
	}
	p := &Plugin{Name: name, Flags: rec.Header.Flags, log: ps.Log}
	for _, s := range rec.Subrecords {
		switch s.Type {
		case typeHEDR:
			if len(s.Data) >= 8 {
				p.Version = math.Float32frombits(binary.LittleEndian.Uint32(s.Data[0:4]))
				p.RecordCount = binary.LittleEndian.Uint32(s.Data[4:8])
			}
		case typeMAST:
			p.Masters = append(p.Masters, zstring(s.Data))
		}
	}
	if p.IsLocalized() {
		p.strings = map[StringsKind]stringsLookup{
			KindStrings:   NewStringsTable(name, ps.DataDir, KindStrings),
			KindDLStrings: NewStringsTable(name, ps.DataDir, KindDLStrings),
		}
	}
	return p, rest, nil
}

// Parse decodes the header, ingredients and magic effects of the plugin.
func (ps *Parser) Parse(name string, data []byte) (*Plugin, error) {
	p, rest, err := ps.ParseHeader(name, data)
	if err != nil {
		return nil, err
	}

	for len(rest) > 0 {
		h, err := readGroupHeader(rest)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if uint64(len(rest)) < uint64(h.Size) {
			return nil, fmt.Errorf("parse %s: group %s: %w", name, h.Label, ErrTruncated)
		}
		body := rest[groupHeaderSize:h.Size]
		rest = rest[h.Size:]

		switch h.Label {
		case typeINGR, typeMGEF:
			if err := p.readGroup(h.Label, body); err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
		}
	}

	ps.Log.Debug("parsed plugin",
		zap.String("plugin", name),
		zap.Int("masters", len(p.Masters)),
		zap.Int("ingredients", len(p.Ingredients)),
		zap.Int("magic_effects", len(p.MagicEffects)))
	return p, nil
}

func (p *Plugin) readGroup(label Type, b []byte) error {
	for len(b) > 0 {
		if len(b) >= 4 && Type(b[0:4]) == typeGRUP {
			h, err := readGroupHeader(b)
			if err != nil {
				return err
			}
			if uint64(len(b)) < uint64(h.Size) {
				return fmt.Errorf("group %s: %w", h.Label, ErrTruncated)
			}
			b = b[h.Size:]
			continue
		}

		rec, rest, err := readRecord(b)
		if err != nil {
			return err
		}
		b = rest
		if rec.Header.Type != label {
			continue
		}

		switch label {
		case typeINGR:
			ing, err := p.parseIngredient(&rec)
			if err != nil {
				return fmt.Errorf("ingredient %08X: %w", rec.Header.FormID, err)
			}
			p.Ingredients = append(p.Ingredients, ing)
		case typeMGEF:
			mgef, err := p.parseMagicEffect(&rec)
			if err != nil {
				return fmt.Errorf("magic effect %08X: %w", rec.Header.FormID, err)
			}
			p.MagicEffects = append(p.MagicEffects, mgef)
		}
	}
	return nil
}
