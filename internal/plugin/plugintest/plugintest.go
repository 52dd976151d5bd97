// Package plugintest builds plugin and strings file fixtures for tests.
package plugintest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"slices"
)

var le = binary.LittleEndian

// Sub encodes a subrecord. Data longer than a u16 is prefixed with an XXXX subrecord.
func Sub(typ string, data []byte) []byte {
	var buf bytes.Buffer
	if len(data) > math.MaxUint16 {
		buf.WriteString("XXXX")
		binary.Write(&buf, le, uint16(4))
		binary.Write(&buf, le, uint32(len(data)))
		buf.WriteString(typ)
		binary.Write(&buf, le, uint16(0))
	} else {
		buf.WriteString(typ)
		binary.Write(&buf, le, uint16(len(data)))
	}
	buf.Write(data)
	return buf.Bytes()
}

// Record encodes a record from its subrecords.
func Record(typ string, formID, flags uint32, subs ...[]byte) []byte {
	return record(typ, formID, flags, bytes.Join(subs, nil))
}

// CompressedRecord encodes a record whose data is zlib compressed.
func CompressedRecord(typ string, formID uint32, subs ...[]byte) []byte {
	raw := bytes.Join(subs, nil)
	var buf bytes.Buffer
	binary.Write(&buf, le, uint32(len(raw)))
	zw := zlib.NewWriter(&buf)
	zw.Write(raw)
	zw.Close()
	return record(typ, formID, 0x00040000, buf.Bytes())
}

func record(typ string, formID, flags uint32, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(typ)
	binary.Write(&buf, le, uint32(len(data)))
	binary.Write(&buf, le, flags)
	binary.Write(&buf, le, formID)
	binary.Write(&buf, le, uint32(0))
	binary.Write(&buf, le, uint16(44))
	binary.Write(&buf, le, uint16(0))
	buf.Write(data)
	return buf.Bytes()
}

// Group encodes a top level group holding the given records.
func Group(label string, records ...[]byte) []byte {
	body := bytes.Join(records, nil)
	var buf bytes.Buffer
	buf.WriteString("GRUP")
	binary.Write(&buf, le, uint32(24+len(body)))
	buf.WriteString(label)
	binary.Write(&buf, le, uint32(0))
	binary.Write(&buf, le, uint32(0))
	binary.Write(&buf, le, uint32(0))
	buf.Write(body)
	return buf.Bytes()
}

// Header encodes a TES4 record with the given flags and masters.
func Header(flags uint32, masters ...string) []byte {
	hedr := make([]byte, 12)
	le.PutUint32(hedr[0:4], math.Float32bits(1.71))
	subs := [][]byte{Sub("HEDR", hedr)}
	for _, m := range masters {
		subs = append(subs, Sub("MAST", ZString(m)), Sub("DATA", make([]byte, 8)))
	}
	return Record("TES4", 0, flags, subs...)
}

// Plugin joins a header with groups.
func Plugin(header []byte, groups ...[]byte) []byte {
	return append(slices.Clone(header), bytes.Join(groups, nil)...)
}

// ZString encodes s as a NUL terminated string.
func ZString(s string) []byte {
	return append([]byte(s), 0)
}

// U32 encodes v little endian.
func U32(v uint32) []byte {
	return le.AppendUint32(nil, v)
}

// EFIT encodes an ingredient effect's magnitude, area and duration.
func EFIT(magnitude float32, area, duration uint32) []byte {
	b := le.AppendUint32(nil, math.Float32bits(magnitude))
	b = le.AppendUint32(b, area)
	return le.AppendUint32(b, duration)
}

// MGEFData encodes the DATA subrecord of a magic effect. Only flags and base
// cost are meaningful to the parser; the rest is zero filled.
func MGEFData(flags uint32, baseCost float32) []byte {
	b := le.AppendUint32(nil, flags)
	b = le.AppendUint32(b, math.Float32bits(baseCost))
	return append(b, make([]byte, 144)...)
}

// Effect is an ingredient effect fixture.
type Effect struct {
	ID        uint32
	Magnitude float32
	Duration  uint32
}

// Ingredient encodes an INGR record with editor ID, name and effects.
func Ingredient(formID uint32, edid, name string, effects ...Effect) []byte {
	subs := [][]byte{Sub("EDID", ZString(edid))}
	if name != "" {
		subs = append(subs, Sub("FULL", ZString(name)))
	}
	subs = append(subs, Sub("DATA", make([]byte, 8)), Sub("ENIT", make([]byte, 8)))
	for _, e := range effects {
		subs = append(subs, Sub("EFID", U32(e.ID)), Sub("EFIT", EFIT(e.Magnitude, 0, e.Duration)))
	}
	return Record("INGR", formID, 0, subs...)
}

// MagicEffect encodes an MGEF record.
func MagicEffect(formID uint32, edid, name, description string, flags uint32, baseCost float32) []byte {
	subs := [][]byte{Sub("EDID", ZString(edid))}
	if name != "" {
		subs = append(subs, Sub("FULL", ZString(name)))
	}
	subs = append(subs, Sub("DATA", MGEFData(flags, baseCost)))
	if description != "" {
		subs = append(subs, Sub("DNAM", ZString(description)))
	}
	return Record("MGEF", formID, 0, subs...)
}

// Strings encodes a .strings file.
func Strings(entries map[uint32]string) []byte {
	return stringsFile(entries, false)
}

// DLStrings encodes a .dlstrings or .ilstrings file, whose entries carry a
// length prefix.
func DLStrings(entries map[uint32]string) []byte {
	return stringsFile(entries, true)
}

func stringsFile(entries map[uint32]string, prefixed bool) []byte {
	ids := make([]uint32, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	// Reverse order so readers cannot rely on a sorted directory.
	slices.Sort(ids)
	slices.Reverse(ids)

	var dir, data bytes.Buffer
	for _, id := range ids {
		binary.Write(&dir, le, id)
		binary.Write(&dir, le, uint32(data.Len()))
		if prefixed {
			binary.Write(&data, le, uint32(len(entries[id])+1))
		}
		data.WriteString(entries[id])
		data.WriteByte(0)
	}
	var buf bytes.Buffer
	binary.Write(&buf, le, uint32(len(ids)))
	binary.Write(&buf, le, uint32(data.Len()))
	buf.Write(dir.Bytes())
	buf.Write(data.Bytes())
	return buf.Bytes()
}
