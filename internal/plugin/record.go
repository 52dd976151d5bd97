package plugin

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	recordHeaderSize    = 24
	groupHeaderSize     = 24
	subrecordHeaderSize = 6

	flagCompressed = 0x00040000
)

// Type is a four character record, group or subrecord code.
type Type [4]byte

func (t Type) String() string {
	return string(t[:])
}

var (
	typeTES4 = Type{'T', 'E', 'S', '4'}
	typeGRUP = Type{'G', 'R', 'U', 'P'}
	typeXXXX = Type{'X', 'X', 'X', 'X'}
	typeINGR = Type{'I', 'N', 'G', 'R'}
	typeMGEF = Type{'M', 'G', 'E', 'F'}
	typeHEDR = Type{'H', 'E', 'D', 'R'}
	typeMAST = Type{'M', 'A', 'S', 'T'}
	typeEDID = Type{'E', 'D', 'I', 'D'}
	typeFULL = Type{'F', 'U', 'L', 'L'}
	typeENIT = Type{'E', 'N', 'I', 'T'}
	typeEFID = Type{'E', 'F', 'I', 'D'}
	typeEFIT = Type{'E', 'F', 'I', 'T'}
	typeDNAM = Type{'D', 'N', 'A', 'M'}
	typeDATA = Type{'D', 'A', 'T', 'A'}
)

var ErrTruncated = errors.New("unexpected end of data")

// RecordHeader is the fixed header preceding every record.
type RecordHeader struct {
	Type           Type
	Size           uint32
	Flags          uint32
	FormID         uint32
	VersionControl uint32
	Version        uint16
	Unknown        uint16
}

// Compressed reports whether the record data is zlib compressed.
func (h RecordHeader) Compressed() bool {
	return h.Flags&flagCompressed != 0
}

// Subrecord is a typed field of a record.
type Subrecord struct {
	Type Type
	Data []byte
}

// Record is a decoded record with its subrecords.
type Record struct {
	Header     RecordHeader
	Subrecords []Subrecord
}

// Find returns the first subrecord of type t.
func (r *Record) Find(t Type) (Subrecord, bool) {
	for _, s := range r.Subrecords {
		if s.Type == t {
			return s, true
		}
	}
	return Subrecord{}, false
}

// GroupHeader is the fixed header of a GRUP. Size includes the header.
type GroupHeader struct {
	Type      Type
	Size      uint32
	Label     Type
	GroupType uint32
	Stamp     uint16
	Unknown1  uint16
	Version   uint16
	Unknown2  uint16
}

func readRecordHeader(b []byte) (RecordHeader, error) {
	var h RecordHeader
	if len(b) < recordHeaderSize {
		return h, fmt.Errorf("record header: %w", ErrTruncated)
	}
	copy(h.Type[:], b[0:4])
	h.Size = binary.LittleEndian.Uint32(b[4:8])
	h.Flags = binary.LittleEndian.Uint32(b[8:12])
	h.FormID = binary.LittleEndian.Uint32(b[12:16])
	h.VersionControl = binary.LittleEndian.Uint32(b[16:20])
	h.Version = binary.LittleEndian.Uint16(b[20:22])
	h.Unknown = binary.LittleEndian.Uint16(b[22:24])
	return h, nil
}

func readGroupHeader(b []byte) (GroupHeader, error) {
	var h GroupHeader
	if len(b) < groupHeaderSize {
		return h, fmt.Errorf("group header: %w", ErrTruncated)
	}
	copy(h.Type[:], b[0:4])
	h.Size = binary.LittleEndian.Uint32(b[4:8])
	copy(h.Label[:], b[8:12])
	h.GroupType = binary.LittleEndian.Uint32(b[12:16])
	h.Stamp = binary.LittleEndian.Uint16(b[16:18])
	h.Unknown1 = binary.LittleEndian.Uint16(b[18:20])
	h.Version = binary.LittleEndian.Uint16(b[20:22])
	h.Unknown2 = binary.LittleEndian.Uint16(b[22:24])
	if h.Type != typeGRUP {
		return h, fmt.Errorf("expected GRUP, found %q", h.Type.String())
	}
	if h.Size < groupHeaderSize {
		return h, fmt.Errorf("group %s: size %d smaller than header", h.Label, h.Size)
	}
	return h, nil
}

// readRecord decodes the record at the start of b and returns the remaining bytes.
func readRecord(b []byte) (Record, []byte, error) {
	h, err := readRecordHeader(b)
	if err != nil {
		return Record{}, nil, err
	}
	b = b[recordHeaderSize:]
	if uint64(len(b)) < uint64(h.Size) {
		return Record{}, nil, fmt.Errorf("record %s %08X: %w", h.Type, h.FormID, ErrTruncated)
	}
	data, rest := b[:h.Size], b[h.Size:]

	if h.Compressed() {
		data, err = decompress(data)
		if err != nil {
			return Record{}, nil, fmt.Errorf("record %s %08X: %w", h.Type, h.FormID, err)
		}
	}
	subs, err := readSubrecords(data)
	if err != nil {
		return Record{}, nil, fmt.Errorf("record %s %08X: %w", h.Type, h.FormID, err)
	}
	return Record{Header: h, Subrecords: subs}, rest, nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("compressed data: %w", ErrTruncated)
	}
	size := binary.LittleEndian.Uint32(data[:4])
	zr, err := zlib.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	defer zr.Close()
	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

func readSubrecords(b []byte) ([]Subrecord, error) {
	var subs []Subrecord
	var override uint32
	for len(b) > 0 {
		if len(b) < subrecordHeaderSize {
			return nil, fmt.Errorf("subrecord header: %w", ErrTruncated)
		}
		var t Type
		copy(t[:], b[0:4])
		size := uint32(binary.LittleEndian.Uint16(b[4:6]))
		if override != 0 {
			size, override = override, 0
		}
		b = b[subrecordHeaderSize:]
		if uint64(len(b)) < uint64(size) {
			return nil, fmt.Errorf("subrecord %s: %w", t, ErrTruncated)
		}
		data := b[:size]
		b = b[size:]

		if t == typeXXXX {
			if len(data) < 4 {
				return nil, fmt.Errorf("subrecord XXXX: %w", ErrTruncated)
			}
			override = binary.LittleEndian.Uint32(data)
			continue
		}
		subs = append(subs, Subrecord{Type: t, Data: data})
	}
	return subs, nil
}
