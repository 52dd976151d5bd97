// Package bsa reads Bethesda archives used by Skyrim Special Edition
// (versions 104 and 105).
package bsa

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Supported archive versions.
const (
	VersionSkyrim   = 104
	VersionSkyrimSE = 105
)

// Archive flags.
const (
	FlagDirectoryNames  = 0x1
	FlagFileNames       = 0x2
	FlagCompressed      = 0x4
	FlagEmbeddedNames   = 0x100
	headerSize          = 36
	sizeCompressionBit  = 0x40000000
	sizeMask            = 0x3fffffff
	folderRecordSize104 = 16
	folderRecordSize105 = 24
)

var (
	ErrNotArchive         = errors.New("not a bsa archive")
	ErrUnsupportedVersion = errors.New("unsupported bsa version")
	ErrFileNotFound       = errors.New("file not found in archive")
)

var magic = [4]byte{'B', 'S', 'A', 0}

// Header is the fixed archive header.
type Header struct {
	Magic             [4]byte
	Version           uint32
	FolderOffset      uint32
	ArchiveFlags      uint32
	FolderCount       uint32
	FileCount         uint32
	FolderNamesLength uint32
	FileNamesLength   uint32
	FileFlags         uint32
}

// Folder is a directory inside the archive.
type Folder struct {
	Hash  uint64
	Name  string
	Files []File
}

// File describes a stored file. Offset is absolute within the archive.
type File struct {
	Hash       uint64
	Name       string
	Size       uint32
	Offset     uint32
	Compressed bool
}

// Archive is an open archive.
type Archive struct {
	Header  Header
	Folders []Folder

	r      io.ReaderAt
	closer io.Closer
}

// Open opens and indexes the archive at path.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	a, err := New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	a.closer = f
	return a, nil
}

// New indexes the archive read from r.
func New(r io.ReaderAt) (*Archive, error) {
	br := bufio.NewReader(io.NewSectionReader(r, 0, 1<<62))

	a := &Archive{r: r}
	if err := binary.Read(br, binary.LittleEndian, &a.Header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := a.Header
	if h.Magic != magic {
		return nil, ErrNotArchive
	}
	var recordSize int
	switch h.Version {
	case VersionSkyrim:
		recordSize = folderRecordSize104
	case VersionSkyrimSE:
		recordSize = folderRecordSize105
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if _, err := br.Discard(int(h.FolderOffset) - headerSize); err != nil {
		return nil, fmt.Errorf("skip to folder records: %w", err)
	}

	a.Folders = make([]Folder, h.FolderCount)
	counts := make([]uint32, h.FolderCount)
	rec := make([]byte, recordSize)
	for i := range a.Folders {
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, fmt.Errorf("read folder record %d: %w", i, err)
		}
		a.Folders[i].Hash = binary.LittleEndian.Uint64(rec[0:8])
		counts[i] = binary.LittleEndian.Uint32(rec[8:12])
	}

	var fileRec [16]byte
	for i := range a.Folders {
		if h.ArchiveFlags&FlagDirectoryNames != 0 {
			name, err := readBZString(br)
			if err != nil {
				return nil, fmt.Errorf("read folder name %d: %w", i, err)
			}
			a.Folders[i].Name = name
		}
		files := make([]File, counts[i])
		for j := range files {
			if _, err := io.ReadFull(br, fileRec[:]); err != nil {
				return nil, fmt.Errorf("read file record: %w", err)
			}
			size := binary.LittleEndian.Uint32(fileRec[8:12])
			files[j] = File{
				Hash:       binary.LittleEndian.Uint64(fileRec[0:8]),
				Size:       size & sizeMask,
				Offset:     binary.LittleEndian.Uint32(fileRec[12:16]),
				Compressed: (h.ArchiveFlags&FlagCompressed != 0) != (size&sizeCompressionBit != 0),
			}
		}
		a.Folders[i].Files = files
	}

	if h.ArchiveFlags&FlagFileNames != 0 {
		for i := range a.Folders {
			for j := range a.Folders[i].Files {
				name, err := br.ReadString(0)
				if err != nil {
					return nil, fmt.Errorf("read file names: %w", err)
				}
				a.Folders[i].Files[j].Name = strings.TrimSuffix(name, "\x00")
			}
		}
	}
	return a, nil
}

// readBZString reads a length-prefixed, NUL-terminated name.
func readBZString(r *bufio.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf, "\x00")), nil
}

// Close releases the underlying file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Find looks up a file by its path, ignoring case and slash direction.
func (a *Archive) Find(path string) (File, error) {
	path = strings.ReplaceAll(path, "/", `\`)
	dir, name := "", path
	if i := strings.LastIndexByte(path, '\\'); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	for _, folder := range a.Folders {
		if !strings.EqualFold(strings.ReplaceAll(folder.Name, "/", `\`), dir) {
			continue
		}
		for _, f := range folder.Files {
			if strings.EqualFold(f.Name, name) {
				return f, nil
			}
		}
	}
	return File{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
}

// Extract returns the decompressed contents of f.
func (a *Archive) Extract(f File) ([]byte, error) {
	data := make([]byte, f.Size)
	if _, err := a.r.ReadAt(data, int64(f.Offset)); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if a.Header.ArchiveFlags&FlagEmbeddedNames != 0 {
		if len(data) == 0 || int(data[0])+1 > len(data) {
			return nil, fmt.Errorf("read %s: truncated embedded name", f.Name)
		}
		data = data[int(data[0])+1:]
	}
	if !f.Compressed {
		return data, nil
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("read %s: truncated compressed block", f.Name)
	}
	original := binary.LittleEndian.Uint32(data[:4])

	var zr io.Reader
	switch a.Header.Version {
	case VersionSkyrimSE:
		zr = lz4.NewReader(bytes.NewReader(data[4:]))
	default:
		r, err := zlib.NewReader(bytes.NewReader(data[4:]))
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", f.Name, err)
		}
		defer r.Close()
		zr = r
	}
	out := make([]byte, original)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", f.Name, err)
	}
	return out, nil
}

// ExtractPath finds and extracts the file at path.
func (a *Archive) ExtractPath(path string) ([]byte, error) {
	f, err := a.Find(path)
	if err != nil {
		return nil, err
	}
	return a.Extract(f)
}
