package chain

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// cacheMagic identifies a tmclust binary chain cache file.
const cacheMagic uint32 = 0x544d4331 // "TMC1"

// CacheFile is a read-only, mmap-backed binary chain cache: a second run
// over the same structure set can reopen one of these instead of
// re-parsing PDB text, grounded on the teacher's use of
// github.com/edsrzf/mmap-go to map its .unik index files in
// kmcp/cmd/util-db.go's NewUnixIndex.
//
// Layout: a small header (magic, count, label-blob size), one fixed-size
// directory entry per chain (id, molType, coord offset/length, label
// offset/length), then the label blob, then a flat region of float64
// x,y,z triples for every chain back to back.
type CacheFile struct {
	f         *os.File
	m         mmap.MMap
	dir       []cacheEntry
	labelBase int64 // byte offset where the label blob starts
	coordBase int64 // byte offset where the coordinate region starts
}

type cacheEntry struct {
	id          int32
	molType     int32
	coordOffset int64 // residue offset into the shared coordinate region
	length      int32
	labelOffset int64 // byte offset into the label blob
	labelLen    int32
}

const dirEntrySize = 4 + 4 + 8 + 4 + 8 + 4
const headerSize = 4 + 4 + 8 // magic, count, labelBlobSize

// WriteCache serialises t to path in the binary cache layout. Intended to
// run once after a full parse, so later invocations on the same input can
// skip ReadPDB entirely.
func WriteCache(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating cache %s", path)
	}
	defer f.Close()
	bw := bufio.NewWriterSize(f, BufferSize)

	var labelBlobSize int64
	for _, rec := range t {
		labelBlobSize += int64(len(rec.Label))
	}

	if err := binary.Write(bw, binary.LittleEndian, cacheMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(t))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, labelBlobSize); err != nil {
		return err
	}

	var coordOffset, labelOffset int64
	for _, rec := range t {
		entry := cacheEntry{
			id:          int32(rec.Id),
			molType:     int32(rec.MolType),
			coordOffset: coordOffset,
			length:      int32(rec.Length()),
			labelOffset: labelOffset,
			labelLen:    int32(len(rec.Label)),
		}
		if err := writeCacheEntry(bw, entry); err != nil {
			return err
		}
		coordOffset += int64(rec.Length())
		labelOffset += int64(len(rec.Label))
	}

	for _, rec := range t {
		if _, err := bw.WriteString(rec.Label); err != nil {
			return err
		}
	}

	for _, rec := range t {
		for _, p := range rec.Coords {
			if err := binary.Write(bw, binary.LittleEndian, p.X); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, p.Y); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, p.Z); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeCacheEntry(w *bufio.Writer, e cacheEntry) error {
	if err := binary.Write(w, binary.LittleEndian, e.id); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.molType); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.coordOffset); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.length); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.labelOffset); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, e.labelLen)
}

// OpenCache mmaps path read-only and parses its directory, without loading
// any coordinate data yet; Chain materialises individual records on
// demand.
func OpenCache(path string) (*CacheFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", path)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mmapping cache %s", path)
	}

	cf := &CacheFile{f: f, m: m}
	if err := cf.parseHeader(); err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}
	return cf, nil
}

func (cf *CacheFile) parseHeader() error {
	b := []byte(cf.m)
	if len(b) < headerSize {
		return errors.New("cache file too small")
	}
	if binary.LittleEndian.Uint32(b[0:4]) != cacheMagic {
		return errors.New("not a tmclust cache file")
	}
	n := int(int32(binary.LittleEndian.Uint32(b[4:8])))
	labelBlobSize := int64(binary.LittleEndian.Uint64(b[8:16]))
	cf.dir = make([]cacheEntry, n)

	pos := headerSize
	for i := 0; i < n; i++ {
		if pos+dirEntrySize > len(b) {
			return errors.New("truncated cache directory")
		}
		e := cacheEntry{
			id:          int32(binary.LittleEndian.Uint32(b[pos : pos+4])),
			molType:     int32(binary.LittleEndian.Uint32(b[pos+4 : pos+8])),
			coordOffset: int64(binary.LittleEndian.Uint64(b[pos+8 : pos+16])),
			length:      int32(binary.LittleEndian.Uint32(b[pos+16 : pos+20])),
			labelOffset: int64(binary.LittleEndian.Uint64(b[pos+20 : pos+28])),
			labelLen:    int32(binary.LittleEndian.Uint32(b[pos+28 : pos+32])),
		}
		cf.dir[i] = e
		pos += dirEntrySize
	}
	cf.labelBase = int64(pos)
	cf.coordBase = cf.labelBase + labelBlobSize
	return nil
}

// NumChains returns the number of directory entries in the cache.
func (cf *CacheFile) NumChains() int {
	return len(cf.dir)
}

// Chain reconstructs the i'th record's label and coordinates from the
// mapped region. SeqCodes is not preserved by the cache and is left nil
// on the returned record; SecCodes is recomputed from the restored
// coordinates.
func (cf *CacheFile) Chain(i int) (*Record, error) {
	if i < 0 || i >= len(cf.dir) {
		return nil, errors.New("cache chain index out of range")
	}
	e := cf.dir[i]
	b := []byte(cf.m)

	labelStart := cf.labelBase + e.labelOffset
	labelEnd := labelStart + int64(e.labelLen)
	if labelEnd > int64(len(b)) {
		return nil, errors.New("cache label blob truncated")
	}
	label := string(b[labelStart:labelEnd])

	start := cf.coordBase + e.coordOffset*24
	end := start + int64(e.length)*24
	if end > int64(len(b)) {
		return nil, errors.New("cache coordinate region truncated")
	}

	coords := make([]Point3, e.length)
	for j := range coords {
		off := start + int64(j)*24
		coords[j] = Point3{
			X: math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(b[off+8 : off+16])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(b[off+16 : off+24])),
		}
	}

	rec := &Record{Id: int(e.id), MolType: int(e.molType), Label: label}
	rec.SetCoords(coords)
	rec.SecCodes = AssignSecondaryStructure(coords)
	return rec, nil
}

// Close unmaps the cache and closes the underlying file.
func (cf *CacheFile) Close() error {
	if err := cf.m.Unmap(); err != nil {
		return err
	}
	return cf.f.Close()
}
