package vectorindex

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"time"

	"github.com/engram-cortex/engram/internal/engramerr"
)

// Binary layout constants for .activations/vectors.bin (spec.md §6):
// 8-byte magic "ENGRVEC1", u32 version, u32 dimension, i64
// source_timestamp (Unix nanoseconds), u32 n_vectors, then per vector
// [u16 id_len][id][f32 x dim]. All integers little-endian.
const (
	magic         = "ENGRVEC1"
	formatVersion = 1
)

// Save persists v to path along with sourceTimestamp (the Neuronas
// directory's latest mtime at the time of the build), atomically.
func (v *VectorIndex) Save(path string, sourceTimestamp time.Time) error {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(formatVersion))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(v.dim))
	_ = binary.Write(&buf, binary.LittleEndian, sourceTimestamp.UnixNano())
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(v.ids)))

	for _, id := range v.ids {
		_ = binary.Write(&buf, binary.LittleEndian, uint16(len(id)))
		buf.WriteString(id)
		for _, f := range v.vectors[id] {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check directory permissions", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check disk space", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check disk space", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check disk space", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check directory permissions", err)
	}
	return nil
}

// Load reads a vectors.bin file, returning the index and the stored
// source timestamp for the caller to compare against directory mtime.
func Load(path string) (*VectorIndex, time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, engramerr.Wrap(engramerr.KindIO, engramerr.IDFileNotFound, path, "run `engram sync` to rebuild vectors", err)
	}

	r := bufio.NewReader(bytes.NewReader(data))

	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, magicBuf); err != nil || string(magicBuf) != magic {
		return nil, time.Time{}, engramerr.New(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild")
	}

	var version, dim, n uint32
	var sourceTS int64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil || version != formatVersion {
		return nil, time.Time{}, engramerr.New(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild")
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, time.Time{}, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &sourceTS); err != nil {
		return nil, time.Time{}, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, time.Time{}, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
	}

	idx := New(int(dim))
	for i := uint32(0); i < n; i++ {
		var idLen uint16
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, time.Time{}, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, time.Time{}, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
		}
		vec := make([]float32, dim)
		for j := uint32(0); j < dim; j++ {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return nil, time.Time{}, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
			}
			vec[j] = math.Float32frombits(bits)
		}
		_ = idx.AddVector(string(idBytes), vec)
	}

	return idx, time.Unix(0, sourceTS).UTC(), nil
}
