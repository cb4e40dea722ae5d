package graph

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/logging"
)

// Binary layout constants for .activations/graph.idx (spec.md §6):
// 8-byte magic "ENGRGRPH", u32 version, u32 node count, then per node
// [u16 id_len][id][u32 edge_count]{[u16 target_len][target][u8 weight]}.
// All integers little-endian. Reverse edges are derived at load time, not
// stored.
const (
	magic          = "ENGRGRPH"
	formatVersion  = 1
	maxWeightValue = 100
)

var idxLog = logging.Get(logging.CategoryGraph)

// Save persists g's forward adjacency to path using the graph.idx binary
// layout.
func (g *Graph) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(formatVersion))

	nodes := g.Nodes()
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(nodes)))

	for _, id := range nodes {
		writeString16(&buf, id)
		edges := g.forward[id]
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(edges)))
		for _, e := range edges {
			writeString16(&buf, e.Target)
			w := e.Weight
			if w < 0 {
				w = 0
			}
			if w > maxWeightValue {
				w = maxWeightValue
			}
			buf.WriteByte(byte(w))
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

// Load reads a graph.idx file written by Save. A malformed or unreadable
// file is treated as "missing" per spec.md §4.2 ("load failure -> treat
// as missing, rebuild on next sync") — callers should fall back to an
// empty *Graph and a rebuild, not propagate the error as fatal.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDFileNotFound, path, "run `engram sync` to rebuild the index", err)
	}

	r := bufio.NewReader(bytes.NewReader(data))

	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, magicBuf); err != nil || string(magicBuf) != magic {
		idxLog.Warn("load %s: bad magic, treating as missing", path)
		return nil, engramerr.New(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild")
	}

	var version, nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
	}
	if version != formatVersion {
		idxLog.Warn("load %s: unsupported version %d", path, version)
		return nil, engramerr.New(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild")
	}
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
	}

	g := New()
	for i := uint32(0); i < nodeCount; i++ {
		id, err := readString16(r)
		if err != nil {
			return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
		}
		g.AddNode(id)

		var edgeCount uint32
		if err := binary.Read(r, binary.LittleEndian, &edgeCount); err != nil {
			return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
		}
		for j := uint32(0); j < edgeCount; j++ {
			target, err := readString16(r)
			if err != nil {
				return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
			}
			weightByte, err := r.ReadByte()
			if err != nil {
				return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "run `engram sync --force` to rebuild", err)
			}
			g.AddEdge(id, target, int(weightByte))
		}
	}
	return g, nil
}

func writeString16(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString16(r *bufio.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
