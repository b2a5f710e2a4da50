package graph

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

const (
	snapshotMagic   = 0x57494B47
	snapshotVersion = 1

	// maxNameLen guards against reading a corrupted length prefix as a
	// multi-gigabyte allocation.
	maxNameLen = 1 << 20
)

// WriteSnapshot serializes the graph to path. The snapshot is a private
// cache: node ids, attributes and the edge set round-trip exactly, with
// no cross-build format guarantee beyond the version byte.
func (g *Graph) WriteSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create snapshot")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := g.encode(w); err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush snapshot")
	}
	return errors.Wrap(f.Sync(), "sync snapshot")
}

// ReadSnapshot deserializes a graph previously written by WriteSnapshot.
func ReadSnapshot(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	g, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "decode snapshot %s", path)
	}
	return g, nil
}

func (g *Graph) encode(w io.Writer) error {
	header := []any{
		uint32(snapshotMagic),
		uint8(snapshotVersion),
		[3]byte{},
		uint64(len(g.nodes)),
	}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	ids := g.NodeIDs()
	for _, id := range ids {
		attrs := g.nodes[id]
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
		annotated := uint8(0)
		if attrs != nil {
			annotated = 1
		}
		if err := binary.Write(w, binary.LittleEndian, annotated); err != nil {
			return err
		}
		if attrs == nil {
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, int64(attrs.PageCount)); err != nil {
			return err
		}
		name := []byte(attrs.Name)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return err
		}
		if _, err := w.Write(name); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(g.EdgeCount())); err != nil {
		return err
	}
	for _, parent := range ids {
		for _, child := range g.Successors(parent) {
			if err := binary.Write(w, binary.LittleEndian, parent); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func decode(r io.Reader) (*Graph, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if magic != snapshotMagic {
		return nil, errors.Errorf("invalid snapshot magic: %x", magic)
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if version != snapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version: %d", version)
	}
	var pad [3]byte
	if err := binary.Read(r, binary.LittleEndian, &pad); err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	var nodeCount uint64
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return nil, errors.Wrap(err, "read node count")
	}
	if nodeCount > math.MaxUint32 {
		return nil, errors.Errorf("implausible node count: %d", nodeCount)
	}

	g := New()
	for i := uint64(0); i < nodeCount; i++ {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, errors.Wrapf(err, "read node %d", i)
		}
		g.AddNode(id)

		var annotated uint8
		if err := binary.Read(r, binary.LittleEndian, &annotated); err != nil {
			return nil, errors.Wrapf(err, "read node %d", i)
		}
		if annotated == 0 {
			continue
		}
		var pageCount int64
		if err := binary.Read(r, binary.LittleEndian, &pageCount); err != nil {
			return nil, errors.Wrapf(err, "read node %d", i)
		}
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, errors.Wrapf(err, "read node %d", i)
		}
		if nameLen > maxNameLen {
			return nil, errors.Errorf("implausible name length: %d", nameLen)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, errors.Wrapf(err, "read node %d", i)
		}
		g.nodes[id] = &Attributes{Name: string(name), PageCount: int(pageCount)}
	}

	var edgeCount uint64
	if err := binary.Read(r, binary.LittleEndian, &edgeCount); err != nil {
		return nil, errors.Wrap(err, "read edge count")
	}
	for i := uint64(0); i < edgeCount; i++ {
		var parent, child int64
		if err := binary.Read(r, binary.LittleEndian, &parent); err != nil {
			return nil, errors.Wrapf(err, "read edge %d", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &child); err != nil {
			return nil, errors.Wrapf(err, "read edge %d", i)
		}
		if !g.AddEdge(parent, child) {
			return nil, errors.Errorf("edge %d references missing node (%d -> %d)", i, parent, child)
		}
	}
	return g, nil
}
