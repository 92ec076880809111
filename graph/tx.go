package graph

import (
	"fmt"
	"maps"
)

// Tx is a pending set of graph mutations. It is only valid inside the
// function passed to Engine.Apply.
type Tx struct {
	format   formatChecker
	vertices map[uint64]Vertex
	up       map[uint64]uint64
	down     map[uint64]uint64
	changed  bool
}

type formatChecker func(v Vertex) error

func newTx(s *Snapshot, check formatChecker) *Tx {
	return &Tx{
		format:   check,
		vertices: maps.Clone(s.vertices),
		up:       maps.Clone(s.up),
		down:     maps.Clone(s.down),
	}
}

// Attach adds v. Attaching an attached vertex is a no-op.
func (tx *Tx) Attach(v Vertex) error {
	if v == nil {
		return ErrNilVertex
	}

	if _, ok := tx.vertices[v.VertexID()]; ok {
		return nil
	}

	err := tx.format(v)
	if err != nil {
		return err
	}

	tx.vertices[v.VertexID()] = v
	tx.changed = true

	return nil
}

// Detach removes v together with its edges. Detaching an unknown vertex is
// a no-op.
func (tx *Tx) Detach(v Vertex) {
	if v == nil {
		return
	}

	id := v.VertexID()
	if _, ok := tx.vertices[id]; !ok {
		return
	}

	if src, ok := tx.up[id]; ok {
		delete(tx.down, src)
		delete(tx.up, id)
	}

	if dst, ok := tx.down[id]; ok {
		delete(tx.up, dst)
		delete(tx.down, id)
	}

	delete(tx.vertices, id)
	tx.changed = true
}

// Connect wires src's output to dst's input, attaching either endpoint
// if needed. An existing edge leaving src or entering dst is replaced.
func (tx *Tx) Connect(src, dst Vertex) error {
	if src == nil || dst == nil {
		return ErrNilVertex
	}

	if !src.Format().Compatible(dst.Format()) {
		return fmt.Errorf("%w: %s -> %s", ErrIncompatibleFormat, src.Format(), dst.Format())
	}

	from, to := src.VertexID(), dst.VertexID()
	if cur, ok := tx.down[from]; ok && cur == to {
		return nil
	}

	if tx.reaches(to, from) {
		return fmt.Errorf("%w: %d -> %d", ErrCycle, from, to)
	}

	err := tx.Attach(src)
	if err != nil {
		return err
	}

	err = tx.Attach(dst)
	if err != nil {
		return err
	}

	if old, ok := tx.down[from]; ok {
		delete(tx.up, old)
	}

	if old, ok := tx.up[to]; ok {
		delete(tx.down, old)
	}

	tx.down[from] = to
	tx.up[to] = from
	tx.changed = true

	return nil
}

// Disconnect removes the edge src -> dst if it exists.
func (tx *Tx) Disconnect(src, dst Vertex) error {
	if src == nil || dst == nil {
		return ErrNilVertex
	}

	from, to := src.VertexID(), dst.VertexID()
	if _, ok := tx.vertices[from]; !ok {
		return fmt.Errorf("%w: %d", ErrNotAttached, from)
	}

	if _, ok := tx.vertices[to]; !ok {
		return fmt.Errorf("%w: %d", ErrNotAttached, to)
	}

	if cur, ok := tx.down[from]; ok && cur == to {
		delete(tx.down, from)
		delete(tx.up, to)
		tx.changed = true
	}

	return nil
}

// reaches reports whether walking downstream from start arrives at target.
func (tx *Tx) reaches(start, target uint64) bool {
	cur := start
	for range len(tx.down) + 1 {
		if cur == target {
			return true
		}

		next, ok := tx.down[cur]
		if !ok {
			return false
		}

		cur = next
	}

	return false
}
