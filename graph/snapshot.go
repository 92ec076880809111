package graph

import (
	"fmt"
	"slices"
)

// Edge is a connection from one vertex's output to another vertex's input.
type Edge struct {
	From uint64
	To   uint64
}

// Snapshot is an immutable view of the graph topology. The render context
// only ever sees complete snapshots: every edge endpoint in a snapshot is
// attached in that same snapshot.
type Snapshot struct {
	version  uint64
	vertices map[uint64]Vertex
	up       map[uint64]uint64 // dst -> src
	down     map[uint64]uint64 // src -> dst
	order    []Vertex          // topological
}

var emptySnapshot = &Snapshot{
	vertices: map[uint64]Vertex{},
	up:       map[uint64]uint64{},
	down:     map[uint64]uint64{},
}

// Version increments with every published mutation.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Len returns the number of attached vertices.
func (s *Snapshot) Len() int {
	return len(s.vertices)
}

// Contains reports whether the vertex with id is attached.
func (s *Snapshot) Contains(id uint64) bool {
	_, ok := s.vertices[id]
	return ok
}

// Upstream returns the vertex feeding id, if any.
func (s *Snapshot) Upstream(id uint64) (uint64, bool) {
	src, ok := s.up[id]
	return src, ok
}

// Downstream returns the vertex fed by id, if any.
func (s *Snapshot) Downstream(id uint64) (uint64, bool) {
	dst, ok := s.down[id]
	return dst, ok
}

// Order returns vertex ids in processing order.
func (s *Snapshot) Order() []uint64 {
	out := make([]uint64, len(s.order))
	for i, v := range s.order {
		out[i] = v.VertexID()
	}

	return out
}

// Edges returns all edges sorted by source id.
func (s *Snapshot) Edges() []Edge {
	out := make([]Edge, 0, len(s.down))
	for src, dst := range s.down {
		out = append(out, Edge{From: src, To: dst})
	}

	slices.SortFunc(out, func(a, b Edge) int {
		switch {
		case a.From < b.From:
			return -1
		case a.From > b.From:
			return 1
		default:
			return 0
		}
	})

	return out
}

// Validate checks that every edge references attached vertices and that
// the up/down indexes agree.
func (s *Snapshot) Validate() error {
	for src, dst := range s.down {
		if !s.Contains(src) || !s.Contains(dst) {
			return fmt.Errorf("%w: edge %d->%d", ErrNotAttached, src, dst)
		}

		if back, ok := s.up[dst]; !ok || back != src {
			return fmt.Errorf("graph: edge %d->%d missing from upstream index", src, dst)
		}
	}

	if len(s.up) != len(s.down) {
		return fmt.Errorf("graph: index size mismatch up=%d down=%d", len(s.up), len(s.down))
	}

	return nil
}

// compile sorts the vertices topologically (Kahn's algorithm) and returns
// the finished snapshot.
func compile(version uint64, vertices map[uint64]Vertex, up, down map[uint64]uint64) (*Snapshot, error) {
	ids := make([]uint64, 0, len(vertices))
	for id := range vertices {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	queue := make([]uint64, 0, len(ids))

	for _, id := range ids {
		if _, ok := up[id]; !ok {
			queue = append(queue, id)
		}
	}

	order := make([]Vertex, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		order = append(order, vertices[id])
		if dst, ok := down[id]; ok {
			queue = append(queue, dst)
		}
	}

	if len(order) != len(vertices) {
		return nil, fmt.Errorf("%w: %d of %d vertices unreachable", ErrCycle, len(vertices)-len(order), len(vertices))
	}

	s := &Snapshot{
		version:  version,
		vertices: vertices,
		up:       up,
		down:     down,
		order:    order,
	}

	return s, s.Validate()
}
