package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// leafSize is the maximum triangle count stored in a tree leaf.
const leafSize = 4

type aabb struct {
	min, max r3.Vec
}

func (b *aabb) extend(p r3.Vec) {
	b.min.X = math.Min(b.min.X, p.X)
	b.min.Y = math.Min(b.min.Y, p.Y)
	b.min.Z = math.Min(b.min.Z, p.Z)
	b.max.X = math.Max(b.max.X, p.X)
	b.max.Y = math.Max(b.max.Y, p.Y)
	b.max.Z = math.Max(b.max.Z, p.Z)
}

// slab tests the ray against the box, returning the entry distance and
// whether the box is hit at a non-negative parameter.
func (b *aabb) slab(origin, invDir r3.Vec) (float64, bool) {
	t1 := (b.min.X - origin.X) * invDir.X
	t2 := (b.max.X - origin.X) * invDir.X
	tmin := math.Min(t1, t2)
	tmax := math.Max(t1, t2)

	t1 = (b.min.Y - origin.Y) * invDir.Y
	t2 = (b.max.Y - origin.Y) * invDir.Y
	tmin = math.Max(tmin, math.Min(t1, t2))
	tmax = math.Min(tmax, math.Max(t1, t2))

	t1 = (b.min.Z - origin.Z) * invDir.Z
	t2 = (b.max.Z - origin.Z) * invDir.Z
	tmin = math.Max(tmin, math.Min(t1, t2))
	tmax = math.Min(tmax, math.Max(t1, t2))

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

type aabbNode struct {
	box         aabb
	left, right int   // Child node indices, -1 for leaves
	tris        []int // Triangle indices, leaves only
}

// aabbTree is a static axis-aligned bounding box tree built by median split
// on the longest centroid axis. It answers nearest-hit ray queries; the
// nearest intersection along the ray wins.
type aabbTree struct {
	nodes []aabbNode
	root  int
}

func newAABBTree(m *TriMesh) *aabbTree {
	tris := make([]int, 0, len(m.faces))
	for ti := range m.faces {
		if !m.degenerate[ti] {
			tris = append(tris, ti)
		}
	}
	t := &aabbTree{root: -1}
	if len(tris) > 0 {
		t.root = t.build(m, tris)
	}
	return t
}

func triBox(m *TriMesh, ti int) aabb {
	f := m.faces[ti]
	b := aabb{min: m.verts[f[0]], max: m.verts[f[0]]}
	b.extend(m.verts[f[1]])
	b.extend(m.verts[f[2]])
	return b
}

func (t *aabbTree) build(m *TriMesh, tris []int) int {
	box := triBox(m, tris[0])
	for _, ti := range tris[1:] {
		tb := triBox(m, ti)
		box.extend(tb.min)
		box.extend(tb.max)
	}

	idx := len(t.nodes)
	if len(tris) <= leafSize {
		t.nodes = append(t.nodes, aabbNode{box: box, left: -1, right: -1, tris: tris})
		return idx
	}

	// Split at the median centroid along the longest box axis.
	ext := r3.Sub(box.max, box.min)
	axis := func(p r3.Vec) float64 { return p.X }
	if ext.Y > ext.X && ext.Y >= ext.Z {
		axis = func(p r3.Vec) float64 { return p.Y }
	} else if ext.Z > ext.X && ext.Z > ext.Y {
		axis = func(p r3.Vec) float64 { return p.Z }
	}
	sort.Slice(tris, func(i, j int) bool {
		return axis(m.centroids[tris[i]]) < axis(m.centroids[tris[j]])
	})
	mid := len(tris) / 2

	t.nodes = append(t.nodes, aabbNode{box: box, left: -1, right: -1})
	left := t.build(m, tris[:mid])
	right := t.build(m, tris[mid:])
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

// nearestHit returns the triangle with the smallest non-negative ray
// parameter, pruning subtrees whose boxes lie beyond the best hit found.
func (t *aabbTree) nearestHit(m *TriMesh, origin, dir r3.Vec) (int, float64, bool) {
	if t.root < 0 {
		return 0, 0, false
	}
	invDir := r3.Vec{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}
	bestTri := -1
	best := math.Inf(1)

	stack := make([]int, 0, 64)
	stack = append(stack, t.root)
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.nodes[ni]

		entry, hit := node.box.slab(origin, invDir)
		if !hit || entry > best {
			continue
		}
		if node.left < 0 {
			for _, ti := range node.tris {
				f := m.faces[ti]
				if d, ok := rayTriangle(origin, dir, m.verts[f[0]], m.verts[f[1]], m.verts[f[2]]); ok && d < best {
					best = d
					bestTri = ti
				}
			}
			continue
		}
		stack = append(stack, node.left, node.right)
	}
	if bestTri < 0 {
		return 0, 0, false
	}
	return bestTri, best, true
}
