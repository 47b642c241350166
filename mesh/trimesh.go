package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateAreaTol is the triangle area below which a triangle is flagged
// degenerate and excluded from contact.
const degenerateAreaTol = 1e-14

// TriMesh is a concrete Surface backed by vertex and face arrays. Vertices
// are stored in a reference configuration; SetPose rigidly transforms them
// into the current pose and refreshes the derived geometry.
type TriMesh struct {
	name string
	body string

	refVerts []r3.Vec
	verts    []r3.Vec
	faces    [][3]int

	centroids  []r3.Vec
	normals    []r3.Vec
	areas      []float64
	degenerate []bool
	neighbors  [][]int

	regions     []int
	regionNames []string

	thickness []float64
	modulus   []float64
	poisson   []float64

	tree       *aabbTree
	generation uint64
}

// NewTriMesh builds a TriMesh from vertices and triangle faces. The face
// winding defines the outward normal (right-hand rule). Degenerate triangles
// are flagged, not rejected. The mesh starts with a single region named
// "all"; use SetRegions to partition it.
func NewTriMesh(name, body string, verts []r3.Vec, faces [][3]int) (*TriMesh, error) {
	if len(verts) < 3 || len(faces) == 0 {
		return nil, fmt.Errorf("mesh %s: need at least 3 vertices and 1 face, got %d vertices, %d faces",
			name, len(verts), len(faces))
	}
	for fi, f := range faces {
		for _, v := range f {
			if v < 0 || v >= len(verts) {
				return nil, fmt.Errorf("mesh %s: face %d references vertex %d, have %d vertices",
					name, fi, v, len(verts))
			}
		}
	}

	m := &TriMesh{
		name:        name,
		body:        body,
		refVerts:    append([]r3.Vec(nil), verts...),
		verts:       append([]r3.Vec(nil), verts...),
		faces:       append([][3]int(nil), faces...),
		centroids:   make([]r3.Vec, len(faces)),
		normals:     make([]r3.Vec, len(faces)),
		areas:       make([]float64, len(faces)),
		degenerate:  make([]bool, len(faces)),
		regions:     make([]int, len(faces)),
		regionNames: []string{"all"},
	}
	m.buildNeighbors()
	m.updateGeometry()
	return m, nil
}

// buildNeighbors computes, for each triangle, the set of triangles sharing
// at least one vertex with it.
func (m *TriMesh) buildNeighbors() {
	vertTris := make([][]int, len(m.refVerts))
	for ti, f := range m.faces {
		for _, v := range f {
			vertTris[v] = append(vertTris[v], ti)
		}
	}
	m.neighbors = make([][]int, len(m.faces))
	seen := make(map[int]bool)
	for ti, f := range m.faces {
		for k := range seen {
			delete(seen, k)
		}
		for _, v := range f {
			for _, other := range vertTris[v] {
				if other != ti {
					seen[other] = true
				}
			}
		}
		nbrs := make([]int, 0, len(seen))
		for other := range seen {
			nbrs = append(nbrs, other)
		}
		sort.Ints(nbrs)
		m.neighbors[ti] = nbrs
	}
}

// updateGeometry recomputes centroids, normals, areas, and the ray-query
// tree from the current vertex positions.
func (m *TriMesh) updateGeometry() {
	for ti, f := range m.faces {
		a, b, c := m.verts[f[0]], m.verts[f[1]], m.verts[f[2]]
		cross := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		norm := r3.Norm(cross)
		m.centroids[ti] = r3.Scale(1.0/3.0, r3.Add(a, r3.Add(b, c)))
		m.areas[ti] = 0.5 * norm
		if m.areas[ti] < degenerateAreaTol {
			m.degenerate[ti] = true
			m.normals[ti] = r3.Vec{}
			continue
		}
		m.degenerate[ti] = false
		m.normals[ti] = r3.Scale(1/norm, cross)
	}
	m.tree = newAABBTree(m)
}

// SetPose rigidly transforms the reference vertices by rot then trans and
// refreshes derived geometry. The generation counter is bumped so cached
// contact results are invalidated.
func (m *TriMesh) SetPose(rot r3.Rotation, trans r3.Vec) {
	for i, v := range m.refVerts {
		m.verts[i] = r3.Add(rot.Rotate(v), trans)
	}
	m.updateGeometry()
	m.generation++
}

// Translate is SetPose with the identity rotation.
func (m *TriMesh) Translate(trans r3.Vec) {
	m.SetPose(r3.NewRotation(0, r3.Vec{X: 1}), trans)
}

// SetRegions assigns a region id to every triangle. Ids index into names.
// "total" is reserved for the whole-mesh column of tabular exports, and
// names must be unique so region columns stay distinguishable.
func (m *TriMesh) SetRegions(ids []int, names []string) error {
	if len(ids) != len(m.faces) {
		return fmt.Errorf("mesh %s: region ids length %d != %d triangles", m.name, len(ids), len(m.faces))
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "total" {
			return fmt.Errorf("mesh %s: region name %q is reserved", m.name, name)
		}
		if seen[name] {
			return fmt.Errorf("mesh %s: duplicate region name %q", m.name, name)
		}
		seen[name] = true
	}
	for ti, id := range ids {
		if id < 0 || id >= len(names) {
			return fmt.Errorf("mesh %s: triangle %d has region id %d, have %d names",
				m.name, ti, id, len(names))
		}
	}
	m.regions = append([]int(nil), ids...)
	m.regionNames = append([]string(nil), names...)
	return nil
}

// SetThickness attaches per-triangle elastic layer thickness.
func (m *TriMesh) SetThickness(h []float64) error {
	if err := m.checkPropLen("thickness", h); err != nil {
		return err
	}
	m.thickness = append([]float64(nil), h...)
	return nil
}

// SetElasticModulus attaches per-triangle elastic modulus.
func (m *TriMesh) SetElasticModulus(e []float64) error {
	if err := m.checkPropLen("elastic modulus", e); err != nil {
		return err
	}
	m.modulus = append([]float64(nil), e...)
	return nil
}

// SetPoissonsRatio attaches per-triangle Poisson ratio.
func (m *TriMesh) SetPoissonsRatio(nu []float64) error {
	if err := m.checkPropLen("poissons ratio", nu); err != nil {
		return err
	}
	for i, v := range nu {
		if v < 0 || v >= 0.5 {
			return fmt.Errorf("mesh %s: poissons ratio[%d] = %g outside [0, 0.5)", m.name, i, v)
		}
	}
	m.poisson = append([]float64(nil), nu...)
	return nil
}

func (m *TriMesh) checkPropLen(what string, vals []float64) error {
	if len(vals) != len(m.faces) {
		return fmt.Errorf("mesh %s: %s length %d != %d triangles", m.name, what, len(vals), len(m.faces))
	}
	for i, v := range vals {
		if v <= 0 && what != "poissons ratio" {
			return fmt.Errorf("mesh %s: %s[%d] = %g must be positive", m.name, what, i, v)
		}
	}
	return nil
}

func (m *TriMesh) Name() string         { return m.name }
func (m *TriMesh) NumTriangles() int    { return len(m.faces) }
func (m *TriMesh) AttachedBody() string { return m.body }
func (m *TriMesh) Generation() uint64   { return m.generation }

func (m *TriMesh) Centroid(i int) r3.Vec { return m.centroids[i] }
func (m *TriMesh) Normal(i int) r3.Vec   { return m.normals[i] }
func (m *TriMesh) Area(i int) float64    { return m.areas[i] }
func (m *TriMesh) Degenerate(i int) bool { return m.degenerate[i] }

func (m *TriMesh) Region(i int) int        { return m.regions[i] }
func (m *TriMesh) NumRegions() int         { return len(m.regionNames) }
func (m *TriMesh) RegionName(r int) string { return m.regionNames[r] }

func (m *TriMesh) Neighbors(i int) []int { return m.neighbors[i] }

func (m *TriMesh) HasVariableThickness() bool      { return m.thickness != nil }
func (m *TriMesh) HasVariableElasticModulus() bool { return m.modulus != nil }
func (m *TriMesh) HasVariablePoissonsRatio() bool  { return m.poisson != nil }

func (m *TriMesh) Thickness(i int) float64      { return m.thickness[i] }
func (m *TriMesh) ElasticModulus(i int) float64 { return m.modulus[i] }
func (m *TriMesh) PoissonsRatio(i int) float64  { return m.poisson[i] }

// RayIntersectsTri tests the ray against triangle i alone.
func (m *TriMesh) RayIntersectsTri(i int, origin, dir r3.Vec) (float64, bool) {
	if m.degenerate[i] {
		return 0, false
	}
	f := m.faces[i]
	return rayTriangle(origin, dir, m.verts[f[0]], m.verts[f[1]], m.verts[f[2]])
}

// CastRay returns the nearest intersection of the ray with the surface.
func (m *TriMesh) CastRay(origin, dir r3.Vec) (RayHit, bool) {
	tri, dist, ok := m.tree.nearestHit(m, origin, dir)
	if !ok {
		return RayHit{}, false
	}
	return RayHit{
		Tri:      tri,
		Distance: dist,
		Point:    r3.Add(origin, r3.Scale(dist, dir)),
	}, true
}
