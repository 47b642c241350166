package contact

import (
	"testing"

	"github.com/jointmech/articular/mesh"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// makePlate builds an n-by-n cell square plate of side length size in the
// plane z=z0, spanning [0,size]x[0,size]. Winding is chosen so the outward
// normal is +z when up is true, -z otherwise.
func makePlate(t *testing.T, name, body string, n int, size, z0 float64, up bool) *mesh.TriMesh {
	t.Helper()
	verts := make([]r3.Vec, 0, (n+1)*(n+1))
	step := size / float64(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			verts = append(verts, r3.Vec{X: float64(i) * step, Y: float64(j) * step, Z: z0})
		}
	}
	vid := func(i, j int) int { return j*(n+1) + i }
	faces := make([][3]int, 0, 2*n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a, b := vid(i, j), vid(i+1, j)
			c, d := vid(i+1, j+1), vid(i, j+1)
			if up {
				faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
			} else {
				faces = append(faces, [3]int{a, c, b}, [3]int{a, d, c})
			}
		}
	}
	m, err := mesh.NewTriMesh(name, body, verts, faces)
	require.NoError(t, err)
	return m
}

// splitRegions partitions a plate's triangles into left/right halves by
// centroid x.
func splitRegions(t *testing.T, m *mesh.TriMesh, mid float64) {
	t.Helper()
	ids := make([]int, m.NumTriangles())
	for i := range ids {
		if m.Centroid(i).X > mid {
			ids[i] = 1
		}
	}
	require.NoError(t, m.SetRegions(ids, []string{"medial", "lateral"}))
}

// uniformParams is the lumped-scenario material set used across tests.
func uniformParams() Parameters {
	return Parameters{ElasticModulus: 1e6, PoissonsRatio: 0.4, Thickness: 0.001}
}

// plateConfig is a lumped linear configuration with a [0, 0.01] depth band.
func plateConfig() Config {
	return Config{
		MinProximity: 0,
		MaxProximity: 0.01,
		Formulation:  Linear,
		LumpedModel:  true,
		Casting:      uniformParams(),
		Target:       uniformParams(),
	}
}

// overlappingPlates returns two coaxial unit plates interpenetrating by
// depth: the casting surface at z=0 facing +z, the target at z=-depth
// facing -z.
func overlappingPlates(t *testing.T, n int, depth float64) (casting, target *mesh.TriMesh) {
	t.Helper()
	casting = makePlate(t, "casting", "tibia", n, 1, 0, true)
	target = makePlate(t, "target", "femur", n, 1, -depth, false)
	return casting, target
}

// bodyForces records ForceAccumulator calls keyed by body name.
type bodyForces struct {
	force  map[string]r3.Vec
	moment map[string]r3.Vec
}

func newBodyForces() *bodyForces {
	return &bodyForces{force: map[string]r3.Vec{}, moment: map[string]r3.Vec{}}
}

func (b *bodyForces) AddBodyForce(body string, force, moment r3.Vec) {
	b.force[body] = r3.Add(b.force[body], force)
	b.moment[body] = r3.Add(b.moment[body], moment)
}
