package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshRecords(n int) []PairRecord {
	recs := make([]PairRecord, n)
	for i := range recs {
		recs[i].Target = NoContact
	}
	return recs
}

func TestDetectorFullQueryFirstStep(t *testing.T) {
	casting, target := overlappingPlates(t, 4, 0.001)
	det := detector{minProximity: 0, maxProximity: 0.01}

	n := casting.NumTriangles()
	out := freshRecords(n)
	stats := det.detect(casting, target, nil, out)

	assert.EqualValues(t, n, stats.FullQuery)
	assert.EqualValues(t, 0, stats.Coherence)
	assert.EqualValues(t, 0, stats.Miss)
	for i, rec := range out {
		require.NotEqual(t, NoContact, rec.Target, "triangle %d", i)
		assert.InDelta(t, 0.001, rec.Depth, 1e-12)
		assert.InDelta(t, -0.001, rec.Point.Z, 1e-12)
	}
}

func TestDetectorCoherencePathInvariance(t *testing.T) {
	casting, target := overlappingPlates(t, 4, 0.001)
	det := detector{minProximity: 0, maxProximity: 0.01}
	n := casting.NumTriangles()

	first := freshRecords(n)
	det.detect(casting, target, nil, first)

	// Static geometry: the coherence path must reproduce the full-query
	// result exactly.
	second := freshRecords(n)
	stats := det.detect(casting, target, first, second)
	assert.EqualValues(t, n, stats.Coherence)
	assert.EqualValues(t, 0, stats.FullQuery)
	assert.Equal(t, first, second)
}

func TestDetectorNeighborPathInvariance(t *testing.T) {
	casting, target := overlappingPlates(t, 4, 0.001)
	det := detector{minProximity: 0, maxProximity: 0.01}
	n := casting.NumTriangles()

	truth := freshRecords(n)
	det.detect(casting, target, nil, truth)

	// Seed every record with a neighbor of the true pair: the coherence
	// test fails but the neighbor walk must recover the same pair.
	seeded := make([]PairRecord, n)
	for i := range seeded {
		seeded[i] = truth[i]
		seeded[i].Target = target.Neighbors(truth[i].Target)[0]
	}
	out := freshRecords(n)
	stats := det.detect(casting, target, seeded, out)
	assert.EqualValues(t, 0, stats.FullQuery)
	assert.Greater(t, stats.Neighbor, int64(0))
	for i := range out {
		assert.Equal(t, truth[i].Target, out[i].Target, "triangle %d", i)
		assert.InDelta(t, truth[i].Depth, out[i].Depth, 1e-12)
	}
}

func TestDetectorDepthBand(t *testing.T) {
	// Plates overlapping far deeper than the band: everything is
	// non-contacting, never clamped into the band.
	casting, target := overlappingPlates(t, 2, 0.05)
	det := detector{minProximity: 0, maxProximity: 0.01}

	out := freshRecords(casting.NumTriangles())
	stats := det.detect(casting, target, nil, out)
	assert.EqualValues(t, casting.NumTriangles(), stats.Miss)
	for _, rec := range out {
		assert.Equal(t, NoContact, rec.Target)
		assert.Zero(t, rec.Depth)
	}
}

func TestDetectorReverseRayProximity(t *testing.T) {
	// Target above the casting surface: no penetration, but the forward
	// ray re-acquires it as negative depth within the band.
	casting := makePlate(t, "casting", "tibia", 2, 1, 0, true)
	target := makePlate(t, "target", "femur", 2, 1, 0.002, false)
	det := detector{minProximity: -0.01, maxProximity: 0.01}

	out := freshRecords(casting.NumTriangles())
	stats := det.detect(casting, target, nil, out)
	assert.EqualValues(t, 0, stats.Miss)
	for _, rec := range out {
		require.NotEqual(t, NoContact, rec.Target)
		assert.InDelta(t, -0.002, rec.Depth, 1e-12)
	}

	// With a non-negative band the same pose is out of contact.
	det = detector{minProximity: 0, maxProximity: 0.01}
	out = freshRecords(casting.NumTriangles())
	stats = det.detect(casting, target, nil, out)
	assert.EqualValues(t, casting.NumTriangles(), stats.Miss)
}
