package contact

import "gonum.org/v1/gonum/spatial/r3"

// realizationStage tracks which parts of the per-step cache are valid.
// Repeated queries at a realized stage never re-run the pipeline; a pose
// change drops the cache back to stageInvalid.
type realizationStage uint8

const (
	stageInvalid realizationStage = iota
	stagePosition
	stageDynamics
)

// sideState is the per-step cache of one mesh side. The pair records are
// double-buffered: prevRecords is the read-only seed for the coherence
// search while records is written.
type sideState struct {
	records     []PairRecord
	prevRecords []PairRecord

	// Position stage.
	proximity   []float64
	contacting  []bool
	nContacting int
	detect      DetectStats

	// Dynamics stage.
	pressure      []float64
	energy        []float64
	triForce      []r3.Vec
	triMoment     []r3.Vec
	solveFailures int

	allTris    []int
	regionTris [][]int
	total      Stats
	regional   []Stats
}

func newSideState(n int, regionTris [][]int) *sideState {
	records := make([]PairRecord, n)
	prev := make([]PairRecord, n)
	allTris := make([]int, n)
	for i := range records {
		records[i].Target = NoContact
		prev[i].Target = NoContact
		allTris[i] = i
	}
	return &sideState{
		records:     records,
		prevRecords: prev,
		proximity:   make([]float64, n),
		contacting:  make([]bool, n),
		pressure:    make([]float64, n),
		energy:      make([]float64, n),
		triForce:    make([]r3.Vec, n),
		triMoment:   make([]r3.Vec, n),
		allTris:     allTris,
		regionTris:  regionTris,
		regional:    make([]Stats, len(regionTris)),
	}
}

// swapRecords promotes the current records to the coherence seed for the
// next detector pass.
func (s *sideState) swapRecords() {
	s.records, s.prevRecords = s.prevRecords, s.records
}
