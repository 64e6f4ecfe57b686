package tiering

// RegionClass tells whether a physical region sits in a fast or a slow slot
// of its mat.
type RegionClass int

// Physical regions are either fast (near the decoders) or slow.
const (
	RegionFast RegionClass = iota
	RegionSlow
)

func (c RegionClass) String() string {
	if c == RegionFast {
		return "fast"
	}

	return "slow"
}

// A LatencyModel classifies physical region numbers as fast or slow and
// reports their access latency. The classification is a pure function of the
// PRN and the mat geometry. It never changes during a simulation.
type LatencyModel struct {
	RegionsPerMat     uint64
	FastRegionsPerMat uint64

	// Latencies are in controller cycles.
	FastLatency int
	SlowLatency int
}

// Classify determines if the physical region sits in a fast or a slow slot.
// The first FastRegionsPerMat regions of each mat are fast.
func (m LatencyModel) Classify(prn uint64) RegionClass {
	if prn%m.RegionsPerMat < m.FastRegionsPerMat {
		return RegionFast
	}

	return RegionSlow
}

// Latency returns the access latency, in cycles, of the physical region.
func (m LatencyModel) Latency(prn uint64) int {
	if m.Classify(prn) == RegionFast {
		return m.FastLatency
	}

	return m.SlowLatency
}
