package tiering

import "sync"

// accessCounter accumulates the reads and writes that hit one virtual region
// during the current epoch.
type accessCounter struct {
	reads  uint64
	writes uint64
}

// A StatsCollector accumulates per-region access counts during an epoch,
// keyed by virtual region number. Counters only grow within an epoch; the
// scheduler resets them at epoch boundaries.
//
// The heat of a region is alpha*writes + beta*reads. Which weight multiplies
// which count is a binding the instantiator makes explicitly through the
// Builder; the weights themselves carry no fixed read/write meaning.
type StatsCollector struct {
	mu sync.Mutex

	alpha float64 // weight of the write count
	beta  float64 // weight of the read count

	numBanks       uint64
	regionsPerBank uint64
	counters       [][]accessCounter
}

// NewStatsCollector creates a collector with all counters at zero.
func NewStatsCollector(
	numBanks, regionsPerBank uint64,
	alpha, beta float64,
) *StatsCollector {
	c := &StatsCollector{
		alpha:          alpha,
		beta:           beta,
		numBanks:       numBanks,
		regionsPerBank: regionsPerBank,
		counters:       make([][]accessCounter, numBanks),
	}

	for b := uint64(0); b < numBanks; b++ {
		c.counters[b] = make([]accessCounter, regionsPerBank)
	}

	return c
}

// RecordAccess counts one access to a virtual region in the current epoch.
func (c *StatsCollector) RecordAccess(bank, vrn uint64, isWrite bool) error {
	if bank >= c.numBanks {
		return &OutOfRangeError{
			Field: "bank", Value: bank, Bound: c.numBanks}
	}

	if vrn >= c.regionsPerBank {
		return &OutOfRangeError{
			Field: "VRN", Value: vrn, Bound: c.regionsPerBank}
	}

	c.mu.Lock()
	if isWrite {
		c.counters[bank][vrn].writes++
	} else {
		c.counters[bank][vrn].reads++
	}
	c.mu.Unlock()

	return nil
}

// Heat computes the weighted access score of a virtual region in the current
// epoch. The score is derived on demand and never stored.
func (c *StatsCollector) Heat(bank, vrn uint64) (float64, error) {
	if bank >= c.numBanks {
		return 0, &OutOfRangeError{
			Field: "bank", Value: bank, Bound: c.numBanks}
	}

	if vrn >= c.regionsPerBank {
		return 0, &OutOfRangeError{
			Field: "VRN", Value: vrn, Bound: c.regionsPerBank}
	}

	c.mu.Lock()
	counter := c.counters[bank][vrn]
	c.mu.Unlock()

	return c.alpha*float64(counter.writes) + c.beta*float64(counter.reads),
		nil
}

// Counts returns the raw read and write counts of a virtual region.
func (c *StatsCollector) Counts(bank, vrn uint64) (reads, writes uint64) {
	c.mu.Lock()
	counter := c.counters[bank][vrn]
	c.mu.Unlock()

	return counter.reads, counter.writes
}

// ResetEpoch zeroes all counters of all banks. Only the migration scheduler
// calls this, at epoch boundaries.
func (c *StatsCollector) ResetEpoch() {
	c.mu.Lock()
	for b := range c.counters {
		bank := c.counters[b]
		for i := range bank {
			bank[i] = accessCounter{}
		}
	}
	c.mu.Unlock()
}
