package tiering

import (
	"log"

	"github.com/sarchlab/reramsim/sim"
)

var _ sim.Component = (*Comp)(nil)

// A Comp is a bank-group controller that serves memory accesses through a
// continuously remapped region address space. Every access is translated,
// recorded, and priced by the latency model; the epoch loop runs on the
// component's ticks.
//
// Each Comp owns its own tables and counters. Multiple controllers can
// coexist in one simulation with fully independent state.
type Comp struct {
	*sim.TickingComponent

	translator *Translator
	stats      *StatsCollector
	latModel   LatencyModel
	scheduler  *MigrationScheduler

	busy bool

	// Running counters for external verification tooling.
	RegionSwaps   uint64
	TotalEpochs   uint64
	FastAccesses  uint64
	SlowAccesses  uint64
	TotalAccesses uint64
}

// Access serves one memory reference. It translates the virtual region
// address, records the access in the current epoch's statistics, and returns
// the physical region address together with the access latency in cycles.
// The surrounding simulator uses the latency to schedule the completion
// event. An out-of-range access is rejected with no state change.
func (c *Comp) Access(
	bank, vra uint64,
	isWrite bool,
) (pra uint64, latency int, err error) {
	pra, err = c.translator.Translate(bank, vra)
	if err != nil {
		return 0, 0, err
	}

	vrn := c.translator.RegionNumber(vra)
	if err := c.stats.RecordAccess(bank, vrn, isWrite); err != nil {
		return 0, 0, err
	}

	prn := c.translator.RegionNumber(pra)
	latency = c.latModel.Latency(prn)

	if c.latModel.Classify(prn) == RegionFast {
		c.FastAccesses++
	} else {
		c.SlowAccesses++
	}
	c.TotalAccesses++

	c.busy = true
	c.TickLater()

	return pra, latency, nil
}

// Tick advances the epoch loop by one controller cycle. The component goes
// to sleep when it is at an epoch start with no traffic; the next access
// wakes it up.
func (c *Comp) Tick() bool {
	if !c.busy && c.scheduler.TickCount() == 0 {
		return false
	}

	c.busy = false

	swaps, epochDone, err := c.scheduler.Tick()
	if err != nil {
		// The table is corrupted. All further translations would be
		// undefined, so the run must stop here.
		log.Panic(err)
	}

	c.RegionSwaps += uint64(swaps)
	if epochDone {
		c.TotalEpochs++
	}

	return true
}

// Translator exposes the translation table, e.g. for monitoring.
func (c *Comp) Translator() *Translator {
	return c.translator
}

// Stats exposes the current epoch's statistics collector.
func (c *Comp) Stats() *StatsCollector {
	return c.stats
}

// LatencyModel returns the controller's physical latency model.
func (c *Comp) LatencyModel() LatencyModel {
	return c.latModel
}

// Scheduler exposes the migration scheduler.
func (c *Comp) Scheduler() *MigrationScheduler {
	return c.scheduler
}
