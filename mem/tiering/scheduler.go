package tiering

import (
	"log"
	"sort"

	"github.com/sarchlab/reramsim/sim"
)

// SchedulerState is the state of the migration scheduler's epoch loop.
type SchedulerState int

// The scheduler cycles through these states once per epoch.
const (
	SchedulerIdle SchedulerState = iota
	SchedulerCollectingStats
	SchedulerEvaluating
	SchedulerMigrating
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "Idle"
	case SchedulerCollectingStats:
		return "CollectingStats"
	case SchedulerEvaluating:
		return "Evaluating"
	case SchedulerMigrating:
		return "Migrating"
	}

	return "Unknown"
}

// A candidate is a virtual region considered for migration in the current
// epoch.
type candidate struct {
	vrn  uint64
	prn  uint64
	heat float64
}

// A swapPair is one accepted promotion/demotion pair.
type swapPair struct {
	bank     uint64
	hotVRN   uint64
	coldVRN  uint64
	hotPRN   uint64
	coldPRN  uint64
	hotHeat  float64
	coldHeat float64
}

// A MigrationScheduler orchestrates epoch boundaries. It counts controller
// cycles, and when an epoch completes it ranks regions by heat, pairs hot
// regions on slow slots with cold regions on fast slots, and commits the
// accepted swaps against the translator as one batch.
type MigrationScheduler struct {
	translator *Translator
	stats      *StatsCollector
	latModel   LatencyModel

	epochLength uint64
	threshold   float64

	state     SchedulerState
	tickCount uint64
	epoch     uint64

	totalMigrations uint64

	hooks hookInvoker
}

// hookInvoker lets the scheduler emit diagnostics through the hooks of the
// component that owns it.
type hookInvoker interface {
	sim.Hookable
	InvokeHook(ctx sim.HookCtx)
}

// NewMigrationScheduler creates a scheduler in the Idle state.
func NewMigrationScheduler(
	translator *Translator,
	stats *StatsCollector,
	latModel LatencyModel,
	epochLength uint64,
	threshold float64,
) *MigrationScheduler {
	return &MigrationScheduler{
		translator:  translator,
		stats:       stats,
		latModel:    latModel,
		epochLength: epochLength,
		threshold:   threshold,
		state:       SchedulerIdle,
	}
}

// State returns the scheduler's current state.
func (s *MigrationScheduler) State() SchedulerState {
	return s.state
}

// Epoch returns the number of completed epochs.
func (s *MigrationScheduler) Epoch() uint64 {
	return s.epoch
}

// TickCount returns the number of cycles counted in the current epoch.
func (s *MigrationScheduler) TickCount() uint64 {
	return s.tickCount
}

// TotalMigrations returns the number of region swaps committed so far.
func (s *MigrationScheduler) TotalMigrations() uint64 {
	return s.totalMigrations
}

// Tick advances the scheduler by one controller cycle. The host calls it
// once per simulated cycle. When the epoch completes, Tick evaluates and
// commits this epoch's migrations before returning, so the new mapping is in
// place before any access of the next epoch. It returns the number of swaps
// performed and whether an epoch boundary was crossed. A non-nil error is an
// invariant violation and is fatal.
func (s *MigrationScheduler) Tick() (swaps int, epochDone bool, err error) {
	if s.state == SchedulerIdle {
		s.state = SchedulerCollectingStats
	}

	s.tickCount++
	if s.tickCount < s.epochLength {
		return 0, false, nil
	}

	s.state = SchedulerEvaluating
	batch := s.planMigrations()

	s.state = SchedulerMigrating
	swaps, err = s.commit(batch)
	if err != nil {
		return 0, false, err
	}

	s.totalMigrations += uint64(swaps)
	s.epoch++
	s.stats.ResetEpoch()
	s.tickCount = 0
	s.state = SchedulerIdle

	s.invokeHook(sim.HookCtx{
		Pos: HookPosEpochDone,
		Item: EpochSummary{
			Epoch:      s.epoch,
			Migrations: swaps,
		},
	})

	return swaps, true, nil
}

// planMigrations builds the per-bank promotion and demotion lists and pairs
// them in lock step. An empty plan is a normal outcome, not an error.
func (s *MigrationScheduler) planMigrations() []swapPair {
	var batch []swapPair

	for bank := uint64(0); bank < s.translator.NumBanks(); bank++ {
		promos, demos := s.rankCandidates(bank)
		batch = append(batch, s.pair(bank, promos, demos)...)
	}

	return batch
}

// rankCandidates splits a bank's regions into promotion candidates (regions
// with heat sitting on slow slots, hottest first) and demotion candidates
// (regions sitting on fast slots, coldest first). A fast-slot region with
// zero heat is still a demotion candidate; it is the coldest possible one.
func (s *MigrationScheduler) rankCandidates(
	bank uint64,
) (promos, demos []candidate) {
	for vrn := uint64(0); vrn < s.translator.RegionsPerBank(); vrn++ {
		heat, _ := s.stats.Heat(bank, vrn)
		prn, _ := s.translator.PRNForVRN(bank, vrn)

		switch s.latModel.Classify(prn) {
		case RegionSlow:
			if heat > 0 {
				promos = append(promos, candidate{vrn, prn, heat})
			}
		case RegionFast:
			demos = append(demos, candidate{vrn, prn, heat})
		}
	}

	// Ties break on VRN to keep the simulation deterministic.
	sort.Slice(promos, func(i, j int) bool {
		if promos[i].heat != promos[j].heat {
			return promos[i].heat > promos[j].heat
		}
		return promos[i].vrn < promos[j].vrn
	})
	sort.Slice(demos, func(i, j int) bool {
		if demos[i].heat != demos[j].heat {
			return demos[i].heat < demos[j].heat
		}
		return demos[i].vrn < demos[j].vrn
	})

	return promos, demos
}

// pair walks both ranked lists in lock step. A pair is accepted only if the
// heat delta clears the migration threshold. Both lists are heat-sorted, so
// the first rejected pair ends the walk; later pairs can only be worse.
func (s *MigrationScheduler) pair(
	bank uint64,
	promos, demos []candidate,
) []swapPair {
	var pairs []swapPair

	n := len(promos)
	if len(demos) < n {
		n = len(demos)
	}

	for i := 0; i < n; i++ {
		if promos[i].heat-demos[i].heat <= s.threshold {
			break
		}

		pairs = append(pairs, swapPair{
			bank:     bank,
			hotVRN:   promos[i].vrn,
			coldVRN:  demos[i].vrn,
			hotPRN:   promos[i].prn,
			coldPRN:  demos[i].prn,
			hotHeat:  promos[i].heat,
			coldHeat: demos[i].heat,
		})
	}

	return pairs
}

// commit applies the whole batch or none of it. The batch is validated up
// front; applying never partially fails unless the table itself is
// corrupted, which is fatal.
func (s *MigrationScheduler) commit(batch []swapPair) (int, error) {
	if !s.validate(batch) {
		log.Printf("tiering: discarding migration batch of %d pairs",
			len(batch))
		return 0, nil
	}

	touched := make(map[uint64]bool)

	for _, p := range batch {
		if err := s.translator.SwapRegions(p.bank, p.hotVRN, p.coldVRN); err != nil {
			return 0, err
		}

		touched[p.bank] = true

		s.invokeHook(sim.HookCtx{
			Pos: HookPosRegionSwap,
			Item: SwapInfo{
				Bank:     p.bank,
				HotVRN:   p.hotVRN,
				ColdVRN:  p.coldVRN,
				HotPRN:   p.hotPRN,
				ColdPRN:  p.coldPRN,
				HotHeat:  p.hotHeat,
				ColdHeat: p.coldHeat,
			},
		})
	}

	for bank := range touched {
		if err := s.translator.VerifyPermutation(bank); err != nil {
			return 0, err
		}
	}

	return len(batch), nil
}

// validate rejects a batch that would touch the same virtual region twice or
// name an out-of-range region. Such a batch cannot be applied atomically, so
// the whole epoch's migration is dropped and the table stays as it was.
func (s *MigrationScheduler) validate(batch []swapPair) bool {
	used := make(map[uint64]map[uint64]bool)

	for _, p := range batch {
		if p.bank >= s.translator.NumBanks() ||
			p.hotVRN >= s.translator.RegionsPerBank() ||
			p.coldVRN >= s.translator.RegionsPerBank() ||
			p.hotVRN == p.coldVRN {
			return false
		}

		bankUsed, ok := used[p.bank]
		if !ok {
			bankUsed = make(map[uint64]bool)
			used[p.bank] = bankUsed
		}

		if bankUsed[p.hotVRN] || bankUsed[p.coldVRN] {
			return false
		}

		bankUsed[p.hotVRN] = true
		bankUsed[p.coldVRN] = true
	}

	return true
}

func (s *MigrationScheduler) invokeHook(ctx sim.HookCtx) {
	if s.hooks == nil {
		return
	}

	ctx.Domain = s.hooks
	s.hooks.InvokeHook(ctx)
}
