package tiering

import (
	"log"

	"github.com/sarchlab/reramsim/sim"
)

// Builder can build region-tiering bank controllers.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	numChannel int
	numRank    int
	numBank    int
	numRow     uint64
	numCol     uint64

	regionSize        uint64
	regionsPerMat     uint64
	fastRegionsPerMat uint64

	alpha float64
	beta  float64

	epochLength        uint64
	migrationThreshold float64

	fastLatency int
	slowLatency int
}

// MakeBuilder creates a builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:               1 * sim.GHz,
		numChannel:         1,
		numRank:            1,
		numBank:            8,
		numRow:             65536,
		numCol:             1024,
		regionSize:         64,
		regionsPerMat:      16,
		fastRegionsPerMat:  4,
		alpha:              0.5,
		beta:               0.5,
		epochLength:        100000,
		migrationThreshold: 50,
		fastLatency:        50,
		slowLatency:        120,
	}
}

// WithEngine sets the event engine that drives the controller.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the controller.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumChannel sets the number of channels the controller controls.
func (b Builder) WithNumChannel(n int) Builder {
	b.numChannel = n
	return b
}

// WithNumRank sets the number of ranks in each channel.
func (b Builder) WithNumRank(n int) Builder {
	b.numRank = n
	return b
}

// WithNumBank sets the number of banks in each rank.
func (b Builder) WithNumBank(n int) Builder {
	b.numBank = n
	return b
}

// WithNumRow sets the number of rows in each bank. Rows are the storage
// units that regions are made of.
func (b Builder) WithNumRow(n uint64) Builder {
	b.numRow = n
	return b
}

// WithNumCol sets the number of columns in each row.
func (b Builder) WithNumCol(n uint64) Builder {
	b.numCol = n
	return b
}

// WithRegionSize sets the number of rows per region. Must be a power of
// two.
func (b Builder) WithRegionSize(n uint64) Builder {
	b.regionSize = n
	return b
}

// WithRegionsPerMat sets how many contiguous physical regions form one mat.
func (b Builder) WithRegionsPerMat(n uint64) Builder {
	b.regionsPerMat = n
	return b
}

// WithFastRegionsPerMat sets how many regions at the start of each mat are
// fast.
func (b Builder) WithFastRegionsPerMat(n uint64) Builder {
	b.fastRegionsPerMat = n
	return b
}

// WithHeatWeights sets the heat weights. Alpha multiplies the write count
// and beta multiplies the read count; the binding is made here, explicitly,
// by the instantiator.
func (b Builder) WithHeatWeights(alpha, beta float64) Builder {
	b.alpha = alpha
	b.beta = beta

	return b
}

// WithEpochLength sets the number of controller cycles per migration epoch.
func (b Builder) WithEpochLength(n uint64) Builder {
	b.epochLength = n
	return b
}

// WithMigrationThreshold sets the minimum heat delta between a promotion and
// a demotion candidate for the pair to migrate. The threshold guards against
// churn from marginal heat differences.
func (b Builder) WithMigrationThreshold(t float64) Builder {
	b.migrationThreshold = t
	return b
}

// WithFastLatency sets the access latency of fast regions, in cycles.
func (b Builder) WithFastLatency(cycles int) Builder {
	b.fastLatency = cycles
	return b
}

// WithSlowLatency sets the access latency of slow regions, in cycles.
func (b Builder) WithSlowLatency(cycles int) Builder {
	b.slowLatency = cycles
	return b
}

// Build builds a bank controller with identity mapping in every bank.
func (b Builder) Build(name string) *Comp {
	b.mustBeValid()

	numBanks := uint64(b.numChannel) * uint64(b.numRank) * uint64(b.numBank)
	regionsPerBank := b.numRow / b.regionSize

	translator := NewTranslator(numBanks, regionsPerBank, b.regionSize)
	stats := NewStatsCollector(numBanks, regionsPerBank, b.alpha, b.beta)
	latModel := LatencyModel{
		RegionsPerMat:     b.regionsPerMat,
		FastRegionsPerMat: b.fastRegionsPerMat,
		FastLatency:       b.fastLatency,
		SlowLatency:       b.slowLatency,
	}
	scheduler := NewMigrationScheduler(
		translator, stats, latModel,
		b.epochLength, b.migrationThreshold)

	c := &Comp{
		translator: translator,
		stats:      stats,
		latModel:   latModel,
		scheduler:  scheduler,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	scheduler.hooks = c

	log.Printf(
		"%s: %d banks, %d regions/bank, region size %d rows, "+
			"%d regions/mat with %d fast",
		name, numBanks, regionsPerBank, b.regionSize,
		b.regionsPerMat, b.fastRegionsPerMat)

	return c
}

//nolint:gocyclo
func (b Builder) mustBeValid() {
	if b.engine == nil {
		panic(&ConfigError{Param: "Engine", Reason: "must be set"})
	}

	if b.numChannel <= 0 {
		panic(&ConfigError{Param: "CHANNELS", Reason: "must be positive"})
	}

	if b.numRank <= 0 {
		panic(&ConfigError{Param: "RANKS", Reason: "must be positive"})
	}

	if b.numBank <= 0 {
		panic(&ConfigError{Param: "BANKS", Reason: "must be positive"})
	}

	if b.numRow == 0 {
		panic(&ConfigError{Param: "ROWS", Reason: "must be positive"})
	}

	if b.numCol == 0 {
		panic(&ConfigError{Param: "COLS", Reason: "must be positive"})
	}

	if _, ok := log2(b.regionSize); !ok || b.regionSize == 0 {
		panic(&ConfigError{
			Param:  "RegionSize",
			Reason: "must be a power of two",
		})
	}

	if b.numRow%b.regionSize != 0 {
		panic(&ConfigError{
			Param:  "RegionSize",
			Reason: "must divide the number of rows per bank",
		})
	}

	if b.regionsPerMat == 0 {
		panic(&ConfigError{
			Param:  "RegionsPerMat",
			Reason: "must be positive",
		})
	}

	if b.fastRegionsPerMat == 0 || b.fastRegionsPerMat > b.regionsPerMat {
		panic(&ConfigError{
			Param:  "FastRegionsPerMat",
			Reason: "must be in [1, RegionsPerMat]",
		})
	}

	if b.alpha < 0 || b.beta < 0 || b.alpha+b.beta == 0 {
		panic(&ConfigError{
			Param:  "Alpha/Beta",
			Reason: "weights must be non-negative and not both zero",
		})
	}

	if b.epochLength == 0 {
		panic(&ConfigError{
			Param:  "EpochLength",
			Reason: "must be positive",
		})
	}

	if b.migrationThreshold < 0 {
		panic(&ConfigError{
			Param:  "MigrationThreshold",
			Reason: "must be non-negative",
		})
	}

	if b.fastLatency <= 0 || b.slowLatency <= 0 {
		panic(&ConfigError{
			Param:  "FastRegionLatency/SlowRegionLatency",
			Reason: "must be positive",
		})
	}

	if b.fastLatency > b.slowLatency {
		panic(&ConfigError{
			Param:  "FastRegionLatency",
			Reason: "must not exceed SlowRegionLatency",
		})
	}
}
