// Package traffic generates synthetic memory references to drive a bank
// controller. The generator produces a hotspot pattern: a small set of
// regions receives most of the accesses, which is the pattern that region
// migration is designed to exploit.
package traffic

import (
	"log"
	"math/rand"

	"github.com/sarchlab/reramsim/mem/tiering"
	"github.com/sarchlab/reramsim/sim"
)

// A Generator is a component that issues one memory access to the controller
// per cycle until the configured number of accesses is reached.
type Generator struct {
	*sim.TickingComponent

	controller *tiering.Comp
	rng        *rand.Rand

	numAccesses    uint64
	hotRegions     uint64
	hotFraction    float64
	writeFraction  float64
	issuedAccesses uint64
}

// A GeneratorBuilder can build traffic generators.
type GeneratorBuilder struct {
	engine     sim.Engine
	freq       sim.Freq
	controller *tiering.Comp

	numAccesses   uint64
	hotRegions    uint64
	hotFraction   float64
	writeFraction float64
	seed          int64
}

// MakeGeneratorBuilder creates a GeneratorBuilder with default parameters.
func MakeGeneratorBuilder() GeneratorBuilder {
	return GeneratorBuilder{
		freq:          1 * sim.GHz,
		numAccesses:   1000000,
		hotRegions:    8,
		hotFraction:   0.9,
		writeFraction: 0.5,
		seed:          1,
	}
}

// WithEngine sets the event engine that drives the generator.
func (b GeneratorBuilder) WithEngine(engine sim.Engine) GeneratorBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency at which accesses are issued.
func (b GeneratorBuilder) WithFreq(freq sim.Freq) GeneratorBuilder {
	b.freq = freq
	return b
}

// WithController sets the bank controller that receives the accesses.
func (b GeneratorBuilder) WithController(c *tiering.Comp) GeneratorBuilder {
	b.controller = c
	return b
}

// WithNumAccesses sets the total number of accesses to issue.
func (b GeneratorBuilder) WithNumAccesses(n uint64) GeneratorBuilder {
	b.numAccesses = n
	return b
}

// WithHotRegions sets the number of hot regions per bank.
func (b GeneratorBuilder) WithHotRegions(n uint64) GeneratorBuilder {
	b.hotRegions = n
	return b
}

// WithHotFraction sets the fraction of accesses that go to hot regions.
func (b GeneratorBuilder) WithHotFraction(f float64) GeneratorBuilder {
	b.hotFraction = f
	return b
}

// WithWriteFraction sets the fraction of accesses that are writes.
func (b GeneratorBuilder) WithWriteFraction(f float64) GeneratorBuilder {
	b.writeFraction = f
	return b
}

// WithSeed sets the seed of the random pattern, so that runs are repeatable.
func (b GeneratorBuilder) WithSeed(seed int64) GeneratorBuilder {
	b.seed = seed
	return b
}

// Build builds a Generator.
func (b GeneratorBuilder) Build(name string) *Generator {
	if b.engine == nil {
		panic("traffic generator requires an engine")
	}

	if b.controller == nil {
		panic("traffic generator requires a controller")
	}

	if b.hotFraction < 0 || b.hotFraction > 1 {
		panic("hot fraction must be in [0, 1]")
	}

	if b.writeFraction < 0 || b.writeFraction > 1 {
		panic("write fraction must be in [0, 1]")
	}

	g := &Generator{
		controller:    b.controller,
		rng:           rand.New(rand.NewSource(b.seed)),
		numAccesses:   b.numAccesses,
		hotRegions:    b.hotRegions,
		hotFraction:   b.hotFraction,
		writeFraction: b.writeFraction,
	}
	g.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, g)

	return g
}

// IssuedAccesses returns the number of accesses issued so far.
func (g *Generator) IssuedAccesses() uint64 {
	return g.issuedAccesses
}

// Done reports whether the generator has issued all its accesses.
func (g *Generator) Done() bool {
	return g.issuedAccesses >= g.numAccesses
}

// Tick issues one access per cycle.
func (g *Generator) Tick() bool {
	if g.Done() {
		return false
	}

	translator := g.controller.Translator()
	bank := uint64(g.rng.Int63n(int64(translator.NumBanks())))
	vrn := g.pickRegion()
	offset := uint64(g.rng.Int63n(int64(translator.RegionSize())))
	vra := vrn*translator.RegionSize() + offset
	isWrite := g.rng.Float64() < g.writeFraction

	_, _, err := g.controller.Access(bank, vra, isWrite)
	if err != nil {
		log.Panic(err)
	}

	g.issuedAccesses++

	return true
}

// pickRegion draws a hot region with probability hotFraction, and a uniform
// region otherwise. Hot regions are the highest-numbered regions of the
// bank, which sit on slow slots while the mapping is still the identity.
func (g *Generator) pickRegion() uint64 {
	regions := g.controller.Translator().RegionsPerBank()

	if g.rng.Float64() < g.hotFraction {
		return regions - 1 - uint64(g.rng.Int63n(int64(g.hotRegions)))
	}

	return uint64(g.rng.Int63n(int64(regions)))
}
