package tiering

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Builder", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		builder  Builder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)

		builder = MakeBuilder().WithEngine(engine)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectConfigPanic := func(b Builder) {
		Expect(func() {
			b.Build("BankCtrl")
		}).To(PanicWith(BeAssignableToTypeOf(&ConfigError{})))
	}

	It("should build a controller with the default configuration", func() {
		comp := builder.Build("BankCtrl")

		Expect(comp.Name()).To(Equal("BankCtrl"))
		Expect(comp.Translator().NumBanks()).To(Equal(uint64(8)))
		Expect(comp.Translator().RegionsPerBank()).To(Equal(uint64(1024)))
		Expect(comp.LatencyModel().FastLatency).To(Equal(50))
		Expect(comp.LatencyModel().SlowLatency).To(Equal(120))
	})

	It("should multiply banks across channels and ranks", func() {
		comp := builder.
			WithNumChannel(2).
			WithNumRank(2).
			WithNumBank(4).
			Build("BankCtrl")

		Expect(comp.Translator().NumBanks()).To(Equal(uint64(16)))
	})

	It("should derive the region count from rows and region size", func() {
		comp := builder.
			WithNumRow(4096).
			WithRegionSize(128).
			Build("BankCtrl")

		Expect(comp.Translator().RegionsPerBank()).To(Equal(uint64(32)))
		Expect(comp.Translator().RegionNumber(128)).To(Equal(uint64(1)))
	})

	It("should require an engine", func() {
		expectConfigPanic(builder.WithEngine(nil))
	})

	It("should require a power-of-two region size", func() {
		expectConfigPanic(builder.WithRegionSize(48))
	})

	It("should require the region size to divide the rows", func() {
		expectConfigPanic(builder.WithNumRow(1000).WithRegionSize(64))
	})

	It("should require a positive topology", func() {
		expectConfigPanic(builder.WithNumChannel(0))
		expectConfigPanic(builder.WithNumRank(0))
		expectConfigPanic(builder.WithNumBank(0))
		expectConfigPanic(builder.WithNumRow(0))
	})

	It("should bound the fast regions by the mat size", func() {
		expectConfigPanic(builder.WithFastRegionsPerMat(0))
		expectConfigPanic(builder.
			WithRegionsPerMat(16).
			WithFastRegionsPerMat(17))
	})

	It("should reject degenerate heat weights", func() {
		expectConfigPanic(builder.WithHeatWeights(-1, 1))
		expectConfigPanic(builder.WithHeatWeights(0, 0))
	})

	It("should reject a zero epoch length", func() {
		expectConfigPanic(builder.WithEpochLength(0))
	})

	It("should reject a negative migration threshold", func() {
		expectConfigPanic(builder.WithMigrationThreshold(-1))
	})

	It("should reject inverted latencies", func() {
		expectConfigPanic(builder.WithFastLatency(0))
		expectConfigPanic(builder.
			WithFastLatency(200).
			WithSlowLatency(120))
	})

	It("should not share state between two built controllers", func() {
		c1 := builder.Build("Ctrl1")
		c2 := builder.Build("Ctrl2")

		Expect(c1.Translator().SwapRegions(0, 1, 2)).To(Succeed())

		prn, _ := c2.Translator().PRNForVRN(0, 1)
		Expect(prn).To(Equal(uint64(1)))
	})
})
