package tiering

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/reramsim/sim"
)

// fakeDataRecorder captures inserted rows for inspection.
type fakeDataRecorder struct {
	tables map[string][]any
}

func newFakeDataRecorder() *fakeDataRecorder {
	return &fakeDataRecorder{tables: make(map[string][]any)}
}

func (r *fakeDataRecorder) CreateTable(tableName string, _ any) {
	r.tables[tableName] = nil
}

func (r *fakeDataRecorder) InsertData(tableName string, entry any) {
	r.tables[tableName] = append(r.tables[tableName], entry)
}

func (r *fakeDataRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *fakeDataRecorder) Flush() {}

var _ = Describe("MigrationRecorder", func() {
	var (
		backend  *fakeDataRecorder
		recorder *MigrationRecorder
	)

	BeforeEach(func() {
		backend = newFakeDataRecorder()
		recorder = NewMigrationRecorder(backend)
	})

	It("should create the swap and epoch tables", func() {
		Expect(backend.ListTables()).To(
			ContainElements("region_swaps", "epochs"))
	})

	It("should record swaps with the epoch they commit in", func() {
		recorder.Func(sim.HookCtx{
			Pos: HookPosRegionSwap,
			Item: SwapInfo{
				Bank: 2, HotVRN: 10, ColdVRN: 1,
				HotPRN: 10, ColdPRN: 1,
				HotHeat: 99, ColdHeat: 1,
			},
		})
		recorder.Func(sim.HookCtx{
			Pos:  HookPosEpochDone,
			Item: EpochSummary{Epoch: 1, Migrations: 1},
		})
		recorder.Func(sim.HookCtx{
			Pos: HookPosRegionSwap,
			Item: SwapInfo{
				Bank: 0, HotVRN: 5, ColdVRN: 2,
				HotPRN: 5, ColdPRN: 2,
				HotHeat: 70, ColdHeat: 3,
			},
		})

		swaps := backend.tables["region_swaps"]
		Expect(swaps).To(HaveLen(2))
		Expect(swaps[0].(SwapRow).Epoch).To(Equal(uint64(1)))
		Expect(swaps[0].(SwapRow).HotVRN).To(Equal(uint64(10)))
		Expect(swaps[1].(SwapRow).Epoch).To(Equal(uint64(2)))
	})

	It("should record one row per epoch", func() {
		recorder.Func(sim.HookCtx{
			Pos:  sim.HookPosBeforeEvent,
			Item: nil,
		})
		recorder.Func(sim.HookCtx{
			Pos:  HookPosEpochDone,
			Item: EpochSummary{Epoch: 1, Migrations: 0},
		})

		epochs := backend.tables["epochs"]
		Expect(epochs).To(HaveLen(1))
		Expect(epochs[0].(EpochRow).Migrations).To(Equal(0))
	})
})
