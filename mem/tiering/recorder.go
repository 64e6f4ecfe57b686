package tiering

import (
	"github.com/sarchlab/reramsim/datarecording"
	"github.com/sarchlab/reramsim/sim"
)

// SwapRow is the database row recorded for one committed region swap.
type SwapRow struct {
	Epoch    uint64
	Bank     uint64
	HotVRN   uint64
	ColdVRN  uint64
	HotPRN   uint64
	ColdPRN  uint64
	HotHeat  float64
	ColdHeat float64
}

// EpochRow is the database row recorded for one completed epoch.
type EpochRow struct {
	Epoch      uint64
	Migrations int
}

// A MigrationRecorder is a hook that writes swap and epoch records into a
// data recorder.
type MigrationRecorder struct {
	recorder datarecording.DataRecorder

	epochsSeen uint64
}

// NewMigrationRecorder creates a MigrationRecorder and the two tables it
// writes into.
func NewMigrationRecorder(
	recorder datarecording.DataRecorder,
) *MigrationRecorder {
	recorder.CreateTable("region_swaps", SwapRow{})
	recorder.CreateTable("epochs", EpochRow{})

	return &MigrationRecorder{recorder: recorder}
}

// Func records the swap or epoch carried by the hook context.
func (r *MigrationRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosRegionSwap:
		info := ctx.Item.(SwapInfo)
		r.recorder.InsertData("region_swaps", SwapRow{
			// Swaps commit just before the epoch counter advances.
			Epoch:    r.epochsSeen + 1,
			Bank:     info.Bank,
			HotVRN:   info.HotVRN,
			ColdVRN:  info.ColdVRN,
			HotPRN:   info.HotPRN,
			ColdPRN:  info.ColdPRN,
			HotHeat:  info.HotHeat,
			ColdHeat: info.ColdHeat,
		})
	case HookPosEpochDone:
		summary := ctx.Item.(EpochSummary)
		r.epochsSeen = summary.Epoch
		r.recorder.InsertData("epochs", EpochRow{
			Epoch:      summary.Epoch,
			Migrations: summary.Migrations,
		})
	}
}
