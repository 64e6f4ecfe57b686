package tiering

import (
	"log"

	"github.com/sarchlab/reramsim/sim"
)

// HookPosRegionSwap is a hook position that triggers when two regions are
// swapped.
var HookPosRegionSwap = &sim.HookPos{Name: "RegionSwap"}

// HookPosEpochDone is a hook position that triggers when an epoch completes.
var HookPosEpochDone = &sim.HookPos{Name: "EpochDone"}

// SwapInfo describes one committed region swap. It is the hook item at
// HookPosRegionSwap.
type SwapInfo struct {
	Bank     uint64
	HotVRN   uint64
	ColdVRN  uint64
	HotPRN   uint64
	ColdPRN  uint64
	HotHeat  float64
	ColdHeat float64
}

// EpochSummary describes one completed epoch. It is the hook item at
// HookPosEpochDone. Zero migrations is a normal epoch outcome.
type EpochSummary struct {
	Epoch      uint64
	Migrations int
}

// MigrationLogger is a hook that prints swap and epoch information, so that
// external verification tooling can match the lines textually.
type MigrationLogger struct {
	sim.LogHookBase
}

// NewMigrationLogger returns a MigrationLogger that writes into the logger.
func NewMigrationLogger(logger *log.Logger) *MigrationLogger {
	h := new(MigrationLogger)
	h.Logger = logger

	return h
}

// Func writes the swap or epoch information into the logger.
func (h *MigrationLogger) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosRegionSwap:
		info := ctx.Item.(SwapInfo)
		h.Printf("swap, bank %d, vrn %d (heat %.2f, prn %d) <-> "+
			"vrn %d (heat %.2f, prn %d)",
			info.Bank,
			info.HotVRN, info.HotHeat, info.HotPRN,
			info.ColdVRN, info.ColdHeat, info.ColdPRN)
	case HookPosEpochDone:
		summary := ctx.Item.(EpochSummary)
		h.Printf("epoch %d, %d migrations",
			summary.Epoch, summary.Migrations)
	}
}
