package tiering

import (
	"log"
	"strconv"
	"sync"
)

// bankTable holds the forward and inverse permutations of one bank. The two
// slices are index-addressed so that a lookup costs one array access, like a
// register-file read in a real controller.
type bankTable struct {
	sync.RWMutex
	forward []uint64 // VRN -> PRN
	inverse []uint64 // PRN -> VRN
}

// A Translator owns the virtual-to-physical region mapping of every bank in
// a controller. It is the single source of truth for the mapping. Banks are
// fully independent: a swap in one bank never touches another.
//
// Translations take a per-bank read lock and swaps take the write lock, so
// the guarantee of the single-threaded event engine also holds if the
// translator is driven from multiple goroutines.
type Translator struct {
	numBanks       uint64
	regionsPerBank uint64
	regionSize     uint64
	vrnShift       uint64
	offsetMask     uint64

	banks []*bankTable
}

// NewTranslator creates a Translator with an identity mapping in every bank.
// The region size must be a power of two; geometry is validated by the
// Builder before it gets here.
func NewTranslator(numBanks, regionsPerBank, regionSize uint64) *Translator {
	shift, ok := log2(regionSize)
	if !ok {
		panic(&ConfigError{
			Param:  "RegionSize",
			Reason: "must be a power of two",
		})
	}

	t := &Translator{
		numBanks:       numBanks,
		regionsPerBank: regionsPerBank,
		regionSize:     regionSize,
		vrnShift:       shift,
		offsetMask:     regionSize - 1,
		banks:          make([]*bankTable, numBanks),
	}

	for b := uint64(0); b < numBanks; b++ {
		table := &bankTable{
			forward: make([]uint64, regionsPerBank),
			inverse: make([]uint64, regionsPerBank),
		}

		for vrn := uint64(0); vrn < regionsPerBank; vrn++ {
			table.forward[vrn] = vrn
			table.inverse[vrn] = vrn
		}

		t.banks[b] = table
	}

	return t
}

// NumBanks returns the number of banks the translator covers.
func (t *Translator) NumBanks() uint64 {
	return t.numBanks
}

// RegionsPerBank returns the number of regions in each bank.
func (t *Translator) RegionsPerBank() uint64 {
	return t.regionsPerBank
}

// RegionSize returns the number of rows in each region.
func (t *Translator) RegionSize() uint64 {
	return t.regionSize
}

// RegionNumber extracts the region number from an address.
func (t *Translator) RegionNumber(addr uint64) uint64 {
	return addr >> t.vrnShift
}

// RegionOffset extracts the in-region offset from an address. The offset is
// never translated.
func (t *Translator) RegionOffset(addr uint64) uint64 {
	return addr & t.offsetMask
}

// Translate converts a virtual region address to a physical region address.
// It is a pure lookup with no side effects, so it can also serve speculative
// probes; recording statistics is a separate, explicit call.
func (t *Translator) Translate(bank, vra uint64) (uint64, error) {
	if bank >= t.numBanks {
		return 0, &OutOfRangeError{
			Field: "bank", Value: bank, Bound: t.numBanks}
	}

	vrn := t.RegionNumber(vra)
	if vrn >= t.regionsPerBank {
		return 0, &OutOfRangeError{
			Field: "VRN", Value: vrn, Bound: t.regionsPerBank}
	}

	table := t.banks[bank]

	table.RLock()
	prn := table.forward[vrn]
	table.RUnlock()

	return (prn << t.vrnShift) | t.RegionOffset(vra), nil
}

// PRNForVRN returns the physical region currently backing the virtual
// region.
func (t *Translator) PRNForVRN(bank, vrn uint64) (uint64, error) {
	if bank >= t.numBanks {
		return 0, &OutOfRangeError{
			Field: "bank", Value: bank, Bound: t.numBanks}
	}

	if vrn >= t.regionsPerBank {
		return 0, &OutOfRangeError{
			Field: "VRN", Value: vrn, Bound: t.regionsPerBank}
	}

	table := t.banks[bank]

	table.RLock()
	prn := table.forward[vrn]
	table.RUnlock()

	return prn, nil
}

// VRNForPRN returns the virtual region currently mapped onto the physical
// region.
func (t *Translator) VRNForPRN(bank, prn uint64) (uint64, error) {
	if bank >= t.numBanks {
		return 0, &OutOfRangeError{
			Field: "bank", Value: bank, Bound: t.numBanks}
	}

	if prn >= t.regionsPerBank {
		return 0, &OutOfRangeError{
			Field: "PRN", Value: prn, Bound: t.regionsPerBank}
	}

	table := t.banks[bank]

	table.RLock()
	vrn := table.inverse[prn]
	table.RUnlock()

	return vrn, nil
}

// SwapRegions exchanges the physical regions backing two virtual regions and
// fixes the inverse entries of the two displaced PRNs. The exchange is a
// single indivisible step relative to any concurrent translation on the same
// bank.
func (t *Translator) SwapRegions(bank, vrnA, vrnB uint64) error {
	if bank >= t.numBanks {
		return &OutOfRangeError{
			Field: "bank", Value: bank, Bound: t.numBanks}
	}

	if vrnA >= t.regionsPerBank {
		return &OutOfRangeError{
			Field: "VRN", Value: vrnA, Bound: t.regionsPerBank}
	}

	if vrnB >= t.regionsPerBank {
		return &OutOfRangeError{
			Field: "VRN", Value: vrnB, Bound: t.regionsPerBank}
	}

	if vrnA == vrnB {
		log.Printf("tiering: bank %d: swap of region %d with itself ignored",
			bank, vrnA)
		return nil
	}

	table := t.banks[bank]

	table.Lock()
	defer table.Unlock()

	prnA := table.forward[vrnA]
	prnB := table.forward[vrnB]

	table.forward[vrnA] = prnB
	table.forward[vrnB] = prnA
	table.inverse[prnA] = vrnB
	table.inverse[prnB] = vrnA

	return t.checkSwapLocked(bank, table, vrnA, vrnB)
}

// checkSwapLocked verifies that the four entries touched by a swap still
// agree with each other. The caller must hold the bank's write lock.
func (t *Translator) checkSwapLocked(
	bank uint64,
	table *bankTable,
	vrns ...uint64,
) error {
	for _, vrn := range vrns {
		prn := table.forward[vrn]
		if table.inverse[prn] != vrn {
			return &InvariantViolationError{
				Bank: bank,
				Detail: "forward and inverse tables disagree on VRN " +
					strconv.FormatUint(vrn, 10),
			}
		}
	}

	return nil
}

// VerifyPermutation checks that the forward and inverse tables of a bank are
// total permutations and inverses of each other.
func (t *Translator) VerifyPermutation(bank uint64) error {
	if bank >= t.numBanks {
		return &OutOfRangeError{
			Field: "bank", Value: bank, Bound: t.numBanks}
	}

	table := t.banks[bank]

	table.RLock()
	defer table.RUnlock()

	seen := make([]bool, t.regionsPerBank)

	for vrn := uint64(0); vrn < t.regionsPerBank; vrn++ {
		prn := table.forward[vrn]

		if prn >= t.regionsPerBank {
			return &InvariantViolationError{
				Bank:   bank,
				Detail: "PRN " + strconv.FormatUint(prn, 10) + " out of range",
			}
		}

		if seen[prn] {
			return &InvariantViolationError{
				Bank:   bank,
				Detail: "PRN " + strconv.FormatUint(prn, 10) + " owned by two VRNs",
			}
		}

		seen[prn] = true

		if table.inverse[prn] != vrn {
			return &InvariantViolationError{
				Bank: bank,
				Detail: "forward and inverse tables disagree on VRN " +
					strconv.FormatUint(vrn, 10),
			}
		}
	}

	return nil
}

// MappingSnapshot returns a copy of the forward table of a bank.
func (t *Translator) MappingSnapshot(bank uint64) ([]uint64, error) {
	if bank >= t.numBanks {
		return nil, &OutOfRangeError{
			Field: "bank", Value: bank, Bound: t.numBanks}
	}

	table := t.banks[bank]

	table.RLock()
	defer table.RUnlock()

	snapshot := make([]uint64, t.regionsPerBank)
	copy(snapshot, table.forward)

	return snapshot, nil
}
