// Package tiering implements dynamic region-level address translation and
// hot/cold migration for an asymmetric-latency non-volatile memory bank.
//
// Physical slots close to the row/column decoders are faster than the rest of
// the array. The package keeps a per-bank permutation between virtual and
// physical region numbers, accumulates access statistics over fixed-length
// epochs, and swaps hot regions into fast slots at epoch boundaries.
package tiering

import "fmt"

// A ConfigError reports an invalid or missing configuration parameter. It is
// raised once at build time, before any traffic is processed.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tiering config: %s: %s", e.Param, e.Reason)
}

// An OutOfRangeError reports a bank, region number, or address outside the
// configured bounds. The operation that raised it has no effect.
type OutOfRangeError struct {
	Field string
	Value uint64
	Bound uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("tiering: %s %d out of range [0, %d)",
		e.Field, e.Value, e.Bound)
}

// An InvariantViolationError reports a corrupted region table. It is fatal:
// continuing would silently corrupt all subsequent translations, so the host
// simulation must abort.
type InvariantViolationError struct {
	Bank   uint64
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("tiering: region table corrupted in bank %d: %s",
		e.Bank, e.Detail)
}
