// Package rainflow implements a streaming rainflow cycle counter for fatigue
// analysis of one-dimensional load/stress time series: a two-stage
// turning-point detector, the four-point and Clormann-Seeger HCM cycle
// finders, residue-finalization policies, and damage/histogram accumulation.
package rainflow

import "github.com/ja7ad/rainflow/pkg/class"

// Sample is one fed value together with its 1-based stream position.
type Sample struct {
	Value    float64
	Position uint64
}

// TurningPoint is a confirmed local extremum: its value, its original sample
// position, and its discretized class. Immutable once emitted.
type TurningPoint struct {
	Value    float64
	Position uint64
	Class    int
}

// WohlerCurve holds the S-N curve coefficients used for pseudo-damage.
type WohlerCurve struct {
	SD    float64 // endurance amplitude, > 0
	ND    float64 // endurance cycle count, > 0
	K     float64 // slope, < 0
	K2    float64 // secondary slope; defaults to K (Miner-elementary) when 0
	Omega float64 // omission amplitude, >= 0
}

// valid reports whether the curve has usable endurance parameters. A zero
// WohlerCurve disables damage accumulation entirely rather than erroring,
// letting the engine run as a pure cycle counter when damage isn't wanted.
func (w WohlerCurve) valid() bool {
	return w.SD > 0 && w.ND > 0 && w.K < 0
}

// resolved returns a copy with K2 defaulted to K when unset.
func (w WohlerCurve) resolved() WohlerCurve {
	if w.K2 == 0 {
		w.K2 = w.K
	}
	return w
}

// Flags is a bitmask selecting which histograms the cycle processor updates,
// plus the margin-enforcement toggle.
type Flags uint32

const (
	FlagCountMatrix Flags = 1 << iota
	FlagCountRP
	FlagCountLCUp
	FlagCountLCDn
	FlagEnforceMargin
)

// FlagCountLC is shorthand for both level-crossing directions.
const FlagCountLC = FlagCountLCUp | FlagCountLCDn

// FlagCountAll enables the matrix, range-pair and level-crossing histograms.
const FlagCountAll = FlagCountMatrix | FlagCountRP | FlagCountLC

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether any bit in mask is set.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }

// Method selects the cycle-extraction algorithm.
type Method int

const (
	MethodNone Method = iota
	MethodFourPoint
	MethodHCM
)

func (m Method) String() string {
	switch m {
	case MethodFourPoint:
		return "4ptm"
	case MethodHCM:
		return "hcm"
	default:
		return "none"
	}
}

// SpreadMode selects how a single cycle's damage is distributed across the
// damage-history buffer, when enabled.
type SpreadMode int

const (
	SpreadNone SpreadMode = iota
	SpreadHalf23
	SpreadRampAmplitude23
	SpreadTransient23
	SpreadTransient23C
)

// ResidualMethod selects the finalization policy applied to the residue at
// stream end. Numeric values are the canonical codes exposed by the
// ingestion API (spec section 6).
type ResidualMethod int

const (
	ResidualNone           ResidualMethod = 0
	ResidualIgnore         ResidualMethod = 1
	ResidualDiscard        ResidualMethod = 2
	ResidualHalfCycles     ResidualMethod = 3
	ResidualFullCycles     ResidualMethod = 4
	ResidualClormannSeeger ResidualMethod = 5
	ResidualRPDIN45667     ResidualMethod = 6
	ResidualRepeated       ResidualMethod = 7
)

// Config bundles everything Init needs: class discretization, hysteresis,
// the Wohler curve, counting flags/method, cycle weights and the optional
// damage-history / TP-store toggles.
type Config struct {
	Class      class.Params
	Hysteresis float64
	Wohler     WohlerCurve
	Flags      Flags
	Method     Method
	Spread     SpreadMode

	// FullInc/HalfInc are the cycle weights used by full and half cycles.
	// Any positive integer is permitted; defaults are applied by Init when
	// both are zero (Full=2, Half=1), matching the ASTM convention that a
	// full cycle counts twice what a half cycle does.
	FullInc uint64
	HalfInc uint64

	// EnableDamageHistory turns on per-sample damage spreading.
	EnableDamageHistory bool

	// EnableTPStore turns on the append-only turning-point log.
	EnableTPStore bool
	// TPCapHint preallocates the TP store's backing array.
	TPCapHint int
}

// CountsLimit is the documented per-cell ceiling for histogram counters.
// Exceeding it is a precondition violation (ErrCounterOverflow), not a
// silent wrap.
const CountsLimit uint64 = 1 << 62
