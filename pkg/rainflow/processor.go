package rainflow

import (
	"math"

	"github.com/ja7ad/rainflow/pkg/numeric"
)

// processCycle updates the rainflow matrix, range-pair histogram,
// level-crossing histogram and pseudo-damage for one closed cycle
// from->to (spec section 4.5). Histogram cells each advance by exactly one
// occurrence per closed cycle; weight only scales the damage contribution
// (weight/FullInc: 1.0 for a genuine full cycle, a fraction for a
// half-cycle counted by a residual finalizer) — per ASTM E1049 terminology
// a half cycle is still one counted occurrence, just worth half the
// fatigue damage. next, when non-nil, is the turning point immediately
// following the cycle's closing point, used for damage-history spreading;
// when nil (every residual-finalizer closure has no "next" sample), the
// spread falls back to the cycle's own from->to span so the contribution
// is never silently dropped from the history.
func (e *Engine) processCycle(from, to TurningPoint, next *TurningPoint, weight uint64) error {
	cf, ct := from.Class, to.Class
	if cf == ct {
		return nil
	}

	if err := e.accrueDamage(from, to, next, weight); err != nil {
		return err
	}
	return e.bumpHistograms(cf, ct)
}

// processRangePairOnly updates only the range-pair and level-crossing
// histograms, skipping the matrix and damage entirely (used by the DIN
// 45667 residual finalizer, which explicitly excludes both).
func (e *Engine) processRangePairOnly(from, to TurningPoint) error {
	cf, ct := from.Class, to.Class
	if cf == ct {
		return nil
	}
	if e.cfg.Flags.Has(FlagCountRP) {
		if err := addWithLimit(&e.rangePair[absInt(ct-cf)], 1); err != nil {
			return err
		}
	}
	return e.bumpLevelCrossing(cf, ct)
}

func (e *Engine) accrueDamage(from, to TurningPoint, next *TurningPoint, weight uint64) error {
	w := e.cfg.Wohler
	if !w.valid() {
		return nil
	}
	cf, ct := from.Class, to.Class
	r := e.cfg.Class.Width * float64(absInt(ct-cf))
	sa := r / 2
	if sa <= w.Omega {
		return nil
	}

	var d float64
	if sa > w.SD {
		d = numeric.Pow(sa/w.SD, math.Abs(w.K)) / w.ND
	} else {
		d = numeric.Pow(sa/w.SD, math.Abs(w.K2)) / w.ND
	}

	weighted := d * float64(weight) / float64(e.cfg.FullInc)
	e.damage += weighted

	if e.cfg.EnableDamageHistory {
		// No following turning point is known (a residual finalizer closing a
		// cycle out of the residue, or a 4PTM quadruple that only completes at
		// interim promotion): spread against the cycle's own closing point
		// instead of dropping the contribution, so damageHistory still sums
		// to the full accumulated damage.
		dst := &to
		if next != nil {
			dst = next
		}
		e.spreadDamage(from, *dst, weighted)
	}
	return nil
}

func (e *Engine) bumpHistograms(cf, ct int) error {
	if e.cfg.Flags.Has(FlagCountMatrix) {
		if err := addWithLimit(&e.matrix[cf*e.cfg.Class.Count+ct], 1); err != nil {
			return err
		}
	}
	if e.cfg.Flags.Has(FlagCountRP) {
		if err := addWithLimit(&e.rangePair[absInt(ct-cf)], 1); err != nil {
			return err
		}
	}
	if err := e.bumpLevelCrossing(cf, ct); err != nil {
		return err
	}
	e.closedCycles++
	return nil
}

func (e *Engine) bumpLevelCrossing(cf, ct int) error {
	if cf < ct && e.cfg.Flags.Has(FlagCountLCUp) {
		for i := cf; i < ct; i++ {
			if err := addWithLimit(&e.levelCrossing[i], 1); err != nil {
				return err
			}
		}
	} else if cf > ct && e.cfg.Flags.Has(FlagCountLCDn) {
		for i := ct; i < cf; i++ {
			if err := addWithLimit(&e.levelCrossing[i], 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func addWithLimit(cell *uint64, inc uint64) error {
	if *cell > CountsLimit-inc {
		return wrapErr(KindInvalidState, "processCycle", ErrCounterOverflow)
	}
	*cell += inc
	return nil
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
