package rainflow

import "github.com/ja7ad/rainflow/pkg/numeric"

// damageHistoryChunk is the fixed growth increment for the per-sample
// damage-history buffer (spec: "damage-history buffer... grow... during
// damage-history growth (fixed-increment)", unlike the TP store's geometric
// growth).
const damageHistoryChunk = 4096

// ensureDamageHistory grows the damage-history buffer so index pos-1 exists.
func (e *Engine) ensureDamageHistory(pos uint64) {
	need := int(pos)
	for len(e.damageHistory) < need {
		grow := len(e.damageHistory) + damageHistoryChunk
		if grow < need {
			grow = need
		}
		next := make([]float64, grow)
		copy(next, e.damageHistory)
		e.damageHistory = next
	}
}

// spreadDamage distributes a closed cycle's weighted damage across the
// samples between from.Position and next.Position, per the configured
// SpreadMode. Every mode assigns the full amount somewhere, so
// sum(damageHistory) always equals the accumulated pseudo-damage (spec
// testable property 5).
func (e *Engine) spreadDamage(from, next TurningPoint, amount float64) {
	if amount == 0 {
		return
	}
	e.ensureDamageHistory(next.Position)

	switch e.cfg.Spread {
	case SpreadTransient23:
		// all of it lands at the cycle's closing point.
		e.damageHistory[next.Position-1] += amount

	case SpreadTransient23C:
		// the complementary variant: lands at the cycle's opening point.
		e.damageHistory[from.Position-1] += amount

	case SpreadRampAmplitude23:
		n := int(next.Position - from.Position)
		if n <= 0 {
			e.damageHistory[next.Position-1] += amount
			return
		}
		sumW := float64(n * (n + 1) / 2)
		for i := 1; i <= n; i++ {
			pos := from.Position + uint64(i)
			w := numeric.SafeDiv(float64(i), sumW)
			e.damageHistory[pos-1] += amount * w
		}

	case SpreadHalf23:
		fallthrough
	default:
		e.damageHistory[from.Position-1] += amount / 2
		e.damageHistory[next.Position-1] += amount / 2
	}
}
