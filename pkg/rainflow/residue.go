package rainflow

// residue is the ordered sequence of confirmed turning points not yet
// consumed by a closed cycle. It doubles as the Clormann-Seeger HCM stack
// when the engine is configured for that method (see hcm.go): a single
// contiguous container mutated in place by whichever cycle finder is active,
// and also the thing exposed to callers as the result accessor.
type residue struct {
	points []TurningPoint
	cap    int // 2*class.Count, the documented maximum size
}

func newResidue(capacity int) residue {
	return residue{points: make([]TurningPoint, 0, capacity), cap: capacity}
}

func (r *residue) append(tp TurningPoint) error {
	if len(r.points) >= r.cap {
		return wrapErr(KindOutOfMemory, "residue.append", ErrOutOfMemory)
	}
	r.points = append(r.points, tp)
	return nil
}

func (r *residue) len() int { return len(r.points) }

func (r *residue) clear() { r.points = r.points[:0] }

// removeInnerTwo implements the 4PTM/Clormann-Seeger shift: drops the points
// at index i+1 and i+2 (B and C of a quadruple starting at i), shifting
// everything after them left by two.
func (r *residue) removeInnerTwo(i int) {
	r.points = append(r.points[:i+1], r.points[i+3:]...)
}

// valuesAlternate reports whether the residue is a strictly alternating
// sequence of peaks/valleys (spec invariant 1). Exercised by tests, not by
// the hot path.
func (r *residue) valuesAlternate() bool {
	for i := 0; i+2 < len(r.points); i++ {
		d1 := r.points[i+1].Value - r.points[i].Value
		d2 := r.points[i+2].Value - r.points[i+1].Value
		if d1 == 0 || d2 == 0 {
			return false
		}
		if (d1 > 0) == (d2 > 0) {
			return false
		}
	}
	return true
}
