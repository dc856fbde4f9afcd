package rainflow

// fourPointStep implements the symmetric four-point cycle-extraction rule
// (4PTM): while the residue holds at least four points, inspect the last
// four A,B,C,D and close the cycle B<->C whenever the inner range lies
// within the outer range, removing B and C and re-examining.
func (e *Engine) fourPointStep() error {
	for e.residueBuf.len() >= 4 {
		n := e.residueBuf.len()
		pts := e.residueBuf.points
		a4, b4, c4, d4 := pts[n-4], pts[n-3], pts[n-2], pts[n-1]

		b, c := minmax(b4.Value, c4.Value)
		a, d := minmax(a4.Value, d4.Value)

		if a > b || c > d {
			break
		}

		var next *TurningPoint
		if e.det.interim != nil {
			next = e.det.interim
		}
		if err := e.processCycle(b4, c4, next, e.cfg.FullInc); err != nil {
			return err
		}
		e.residueBuf.removeInnerTwo(n - 4)
	}
	return nil
}

func minmax(a, b float64) (lo, hi float64) {
	if a < b {
		return a, b
	}
	return b, a
}
