package rainflow

// detector is the two-stage turning-point filter: a global-extrema search
// for the very first turning point, then hysteresis + peak/valley filtering
// of every sample after that. It holds no knowledge of cycle extraction; it
// only decides, for each fed sample, whether a previously-held point is now
// a confirmed turning point.
type detector struct {
	hysteresis float64

	found bool // true once the first TP has been confirmed (BUSY -> BUSY_INTERIM)

	// first-TP search state (BUSY)
	extrema0, extrema1 Sample // running min, running max

	// post-first-TP state (BUSY_INTERIM)
	interim       *TurningPoint
	internalSlope int8 // +1 rising, -1 falling
}

func newDetector(hysteresis float64) detector {
	return detector{hysteresis: hysteresis}
}

// step feeds one sample. If a turning point is newly confirmed, it is
// returned with ok=true. The detector's own state (extrema/interim/slope)
// is always updated regardless.
func (d *detector) step(v float64, pos uint64, cls func(float64) int) (tp TurningPoint, ok bool) {
	if !d.found && d.extrema0.Position == 0 && d.extrema1.Position == 0 {
		// very first sample ever: seed both extrema, no output.
		s := Sample{Value: v, Position: pos}
		d.extrema0, d.extrema1 = s, s
		return tp, false
	}

	if !d.found {
		if v < d.extrema0.Value {
			d.extrema0 = Sample{Value: v, Position: pos}
		} else if v > d.extrema1.Value {
			d.extrema1 = Sample{Value: v, Position: pos}
		}

		delta := abs(d.extrema1.Value - d.extrema0.Value)
		if delta >= d.hysteresis {
			fallingSlope := d.extrema0.Position == pos // current sample just set the minimum
			var first Sample
			if fallingSlope {
				first = d.extrema1
			} else {
				first = d.extrema0
			}
			firstTP := TurningPoint{Value: first.Value, Position: first.Position, Class: cls(first.Value)}

			if fallingSlope {
				d.internalSlope = -1
			} else {
				d.internalSlope = 1
			}
			interim := TurningPoint{Value: v, Position: pos, Class: cls(v)}
			d.interim = &interim
			d.found = true
			return firstTP, true
		}
		return tp, false
	}

	// BUSY_INTERIM
	r := d.interim
	delta := abs(v - r.Value)
	var s int8
	switch {
	case v > r.Value:
		s = 1
	case v < r.Value:
		s = -1
	default:
		s = 0
	}

	switch {
	case s == d.internalSlope:
		// continuation: replace interim, no TP confirmed.
		next := TurningPoint{Value: v, Position: pos, Class: cls(v)}
		d.interim = &next
		return tp, false
	case delta >= d.hysteresis:
		// reversal at or beyond hysteresis: confirm the held interim.
		confirmed := *r
		next := TurningPoint{Value: v, Position: pos, Class: cls(v)}
		d.interim = &next
		d.internalSlope = -d.internalSlope
		return confirmed, true
	default:
		// reversal within the hysteresis band: no-op.
		return tp, false
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
