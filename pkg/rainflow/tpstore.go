package rainflow

// tpStore is the append-only log of every confirmed turning point, keyed by
// its original sample position. It grows geometrically like any Go slice
// append, and can be locked to make it immutable once finalized.
type tpStore struct {
	entries []TurningPoint
	locked  bool
}

func newTPStore(capHint int) tpStore {
	if capHint <= 0 {
		capHint = 64
	}
	return tpStore{entries: make([]TurningPoint, 0, capHint)}
}

func (s *tpStore) append(tp TurningPoint) error {
	if s.locked {
		return wrapErr(KindInvalidState, "tpStore.append", ErrInvalidState)
	}
	s.entries = append(s.entries, tp)
	return nil
}

func (s *tpStore) lock() { s.locked = true }

// marginState implements the one-TP delay stage used when ENFORCE_MARGIN is
// set: every detector-confirmed TP is held back by one step so that, at
// finalize, the true last-fed sample can override it when their values
// coincide (spec section 4.6). The first sample is always force-logged
// immediately as the left margin; the delay only applies to the right edge.
type marginState struct {
	enabled bool
	pending *TurningPoint
}

// logConfirmedTP records a detector-confirmed TP through the delay stage.
func (e *Engine) logConfirmedTP(tp TurningPoint) error {
	if !e.cfg.EnableTPStore {
		return nil
	}
	if !e.margin.enabled {
		return e.tpStore.append(tp)
	}
	if tp.Position == 1 {
		// position 1 was already force-logged by logLeftMargin; the
		// detector's global-extrema search can independently confirm it as
		// its own first turning point when the stream never dips below it.
		return nil
	}
	if e.margin.pending != nil {
		if err := e.tpStore.append(*e.margin.pending); err != nil {
			return err
		}
	}
	held := tp
	e.margin.pending = &held
	return nil
}

// logLeftMargin force-records the very first fed sample as a TP, bypassing
// hysteresis, when margin enforcement is enabled.
func (e *Engine) logLeftMargin(s Sample) error {
	if !e.cfg.EnableTPStore || !e.margin.enabled {
		return nil
	}
	tp := TurningPoint{Value: s.Value, Position: s.Position, Class: e.cfg.Class.Quantize(s.Value)}
	return e.tpStore.append(tp)
}

// flushMargin is called at Finalize: it writes any still-pending delayed TP
// and the forced right-margin TP, applying the dominance rule (the
// right-margin sample wins only when its value equals the pending TP and
// its position is strictly greater than 1).
func (e *Engine) flushMargin() error {
	if !e.cfg.EnableTPStore || !e.margin.enabled || !e.haveLastSample {
		return nil
	}
	right := TurningPoint{Value: e.lastSample.Value, Position: e.lastSample.Position, Class: e.cfg.Class.Quantize(e.lastSample.Value)}

	if right.Position == 1 {
		// single-sample stream: already logged as the left margin.
		e.margin.pending = nil
		return nil
	}

	if e.margin.pending != nil {
		if e.margin.pending.Value == right.Value {
			e.margin.pending = nil
			return e.tpStore.append(right)
		}
		pending := *e.margin.pending
		e.margin.pending = nil
		if err := e.tpStore.append(pending); err != nil {
			return err
		}
		return e.tpStore.append(right)
	}

	return e.tpStore.append(right)
}
