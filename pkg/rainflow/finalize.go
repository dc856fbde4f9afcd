package rainflow

// Finalize applies one of the seven residual-method policies (spec section
// 4.7) to the still-open residue/interim at stream end, transitioning the
// engine to FINISHED. It may only be called from INIT, BUSY or BUSY_INTERIM.
func (e *Engine) Finalize(method ResidualMethod) error {
	if e == nil {
		return wrapErr(KindInvalidArgument, "rainflow.Finalize", ErrNilEngine)
	}
	switch e.state {
	case StateInit, StateBusy, StateBusyInterim:
	default:
		return wrapErr(KindInvalidState, "rainflow.Finalize", ErrInvalidState)
	}
	e.state = StateFinalize

	if method != ResidualRepeated {
		if err := e.promoteInterim(); err != nil {
			return e.fail(KindOutOfMemory, "rainflow.Finalize", err)
		}
	}

	var err error
	switch method {
	case ResidualNone, ResidualIgnore:
		// residue retained untouched, no further counting.
	case ResidualDiscard:
		e.residueBuf.clear()
	case ResidualHalfCycles:
		if err = e.finalizeAdjacentPairs(e.cfg.HalfInc); err == nil {
			e.residueBuf.clear()
		}
	case ResidualFullCycles:
		if err = e.finalizeAdjacentPairs(e.cfg.FullInc); err == nil {
			e.residueBuf.clear()
		}
	case ResidualClormannSeeger:
		err = e.finalizeClormannSeeger()
	case ResidualRPDIN45667:
		err = e.finalizeRPDIN45667()
	case ResidualRepeated:
		err = e.finalizeRepeated()
	default:
		err = ErrUnknownResidualMethod
	}
	if err != nil {
		return e.fail(KindInvalidState, "rainflow.Finalize", err)
	}

	if err := e.flushMargin(); err != nil {
		return e.fail(KindOutOfMemory, "rainflow.Finalize", err)
	}
	e.tpStore.lock()
	e.state = StateFinished
	return nil
}

// promoteInterim turns the held interim into a confirmed turning point,
// logs it and runs it through the active cycle finder exactly as a normal
// feed would, so a quadruple (or HCM reversal) completed only by stream end
// still closes before any residual policy sees the residue.
func (e *Engine) promoteInterim() error {
	if e.det.interim == nil {
		return nil
	}
	tp := *e.det.interim
	e.det.interim = nil
	if err := e.logConfirmedTP(tp); err != nil {
		return err
	}
	return e.dispatchConfirmedTP(tp)
}

// finalizeAdjacentPairs counts every consecutive residue pair as one cycle
// at the given weight (HALFCYCLES/FULLCYCLES).
func (e *Engine) finalizeAdjacentPairs(inc uint64) error {
	pts := e.residueBuf.points
	for i := 0; i+1 < len(pts); i++ {
		if err := e.processCycle(pts[i], pts[i+1], nil, inc); err != nil {
			return err
		}
	}
	return nil
}

// finalizeClormannSeeger sweeps quadruples (A,B,C,D) looking for
// B*C<0 && |D|>=|B|>=|C|, closing B<->C and removing them; the remainder is
// then counted as half cycles. Per spec section 9 Open Question (a), the
// quadruple index is a plain offset into the residue (not residue_cnt+i).
func (e *Engine) finalizeClormannSeeger() error {
	i := 0
	for i+3 < e.residueBuf.len() {
		pts := e.residueBuf.points
		b, c, d := pts[i+1], pts[i+2], pts[i+3]
		if b.Value*c.Value < 0 && abs(d.Value) >= abs(b.Value) && abs(b.Value) >= abs(c.Value) {
			if err := e.processCycle(b, c, nil, e.cfg.FullInc); err != nil {
				return err
			}
			e.residueBuf.removeInnerTwo(i)
			continue
		}
		i++
	}
	if err := e.finalizeAdjacentPairs(e.cfg.HalfInc); err != nil {
		return err
	}
	e.residueBuf.clear()
	return nil
}

// finalizeRPDIN45667 matches adjacent ranges of equal magnitude (which, by
// the residue's alternating-sign invariant, are automatically opposite in
// slope direction) and counts each match as a full cycle into range-pair
// and level-crossing only, per spec section 9 Open Question (b) the gating
// mask includes level-crossing rather than double-counting range-pair.
// The residue is cleared unconditionally afterward.
func (e *Engine) finalizeRPDIN45667() error {
	if e.cfg.Flags.Any(FlagCountRP | FlagCountLC) {
		j := 0
		for j+2 < e.residueBuf.len() {
			pts := e.residueBuf.points
			a, b, c := pts[j], pts[j+1], pts[j+2]
			r1 := abs(b.Value - a.Value)
			r2 := abs(c.Value - b.Value)
			if r1 == r2 {
				if err := e.processRangePairOnly(b, c); err != nil {
					return err
				}
				e.residueBuf.removeInnerTwo(j)
				continue
			}
			j++
		}
	}
	e.residueBuf.clear()
	return nil
}

// finalizeRepeated re-feeds the residue (with interim) as though it were
// fresh input (Marsh's repeated-residue method), then finalizes the new
// residue with IGNORE semantics.
func (e *Engine) finalizeRepeated() error {
	vals := make([]float64, 0, e.residueBuf.len()+1)
	for _, tp := range e.residueBuf.points {
		vals = append(vals, tp.Value)
	}
	if e.det.interim != nil {
		vals = append(vals, e.det.interim.Value)
	}

	e.residueBuf.clear()
	e.hcmIR = 0
	e.det = newDetector(e.cfg.Hysteresis)

	for _, v := range vals {
		if err := e.feedOneValue(v); err != nil {
			return err
		}
	}

	return e.promoteInterim()
}
