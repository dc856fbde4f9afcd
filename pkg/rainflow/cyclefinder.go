package rainflow

// cycleFinder is the capability bundle selected once, at construction time,
// for the configured extraction method (spec section 9: "Delegate hooks...
// map to a capability bundle of overridable operations selected at init — a
// polymorphism mechanism without inheritance"). Every confirmed turning
// point is fed through step, whether it comes from the normal feed path or
// from Finalize's interim-promotion step.
type cycleFinder interface {
	step(tp TurningPoint) error
}

// newCycleFinder selects the cycleFinder implementation for cfg.Method.
func newCycleFinder(e *Engine) cycleFinder {
	switch e.cfg.Method {
	case MethodFourPoint:
		return fourPointFinder{e: e}
	case MethodHCM:
		return hcmFinder{e: e}
	default:
		return residueOnlyFinder{e: e}
	}
}

// fourPointFinder appends to the residue and runs the 4PTM sweep.
type fourPointFinder struct{ e *Engine }

func (f fourPointFinder) step(tp TurningPoint) error {
	if err := f.e.residueBuf.append(tp); err != nil {
		return err
	}
	return f.e.fourPointStep()
}

// hcmFinder runs the Clormann-Seeger HCM stack algorithm.
type hcmFinder struct{ e *Engine }

func (f hcmFinder) step(tp TurningPoint) error {
	return f.e.hcmStep(tp)
}

// residueOnlyFinder (MethodNone) performs no cycle extraction: it only
// maintains the residue, leaving all closing to a residual finalizer.
type residueOnlyFinder struct{ e *Engine }

func (f residueOnlyFinder) step(tp TurningPoint) error {
	return f.e.residueBuf.append(tp)
}
