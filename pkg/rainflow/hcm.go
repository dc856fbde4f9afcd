package rainflow

// hcmStep implements the Clormann-Seeger HCM method. The auxiliary stack
// reuses the engine's residue container directly (residue as both history
// and work set, per the data model notes): IZ is simply the stack's current
// length, IR is tracked separately as the "reserved floor" below which the
// inner loop never looks twice.
//
// K is the newly confirmed turning point, fed one at a time as the detector
// produces it.
func (e *Engine) hcmStep(k TurningPoint) error {
	if e.hcmIR == 0 {
		if err := e.residueBuf.append(k); err != nil {
			return err
		}
		e.hcmIR = 1
		return nil
	}

	for {
		iz := e.residueBuf.len()
		stack := e.residueBuf.points

		if iz > e.hcmIR {
			i := stack[iz-2]
			j := stack[iz-1]
			if (k.Value-j.Value)*(j.Value-i.Value) >= 0 {
				// J is not a true turning point given K.
				e.residueBuf.points = stack[:iz-1]
				continue
			}
			if abs(k.Value-j.Value) >= abs(j.Value-i.Value) {
				next := k
				if err := e.processCycle(i, j, &next, e.cfg.FullInc); err != nil {
					return err
				}
				e.residueBuf.points = stack[:iz-2]
				if e.hcmIR > e.residueBuf.len() {
					e.hcmIR = e.residueBuf.len()
				}
				continue
			}
			break
		}

		if iz == e.hcmIR && iz >= 1 {
			j := stack[iz-1]
			if (k.Value-j.Value)*j.Value >= 0 {
				e.residueBuf.points = stack[:iz-1]
				e.hcmIR--
			} else if abs(k.Value) > abs(j.Value) {
				e.hcmIR++
			}
			break
		}

		break
	}

	return e.residueBuf.append(k)
}
