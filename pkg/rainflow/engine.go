package rainflow

import "fmt"

// State is one step of the engine's monotonic lifecycle
// (INIT0 -> INIT -> BUSY -> BUSY_INTERIM -> FINALIZE -> FINISHED|ERROR),
// except Reset which always returns to INIT0.
type State int

const (
	StateInit0 State = iota
	StateInit
	StateBusy
	StateBusyInterim
	StateFinalize
	StateFinished
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit0:
		return "INIT0"
	case StateInit:
		return "INIT"
	case StateBusy:
		return "BUSY"
	case StateBusyInterim:
		return "BUSY_INTERIM"
	case StateFinalize:
		return "FINALIZE"
	case StateFinished:
		return "FINISHED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Engine is the streaming rainflow counter. It owns every container
// described by the data model (residue/HCM stack, histograms, TP store,
// damage history) and is exclusively owned by its caller: there is no
// interior locking and concurrent use from multiple goroutines is
// undefined, matching the single-threaded cooperative model of spec
// section 5.
type Engine struct {
	cfg   Config
	state State
	err   error

	det        detector
	residueBuf residue
	hcmIR      int
	finder     cycleFinder

	matrix        []uint64
	rangePair     []uint64
	levelCrossing []uint64
	damage        float64
	damageHistory []float64
	closedCycles  uint64

	tpStore tpStore
	margin  marginState

	nextPos        uint64
	lastSample     Sample
	haveLastSample bool
}

// New initializes an engine (spec: init). Preconditions: 1 < class_count <=
// 512, class_width > 0, hysteresis >= 0.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Class.Validate(); err != nil {
		return nil, wrapErr(KindInvalidArgument, "rainflow.New", err)
	}
	if cfg.Hysteresis < 0 {
		return nil, wrapErr(KindInvalidArgument, "rainflow.New", ErrInvalidHysteresis)
	}
	if cfg.FullInc == 0 && cfg.HalfInc == 0 {
		cfg.FullInc, cfg.HalfInc = 2, 1
	} else if cfg.FullInc == 0 || cfg.HalfInc == 0 {
		return nil, wrapErr(KindInvalidArgument, "rainflow.New", fmt.Errorf("FullInc and HalfInc must both be set or both be zero"))
	}
	cfg.Wohler = cfg.Wohler.resolved()

	e := &Engine{cfg: cfg}
	e.resetContainers()
	e.state = StateInit
	return e, nil
}

func (e *Engine) resetContainers() {
	n := e.cfg.Class.Count
	e.det = newDetector(e.cfg.Hysteresis)
	e.residueBuf = newResidue(2 * n)
	e.hcmIR = 0
	e.matrix = make([]uint64, n*n)
	e.rangePair = make([]uint64, n)
	e.levelCrossing = make([]uint64, n)
	e.damage = 0
	e.damageHistory = e.damageHistory[:0]
	e.closedCycles = 0
	e.tpStore = newTPStore(e.cfg.TPCapHint)
	e.margin = marginState{enabled: e.cfg.Flags.Has(FlagEnforceMargin)}
	e.nextPos = 1
	e.haveLastSample = false
	e.finder = newCycleFinder(e)
}

// Reset zeroes histograms, residue/interim, detector and HCM state, but
// retains class/Wohler configuration and prior allocations (spec 4.8).
// Returns the engine to INIT0.
func (e *Engine) Reset() error {
	if e == nil {
		return wrapErr(KindInvalidArgument, "rainflow.Reset", ErrNilEngine)
	}
	if e.matrix == nil {
		// storage already released by Deinit.
		return wrapErr(KindInvalidState, "rainflow.Reset", ErrInvalidState)
	}
	e.det = newDetector(e.cfg.Hysteresis)
	e.residueBuf.points = e.residueBuf.points[:0]
	e.hcmIR = 0
	for i := range e.matrix {
		e.matrix[i] = 0
	}
	for i := range e.rangePair {
		e.rangePair[i] = 0
	}
	for i := range e.levelCrossing {
		e.levelCrossing[i] = 0
	}
	e.damage = 0
	e.damageHistory = e.damageHistory[:0]
	e.closedCycles = 0
	e.tpStore.entries = e.tpStore.entries[:0]
	e.tpStore.locked = false
	e.margin = marginState{enabled: e.cfg.Flags.Has(FlagEnforceMargin)}
	e.nextPos = 1
	e.haveLastSample = false
	e.finder = newCycleFinder(e)
	e.err = nil
	e.state = StateInit0
	return nil
}

// Deinit releases the engine's backing storage. Go has no manual memory
// management, so this is an idempotent cleanup hook (mirroring
// proc.Collector.Close in the teacher) rather than a true free; calling any
// other method afterwards returns ErrInvalidState.
func (e *Engine) Deinit() error {
	if e == nil {
		return wrapErr(KindInvalidArgument, "rainflow.Deinit", ErrNilEngine)
	}
	e.matrix = nil
	e.rangePair = nil
	e.levelCrossing = nil
	e.damageHistory = nil
	e.residueBuf = residue{}
	e.tpStore = tpStore{}
	e.state = StateFinished
	return nil
}

func (e *Engine) fail(kind Kind, op string, err error) error {
	e.err = wrapErr(kind, op, err)
	e.state = StateError
	return e.err
}

// Err returns the last fatal error, if the engine is in the ERROR state.
func (e *Engine) Err() error { return e.err }

// State returns the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

func (e *Engine) canFeed() error {
	switch e.state {
	case StateInit0, StateInit, StateBusy, StateBusyInterim:
		return nil
	default:
		return wrapErr(KindInvalidState, "rainflow.Feed", ErrInvalidState)
	}
}

// Feed ingests a chunk of raw values, auto-assigning each the next stream
// position. feed(A); feed(B) is equivalent to feed(A||B) (spec testable
// property 3).
func (e *Engine) Feed(values []float64) error {
	if e == nil {
		return wrapErr(KindInvalidArgument, "rainflow.Feed", ErrNilEngine)
	}
	if err := e.canFeed(); err != nil {
		return err
	}
	for _, v := range values {
		if err := e.feedOneValue(v); err != nil {
			return err
		}
	}
	return nil
}

// ValuePosition is one feed_tuple element; a zero Position means
// "auto-assign the next stream position".
type ValuePosition struct {
	Value    float64
	Position uint64
}

// FeedTuples ingests explicit (value, position) pairs.
func (e *Engine) FeedTuples(tuples []ValuePosition) error {
	if e == nil {
		return wrapErr(KindInvalidArgument, "rainflow.FeedTuples", ErrNilEngine)
	}
	if err := e.canFeed(); err != nil {
		return err
	}
	for _, t := range tuples {
		pos := t.Position
		if pos == 0 {
			pos = e.nextPos
		} else if pos < e.nextPos {
			return e.fail(KindInvalidArgument, "rainflow.FeedTuples", ErrInvalidPosition)
		}
		if err := e.feedAt(t.Value, pos); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) feedOneValue(v float64) error {
	return e.feedAt(v, e.nextPos)
}

func (e *Engine) feedAt(v float64, pos uint64) error {
	s := Sample{Value: v, Position: pos}
	firstSample := !e.haveLastSample
	e.lastSample = s
	e.haveLastSample = true
	e.nextPos = pos + 1

	if firstSample {
		if err := e.logLeftMargin(s); err != nil {
			return e.fail(KindOutOfMemory, "rainflow.Feed", err)
		}
	}

	tp, ok := e.det.step(v, pos, e.cfg.Class.Quantize)
	if !ok {
		if e.state == StateInit || e.state == StateInit0 {
			e.state = StateBusy
		}
		return nil
	}

	if err := e.logConfirmedTP(tp); err != nil {
		return e.fail(KindOutOfMemory, "rainflow.Feed", err)
	}

	if err := e.dispatchConfirmedTP(tp); err != nil {
		return e.fail(KindInvalidState, "rainflow.Feed", err)
	}

	e.state = StateBusyInterim
	return nil
}

// dispatchConfirmedTP feeds one newly-confirmed turning point to the active
// cycleFinder. Shared between the normal feed path and Finalize's
// interim-promotion step, since promoting the interim at stream end can
// complete a quadruple (or HCM reversal) that closes one more cycle before
// any residual policy runs.
func (e *Engine) dispatchConfirmedTP(tp TurningPoint) error {
	return e.finder.step(tp)
}

// Damage returns the cumulative pseudo-damage.
func (e *Engine) Damage() float64 { return e.damage }

// Matrix returns the row-major [from][to] rainflow matrix.
func (e *Engine) Matrix() []uint64 { return e.matrix }

// RangePair returns the range-pair histogram.
func (e *Engine) RangePair() []uint64 { return e.rangePair }

// LevelCrossing returns the level-crossing histogram.
func (e *Engine) LevelCrossing() []uint64 { return e.levelCrossing }

// DamageHistory returns the per-sample damage vector, if enabled.
func (e *Engine) DamageHistory() []float64 { return e.damageHistory }

// Residue returns the current residue (or HCM stack) contents.
func (e *Engine) Residue() []TurningPoint {
	out := make([]TurningPoint, e.residueBuf.len())
	copy(out, e.residueBuf.points)
	return out
}

// TurningPoints returns the TP-store log, if enabled.
func (e *Engine) TurningPoints() []TurningPoint {
	out := make([]TurningPoint, len(e.tpStore.entries))
	copy(out, e.tpStore.entries)
	return out
}

// ClosedCycleCount returns the number of cycles closed so far (spec
// testable property 4 operand).
func (e *Engine) ClosedCycleCount() uint64 { return e.closedCycles }
