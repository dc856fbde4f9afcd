// Package class implements the uniform class discretizer used to map a
// continuous sample value onto an integer class index.
package class

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by Params validation.
var (
	ErrCountOutOfRange = errors.New("class: count must be in (1,512]")
	ErrWidthNotPositive = errors.New("class: width must be > 0")
)

// MaxCount is the highest permitted class count (spec: 1 < count <= 512).
const MaxCount = 512

// Params defines a uniform partition of the value axis into Count half-open
// intervals [Offset+k*Width, Offset+(k+1)*Width).
type Params struct {
	Offset float64
	Width  float64
	Count  int
}

// Validate checks the class-count/width preconditions.
func (p Params) Validate() error {
	if p.Count <= 1 || p.Count > MaxCount {
		return fmt.Errorf("%w: got %d", ErrCountOutOfRange, p.Count)
	}
	if !(p.Width > 0) {
		return fmt.Errorf("%w: got %v", ErrWidthNotPositive, p.Width)
	}
	return nil
}

// Quantize maps v to its class index, clamped to [0, Count-1].
//
// Values at or below Offset fall in the first class; the spec treats this as
// a user-error precondition and does not guard beyond the clamp.
func (p Params) Quantize(v float64) int {
	k := int(math.Floor((v - p.Offset) / p.Width))
	if k < 0 {
		return 0
	}
	if k > p.Count-1 {
		return p.Count - 1
	}
	return k
}

// Bounds returns the lower (inclusive) and upper (exclusive) bound of class k.
func (p Params) Bounds(k int) (lo, hi float64) {
	lo = p.Offset + float64(k)*p.Width
	hi = lo + p.Width
	return
}
