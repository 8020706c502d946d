package ids

import (
	"math"
	"math/big"

	"github.com/dragomit/desctl/errs"
)

// CombinedID is a mixed-radix-encoded id used for product states
// (intersection/union) and state vectors (synchronized
// composition). It offers a 64-bit fast path and an arbitrary-precision
// fallback (spec §3, §6): downstream code uses only hashing/equality on
// the id, so the fallback need not ever be narrowed unless a caller
// explicitly asks for an int64 via Int64.
type CombinedID struct {
	small    int64
	big      *big.Int // non-nil only if the value doesn't fit in int64
}

// FromInt64 wraps a plain int64 (e.g. a single state id) as a CombinedID.
func FromInt64(v int64) CombinedID {
	return CombinedID{small: v}
}

// Combine computes Σ digits[i] * radix^(k-1-i) for k = len(digits), the
// encoding used by both StateVector (radix = maxId+1, digits = state
// ids) and product-state ids (spec §3). It tries the 64-bit fast path
// first and falls back to math/big on overflow, matching §3's
// "overflow uses arbitrary-precision and then narrows" note - the
// narrowing itself only happens if/when Int64 is called.
func Combine(radix int64, digits []int64) (CombinedID, error) {
	if radix <= 0 {
		return CombinedID{}, errs.New(errs.InvalidArgument, "combine: radix must be positive, got %d", radix)
	}
	for _, d := range digits {
		if d < 0 {
			return CombinedID{}, errs.New(errs.InvalidArgument, "combine: digit must be non-negative, got %d", d)
		}
	}

	if small, ok := combineSmall(radix, digits); ok {
		return CombinedID{small: small}, nil
	}

	acc := big.NewInt(0)
	r := big.NewInt(radix)
	for _, d := range digits {
		acc.Mul(acc, r)
		acc.Add(acc, big.NewInt(d))
	}
	return CombinedID{big: acc}, nil
}

// combineSmall attempts the computation entirely in int64, reporting ok
// = false the moment acc*radix+d would overflow. acc and digits are
// always non-negative by the time they reach here.
func combineSmall(radix int64, digits []int64) (result int64, ok bool) {
	var acc int64
	for _, d := range digits {
		if acc != 0 && acc > (math.MaxInt64-d)/radix {
			return 0, false
		}
		acc = acc*radix + d
	}
	return acc, true
}

// Equal compares two CombinedIDs for equality, regardless of whether
// either uses the big.Int representation.
func (c CombinedID) Equal(other CombinedID) bool {
	if c.big == nil && other.big == nil {
		return c.small == other.small
	}
	return c.asBig().Cmp(other.asBig()) == 0
}

// Less provides a total order over CombinedID.
func (c CombinedID) Less(other CombinedID) bool {
	if c.big == nil && other.big == nil {
		return c.small < other.small
	}
	return c.asBig().Cmp(other.asBig()) < 0
}

func (c CombinedID) asBig() *big.Int {
	if c.big != nil {
		return c.big
	}
	return big.NewInt(c.small)
}

// Int64 narrows the CombinedID to an int64, returning an Arithmetic
// error (spec §7) if the value doesn't fit.
func (c CombinedID) Int64() (int64, error) {
	if c.big == nil {
		return c.small, nil
	}
	if c.big.IsInt64() {
		return c.big.Int64(), nil
	}
	return 0, errs.New(errs.Arithmetic, "combined id %s does not fit in 64 bits", c.big.String())
}

// String renders the canonical decimal form, usable as a hashable/
// comparable key.
func (c CombinedID) String() string {
	return c.asBig().String()
}
