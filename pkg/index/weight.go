package index

import (
	"math"

	"github.com/matzehuels/symbol/pkg/errors"
)

// Weight is either a fixed number or a function of the indexed value.
// The zero value is the fixed weight 0.
type Weight[T any] struct {
	value   float64
	derive  func(T) float64
	derived bool
}

// Fixed returns a constant weight.
func Fixed[T any](w float64) Weight[T] {
	return Weight[T]{value: w}
}

// Derived returns a weight computed from the value each time it is evaluated.
func Derived[T any](fn func(T) float64) Weight[T] {
	return Weight[T]{derive: fn, derived: true}
}

// IsDerived reports whether the weight is computed from the value.
func (w Weight[T]) IsDerived() bool { return w.derived }

// Eval evaluates the weight against v.
// It fails with INVALID_WEIGHT if the weight function is nil or the result is
// NaN or infinite.
func (w Weight[T]) Eval(v T) (float64, error) {
	if !w.derived {
		return checkKey(w.value)
	}
	if w.derive == nil {
		return 0, errors.New(errors.ErrCodeInvalidWeight, "weight function is nil")
	}
	return checkKey(w.derive(v))
}

func checkKey(k float64) (float64, error) {
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, errors.New(errors.ErrCodeInvalidWeight, "weight %v is not a finite number", k)
	}
	return k, nil
}
