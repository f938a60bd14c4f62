package index

import (
	"time"

	"github.com/matzehuels/symbol/pkg/errors"
)

// Strategy names a balancing strategy.
type Strategy string

const (
	// StrategyWeight rebuilds a perfectly balanced tree from the sorted weights.
	StrategyWeight Strategy = "weight"
	// StrategyHeight balances with AVL rotations.
	StrategyHeight Strategy = "height"
	// StrategyColor balances with red-black rotations and recoloring.
	StrategyColor Strategy = "color"
	// StrategyHybrid adds a recency bonus to time-indexed entries, then rebuilds.
	StrategyHybrid Strategy = "hybrid"
)

// Strategies lists every supported strategy in a stable order.
var Strategies = []Strategy{StrategyWeight, StrategyHeight, StrategyColor, StrategyHybrid}

// ParseStrategy converts a strategy name. Unknown names fail with INVALID_MODE.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategyWeight, StrategyHeight, StrategyColor, StrategyHybrid:
		return st, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown balancing strategy %q", s)
}

// Order names a depth-first traversal order.
type Order string

const (
	InOrder   Order = "in"
	PreOrder  Order = "pre"
	PostOrder Order = "post"
)

// ParseOrder converts a traversal order name. Unknown names fail with INVALID_MODE.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case InOrder, PreOrder, PostOrder:
		return o, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown traversal order %q", s)
}

// Ager reports the age of a time-indexed value. Values for which ok is false
// receive no recency bonus during a hybrid rebalance.
type Ager[T any] func(v T) (age time.Duration, ok bool)

// recency returns the hybrid bonus for an entry of the given age.
// Negative ages (timestamps in the future) count as zero.
func recency(age time.Duration) float64 {
	s := age.Seconds()
	if s < 0 {
		s = 0
	}
	return 1 / (1 + s)
}
