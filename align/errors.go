package align

import (
	"github.com/RyanBlaney/sonido-align/algorithms/cost"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
	"github.com/RyanBlaney/sonido-align/algorithms/search"
)

var (
	ErrInvalidRange    = offset.ErrInvalidRange
	ErrExhaustedOffset = cost.ErrExhaustedOffset
	ErrSearchExhausted = search.ErrSearchExhausted
)

// ExhaustedError is returned, wrapped, when a search stops early
type ExhaustedError = search.ExhaustedError
