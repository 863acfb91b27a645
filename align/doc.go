// Package align finds the integer shift that best superimposes two sparse
// numeric signals.
//
// The default method is a best-first, branch-and-bound search over the
// admissible offsets. Each offset's squared error is accumulated lazily,
// largest samples of the first signal first, and the search stops as soon
// as a fully evaluated offset is cheaper than every partially evaluated one.
// On sparse signals this touches a small fraction of the pairs a full
// cross-correlation would.
//
// Offsets follow one convention throughout: offset o pairs a[i] with
// b[i+o]. The admissible offsets are [-floor(len(b)*f)+1, floor(len(a)*f))
// for a minimum overlap fraction f (0.5 by default).
//
// Basic usage:
//
//	res, err := align.Align(a, b, align.WithSeed(-2))
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.BestOffset, res.AccumulatedCost)
//
// Errors:
//
//   - ErrInvalidRange    the admissible range is empty (short signals or a
//     strict overlap fraction). No partial result.
//   - ErrSearchExhausted the search stopped early (step cap or context
//     cancellation). The *search.ExhaustedError carries partial diagnostics.
//   - ErrInvalidSignal   a sample is NaN or infinite.
//   - ErrExhaustedOffset internal invariant violation; never returned by a
//     correct search.
//
// Configuration errors from NewAligner wrap config.ErrInvalidConfig.
package align
