// Package analysis inspects sampled animation channels.
//
//   - [Spectrum]: power spectrum of an evenly sampled series
//   - [DominantFrequency]: the strongest non-zero frequency, which for a
//     repeating or yoyo animation is its cycle rate
//   - [Summarize]: range, mean and total travel of a series
//
// # Cycle Detection
//
// A yoyo timeline of duration d oscillates at 1/(2d) hz:
//
//	freq, _ := analysis.DominantFrequency(series, fps)
//	if freq > 0 {
//	    period := 1 / freq
//	}
package analysis
