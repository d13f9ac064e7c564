// Package analysis provides frequency-domain checks on simulated traces.
//
//   - [PowerSpectrum]: one-sided magnitude spectrum of a signal with its mean removed
//   - [DominantPeriod]: period of the strongest oscillation
//
// A closed loop tuned too aggressively rings at a period of a few dead
// times; the dominant period of the feedback error shows it directly:
//
//	period, ok := analysis.DominantPeriod(tr.E, tr.Dt)
package analysis
