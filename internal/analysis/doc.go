// Package analysis inspects recorded anchor tracks.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a series
//   - [NewPhasePortrait]: one component plotted against another
//   - [NewPoincareSection]: stroboscopic section at a threshold crossing
//
// Series come from a storage trace; samples of removed anchors are NaN and
// are skipped where a plot is drawn.
//
//	ys, _ := trace.Series("bob", "y")
//	f, err := analysis.DominantFrequency(ys, dt)
package analysis
