package kpi

// linearFit computes the degree-1 least-squares fit of ys over xs.
// ok is false when the system is unusable: fewer than two points, non-finite
// sums, or a singular denominator (all x values identical). Callers treat a
// failed fit as non-fatal and fall back to rate extrapolation.
func linearFit(xs, ys []float64) (slope, intercept float64, ok bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, false
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if !isFinite(denom) || denom == 0 {
		return 0, 0, false
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	if !isFinite(slope) || !isFinite(intercept) {
		return 0, 0, false
	}

	return slope, intercept, true
}
