package allocation

// Weight is the penalty weight of a bound or target value v.
//
// Relative weights are 1/v capped at maxWeight, so that small values weigh
// their deviations more. Values at or below zero have no meaningful inverse
// and receive the cap.
func Weight(v, maxWeight float64, absolute bool) float64 {
	if absolute {
		return 1
	}
	if v <= 0 {
		return maxWeight
	}
	if w := 1 / v; w < maxWeight {
		return w
	}
	return maxWeight
}

// Weights applies Weight elementwise.
func Weights(values []float64, opts Options) []float64 {
	weights := make([]float64, len(values))
	for i, v := range values {
		weights[i] = Weight(v, opts.MaxWeight, opts.Absolute)
	}
	return weights
}
