package exactextract

import "testing"

func TestOnlineVarianceUniformWeights(t *testing.T) {
	var v OnlineVariance
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		v.Process(x, 1.0)
	}
	if mean := v.Mean(); !almostEqual(mean, 5.0, 1e-9) {
		t.Errorf("mean = %v, want 5.0", mean)
	}
	if variance := v.Variance(); !almostEqual(variance, 4.0, 1e-9) {
		t.Errorf("variance = %v, want 4.0", variance)
	}
}

func TestOnlineVarianceIgnoresNonPositiveWeight(t *testing.T) {
	var v OnlineVariance
	v.Process(1, 1.0)
	v.Process(100, 0)
	v.Process(100, -1)
	if mean := v.Mean(); mean != 1.0 {
		t.Errorf("mean = %v, want 1.0 (zero/negative weight observations ignored)", mean)
	}
}

func TestWeightedQuantilesMedianOfUniformWeights(t *testing.T) {
	var q WeightedQuantiles
	for _, x := range []float64{1, 2, 3, 4, 5} {
		q.Process(x, 1.0)
	}
	got, ok := q.Quantile(0.5)
	if !ok {
		t.Fatal("expected a quantile result")
	}
	if !almostEqual(got, 3.0, 1e-9) {
		t.Errorf("median = %v, want 3.0", got)
	}
}

func TestWeightedQuantilesSkewedWeights(t *testing.T) {
	var q WeightedQuantiles
	q.Process(1, 9.0)
	q.Process(2, 1.0)

	got, _ := q.Quantile(0.99)
	if !almostEqual(got, 2.0, 1e-9) {
		t.Errorf("quantile(0.99) = %v, want close to 2.0", got)
	}

	got, _ = q.Quantile(0.05)
	if !almostEqual(got, 1.0, 1e-9) {
		t.Errorf("quantile(0.05) = %v, want 1.0", got)
	}
}

func TestWeightedQuantilesEmpty(t *testing.T) {
	var q WeightedQuantiles
	if _, ok := q.Quantile(0.5); ok {
		t.Error("expected no quantile for an empty accumulator")
	}
}
